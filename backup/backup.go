/*
Package backup reads and writes the JSON backup file.

FORMAT:
  {
    "exportedAt": "2024-03-10T12:00:00Z",
    "bills": [ { "id": 1, "title": "Rent", "amount": "1200", ... } ]
  }

IMPORT RULES:
  - Unparsable JSON: ErrCorruptBackup, nothing written
  - "bills" missing or not an array: ErrInvalidBackup, nothing written
  - Anything else: records go to Store.ReplaceAll untouched. Field values
    are not validated or normalized on this path.

SEE ALSO:
  - billing/store.go: ReplaceAll contract
  - api/handlers.go: Download/upload endpoints
*/
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/warp/bill-tracker/billing"
)

var (
	// ErrCorruptBackup is returned when the file is not valid JSON or its
	// records don't decode into bills.
	ErrCorruptBackup = errors.New("backup file is corrupt")

	// ErrInvalidBackup is returned when the document has no "bills" array.
	ErrInvalidBackup = errors.New(`invalid backup file (expected: { "bills": [...] })`)
)

// Document is the backup file body.
type Document struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Bills      []billing.Bill `json:"bills"`
}

// Lister is the read side of billing.Store used by Export.
type Lister interface {
	List(ctx context.Context) ([]billing.Bill, error)
}

// Replacer is the write side of billing.Store used by Import.
type Replacer interface {
	ReplaceAll(ctx context.Context, bills []billing.Bill) error
}

// documentSchema only checks the shape Import depends on.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["bills"],
	"properties": {
		"bills": { "type": "array" }
	}
}`

var schema = jsonschema.MustCompileString("backup.schema.json", documentSchema)

// Export snapshots every bill in store order.
func Export(ctx context.Context, store Lister, now time.Time) (Document, error) {
	bills, err := store.List(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("list bills: %w", err)
	}
	return Document{ExportedAt: now.UTC(), Bills: bills}, nil
}

// Write encodes doc with two-space indentation.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// FileName is the suggested download name for a backup taken at now.
func FileName(now time.Time) string {
	return "bills-backup-" + now.Format("2006-01-02") + ".json"
}

// Parse decodes and structurally checks a backup file.
func Parse(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read backup: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptBackup, err)
	}
	if err := schema.Validate(generic); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptBackup, err)
	}
	return doc, nil
}

// Import parses r and replaces the whole collection with its bills.
// It returns the number of records written.
func Import(ctx context.Context, r io.Reader, store Replacer) (int, error) {
	doc, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if err := store.ReplaceAll(ctx, doc.Bills); err != nil {
		return 0, fmt.Errorf("replace bills: %w", err)
	}
	return len(doc.Bills), nil
}
