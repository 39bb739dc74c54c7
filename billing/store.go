/*
store.go - Persistence interface for bills

PURPOSE:
  Defines the capability set the Service needs from a persistent keyed
  collection. The Service receives a Store explicitly; nothing reaches a
  process-wide database handle.

NORMALIZATION CONTRACT:
  - Add() and Update() run Normalize/NormalizePatch before writing
  - ReplaceAll() writes records exactly as given (backup import path)

ATOMICITY:
  Every single mutation is atomic. ReplaceAll is clear + bulk upsert in one
  all-or-nothing transaction; a partial replacement is never observable.
  No optimistic locking: last write wins.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (file or :memory:)
  - billing/store/memory.go: In-memory for testing
*/
package billing

import (
	"context"
	"time"
)

// Store persists bills.
type Store interface {
	// Add normalizes in, assigns a new ID, sets CreatedAt and returns the ID.
	Add(ctx context.Context, in BillInput) (BillID, error)

	// Update merges the present patch fields after normalizing them.
	// Returns ErrBillNotFound for an unknown ID.
	Update(ctx context.Context, id BillID, patch BillPatch) error

	// Delete removes the bill. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id BillID) error

	// Get returns the bill, or nil if absent.
	Get(ctx context.Context, id BillID) (*Bill, error)

	// List returns all bills ascending by DueDay, ties by ID.
	List(ctx context.Context) ([]Bill, error)

	// ReplaceAll atomically clears the collection and inserts bills as-is.
	// Bills with ID 0 get a fresh ID; repeated IDs keep the last record.
	ReplaceAll(ctx context.Context, bills []Bill) error

	// MarkPaid sets LastPaidCycle and LastPaidAt.
	// Returns ErrBillNotFound for an unknown ID.
	MarkPaid(ctx context.Context, id BillID, cycle Cycle, at time.Time) error
}

// AssignMissingIDs returns a copy of bills where every record without a
// positive ID gets one above the highest ID present, in input order.
// Stores call it from ReplaceAll so explicit IDs are never overwritten by
// generated ones.
func AssignMissingIDs(bills []Bill) []Bill {
	var maxID BillID
	for _, b := range bills {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	out := make([]Bill, len(bills))
	for i, b := range bills {
		if b.ID <= 0 {
			maxID++
			b.ID = maxID
		}
		out[i] = b
	}
	return out
}
