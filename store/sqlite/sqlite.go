/*
Package sqlite provides a SQLite-backed implementation of billing.Store.

PURPOSE:
  Persists bills in a local SQLite file so the tracker works offline on a
  single device. The same schema works with both supported drivers.

DRIVERS:
  sqlite3: github.com/mattn/go-sqlite3 (cgo, default)
  sqlite:  modernc.org/sqlite (pure Go, for CGO_ENABLED=0 builds)

KEY TABLES:
  bills: One row per recurring bill. Due dates are not stored; they are
         derived from due_day at read time by the billing package.

INDEXES:
  - idx_bills_due_day: List() order (due_day, id)

NORMALIZATION:
  Add/Update normalize through billing.Normalize. ReplaceAll writes rows
  exactly as given; backup import relies on that.

CONCURRENCY:
  The pool is capped at one connection. That keeps ":memory:" databases
  coherent (every connection would otherwise get its own empty database)
  and serializes writers the way SQLite does anyway.

WAL MODE:
  File databases are opened with WAL for crash recovery and reader/writer
  overlap.

USAGE:
  store, err := sqlite.New("./bills.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := billing.NewService(store)

SEE ALSO:
  - billing/store.go: Interface definition
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/warp/bill-tracker/billing"
)

// Supported driver names.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// Store implements billing.Store using SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a store on dbPath with the default cgo driver.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	return Open(DriverCGO, dbPath)
}

// Open creates a store with the named driver.
func Open(driver, dbPath string) (*Store, error) {
	dsn, err := dataSourceName(driver, dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func dataSourceName(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGO:
		if dbPath == ":memory:" {
			return dbPath, nil
		}
		return dbPath + "?_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPureGo:
		if dbPath == ":memory:" {
			return dbPath, nil
		}
		return dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetClock overrides the CreatedAt clock.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		amount TEXT NOT NULL,
		issue_day INTEGER NOT NULL,
		due_day INTEGER NOT NULL,
		remind_days INTEGER NOT NULL DEFAULT 0,
		last_paid_cycle TEXT,
		last_paid_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bills_due_day
		ON bills(due_day, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BILL STORE (billing.Store interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Add inserts a normalized bill and returns its ID.
func (s *Store) Add(ctx context.Context, in billing.BillInput) (billing.BillID, error) {
	in = billing.Normalize(in)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (title, amount, issue_day, due_day, remind_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		in.Title,
		in.Amount.String(),
		in.IssueDay,
		in.DueDay,
		in.RemindDays,
		formatTime(s.now().UTC()),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bill: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read bill id: %w", err)
	}
	return billing.BillID(id), nil
}

// Update merges the normalized patch fields into the row.
func (s *Store) Update(ctx context.Context, id billing.BillID, patch billing.BillPatch) error {
	patch = billing.NormalizePatch(patch)

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, patch.Amount.String())
	}
	if patch.IssueDay != nil {
		sets = append(sets, "issue_day = ?")
		args = append(args, *patch.IssueDay)
	}
	if patch.DueDay != nil {
		sets = append(sets, "due_day = ?")
		args = append(args, *patch.DueDay)
	}
	if patch.RemindDays != nil {
		sets = append(sets, "remind_days = ?")
		args = append(args, *patch.RemindDays)
	}

	if len(sets) == 0 {
		// Nothing to merge; still report unknown IDs.
		b, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return &billing.NotFoundError{ID: id}
		}
		return nil
	}

	query := "UPDATE bills SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, int64(id))
	return s.execOne(ctx, s.db, id, query, args...)
}

// Delete removes a bill. Unknown IDs are ignored.
func (s *Store) Delete(ctx context.Context, id billing.BillID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", int64(id)); err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return nil
}

// Get returns a bill by ID, or nil if absent.
func (s *Store) Get(ctx context.Context, id billing.BillID) (*billing.Bill, error) {
	row := s.db.QueryRowContext(ctx, selectBills+" WHERE id = ?", int64(id))
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all bills ordered by due day, then ID.
func (s *Store) List(ctx context.Context) ([]billing.Bill, error) {
	rows, err := s.db.QueryContext(ctx, selectBills+" ORDER BY due_day, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []billing.Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// ReplaceAll clears the table and inserts bills as-is in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, bills []billing.Bill) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM bills"); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}

	for _, b := range billing.AssignMissingIDs(bills) {
		if err := insertRaw(ctx, sqlTx, b); err != nil {
			return err
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// MarkPaid stamps the paid cycle and time.
func (s *Store) MarkPaid(ctx context.Context, id billing.BillID, cycle billing.Cycle, at time.Time) error {
	return s.execOne(ctx, s.db, id,
		"UPDATE bills SET last_paid_cycle = ?, last_paid_at = ? WHERE id = ?",
		string(cycle), formatTime(at.UTC()), int64(id))
}

// execOne runs a single-row UPDATE and maps zero affected rows to not found.
func (s *Store) execOne(ctx context.Context, db execer, id billing.BillID, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n == 0 {
		return &billing.NotFoundError{ID: id}
	}
	return nil
}

func insertRaw(ctx context.Context, db execer, b billing.Bill) error {
	var cycle, paidAt any
	if b.LastPaidCycle != nil {
		cycle = string(*b.LastPaidCycle)
	}
	if b.LastPaidAt != nil {
		paidAt = formatTime(*b.LastPaidAt)
	}

	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bills
		(id, title, amount, issue_day, due_day, remind_days, last_paid_cycle, last_paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		int64(b.ID),
		b.Title,
		b.Amount.String(),
		b.IssueDay,
		b.DueDay,
		b.RemindDays,
		cycle,
		paidAt,
		formatTime(b.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill %d: %w", b.ID, err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

const selectBills = `
	SELECT id, title, amount, issue_day, due_day, remind_days,
	       last_paid_cycle, last_paid_at, created_at
	FROM bills`

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(row scanner) (billing.Bill, error) {
	var (
		b                 billing.Bill
		id                int64
		amount, createdAt string
		cycle, paidAt     sql.NullString
	)
	if err := row.Scan(&id, &b.Title, &amount, &b.IssueDay, &b.DueDay, &b.RemindDays,
		&cycle, &paidAt, &createdAt); err != nil {
		return billing.Bill{}, err
	}

	b.ID = billing.BillID(id)
	b.Amount = parseDecimal(amount)
	b.CreatedAt = parseTime(createdAt)
	if cycle.Valid {
		b.LastPaidCycle = billing.CyclePtr(billing.Cycle(cycle.String))
	}
	if paidAt.Valid {
		t := parseTime(paidAt.String)
		b.LastPaidAt = &t
	}
	return b, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var _ billing.Store = (*Store)(nil)
