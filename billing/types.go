/*
Package billing provides the core bill-tracking engine.

PURPOSE:
  Recurring monthly bills are stored once and re-evaluated against any
  reference date. The package owns the temporal rules: which cycle a date
  belongs to, when a bill falls due inside that cycle, and whether it is
  overdue, due soon or already paid.

KEY CONCEPTS IN THIS FILE (types.go):
  - Bill: A recurring obligation keyed by day-of-month
  - BillInput: Field values for creating a bill
  - BillPatch: Partial update, nil fields are left untouched

DESIGN PRINCIPLES:
  1. Due dates are never stored; they are recomputed from DueDay + reference date
  2. Payment is tracked per cycle (LastPaidCycle), not as a ledger
  3. Precision: amounts use decimal.Decimal
  4. No hidden state: classifier and calendar are pure functions

USAGE:
  svc := billing.NewService(store)
  id, err := svc.Create(ctx, billing.BillInput{Title: "Rent", DueDay: 10})
  view, err := svc.Dashboard(ctx, time.Now(), 5)

SEE ALSO:
  - calendar.go: Day clamping and due-date computation
  - classifier.go: Overdue/soon/paid partitioning
  - service.go: Operations wired to a Store
*/
package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillID identifies a bill. Assigned by the store, immutable afterwards.
type BillID int64

// Bill is a recurring monthly obligation.
// JSON field names follow the backup file format.
type Bill struct {
	ID            BillID          `json:"id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	IssueDay      int             `json:"issueDay"`
	DueDay        int             `json:"dueDay"`
	RemindDays    int             `json:"remindDays"`
	LastPaidCycle *Cycle          `json:"lastPaidCycle"`
	LastPaidAt    *time.Time      `json:"lastPaidAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// PaidIn reports whether the bill was paid for the given cycle.
func (b Bill) PaidIn(c Cycle) bool {
	return b.LastPaidCycle != nil && *b.LastPaidCycle == c
}

// BillInput carries the user-editable fields of a bill.
type BillInput struct {
	Title      string
	Amount     decimal.Decimal
	IssueDay   int
	DueDay     int
	RemindDays int
}

// BillPatch is a partial update. Only non-nil fields are applied.
type BillPatch struct {
	Title      *string
	Amount     *decimal.Decimal
	IssueDay   *int
	DueDay     *int
	RemindDays *int
}

// IsEmpty returns true if the patch changes nothing.
func (p BillPatch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.IssueDay == nil &&
		p.DueDay == nil && p.RemindDays == nil
}

// Apply merges the patch into b. The patch is applied as-is; callers
// normalize first.
func (p BillPatch) Apply(b *Bill) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.IssueDay != nil {
		b.IssueDay = *p.IssueDay
	}
	if p.DueDay != nil {
		b.DueDay = *p.DueDay
	}
	if p.RemindDays != nil {
		b.RemindDays = *p.RemindDays
	}
}
