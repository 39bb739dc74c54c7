package billing

import "time"

// =============================================================================
// CLASSIFIER - Partitions bills for a reference date
// =============================================================================

// BillStatus is the state of a bill for one reference date.
type BillStatus string

const (
	StatusPaid    BillStatus = "paid"
	StatusOverdue BillStatus = "overdue"
	StatusSoon    BillStatus = "soon"
	StatusOpen    BillStatus = "open" // unpaid, not due within the window
)

// Classification holds the dashboard buckets. Each bucket keeps the input
// order; a bill appears in at most one bucket.
type Classification struct {
	Cycle   Cycle
	Overdue []Bill
	Soon    []Bill
	Paid    []Bill
}

// Classify partitions bills into overdue, due-soon and paid for the cycle
// containing ref. Bills in none of the three are dropped.
// A negative soonDays is treated as 0.
func Classify(bills []Bill, ref time.Time, soonDays int) Classification {
	c := Classification{
		Cycle:   CurrentCycle(ref),
		Overdue: []Bill{},
		Soon:    []Bill{},
		Paid:    []Bill{},
	}
	for _, b := range bills {
		switch Status(b, ref, soonDays) {
		case StatusPaid:
			c.Paid = append(c.Paid, b)
		case StatusOverdue:
			c.Overdue = append(c.Overdue, b)
		case StatusSoon:
			c.Soon = append(c.Soon, b)
		}
	}
	return c
}

// Status classifies a single bill. Payment for the current cycle wins over
// any due-date comparison.
func Status(b Bill, ref time.Time, soonDays int) BillStatus {
	if b.PaidIn(CurrentCycle(ref)) {
		return StatusPaid
	}
	if soonDays < 0 {
		soonDays = 0
	}

	due := DueDateForCycle(b.DueDay, ref)
	today := StartOfDay(ref)

	if due.Before(today) {
		return StatusOverdue
	}
	if !due.After(today.AddDate(0, 0, soonDays)) {
		return StatusSoon
	}
	return StatusOpen
}

// DaysUntilDue returns calendar days from ref's day to the bill's due date
// in ref's cycle. Negative when overdue.
func DaysUntilDue(b Bill, ref time.Time) int {
	return DueDateForCycle(b.DueDay, ref).Day() - ref.Day()
}
