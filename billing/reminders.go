package billing

import "time"

// Reminder is an unpaid bill that needs attention on a reference date.
type Reminder struct {
	Bill         Bill
	Status       BillStatus
	DaysUntilDue int
}

// Reminders returns the unpaid bills that are overdue or due within their
// own RemindDays window, in input order. Unlike the dashboard window, each
// bill uses its own lead time.
func Reminders(bills []Bill, ref time.Time) []Reminder {
	var out []Reminder
	for _, b := range bills {
		st := Status(b, ref, b.RemindDays)
		if st != StatusOverdue && st != StatusSoon {
			continue
		}
		out = append(out, Reminder{Bill: b, Status: st, DaysUntilDue: DaysUntilDue(b, ref)})
	}
	return out
}
