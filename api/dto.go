/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the billing model (whose JSON shape is the backup file format) from the
  HTTP contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in the billing service (billing.ValidateStrict), not in
  DTOs. DTOs are pure data carriers. Values of the wrong JSON type fail
  decoding and are rejected as a bad request.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/bill-tracker/billing"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// BillDTO represents a bill in API responses, annotated for one reference
// date.
type BillDTO struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Amount        string  `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	IssueDay      int     `json:"issue_day"`
	DueDay        int     `json:"due_day"`
	RemindDays    int     `json:"remind_days"`
	LastPaidCycle *string `json:"last_paid_cycle"`
	LastPaidAt    *string `json:"last_paid_at"`
	CreatedAt     string  `json:"created_at"`

	// Derived for the reference date
	DueDate       string `json:"due_date"`
	DaysUntilDue  int    `json:"days_until_due"`
	Status        string `json:"status"`
	PaidThisCycle bool   `json:"paid_this_cycle"`
}

// CreateBillRequest is the request to create a bill.
// Amount accepts a JSON number or a numeric string.
type CreateBillRequest struct {
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	IssueDay   int             `json:"issue_day"`
	DueDay     int             `json:"due_day"`
	RemindDays int             `json:"remind_days"`
}

// UpdateBillRequest is a partial update; omitted fields are untouched.
type UpdateBillRequest struct {
	Title      *string          `json:"title"`
	Amount     *decimal.Decimal `json:"amount"`
	IssueDay   *int             `json:"issue_day"`
	DueDay     *int             `json:"due_day"`
	RemindDays *int             `json:"remind_days"`
}

// MarkPaidRequest optionally names the cycle; the current cycle is used
// when empty.
type MarkPaidRequest struct {
	Cycle string `json:"cycle"`
}

// MarkPaidResponse reports the cycle recorded.
type MarkPaidResponse struct {
	Bill  BillDTO `json:"bill"`
	Cycle string  `json:"cycle"`
}

// DashboardDTO is the classified view for one reference date.
type DashboardDTO struct {
	Date     string    `json:"date"`
	Cycle    string    `json:"cycle"`
	SoonDays int       `json:"soon_days"`
	Overdue  []BillDTO `json:"overdue"`
	Soon     []BillDTO `json:"soon"`
	Paid     []BillDTO `json:"paid"`
}

// ReminderDTO is an unpaid bill inside its own remind-days window.
type ReminderDTO struct {
	Bill         BillDTO `json:"bill"`
	Status       string  `json:"status"`
	DaysUntilDue int     `json:"days_until_due"`
}

// ImportResponse reports how many records a backup import wrote.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func (r CreateBillRequest) toInput() billing.BillInput {
	return billing.BillInput{
		Title:      r.Title,
		Amount:     r.Amount,
		IssueDay:   r.IssueDay,
		DueDay:     r.DueDay,
		RemindDays: r.RemindDays,
	}
}

func (r UpdateBillRequest) toPatch() billing.BillPatch {
	return billing.BillPatch{
		Title:      r.Title,
		Amount:     r.Amount,
		IssueDay:   r.IssueDay,
		DueDay:     r.DueDay,
		RemindDays: r.RemindDays,
	}
}

func toBillDTO(b billing.Bill, ref time.Time, soonDays int) BillDTO {
	dto := BillDTO{
		ID:            int64(b.ID),
		Title:         b.Title,
		Amount:        b.Amount.StringFixed(2),
		AmountDisplay: FormatBRL(b.Amount),
		IssueDay:      b.IssueDay,
		DueDay:        b.DueDay,
		RemindDays:    b.RemindDays,
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		DueDate:       billing.DueDateForCycle(b.DueDay, ref).Format("2006-01-02"),
		DaysUntilDue:  billing.DaysUntilDue(b, ref),
		Status:        string(billing.Status(b, ref, soonDays)),
		PaidThisCycle: b.PaidIn(billing.CurrentCycle(ref)),
	}
	if b.LastPaidCycle != nil {
		c := string(*b.LastPaidCycle)
		dto.LastPaidCycle = &c
	}
	if b.LastPaidAt != nil {
		at := b.LastPaidAt.Format(time.RFC3339)
		dto.LastPaidAt = &at
	}
	return dto
}

func toBillDTOs(bills []billing.Bill, ref time.Time, soonDays int) []BillDTO {
	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		dtos[i] = toBillDTO(b, ref, soonDays)
	}
	return dtos
}
