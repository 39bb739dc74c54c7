package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VALIDATION - Two policies guarding the same fields
// =============================================================================
//
// ValidateStrict rejects bad input at the presentation boundary.
// Normalize never fails and is applied by stores on Add/Update.
// ReplaceAll (backup import) uses neither.

// ValidateStrict checks a full input and returns the first violation.
func ValidateStrict(in BillInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if !validDay(in.IssueDay) {
		return &ValidationError{Field: "issue_day", Message: "issue day must be between 1 and 31"}
	}
	if !validDay(in.DueDay) {
		return &ValidationError{Field: "due_day", Message: "due day must be between 1 and 31"}
	}
	if in.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "amount must be a non-negative number"}
	}
	return nil
}

// ValidatePatch applies the ValidateStrict rules to the fields present.
func ValidatePatch(p BillPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.IssueDay != nil && !validDay(*p.IssueDay) {
		return &ValidationError{Field: "issue_day", Message: "issue day must be between 1 and 31"}
	}
	if p.DueDay != nil && !validDay(*p.DueDay) {
		return &ValidationError{Field: "due_day", Message: "due day must be between 1 and 31"}
	}
	if p.Amount != nil && p.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Message: "amount must be a non-negative number"}
	}
	return nil
}

func validDay(d int) bool { return d >= MinDay && d <= MaxDay }

// Normalize coerces input into the stored invariants: trimmed title, days in
// [1,31], non-negative amount and reminder window.
func Normalize(in BillInput) BillInput {
	return BillInput{
		Title:      strings.TrimSpace(in.Title),
		Amount:     nonNegative(in.Amount),
		IssueDay:   ClampDay(in.IssueDay, MaxDay),
		DueDay:     ClampDay(in.DueDay, MaxDay),
		RemindDays: max(0, in.RemindDays),
	}
}

// NormalizePatch normalizes only the fields present.
func NormalizePatch(p BillPatch) BillPatch {
	var out BillPatch
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		out.Title = &t
	}
	if p.Amount != nil {
		a := nonNegative(*p.Amount)
		out.Amount = &a
	}
	if p.IssueDay != nil {
		d := ClampDay(*p.IssueDay, MaxDay)
		out.IssueDay = &d
	}
	if p.DueDay != nil {
		d := ClampDay(*p.DueDay, MaxDay)
		out.DueDay = &d
	}
	if p.RemindDays != nil {
		r := max(0, *p.RemindDays)
		out.RemindDays = &r
	}
	return out
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
