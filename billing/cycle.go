package billing

import (
	"fmt"
	"time"
)

// =============================================================================
// CYCLE - One billing period (a calendar month)
// =============================================================================

// Cycle identifies a calendar month as "YYYY-MM".
// Two cycles are equal iff they denote the same year and month.
type Cycle string

const cycleLayout = "2006-01"

// CurrentCycle returns the cycle containing t. Only year and month matter.
func CurrentCycle(t time.Time) Cycle {
	return Cycle(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// ParseCycle checks that s is a well-formed "YYYY-MM" cycle.
func ParseCycle(s string) (Cycle, error) {
	if len(s) != len(cycleLayout) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCycle, s)
	}
	t, err := time.Parse(cycleLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCycle, s)
	}
	return CurrentCycle(t), nil
}

// Start returns midnight on the first day of the cycle in loc.
func (c Cycle) Start(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(cycleLayout, string(c), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCycle, string(c))
	}
	return t, nil
}

// Next returns the following cycle.
func (c Cycle) Next() (Cycle, error) { return c.shift(1) }

// Prev returns the preceding cycle.
func (c Cycle) Prev() (Cycle, error) { return c.shift(-1) }

func (c Cycle) shift(months int) (Cycle, error) {
	start, err := c.Start(time.UTC)
	if err != nil {
		return "", err
	}
	return CurrentCycle(start.AddDate(0, months, 0)), nil
}

func (c Cycle) String() string { return string(c) }

// CyclePtr returns a pointer to c, for LastPaidCycle fields.
func CyclePtr(c Cycle) *Cycle { return &c }
