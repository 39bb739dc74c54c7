/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built bill sets that populate the store with realistic
	data for demos and manual testing of the dashboard buckets.

AVAILABLE SCENARIOS:

	empty:          No bills
	typical-month:  Rent, utilities and subscriptions around today
	end-of-month:   Due days 29-31 that clamp in short months
	all-paid:       Every bill confirmed for the current cycle

HOW SCENARIOS WORK:
 1. Build the bill set relative to the service clock's today
 2. Replace the whole collection in one Store.ReplaceAll call

USAGE VIA API:

	GET  /api/scenarios
	GET  /api/scenarios/current
	POST /api/scenarios/load
	{"scenario_id": "typical-month"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Add a builder to 'scenarioBuilders'

NOTE:

	Scenarios replace all stored bills. Only use in development/demo
	environments.

SEE ALSO:
  - billing/store.go: ReplaceAll contract
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/logger"
)

// ScenarioDTO describes a loadable demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "No bills",
	},
	{
		ID:          "typical-month",
		Name:        "Typical Month",
		Description: "Household bills with some overdue, some due soon and one already paid",
	},
	{
		ID:          "end-of-month",
		Name:        "End of Month",
		Description: "Bills due on the 29th, 30th and 31st to show short-month clamping",
	},
	{
		ID:          "all-paid",
		Name:        "All Paid",
		Description: "Every bill confirmed for the current cycle",
	},
}

type scenarioBuilder func(today time.Time) []billing.Bill

var scenarioBuilders = map[string]scenarioBuilder{
	"empty":         func(time.Time) []billing.Bill { return nil },
	"typical-month": typicalMonth,
	"end-of-month":  endOfMonth,
	"all-paid":      allPaid,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, or null.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario replaces all bills with a predefined set.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	build, ok := scenarioBuilders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	bills := build(h.Service.Now())
	if err := h.Service.Store().ReplaceAll(r.Context(), bills); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	log := logger.FromContext(r.Context())
	log.Info().Str("scenario", req.ScenarioID).Int("bills", len(bills)).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

// dayOffset returns today's day shifted by n, kept inside the month.
func dayOffset(today time.Time, n int) int {
	return billing.ClampDay(today.Day()+n, billing.DaysInMonth(today.Year(), today.Month()))
}

func demoBill(id int64, title, amount string, issueDay, dueDay, remindDays int, createdAt time.Time) billing.Bill {
	return billing.Bill{
		ID:         billing.BillID(id),
		Title:      title,
		Amount:     decimal.RequireFromString(amount),
		IssueDay:   billing.ClampDay(issueDay, billing.MaxDay),
		DueDay:     billing.ClampDay(dueDay, billing.MaxDay),
		RemindDays: remindDays,
		CreatedAt:  createdAt.UTC(),
	}
}

func typicalMonth(today time.Time) []billing.Bill {
	bills := []billing.Bill{
		demoBill(1, "Rent", "1850.00", 1, dayOffset(today, -3), 5, today),
		demoBill(2, "Electricity", "212.37", 2, dayOffset(today, 1), 3, today),
		demoBill(3, "Internet", "119.90", 5, dayOffset(today, 3), 2, today),
		demoBill(4, "Water", "84.15", 8, dayOffset(today, 12), 3, today),
		demoBill(5, "Streaming", "39.90", 10, dayOffset(today, -1), 0, today),
	}
	paidAt := today.UTC()
	bills[4].LastPaidCycle = billing.CyclePtr(billing.CurrentCycle(today))
	bills[4].LastPaidAt = &paidAt
	return bills
}

func endOfMonth(today time.Time) []billing.Bill {
	return []billing.Bill{
		demoBill(1, "Credit card", "2310.44", 20, 29, 5, today),
		demoBill(2, "Condo fee", "640.00", 15, 30, 5, today),
		demoBill(3, "Insurance", "189.00", 25, 31, 7, today),
	}
}

func allPaid(today time.Time) []billing.Bill {
	bills := typicalMonth(today)
	cycle := billing.CurrentCycle(today)
	paidAt := today.UTC()
	for i := range bills {
		bills[i].LastPaidCycle = billing.CyclePtr(cycle)
		bills[i].LastPaidAt = &paidAt
	}
	return bills
}
