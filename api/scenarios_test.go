/*
scenarios_test.go - Unit tests for demo scenarios

PURPOSE:
	Tests that each scenario sets up the expected state against the SQLite
	store and that the dashboard buckets come out as the scenario describes.
*/
package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/store/sqlite"
)

func setupScenarioServer(t *testing.T, now time.Time) (http.Handler, *billing.Service) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := billing.NewService(store, billing.WithClock(func() time.Time { return now }))
	return NewRouter(NewHandler(svc, 3, zerolog.Nop()), ""), svc
}

func TestListScenarios(t *testing.T) {
	srv, _ := setupScenarioServer(t, testNow)

	rec := do(t, srv, http.MethodGet, "/api/scenarios", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	require.Len(t, list, len(scenarioBuilders))
	for _, s := range list {
		assert.Contains(t, scenarioBuilders, s.ID, "scenario %s has a builder", s.ID)
	}
}

func TestLoadScenario_TypicalMonth(t *testing.T) {
	// GIVEN: an existing bill that the scenario will replace
	srv, svc := setupScenarioServer(t, testNow)
	_, err := svc.Create(context.Background(), billing.BillInput{Title: "old", IssueDay: 1, DueDay: 1})
	require.NoError(t, err)

	// WHEN
	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"typical-month"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: buckets for 2024-03-10 with a 3-day window
	rec = do(t, srv, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[DashboardDTO](t, rec)
	assert.Equal(t, []string{"Rent"}, titles(dto.Overdue))
	assert.Equal(t, []string{"Electricity", "Internet"}, titles(dto.Soon))
	assert.Equal(t, []string{"Streaming"}, titles(dto.Paid))

	rec = do(t, srv, http.MethodGet, "/api/scenarios/current", "")
	assert.Equal(t, "typical-month", decode[ScenarioDTO](t, rec).ID)
}

func TestLoadScenario_EndOfMonthClampsInFebruary(t *testing.T) {
	now := time.Date(2023, time.February, 10, 9, 0, 0, 0, time.UTC)
	srv, _ := setupScenarioServer(t, now)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"end-of-month"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	dtos := decode[[]BillDTO](t, rec)
	require.Len(t, dtos, 3)
	for _, d := range dtos {
		assert.Equal(t, "2023-02-28", d.DueDate, d.Title)
	}
}

func TestLoadScenario_AllPaid(t *testing.T) {
	srv, _ := setupScenarioServer(t, testNow)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"all-paid"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[DashboardDTO](t, do(t, srv, http.MethodGet, "/api/dashboard", ""))
	assert.Empty(t, dto.Overdue)
	assert.Empty(t, dto.Soon)
	assert.Len(t, dto.Paid, 5)
}

func TestLoadScenario_Empty(t *testing.T) {
	srv, svc := setupScenarioServer(t, testNow)
	_, err := svc.Create(context.Background(), billing.BillInput{Title: "old", IssueDay: 1, DueDay: 1})
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"empty"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	bills, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestLoadScenario_Unknown(t *testing.T) {
	srv, _ := setupScenarioServer(t, testNow)

	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, srv, http.MethodPost, "/api/scenarios/load", `{`).Code)

	rec := do(t, srv, http.MethodGet, "/api/scenarios/current", "")
	assert.JSONEq(t, `null`, rec.Body.String())
}

func TestDayOffset_StaysInMonth(t *testing.T) {
	assert.Equal(t, 1, dayOffset(time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), -3))
	assert.Equal(t, 29, dayOffset(time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC), 5))
	assert.Equal(t, 13, dayOffset(testNow, 3))
}
