/*
handlers.go - HTTP API handlers for the bill tracker

PURPOSE:
  Exposes the billing service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the billing package.

ENDPOINTS:
  Bills:
    GET    /api/bills              List bills (due-day order) with status
    POST   /api/bills              Create bill
    GET    /api/bills/{id}         Get bill
    PUT    /api/bills/{id}         Partial update
    DELETE /api/bills/{id}         Delete bill
    POST   /api/bills/{id}/pay     Confirm payment for a cycle

  Dashboard:
    GET    /api/dashboard          Overdue / due-soon / paid buckets
    GET    /api/reminders          Bills inside their own remind-days window

  Backup:
    GET    /api/backup             Download JSON backup
    POST   /api/backup             Replace all bills from a JSON backup

  Scenarios (demo data, see scenarios.go):
    GET    /api/scenarios          List demo data sets
    GET    /api/scenarios/current  Last loaded data set
    POST   /api/scenarios/load     Replace all bills with a data set

REFERENCE DATE:
  List and dashboard endpoints accept ?date=YYYY-MM-DD to evaluate against
  another day; the default is the service clock. ?soon_days=N overrides the
  configured due-soon window.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, malformed backup file
  - 404: Bill not found
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/bill-tracker/backup"
	"github.com/warp/bill-tracker/billing"
	"github.com/warp/bill-tracker/logger"
)

// maxBackupSize bounds an uploaded backup file.
const maxBackupSize = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *billing.Service
	SoonDays int
	Log      zerolog.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over svc with the default due-soon window.
func NewHandler(svc *billing.Service, soonDays int, log zerolog.Logger) *Handler {
	return &Handler{
		Service:  svc,
		SoonDays: soonDays,
		Log:      log,
	}
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills annotated for the reference date.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	ref, soonDays, ok := h.viewParams(w, r)
	if !ok {
		return
	}

	bills, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	writeJSON(w, http.StatusOK, toBillDTOs(bills, ref, soonDays))
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	bill, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to get bill", err)
		return
	}

	writeJSON(w, http.StatusOK, toBillDTO(*bill, h.Service.Now(), h.SoonDays))
}

// CreateBill validates and stores a new bill.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bill, err := h.Service.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, "Failed to create bill", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillDTO(*bill, h.Service.Now(), h.SoonDays))
}

// UpdateBill applies a partial update.
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	var req UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bill, err := h.Service.Update(r.Context(), id, req.toPatch())
	if err != nil {
		h.writeServiceError(w, "Failed to update bill", err)
		return
	}

	writeJSON(w, http.StatusOK, toBillDTO(*bill, h.Service.Now(), h.SoonDays))
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete bill", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkPaid confirms payment for the requested cycle, or the current one.
// POST /api/bills/{id}/pay
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(w, r)
	if !ok {
		return
	}

	// An empty body means the current cycle.
	var req MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	var (
		cycle billing.Cycle
		err   error
	)
	if req.Cycle == "" {
		cycle, err = h.Service.MarkPaidCurrent(ctx, id)
	} else {
		cycle, err = billing.ParseCycle(req.Cycle)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cycle (use YYYY-MM)", err)
			return
		}
		err = h.Service.MarkPaid(ctx, id, cycle)
	}
	if err != nil {
		h.writeServiceError(w, "Failed to confirm payment", err)
		return
	}

	bill, err := h.Service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, "Failed to get bill", err)
		return
	}

	writeJSON(w, http.StatusOK, MarkPaidResponse{
		Bill:  toBillDTO(*bill, h.Service.Now(), h.SoonDays),
		Cycle: string(cycle),
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns the overdue / soon / paid buckets.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ref, soonDays, ok := h.viewParams(w, r)
	if !ok {
		return
	}

	view, err := h.Service.Dashboard(r.Context(), ref, soonDays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		Date:     ref.Format("2006-01-02"),
		Cycle:    string(view.Cycle),
		SoonDays: soonDays,
		Overdue:  toBillDTOs(view.Overdue, ref, soonDays),
		Soon:     toBillDTOs(view.Soon, ref, soonDays),
		Paid:     toBillDTOs(view.Paid, ref, soonDays),
	})
}

// ListReminders returns the bills the reminder scheduler would report for
// the reference date.
// GET /api/reminders
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	ref, soonDays, ok := h.viewParams(w, r)
	if !ok {
		return
	}

	bills, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	dtos := []ReminderDTO{}
	for _, rem := range billing.Reminders(bills, ref) {
		dtos = append(dtos, ReminderDTO{
			Bill:         toBillDTO(rem.Bill, ref, soonDays),
			Status:       string(rem.Status),
			DaysUntilDue: rem.DaysUntilDue,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// BACKUP
// =============================================================================

// ExportBackup streams every bill as a JSON backup download.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	now := h.Service.Now()
	doc, err := backup.Export(r.Context(), h.Service.Store(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export bills", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, backup.FileName(now)))
	w.WriteHeader(http.StatusOK)
	if err := backup.Write(w, doc); err != nil {
		h.Log.Error().Err(err).Msg("failed to write backup")
	}
}

// ImportBackup replaces all bills with the uploaded backup. Records are
// stored exactly as they appear in the file.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBackupSize)

	n, err := backup.Import(r.Context(), body, h.Service.Store())
	switch {
	case errors.Is(err, backup.ErrInvalidBackup):
		writeError(w, http.StatusBadRequest, backup.ErrInvalidBackup.Error(), err)
		return
	case errors.Is(err, backup.ErrCorruptBackup):
		writeError(w, http.StatusBadRequest, "Import failed. Is the file corrupt?", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to import bills", err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Int("bills", n).Msg("backup imported")
	writeJSON(w, http.StatusOK, ImportResponse{Imported: n})
}

// =============================================================================
// HELPERS
// =============================================================================

// viewParams reads ?date= and ?soon_days=. It writes a 400 and returns false
// on malformed values.
func (h *Handler) viewParams(w http.ResponseWriter, r *http.Request) (time.Time, int, bool) {
	now := h.Service.Now()
	ref := now
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return time.Time{}, 0, false
		}
		ref = d
	}

	soonDays := h.SoonDays
	if s := r.URL.Query().Get("soon_days"); s != "" {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid soon_days (use a whole number)", err)
			return time.Time{}, 0, false
		}
		soonDays = max(0, n)
	}
	return ref, soonDays, true
}

func billID(w http.ResponseWriter, r *http.Request) (billing.BillID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid bill id", err)
		return 0, false
	}
	return billing.BillID(id), true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var verr *billing.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case billing.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Bill not found", err)
	case billing.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
