package census

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ymatsuda/hospital-census/internal/observability/metrics"
	"github.com/ymatsuda/hospital-census/pkg/logging"
)

// Handler serves the aggregation endpoints. Validation failures are returned
// to the client with a message; storage failures are logged and surfaced as an
// opaque 500 with no partial data.
type Handler struct {
	repo    *Repository
	logger  *logging.Logger
	metrics *metrics.QueryMetrics
}

// NewHandler creates the aggregation HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger, m *metrics.QueryMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger, metrics: m}
}

// GET /api/inpatients/daily-by-year
func (h *Handler) InpatientsDailyByYear(w http.ResponseWriter, r *http.Request) {
	h.dailyByYear(w, r, Admissions, "inpatients/daily-by-year")
}

// GET /api/outpatients/daily-by-year
func (h *Handler) OutpatientsDailyByYear(w http.ResponseWriter, r *http.Request) {
	h.dailyByYear(w, r, Visits, "outpatients/daily-by-year")
}

// GET /api/inpatients/monthly-by-year
func (h *Handler) InpatientsMonthlyByYear(w http.ResponseWriter, r *http.Request) {
	h.monthlyByYear(w, r, Admissions, "inpatients/monthly-by-year")
}

// GET /api/outpatients/monthly-by-year
func (h *Handler) OutpatientsMonthlyByYear(w http.ResponseWriter, r *http.Request) {
	h.monthlyByYear(w, r, Visits, "outpatients/monthly-by-year")
}

// GET /api/inpatients/daily-by-dept
func (h *Handler) InpatientsDailyByDept(w http.ResponseWriter, r *http.Request) {
	h.dailyByDept(w, r, Admissions, "inpatients/daily-by-dept")
}

// GET /api/outpatients/daily-by-dept
func (h *Handler) OutpatientsDailyByDept(w http.ResponseWriter, r *http.Request) {
	h.dailyByDept(w, r, Visits, "outpatients/daily-by-dept")
}

// GET /api/inpatients/monthly-by-dept
func (h *Handler) InpatientsMonthlyByDept(w http.ResponseWriter, r *http.Request) {
	h.monthlyByDept(w, r, Admissions, "inpatients/monthly-by-dept")
}

// GET /api/outpatients/monthly-by-dept
func (h *Handler) OutpatientsMonthlyByDept(w http.ResponseWriter, r *http.Request) {
	h.monthlyByDept(w, r, Visits, "outpatients/monthly-by-dept")
}

// GET /api/outpatients/daily-by-visit-type
func (h *Handler) OutpatientsDailyByVisitType(w http.ResponseWriter, r *http.Request) {
	const endpoint = "outpatients/daily-by-visit-type"
	start := time.Now()

	filter, err := parseVisitTypeFilter(r)
	if err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.DailyByVisitType(r.Context(), filter)
	if err != nil {
		h.logger.Error("visit type query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []VisitTypeDailyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

// GET /api/outpatients/monthly-by-visit-type
func (h *Handler) OutpatientsMonthlyByVisitType(w http.ResponseWriter, r *http.Request) {
	const endpoint = "outpatients/monthly-by-visit-type"
	start := time.Now()

	filter, err := parseVisitTypeFilter(r)
	if err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.MonthlyByVisitType(r.Context(), filter)
	if err != nil {
		h.logger.Error("visit type query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []VisitTypeMonthlyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

func (h *Handler) dailyByYear(w http.ResponseWriter, r *http.Request, kind Kind, endpoint string) {
	start := time.Now()
	q := r.URL.Query()

	rng := Range{Start: q.Get("startDate"), End: q.Get("endDate")}
	if err := rng.Validate(); err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.DailyByYear(r.Context(), kind, rng, q.Get("department"))
	if err != nil {
		h.logger.Error("yearly comparison query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []YearDailyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

func (h *Handler) monthlyByYear(w http.ResponseWriter, r *http.Request, kind Kind, endpoint string) {
	start := time.Now()
	q := r.URL.Query()

	rng := Range{Start: q.Get("startDate"), End: q.Get("endDate")}
	if err := rng.Validate(); err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.MonthlyByYear(r.Context(), kind, rng, q.Get("department"))
	if err != nil {
		h.logger.Error("yearly comparison query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []YearMonthlyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

func (h *Handler) dailyByDept(w http.ResponseWriter, r *http.Request, kind Kind, endpoint string) {
	start := time.Now()

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.DailyByDepartment(r.Context(), kind, filter)
	if err != nil {
		h.logger.Error("department breakdown query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []DeptDailyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

func (h *Handler) monthlyByDept(w http.ResponseWriter, r *http.Request, kind Kind, endpoint string) {
	start := time.Now()

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.fail(w, endpoint, http.StatusBadRequest, err.Error(), start)
		return
	}

	rows, err := h.repo.MonthlyByDepartment(r.Context(), kind, filter)
	if err != nil {
		h.logger.Error("department breakdown query failed", "endpoint", endpoint, "error", err)
		h.fail(w, endpoint, http.StatusInternalServerError, "internal error", start)
		return
	}
	if rows == nil {
		rows = []DeptMonthlyRow{}
	}
	h.ok(w, endpoint, rows, start)
}

func parseRangeFilter(r *http.Request) (RangeFilter, error) {
	q := r.URL.Query()
	filter := RangeFilter{Start: q.Get("startDate"), End: q.Get("endDate")}
	if err := filter.Validate(); err != nil {
		return RangeFilter{}, err
	}
	return filter, nil
}

func parseVisitTypeFilter(r *http.Request) (VisitTypeFilter, error) {
	q := r.URL.Query()
	filter := VisitTypeFilter{
		RangeFilter: RangeFilter{Start: q.Get("startDate"), End: q.Get("endDate")},
		Department:  q.Get("department"),
	}
	if err := filter.Validate(); err != nil {
		return VisitTypeFilter{}, err
	}
	return filter, nil
}

func (h *Handler) ok(w http.ResponseWriter, endpoint string, payload any, start time.Time) {
	writeJSON(w, http.StatusOK, payload)
	h.metrics.ObserveRequest(endpoint, "200")
	h.metrics.ObserveLatency(endpoint, time.Since(start).Seconds())
}

func (h *Handler) fail(w http.ResponseWriter, endpoint string, status int, msg string, start time.Time) {
	writeJSON(w, status, map[string]string{"error": msg})
	h.metrics.ObserveRequest(endpoint, strconv.Itoa(status))
	h.metrics.ObserveLatency(endpoint, time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
