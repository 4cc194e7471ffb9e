package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/ymatsuda/hospital-census/internal/census"
	"github.com/ymatsuda/hospital-census/pkg/logging"
)

// MetaHandler serves the dataset metadata the dashboard needs before it can
// issue any aggregation query: the department list for the filter dropdown
// and the overall date bounds for the range slider.
type MetaHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewMetaHandler creates a new metadata handler.
func NewMetaHandler(db *sql.DB, logger *logging.Logger) *MetaHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MetaHandler{db: db, logger: logger}
}

// ListDepartments returns the sorted, deduplicated union of departments seen
// in either record collection, as a plain string array.
// GET /api/departments
func (h *MetaHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.queryDepartments(r.Context())
	if err != nil {
		h.logger.Error("failed to list departments", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(departments)
}

// GetDateRange returns the pooled min/max date across admissions and visits.
// GET /api/date-range
func (h *MetaHandler) GetDateRange(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT MIN(date) AS min_date, MAX(date) AS max_date
		FROM (
			SELECT admission_date AS date FROM inpatients
			UNION ALL
			SELECT appointment_date AS date FROM outpatients
		) AS pooled
	`

	var minDate, maxDate sql.NullString
	if err := h.db.QueryRowContext(r.Context(), query).Scan(&minDate, &maxDate); err != nil {
		h.logger.Error("failed to query date range", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	rng := census.DateRange{}
	if minDate.Valid {
		rng.MinDate = &minDate.String
	}
	if maxDate.Valid {
		rng.MaxDate = &maxDate.String
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rng)
}

func (h *MetaHandler) queryDepartments(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT department
		FROM (
			SELECT department FROM inpatients
			UNION
			SELECT department FROM outpatients
		) AS pooled
		ORDER BY department
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := []string{}
	for rows.Next() {
		var department string
		if err := rows.Scan(&department); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
