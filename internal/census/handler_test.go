package census

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ymatsuda/hospital-census/internal/observability/metrics"
	"github.com/ymatsuda/hospital-census/pkg/logging"
)

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	m := metrics.NewQueryMetrics(prometheus.NewRegistry())
	return NewHandler(NewRepositoryWithDB(mock), logging.Default(), m), mock
}

func TestHandler_DailyByYear_YearOverYear(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM inpatients`).
		WithArgs("2024-06-01", "2024-06-30", "2023-06-01", "2023-06-30").
		WillReturnRows(pgxmock.NewRows([]string{"date", "year", "month_day", "department", "count"}).
			AddRow("2023-06-15", "2023", "06-15", "内科", int64(1)).
			AddRow("2024-06-15", "2024", "06-15", "内科", int64(1)))

	req := httptest.NewRequest(http.MethodGet, "/api/inpatients/daily-by-year?startDate=2024-06-01&endDate=2024-06-30", nil)
	rec := httptest.NewRecorder()
	h.InpatientsDailyByYear(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var rows []YearDailyRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Date != "2023-06-15" || rows[0].Count != 1 {
		t.Errorf("unexpected shifted-window row: %+v", rows[0])
	}
	if rows[1].Date != "2024-06-15" || rows[1].Count != 1 {
		t.Errorf("unexpected requested-window row: %+v", rows[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHandler_DailyByYear_MissingRange(t *testing.T) {
	h, mock := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/inpatients/daily-by-year?startDate=2024-06-01", nil)
	rec := httptest.NewRecorder()
	h.InpatientsDailyByYear(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}

	// Validation failures must not reach the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no query should have run: %v", err)
	}
}

func TestHandler_DailyByYear_InvertedRange(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/inpatients/daily-by-year?startDate=2024-07-01&endDate=2024-06-01", nil)
	rec := httptest.NewRecorder()
	h.InpatientsDailyByYear(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandler_MonthlyByYear_MalformedDate(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/outpatients/monthly-by-year?startDate=06-01-2024&endDate=2024-06-30", nil)
	rec := httptest.NewRecorder()
	h.OutpatientsMonthlyByYear(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandler_DailyByVisitType_Scenario(t *testing.T) {
	h, mock := newTestHandler(t)

	// Three same-day visits, two first visits and one follow-up, arrive as
	// two pre-grouped rows.
	mock.ExpectQuery(`(?s)SELECT.*FROM outpatients`).
		WillReturnRows(pgxmock.NewRows([]string{"date", "visit_type", "department", "count"}).
			AddRow("2024-06-15", "初診", "内科", int64(2)).
			AddRow("2024-06-15", "再診", "内科", int64(1)))

	req := httptest.NewRequest(http.MethodGet, "/api/outpatients/daily-by-visit-type", nil)
	rec := httptest.NewRecorder()
	h.OutpatientsDailyByVisitType(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var rows []VisitTypeDailyRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].VisitType != "初診" || rows[0].Count != 2 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
	if rows[1].VisitType != "再診" || rows[1].Count != 1 {
		t.Errorf("unexpected row: %+v", rows[1])
	}
}

func TestHandler_DailyByDept_EmptyResult(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM outpatients`).
		WillReturnRows(pgxmock.NewRows([]string{"date", "department", "count"}))

	req := httptest.NewRequest(http.MethodGet, "/api/outpatients/daily-by-dept", nil)
	rec := httptest.NewRecorder()
	h.OutpatientsDailyByDept(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	// Empty result renders as an empty JSON array, not null.
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array body, got %q", got)
	}
}

func TestHandler_StorageErrorIsOpaque(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM inpatients`).
		WillReturnError(errors.New("relation inpatients does not exist"))

	req := httptest.NewRequest(http.MethodGet, "/api/inpatients/monthly-by-dept", nil)
	rec := httptest.NewRecorder()
	h.InpatientsMonthlyByDept(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "internal error" {
		t.Errorf("storage detail leaked to client: %q", body["error"])
	}
}

func TestHandler_MonthlyByVisitType_DepartmentFilter(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(`(?s)SELECT.*FROM outpatients.*AND department = \$3`).
		WithArgs("2024-01-01", "2024-12-31", "小児科").
		WillReturnRows(pgxmock.NewRows([]string{"month", "visit_type", "department", "count"}).
			AddRow("2024-02", "初診", "小児科", int64(18)))

	req := httptest.NewRequest(http.MethodGet,
		"/api/outpatients/monthly-by-visit-type?startDate=2024-01-01&endDate=2024-12-31&department=小児科", nil)
	rec := httptest.NewRecorder()
	h.OutpatientsMonthlyByVisitType(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
