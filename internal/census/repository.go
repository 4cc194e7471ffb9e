package census

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// censusDB defines the database interface needed by Repository.
type censusDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository answers grouped-count queries over the two record collections.
// It is a pure read path: every method runs a single statement and returns
// exact row counts per bucket.
type Repository struct {
	db censusDB
}

// NewRepository creates a repository backed by pgxpool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("census: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting a mock database for testing.
func NewRepositoryWithDB(db censusDB) *Repository {
	return &Repository{db: db}
}

// DailyByYear counts records per (date, department) inside the requested
// window unioned with the same window shifted one year earlier, so a single
// result set carries both series of a year-over-year chart.
func (r *Repository) DailyByYear(ctx context.Context, kind Kind, rng Range, department string) ([]YearDailyRow, error) {
	src := kind.source()
	prev := rng.shifted()

	query := fmt.Sprintf(`
		SELECT
			%[2]s AS date,
			left(%[2]s, 4) AS year,
			substr(%[2]s, 6, 5) AS month_day,
			department,
			COUNT(*) AS count
		FROM %[1]s
		WHERE (
			(%[2]s >= $1 AND %[2]s <= $2)
			OR (%[2]s >= $3 AND %[2]s <= $4)
		)`, src.table, src.dateColumn)
	args := []any{rng.Start, rng.End, prev.Start, prev.End}

	if department != "" {
		query += " AND department = $5"
		args = append(args, department)
	}

	query += fmt.Sprintf(" GROUP BY %[1]s, department ORDER BY year, %[1]s, department", src.dateColumn)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: daily by year: %w", err)
	}
	defer rows.Close()

	var out []YearDailyRow
	for rows.Next() {
		var row YearDailyRow
		if err := rows.Scan(&row.Date, &row.Year, &row.MonthDay, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: daily by year: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: daily by year: %w", err)
	}
	return out, nil
}

// MonthlyByYear is the YYYY-MM bucketed variant of DailyByYear.
func (r *Repository) MonthlyByYear(ctx context.Context, kind Kind, rng Range, department string) ([]YearMonthlyRow, error) {
	src := kind.source()
	prev := rng.shifted()

	query := fmt.Sprintf(`
		SELECT
			left(%[2]s, 7) AS month,
			left(%[2]s, 4) AS year,
			substr(%[2]s, 6, 2) AS month_only,
			department,
			COUNT(*) AS count
		FROM %[1]s
		WHERE (
			(%[2]s >= $1 AND %[2]s <= $2)
			OR (%[2]s >= $3 AND %[2]s <= $4)
		)`, src.table, src.dateColumn)
	args := []any{rng.Start, rng.End, prev.Start, prev.End}

	if department != "" {
		query += " AND department = $5"
		args = append(args, department)
	}

	query += " GROUP BY month, year, month_only, department ORDER BY year, month, department"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: monthly by year: %w", err)
	}
	defer rows.Close()

	var out []YearMonthlyRow
	for rows.Next() {
		var row YearMonthlyRow
		if err := rows.Scan(&row.Month, &row.Year, &row.MonthOnly, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: monthly by year: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: monthly by year: %w", err)
	}
	return out, nil
}

// DailyByDepartment counts records per (date, department) inside the window.
// No year shift here: by-department charts compare departments, not years.
func (r *Repository) DailyByDepartment(ctx context.Context, kind Kind, filter RangeFilter) ([]DeptDailyRow, error) {
	src := kind.source()

	query := fmt.Sprintf(`
		SELECT %[2]s AS date, department, COUNT(*) AS count
		FROM %[1]s
		WHERE 1=1`, src.table, src.dateColumn)
	args, query := appendWindow(query, nil, src.dateColumn, filter)

	query += fmt.Sprintf(" GROUP BY %[1]s, department ORDER BY %[1]s, department", src.dateColumn)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: daily by department: %w", err)
	}
	defer rows.Close()

	var out []DeptDailyRow
	for rows.Next() {
		var row DeptDailyRow
		if err := rows.Scan(&row.Date, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: daily by department: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: daily by department: %w", err)
	}
	return out, nil
}

// MonthlyByDepartment is the YYYY-MM bucketed variant of DailyByDepartment.
func (r *Repository) MonthlyByDepartment(ctx context.Context, kind Kind, filter RangeFilter) ([]DeptMonthlyRow, error) {
	src := kind.source()

	query := fmt.Sprintf(`
		SELECT left(%[2]s, 7) AS month, department, COUNT(*) AS count
		FROM %[1]s
		WHERE 1=1`, src.table, src.dateColumn)
	args, query := appendWindow(query, nil, src.dateColumn, filter)

	query += " GROUP BY month, department ORDER BY month, department"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: monthly by department: %w", err)
	}
	defer rows.Close()

	var out []DeptMonthlyRow
	for rows.Next() {
		var row DeptMonthlyRow
		if err := rows.Scan(&row.Month, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: monthly by department: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: monthly by department: %w", err)
	}
	return out, nil
}

// DailyByVisitType counts outpatient visits per (date, visit type,
// department), labeling each row 初診 or 再診 from the first_visit flag.
func (r *Repository) DailyByVisitType(ctx context.Context, filter VisitTypeFilter) ([]VisitTypeDailyRow, error) {
	query := fmt.Sprintf(`
		SELECT
			appointment_date AS date,
			CASE WHEN first_visit THEN '%s' ELSE '%s' END AS visit_type,
			department,
			COUNT(*) AS count
		FROM outpatients
		WHERE 1=1`, VisitTypeFirst, VisitTypeFollowUp)
	args, query := appendWindow(query, nil, "appointment_date", filter.RangeFilter)
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", len(args)+1)
		args = append(args, filter.Department)
	}

	query += " GROUP BY appointment_date, visit_type, department ORDER BY appointment_date, visit_type, department"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: daily by visit type: %w", err)
	}
	defer rows.Close()

	var out []VisitTypeDailyRow
	for rows.Next() {
		var row VisitTypeDailyRow
		if err := rows.Scan(&row.Date, &row.VisitType, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: daily by visit type: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: daily by visit type: %w", err)
	}
	return out, nil
}

// MonthlyByVisitType is the YYYY-MM bucketed variant of DailyByVisitType.
func (r *Repository) MonthlyByVisitType(ctx context.Context, filter VisitTypeFilter) ([]VisitTypeMonthlyRow, error) {
	query := fmt.Sprintf(`
		SELECT
			left(appointment_date, 7) AS month,
			CASE WHEN first_visit THEN '%s' ELSE '%s' END AS visit_type,
			department,
			COUNT(*) AS count
		FROM outpatients
		WHERE 1=1`, VisitTypeFirst, VisitTypeFollowUp)
	args, query := appendWindow(query, nil, "appointment_date", filter.RangeFilter)
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", len(args)+1)
		args = append(args, filter.Department)
	}

	query += " GROUP BY month, visit_type, department ORDER BY month, visit_type, department"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("census: monthly by visit type: %w", err)
	}
	defer rows.Close()

	var out []VisitTypeMonthlyRow
	for rows.Next() {
		var row VisitTypeMonthlyRow
		if err := rows.Scan(&row.Month, &row.VisitType, &row.Department, &row.Count); err != nil {
			return nil, fmt.Errorf("census: monthly by visit type: scan: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("census: monthly by visit type: %w", err)
	}
	return out, nil
}

// appendWindow adds parameterized bound clauses for whichever bounds are set.
// Only static clause text is concatenated; values always travel as args.
func appendWindow(query string, args []any, dateColumn string, filter RangeFilter) ([]any, string) {
	if filter.Start != "" {
		query += fmt.Sprintf(" AND %s >= $%d", dateColumn, len(args)+1)
		args = append(args, filter.Start)
	}
	if filter.End != "" {
		query += fmt.Sprintf(" AND %s <= $%d", dateColumn, len(args)+1)
		args = append(args, filter.End)
	}
	return args, query
}
