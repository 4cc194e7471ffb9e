package census

// Kind selects which record collection a query runs against.
type Kind int

const (
	// Admissions counts inpatient admission records.
	Admissions Kind = iota
	// Visits counts outpatient appointment records.
	Visits
)

// source maps a Kind to its table and date column.
type source struct {
	table      string
	dateColumn string
}

func (k Kind) source() source {
	if k == Visits {
		return source{table: "outpatients", dateColumn: "appointment_date"}
	}
	return source{table: "inpatients", dateColumn: "admission_date"}
}

// Visit type labels derived from the first_visit flag. These strings are part
// of the API contract; the dashboard renders them as series names verbatim.
const (
	VisitTypeFirst    = "初診"
	VisitTypeFollowUp = "再診"
)

// YearDailyRow is one daily bucket of a year-over-year comparison. Year and
// MonthDay are carried alongside the full date so the chart side can group
// series by year and align them on a shared month-day axis.
type YearDailyRow struct {
	Date       string `json:"date"`
	Year       string `json:"year"`
	MonthDay   string `json:"monthDay"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// YearMonthlyRow is one monthly bucket of a year-over-year comparison.
type YearMonthlyRow struct {
	Month      string `json:"month"`
	Year       string `json:"year"`
	MonthOnly  string `json:"monthOnly"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DeptDailyRow is one (date, department) bucket.
type DeptDailyRow struct {
	Date       string `json:"date"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DeptMonthlyRow is one (month, department) bucket.
type DeptMonthlyRow struct {
	Month      string `json:"month"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// VisitTypeDailyRow is one (date, visit type, department) bucket.
type VisitTypeDailyRow struct {
	Date       string `json:"date"`
	VisitType  string `json:"visit_type"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// VisitTypeMonthlyRow is one (month, visit type, department) bucket.
type VisitTypeMonthlyRow struct {
	Month      string `json:"month"`
	VisitType  string `json:"visit_type"`
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// DateRange is the pooled min/max date across both record collections.
// Both fields are null when the tables are empty.
type DateRange struct {
	MinDate *string `json:"minDate"`
	MaxDate *string `json:"maxDate"`
}
