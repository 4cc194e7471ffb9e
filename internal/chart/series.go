// Package chart reshapes flat aggregation rows into the per-series point
// arrays a plotting layer consumes. It is a pure pivot: no I/O, no counting of
// its own, and the output shape is part of the contract with the dashboard.
package chart

import (
	"sort"

	"github.com/ymatsuda/hospital-census/internal/census"
)

// Series is one plottable line or bar group. X and Y are parallel slices.
type Series struct {
	Name string   `json:"name"`
	X    []string `json:"x"`
	Y    []int64  `json:"y"`
}

// YearDailySeries pivots year-over-year daily rows into one line per year,
// aligned on a shared month-day axis so different years overlay.
//
// A month-day key can appear in several source rows (the union query returns
// one row per department when no filter is set), so counts for the same key
// are summed, never overwritten.
func YearDailySeries(rows []census.YearDailyRow) []Series {
	buckets := map[string]map[string]int64{}
	for _, row := range rows {
		if buckets[row.Year] == nil {
			buckets[row.Year] = map[string]int64{}
		}
		buckets[row.Year][row.MonthDay] += row.Count
	}
	return yearSeries(buckets)
}

// YearMonthlySeries pivots year-over-year monthly rows into one line per
// year, aligned on the two-digit month axis.
func YearMonthlySeries(rows []census.YearMonthlyRow) []Series {
	buckets := map[string]map[string]int64{}
	for _, row := range rows {
		if buckets[row.Year] == nil {
			buckets[row.Year] = map[string]int64{}
		}
		buckets[row.Year][row.MonthOnly] += row.Count
	}
	return yearSeries(buckets)
}

func yearSeries(buckets map[string]map[string]int64) []Series {
	years := make([]string, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Strings(years)

	series := make([]Series, 0, len(years))
	for _, year := range years {
		keys := make([]string, 0, len(buckets[year]))
		for key := range buckets[year] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		s := Series{Name: year + "年", X: keys, Y: make([]int64, 0, len(keys))}
		for _, key := range keys {
			s.Y = append(s.Y, buckets[year][key])
		}
		series = append(series, s)
	}
	return series
}

// DeptDailySeries partitions daily rows by department, one bar group per
// department in encounter order. Buckets a department has no rows for are
// simply absent; the stacking layer decides how absent renders.
func DeptDailySeries(rows []census.DeptDailyRow) []Series {
	points := make([]point, 0, len(rows))
	for _, row := range rows {
		points = append(points, point{name: row.Department, x: row.Date, y: row.Count})
	}
	return partition(points)
}

// DeptMonthlySeries is the monthly variant of DeptDailySeries.
func DeptMonthlySeries(rows []census.DeptMonthlyRow) []Series {
	points := make([]point, 0, len(rows))
	for _, row := range rows {
		points = append(points, point{name: row.Department, x: row.Month, y: row.Count})
	}
	return partition(points)
}

// VisitTypeDailySeries partitions daily rows by the two visit type labels.
func VisitTypeDailySeries(rows []census.VisitTypeDailyRow) []Series {
	points := make([]point, 0, len(rows))
	for _, row := range rows {
		points = append(points, point{name: row.VisitType, x: row.Date, y: row.Count})
	}
	return partition(points)
}

// VisitTypeMonthlySeries is the monthly variant of VisitTypeDailySeries.
func VisitTypeMonthlySeries(rows []census.VisitTypeMonthlyRow) []Series {
	points := make([]point, 0, len(rows))
	for _, row := range rows {
		points = append(points, point{name: row.VisitType, x: row.Month, y: row.Count})
	}
	return partition(points)
}

type point struct {
	name string
	x    string
	y    int64
}

// partition groups points into one series per name, preserving both the
// order series were first encountered and the row order within each series.
func partition(points []point) []Series {
	index := map[string]int{}
	series := []Series{}
	for _, p := range points {
		i, ok := index[p.name]
		if !ok {
			i = len(series)
			index[p.name] = i
			series = append(series, Series{Name: p.name})
		}
		series[i].X = append(series[i].X, p.x)
		series[i].Y = append(series[i].Y, p.y)
	}
	return series
}
