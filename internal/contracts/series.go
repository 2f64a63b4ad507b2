package contracts

import (
	"math"
	"sort"
	"time"
)

// Point is a single observation in a daily time series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TimeSeries is an ordered sequence of daily observations, unique and
// sorted by date. Factor values and returns both use this shape.
// Missing observations are represented as NaN values.
type TimeSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// NewTimeSeries builds a series from parallel date/value slices,
// sorting by date. Lengths must match; extra values are dropped.
func NewTimeSeries(name string, dates []time.Time, values []float64) TimeSeries {
	n := len(dates)
	if len(values) < n {
		n = len(values)
	}

	points := make([]Point, n)
	for i := 0; i < n; i++ {
		points[i] = Point{Date: dates[i], Value: values[i]}
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return TimeSeries{Name: name, Points: points}
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int {
	return len(ts.Points)
}

// Empty reports whether the series has no observations.
func (ts TimeSeries) Empty() bool {
	return len(ts.Points) == 0
}

// Values returns the value column.
func (ts TimeSeries) Values() []float64 {
	values := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		values[i] = p.Value
	}
	return values
}

// Dates returns the date column.
func (ts TimeSeries) Dates() []time.Time {
	dates := make([]time.Time, len(ts.Points))
	for i, p := range ts.Points {
		dates[i] = p.Date
	}
	return dates
}

// DropNaN returns a copy of the series without NaN observations.
func (ts TimeSeries) DropNaN() TimeSeries {
	points := make([]Point, 0, len(ts.Points))
	for _, p := range ts.Points {
		if !math.IsNaN(p.Value) {
			points = append(points, p)
		}
	}
	return TimeSeries{Name: ts.Name, Points: points}
}

// AlignedPair holds a factor series and a return series inner-joined on
// date, with rows containing NaN in either column dropped. Slices share
// one index: Factor[i] and Returns[i] were observed on Dates[i].
type AlignedPair struct {
	Dates   []time.Time
	Factor  []float64
	Returns []float64
}

// Len returns the aligned sample length.
func (a AlignedPair) Len() int {
	return len(a.Dates)
}

// Slice returns the positional sub-range [from, to) of the aligned pair.
func (a AlignedPair) Slice(from, to int) AlignedPair {
	return AlignedPair{
		Dates:   a.Dates[from:to],
		Factor:  a.Factor[from:to],
		Returns: a.Returns[from:to],
	}
}

// Align inner-joins a factor series and a return series on date.
// Rows where either side is NaN are dropped. Both inputs are assumed
// sorted by date, which holds for any series built via NewTimeSeries.
func Align(factor, returns TimeSeries) AlignedPair {
	aligned := AlignedPair{}

	i, j := 0, 0
	for i < len(factor.Points) && j < len(returns.Points) {
		fp, rp := factor.Points[i], returns.Points[j]
		switch {
		case fp.Date.Before(rp.Date):
			i++
		case rp.Date.Before(fp.Date):
			j++
		default:
			if !math.IsNaN(fp.Value) && !math.IsNaN(rp.Value) {
				aligned.Dates = append(aligned.Dates, fp.Date)
				aligned.Factor = append(aligned.Factor, fp.Value)
				aligned.Returns = append(aligned.Returns, rp.Value)
			}
			i++
			j++
		}
	}

	return aligned
}

// FactorTable is a set of factor series sharing one date axis.
// Values[col][i] is the observation of column col on Dates[i];
// missing cells are NaN.
type FactorTable struct {
	Dates   []time.Time
	Columns []string
	Values  map[string][]float64
}

// Len returns the number of rows.
func (t FactorTable) Len() int {
	return len(t.Dates)
}

// Empty reports whether the table has no rows or no columns.
func (t FactorTable) Empty() bool {
	return len(t.Dates) == 0 || len(t.Columns) == 0
}

// Column extracts one column as a TimeSeries.
func (t FactorTable) Column(name string) (TimeSeries, bool) {
	values, ok := t.Values[name]
	if !ok {
		return TimeSeries{}, false
	}
	return NewTimeSeries(name, t.Dates, values), true
}

// Select returns the sub-table holding only the named columns, in the
// given order. Unknown names are ignored.
func (t FactorTable) Select(names []string) FactorTable {
	out := FactorTable{
		Dates:  t.Dates,
		Values: make(map[string][]float64, len(names)),
	}
	for _, name := range names {
		values, ok := t.Values[name]
		if !ok {
			continue
		}
		out.Columns = append(out.Columns, name)
		out.Values[name] = values
	}
	return out
}

// CompleteCases returns a copy of the table keeping only rows with no
// NaN in any column. Correlation analysis works on complete cases only.
func (t FactorTable) CompleteCases() FactorTable {
	keep := make([]int, 0, len(t.Dates))
	for i := range t.Dates {
		complete := true
		for _, col := range t.Columns {
			if math.IsNaN(t.Values[col][i]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	out := FactorTable{
		Dates:   make([]time.Time, len(keep)),
		Columns: append([]string(nil), t.Columns...),
		Values:  make(map[string][]float64, len(t.Columns)),
	}
	for _, col := range t.Columns {
		out.Values[col] = make([]float64, len(keep))
	}
	for k, i := range keep {
		out.Dates[k] = t.Dates[i]
		for _, col := range t.Columns {
			out.Values[col][k] = t.Values[col][i]
		}
	}

	return out
}
