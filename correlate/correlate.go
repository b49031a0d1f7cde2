// Package correlate pairs two daily metrics and reports Pearson's r and a
// least-squares fitted line.
package correlate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidLag is returned for a lag other than 0 or 1.
var ErrInvalidLag = errors.New("lag must be 0 or 1")

// Row holds the metric values observed on one calendar day. A metric that
// was not observed has no key.
type Row struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Table is a daily metric table. Rows need not be sorted.
type Table []Row

// Sorted returns a copy of t ordered by date.
func (t Table) Sorted() Table {
	out := append(Table(nil), t...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Metrics lists every metric name present in any row, sorted.
func (t Table) Metrics() []string {
	seen := make(map[string]struct{})
	for _, r := range t {
		for k := range r.Values {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Point is one paired observation. Date is the date of the x value.
type Point struct {
	Date time.Time `json:"date"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// Fit is the ordinary least-squares line y = Slope*x + Intercept.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Result is the outcome of one correlation. PearsonR and Fit are nil when
// fewer than two pairs survive or either series has zero variance.
type Result struct {
	XMetric     string   `json:"x_metric"`
	YMetric     string   `json:"y_metric"`
	Lag         int      `json:"lag"`
	PearsonR    *float64 `json:"pearson_r"`
	SampleCount int      `json:"sample_count"`
	Points      []Point  `json:"points"`
	Fit         *Fit     `json:"fit,omitempty"`
}

// Defined reports whether r was computed.
func (r Result) Defined() bool { return r.PearsonR != nil }

// Correlate pairs x and y over t sorted by date. With lag 1 the x value of
// each row is paired with the y value of the next row, so x today is
// compared with y on the following observed day. Pairs with either value
// missing are dropped before computing r.
func Correlate(t Table, x, y string, lag int) (Result, error) {
	if lag != 0 && lag != 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidLag, lag)
	}
	res := Result{XMetric: x, YMetric: y, Lag: lag, Points: []Point{}}

	rows := t.Sorted()
	for i := 0; i+lag < len(rows); i++ {
		xv, okX := rows[i].Values[x]
		yv, okY := rows[i+lag].Values[y]
		if !okX || !okY || !isFinite(xv) || !isFinite(yv) {
			continue
		}
		res.Points = append(res.Points, Point{Date: rows[i].Date, X: xv, Y: yv})
	}
	res.SampleCount = len(res.Points)
	if res.SampleCount < 2 {
		return res, nil
	}

	r, fit, ok := pearson(res.Points)
	if ok {
		res.PearsonR = &r
		res.Fit = &fit
	}
	return res, nil
}

func pearson(points []Point) (float64, Fit, bool) {
	n := float64(len(points))
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, syy, sxy float64
	for _, p := range points {
		dx, dy := p.X-meanX, p.Y-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, Fit{}, false
	}

	r := sxy / math.Sqrt(sxx*syy)
	// Rounding can push |r| a hair past 1.
	r = math.Max(-1, math.Min(1, r))
	slope := sxy / sxx
	return r, Fit{Slope: slope, Intercept: meanY - slope*meanX}, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Selectable lists metrics with more than one distinct value, the only
// ones a correlation can be defined for.
func Selectable(t Table) []string {
	distinct := make(map[string]map[float64]struct{})
	for _, r := range t {
		for k, v := range r.Values {
			if !isFinite(v) {
				continue
			}
			if distinct[k] == nil {
				distinct[k] = make(map[float64]struct{})
			}
			distinct[k][v] = struct{}{}
		}
	}
	var out []string
	for k, vals := range distinct {
		if len(vals) > 1 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
