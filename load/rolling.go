package load

import (
	"sort"
	"time"
)

// Window is a trailing calendar window and the number of observed samples
// it needs before its mean is defined.
type Window struct {
	Days       int `json:"days" yaml:"days"`
	MinPeriods int `json:"min_periods" yaml:"min_periods"`
}

// Windows pairs the acute and chronic windows.
type Windows struct {
	Acute   Window `json:"acute" yaml:"acute"`
	Chronic Window `json:"chronic" yaml:"chronic"`
}

// DefaultWindows is 7 days (1 sample) acute and 28 days (7 samples) chronic.
func DefaultWindows() Windows {
	return Windows{
		Acute:   Window{Days: 7, MinPeriods: 1},
		Chronic: Window{Days: 28, MinPeriods: 7},
	}
}

// Entry is one day of the rolling series.
type Entry struct {
	Date       time.Time `json:"date"`
	RawLoad    float64   `json:"raw_load"`
	Acute7d    *float64  `json:"acute_7d,omitempty"`
	Chronic28d *float64  `json:"chronic_28d,omitempty"`
	// ACWR is Acute7d / Chronic28d, or 0 when either is undefined or the
	// chronic load is not positive.
	ACWR float64 `json:"acwr"`
}

// Rolling applies DefaultWindows.
func Rolling(daily []DailyLoad) []Entry {
	return RollingWith(daily, DefaultWindows())
}

// RollingWith emits one entry per observed date. Each window covers the
// trailing Days calendar days ending on the entry date; days without a
// sample add nothing to the sum and do not count towards MinPeriods. The
// mean divides by the number of samples in the window.
func RollingWith(daily []DailyLoad, w Windows) []Entry {
	series := append([]DailyLoad(nil), daily...)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	out := make([]Entry, len(series))
	for i, d := range series {
		e := Entry{Date: d.Date, RawLoad: d.Load}
		e.Acute7d = trailingMean(series, i, w.Acute)
		e.Chronic28d = trailingMean(series, i, w.Chronic)
		if e.Acute7d != nil && e.Chronic28d != nil && *e.Chronic28d > 0 {
			e.ACWR = *e.Acute7d / *e.Chronic28d
		}
		out[i] = e
	}
	return out
}

func trailingMean(series []DailyLoad, end int, w Window) *float64 {
	if w.Days <= 0 {
		return nil
	}
	from := series[end].Date.AddDate(0, 0, -(w.Days - 1))
	var sum float64
	var n int
	for j := end; j >= 0 && !series[j].Date.Before(from); j-- {
		sum += series[j].Load
		n++
	}
	if n == 0 || n < w.MinPeriods {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}

// Band classifies an entry's ACWR.
type Band string

const (
	BandUndefined Band = "undefined"
	BandLow       Band = "low"
	BandOptimal   Band = "optimal"
	BandHighRisk  Band = "high_risk"
)

const (
	optimalLow  = 0.8
	optimalHigh = 1.3
)

// Classify places e into an ACWR band. Entries without a chronic load are
// undefined.
func (e Entry) Classify() Band {
	if e.Chronic28d == nil || *e.Chronic28d <= 0 {
		return BandUndefined
	}
	switch {
	case e.ACWR < optimalLow:
		return BandLow
	case e.ACWR <= optimalHigh:
		return BandOptimal
	default:
		return BandHighRisk
	}
}
