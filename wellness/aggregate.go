package wellness

import (
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/records"
)

// PeriodRow summarises the daily summaries of one period, labelled as
// calendar.Period.Label does. Averages are nil when no day in the period
// reported the metric.
type PeriodRow struct {
	Period        time.Time `json:"period"`
	AvgRestingHR  *float64  `json:"avg_resting_hr,omitempty"`
	AvgStress     *float64  `json:"avg_stress,omitempty"`
	AvgSleepHours *float64  `json:"avg_sleep_hours,omitempty"`
	TotalSteps    float64   `json:"total_steps"`
	Days          int       `json:"days"`
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// Aggregate buckets days by p from the first to the last date. Empty
// periods are kept with zero Days. Stress days without data do not count
// towards AvgStress.
func Aggregate(days []records.DailySummary, p calendar.Period) []PeriodRow {
	if len(days) == 0 {
		return nil
	}
	first, last := days[0].Date, days[0].Date
	for _, d := range days[1:] {
		if d.Date.Before(first) {
			first = d.Date
		}
		if d.Date.After(last) {
			last = d.Date
		}
	}

	labels := p.Labels(first, last)
	rows := make([]PeriodRow, len(labels))
	type accs struct{ rhr, stress, sleep mean }
	acc := make([]accs, len(labels))
	index := make(map[time.Time]int, len(labels))
	for i, l := range labels {
		rows[i].Period = l
		index[l] = i
	}

	for _, d := range days {
		i := index[p.Label(d.Date)]
		rows[i].Days++
		if d.TotalSteps != nil {
			rows[i].TotalSteps += *d.TotalSteps
		}
		acc[i].rhr.add(d.RestingHR)
		acc[i].stress.add(stress(d.AvgStressLevel))
		acc[i].sleep.add(d.SleepHours)
	}
	for i := range rows {
		rows[i].AvgRestingHR = acc[i].rhr.value()
		rows[i].AvgStress = acc[i].stress.value()
		rows[i].AvgSleepHours = acc[i].sleep.value()
	}
	return rows
}

// RunningRow is the running volume of one period.
type RunningRow struct {
	Period               time.Time `json:"period"`
	Runs                 int       `json:"runs"`
	TotalDistanceKm      float64   `json:"total_distance_km"`
	TotalDurationMinutes float64   `json:"total_duration_minutes"`
	AvgHR                *float64  `json:"avg_hr,omitempty"`
	// AvgPaceMinPerKm is total duration over total distance for runs that
	// report both.
	AvgPaceMinPerKm *float64 `json:"avg_pace_min_per_km,omitempty"`
}

// AggregateRunning buckets the running activities of acts by p, keeping
// empty periods between the first and last run.
func AggregateRunning(acts []records.Activity, p calendar.Period) []RunningRow {
	runs := records.FilterRunning(acts)
	if len(runs) == 0 {
		return nil
	}
	first, last := runs[0].Date, runs[0].Date
	for _, a := range runs[1:] {
		if a.Date.Before(first) {
			first = a.Date
		}
		if a.Date.After(last) {
			last = a.Date
		}
	}

	labels := p.Labels(first, last)
	rows := make([]RunningRow, len(labels))
	totals := make([]Totals, len(labels))
	index := make(map[time.Time]int, len(labels))
	for i, l := range labels {
		rows[i].Period = l
		index[l] = i
	}
	for _, a := range runs {
		totals[index[p.Label(a.Date)]].add(a)
	}
	for i, t := range totals {
		t.finish()
		rows[i].Runs = t.Runs
		rows[i].TotalDistanceKm = t.DistanceKm
		rows[i].TotalDurationMinutes = t.DurationMinutes
		rows[i].AvgHR = t.AvgHR
		rows[i].AvgPaceMinPerKm = t.AvgPaceMinPerKm
	}
	return rows
}

// Totals is the running scorecard over a set of activities.
type Totals struct {
	Runs            int      `json:"runs"`
	DistanceKm      float64  `json:"distance_km"`
	DurationMinutes float64  `json:"duration_minutes"`
	AvgHR           *float64 `json:"avg_hr,omitempty"`
	AvgPaceMinPerKm *float64 `json:"avg_pace_min_per_km,omitempty"`
	LongestRunKm    *float64 `json:"longest_run_km,omitempty"`

	hr       mean
	paceMin  float64
	paceDist float64
}

func (t *Totals) add(a records.Activity) {
	t.Runs++
	if a.DistanceKm != nil {
		t.DistanceKm += *a.DistanceKm
		if t.LongestRunKm == nil || *a.DistanceKm > *t.LongestRunKm {
			v := *a.DistanceKm
			t.LongestRunKm = &v
		}
	}
	if a.DurationMinutes != nil {
		t.DurationMinutes += *a.DurationMinutes
	}
	if a.PaceMinPerKm != nil && a.DurationMinutes != nil && a.DistanceKm != nil {
		t.paceMin += *a.DurationMinutes
		t.paceDist += *a.DistanceKm
	}
	t.hr.add(a.AvgHR)
}

func (t *Totals) finish() {
	t.AvgHR = t.hr.value()
	if t.paceDist > 0 {
		v := t.paceMin / t.paceDist
		t.AvgPaceMinPerKm = &v
	}
}

// RunningTotals sums the running activities of acts.
func RunningTotals(acts []records.Activity) Totals {
	var t Totals
	for _, a := range records.FilterRunning(acts) {
		t.add(a)
	}
	t.finish()
	return t
}
