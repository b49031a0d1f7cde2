package zones

import (
	"sort"
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/records"
)

// DefaultMinDurationMinutes is the shortest activity classified by dominant zone.
const DefaultMinDurationMinutes = 10.0

// TimeInZoneRow holds the minutes spent in each zone within one period.
// Period is the bucket label: the Monday of a week or the last day of a month.
type TimeInZoneRow struct {
	Period  time.Time      `json:"period"`
	Minutes [Count]float64 `json:"minutes"`
}

// Total sums the row's zone minutes.
func (r TimeInZoneRow) Total() float64 {
	var total float64
	for _, m := range r.Minutes {
		total += m
	}
	return total
}

// Shares returns each zone's percentage of the row total; all zero when the
// row is empty.
func (r TimeInZoneRow) Shares() [Count]float64 {
	var out [Count]float64
	total := r.Total()
	if total <= 0 {
		return out
	}
	for i, m := range r.Minutes {
		out[i] = m / total * 100
	}
	return out
}

// AggregateTimeInZone sums per-zone minutes by period, covering every period
// from the first to the last activity; periods without activity are zero.
func AggregateTimeInZone(acts []records.Activity, p calendar.Period) []TimeInZoneRow {
	if len(acts) == 0 {
		return nil
	}
	first, last := acts[0].Date, acts[0].Date
	for _, a := range acts[1:] {
		if a.Date.Before(first) {
			first = a.Date
		}
		if a.Date.After(last) {
			last = a.Date
		}
	}
	return AggregateTimeInZoneBetween(acts, p, first, last)
}

// AggregateTimeInZoneBetween is AggregateTimeInZone over an explicit window.
// Activities dated outside [start, end] are ignored.
func AggregateTimeInZoneBetween(acts []records.Activity, p calendar.Period, start, end time.Time) []TimeInZoneRow {
	start, end = calendar.Day(start), calendar.Day(end)
	labels := p.Labels(start, end)
	rows := make([]TimeInZoneRow, len(labels))
	index := make(map[time.Time]int, len(labels))
	for i, l := range labels {
		rows[i].Period = l
		index[l] = i
	}
	for _, a := range acts {
		if a.Date.Before(start) || a.Date.After(end) {
			continue
		}
		i, ok := index[p.Label(a.Date)]
		if !ok {
			continue
		}
		for z, m := range a.ZoneMinutes {
			rows[i].Minutes[z] += m
		}
	}
	return rows
}

// ZonePaceRow is the mean pace of runs whose average HR fell in Zone during
// the week starting PeriodStart.
type ZonePaceRow struct {
	PeriodStart time.Time `json:"period_start"`
	Zone        string    `json:"zone"`
	MeanPace    float64   `json:"mean_pace_min_per_km"`
	Runs        int       `json:"runs"`
}

// PaceByDominantZone classifies runs of at least minDurationMinutes by
// average HR and averages their pace per week and zone. Runs without pace,
// HR or a matching zone are skipped. Rows are ordered by week, then zone.
func PaceByDominantZone(acts []records.Activity, defs Definitions, minDurationMinutes float64) []ZonePaceRow {
	type key struct {
		week time.Time
		zone int
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[key]*acc)
	for _, a := range acts {
		if a.DurationMinutes == nil || *a.DurationMinutes < minDurationMinutes || a.PaceMinPerKm == nil {
			continue
		}
		label, ok := Classify(a, defs)
		if !ok {
			continue
		}
		k := key{week: calendar.Weekly.Label(a.Date), zone: defs.Index(label)}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		g.sum += *a.PaceMinPerKm
		g.n++
	}

	out := make([]ZonePaceRow, 0, len(groups))
	for k, g := range groups {
		out = append(out, ZonePaceRow{
			PeriodStart: k.week,
			Zone:        defs[k.zone].Label,
			MeanPace:    g.sum / float64(g.n),
			Runs:        g.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return defs.Index(out[i].Zone) < defs.Index(out[j].Zone)
	})
	return out
}
