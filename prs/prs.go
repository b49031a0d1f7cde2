// Package prs extracts personal records from running activities.
//
// Records come in five families: best split segments, full race-distance
// efforts, per-distance-band bests, whole-history milestones and a
// target-pace heart-rate efficiency record. Ties go to the earliest
// activity, then the smallest activity ID.
package prs

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasjlepore/fit-insights/records"
)

// Family groups related criteria.
type Family string

const (
	FamilySegment    Family = "segment_best"
	FamilyEvent      Family = "full_event"
	FamilyBand       Family = "distance_band"
	FamilyMilestone  Family = "milestone"
	FamilyEfficiency Family = "efficiency"
)

// Entry is the winning activity for one criterion.
type Entry struct {
	Family       Family    `json:"family"`
	Criterion    string    `json:"criterion"`
	Label        string    `json:"label"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit"`
	AchievedDate time.Time `json:"achieved_date"`
	ActivityID   string    `json:"activity_id"`
	ActivityName string    `json:"activity_name,omitempty"`
	Annotation   string    `json:"annotation,omitempty"`
}

const msToKmh = 3.6

var splitLabels = map[int]string{
	1000:  "Fastest 1 km",
	1609:  "Fastest 1 mile",
	5000:  "Fastest 5 km",
	10000: "Fastest 10 km",
}

// Extractor ranks activities against a validated Config.
type Extractor struct {
	cfg Config
}

// NewExtractor validates cfg.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

var defaultExtractor = mustExtractor(DefaultConfig())

func mustExtractor(cfg Config) *Extractor {
	e, err := NewExtractor(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract ranks acts against the default tables.
func Extract(acts []records.Activity) []Entry {
	return defaultExtractor.Extract(acts)
}

// Extract returns one entry per criterion with at least one candidate,
// ordered by family and then table order. acts are expected to be the
// running-family subset.
func (x *Extractor) Extract(acts []records.Activity) []Entry {
	var out []Entry
	add := func(e *Entry) {
		if e != nil {
			out = append(out, *e)
		}
	}

	for _, d := range records.SplitDistances {
		add(best(acts, lowest, func(a records.Activity) (float64, bool) {
			v, ok := a.FastestSplitSeconds[d]
			return v, ok && v > 0
		}, func(a records.Activity, v float64) Entry {
			return Entry{
				Family:    FamilySegment,
				Criterion: fmt.Sprintf("fastest_split_%d", d),
				Label:     splitLabels[d],
				Value:     v,
				Unit:      "s",
			}
		}))
	}

	for _, ev := range x.cfg.Events {
		add(best(acts, lowest, func(a records.Activity) (float64, bool) {
			if a.DistanceKm == nil || a.DurationSeconds == nil || *a.DurationSeconds <= 0 {
				return 0, false
			}
			return *a.DurationSeconds, ev.Contains(*a.DistanceKm)
		}, func(a records.Activity, v float64) Entry {
			return Entry{
				Family:     FamilyEvent,
				Criterion:  "full_event_" + ev.Key,
				Label:      ev.Label,
				Value:      v,
				Unit:       "s",
				Annotation: distanceNote(a),
			}
		}))
	}

	for _, band := range x.cfg.Bands {
		add(x.bandBest(acts, band, "fastest_pace", "Fastest Pace", "min/km", lowest, func(a records.Activity) *float64 { return a.PaceMinPerKm }))
		add(x.bandBest(acts, band, "highest_avg_cadence", "Highest Avg Cadence", "spm", highest, func(a records.Activity) *float64 { return a.CadenceAvg }))
		add(x.bandBest(acts, band, "lowest_avg_hr", "Lowest Avg HR", "bpm", lowest, func(a records.Activity) *float64 { return a.AvgHR }))
	}

	add(milestone(acts, "fastest_speed", "Fastest Speed", "km/h", func(a records.Activity) (float64, bool) {
		if a.MaxSpeedMps == nil || *a.MaxSpeedMps <= 0 {
			return 0, false
		}
		return *a.MaxSpeedMps * msToKmh, true
	}))
	add(milestone(acts, "peak_power", "Peak Power", "W", positive(func(a records.Activity) *float64 { return a.MaxPowerW })))
	add(milestone(acts, "longest_run", "Longest Run", "km", func(a records.Activity) (float64, bool) {
		if a.DistanceKm == nil || *a.DistanceKm < 0 {
			return 0, false
		}
		return *a.DistanceKm, true
	}))
	add(milestone(acts, "max_elevation_gain", "Max Elevation Gain (Run)", "m", positive(func(a records.Activity) *float64 { return a.ElevationGainM })))
	add(milestone(acts, "highest_vo2max", "Highest VO2 Max (Activity)", "ml/kg/min", positive(func(a records.Activity) *float64 { return a.VO2Max })))

	add(x.efficiency(acts))
	return out
}

func (x *Extractor) bandBest(acts []records.Activity, band DistanceBand, prefix, title, unit string, dir direction, metric func(records.Activity) *float64) *Entry {
	return best(acts, dir, func(a records.Activity) (float64, bool) {
		if a.DistanceKm == nil || !band.Contains(*a.DistanceKm) {
			return 0, false
		}
		v := metric(a)
		if v == nil || *v <= 0 {
			return 0, false
		}
		return *v, true
	}, func(a records.Activity, v float64) Entry {
		note := distanceNote(a)
		if prefix == "lowest_avg_hr" {
			note = paceNote(a)
		}
		return Entry{
			Family:     FamilyBand,
			Criterion:  prefix + "_" + band.Key,
			Label:      fmt.Sprintf("%s (%s)", title, band.Label),
			Value:      v,
			Unit:       unit,
			Annotation: note,
		}
	})
}

func (x *Extractor) efficiency(acts []records.Activity) *Entry {
	br := x.cfg.Efficiency
	if br.MaxKm <= 0 {
		return nil
	}
	return best(acts, lowest, func(a records.Activity) (float64, bool) {
		if a.DistanceKm == nil || a.PaceMinPerKm == nil || a.AvgHR == nil || *a.AvgHR <= 0 {
			return 0, false
		}
		km, pace := *a.DistanceKm, *a.PaceMinPerKm
		if km < br.MinKm || km > br.MaxKm || pace < br.MinPaceMin || pace > br.MaxPaceMin {
			return 0, false
		}
		return *a.AvgHR, true
	}, func(a records.Activity, v float64) Entry {
		return Entry{
			Family:     FamilyEfficiency,
			Criterion:  "efficient_hr_target_pace",
			Label:      br.Label,
			Value:      v,
			Unit:       "bpm",
			Annotation: paceNote(a),
		}
	})
}

func milestone(acts []records.Activity, key, label, unit string, metric func(records.Activity) (float64, bool)) *Entry {
	return best(acts, highest, metric, func(a records.Activity, v float64) Entry {
		return Entry{
			Family:     FamilyMilestone,
			Criterion:  key,
			Label:      label,
			Value:      v,
			Unit:       unit,
			Annotation: distanceNote(a),
		}
	})
}

func positive(field func(records.Activity) *float64) func(records.Activity) (float64, bool) {
	return func(a records.Activity) (float64, bool) {
		v := field(a)
		if v == nil || *v <= 0 {
			return 0, false
		}
		return *v, true
	}
}

type direction int

const (
	lowest direction = iota
	highest
)

// best picks the winning activity under dir. Equal values resolve to the
// earlier date, then start time, then smaller ID.
func best(acts []records.Activity, dir direction, metric func(records.Activity) (float64, bool), build func(records.Activity, float64) Entry) *Entry {
	var (
		winner records.Activity
		value  float64
		found  bool
	)
	for _, a := range acts {
		v, ok := metric(a)
		if !ok {
			continue
		}
		if !found || better(dir, v, value) || (v == value && earlier(a, winner)) {
			winner, value, found = a, v, true
		}
	}
	if !found {
		return nil
	}
	e := build(winner, value)
	e.AchievedDate = winner.Date
	e.ActivityID = winner.ID
	e.ActivityName = winner.Name
	return &e
}

func better(dir direction, v, current float64) bool {
	if dir == highest {
		return v > current
	}
	return v < current
}

func earlier(a, b records.Activity) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.Before(b.StartTime)
	}
	return a.ID < b.ID
}

func distanceNote(a records.Activity) string {
	if a.DistanceKm == nil {
		return ""
	}
	return fmt.Sprintf("(%.2f km run)", *a.DistanceKm)
}

func paceNote(a records.Activity) string {
	if a.DistanceKm == nil {
		return ""
	}
	if a.PaceMinPerKm == nil {
		return distanceNote(a)
	}
	return fmt.Sprintf("(%.2f km run, %s min/km)", *a.DistanceKm, minSec(*a.PaceMinPerKm))
}

// minSec renders decimal minutes as m:ss.
func minSec(minutes float64) string {
	total := int(math.Round(minutes * 60))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
