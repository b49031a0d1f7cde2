package zones

import (
	"sort"
	"time"

	"github.com/lucasjlepore/fit-insights/records"
)

// Zone2Criteria selects easy aerobic runs. With MaxHR set, a run qualifies
// when its average HR lies within 60 to 70% of MaxHR; otherwise when more than
// half of its duration was spent in zone 2.
type Zone2Criteria struct {
	MaxHR float64
}

const (
	zone2LowerFraction = 0.60
	zone2UpperFraction = 0.70
	zone2TimeShare     = 0.50
)

// Zone2Runs returns the running-family activities that meet c, order kept.
func Zone2Runs(acts []records.Activity, c Zone2Criteria) []records.Activity {
	out := make([]records.Activity, 0)
	for _, a := range acts {
		if !a.Type.IsRunning() {
			continue
		}
		if c.MaxHR > 0 {
			if a.AvgHR == nil {
				continue
			}
			lo, hi := c.MaxHR*zone2LowerFraction, c.MaxHR*zone2UpperFraction
			if *a.AvgHR >= lo && *a.AvgHR <= hi {
				out = append(out, a)
			}
			continue
		}
		if a.DurationMinutes == nil || *a.DurationMinutes <= 0 {
			continue
		}
		z2 := a.ZoneMinutes[1]
		if z2 > 0 && z2/(*a.DurationMinutes) > zone2TimeShare {
			out = append(out, a)
		}
	}
	return out
}

// EfficiencyPoint pairs pace and heart rate for one easy run.
type EfficiencyPoint struct {
	Date         time.Time `json:"date"`
	ActivityID   string    `json:"activity_id"`
	PaceMinPerKm float64   `json:"pace_min_per_km"`
	AvgHR        float64   `json:"avg_hr"`
	DistanceKm   float64   `json:"distance_km"`
}

// AerobicEfficiency returns pace/HR points for runs reporting both, ordered
// by date then activity ID.
func AerobicEfficiency(runs []records.Activity) []EfficiencyPoint {
	out := make([]EfficiencyPoint, 0, len(runs))
	for _, a := range runs {
		if a.PaceMinPerKm == nil || a.AvgHR == nil {
			continue
		}
		p := EfficiencyPoint{
			Date:         a.Date,
			ActivityID:   a.ID,
			PaceMinPerKm: *a.PaceMinPerKm,
			AvgHR:        *a.AvgHR,
		}
		if a.DistanceKm != nil {
			p.DistanceKm = *a.DistanceKm
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ActivityID < out[j].ActivityID
	})
	return out
}
