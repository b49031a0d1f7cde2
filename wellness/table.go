// Package wellness merges daily summaries, sleep and HRV into a daily metric
// table and aggregates wellness and running volume by period.
package wellness

import (
	"time"

	"github.com/lucasjlepore/fit-insights/correlate"
	"github.com/lucasjlepore/fit-insights/records"
)

// DailyTable outer-joins days, sleep and hrv on date. Absent fields leave
// their metric unset; a stress reading of StressNoData is not a value.
// Sleep hours come from the daily summary, falling back to the sleep
// session when the summary has none.
func DailyTable(days []records.DailySummary, sleep []records.SleepSession, hrv []records.HrvSample) correlate.Table {
	rows := make(map[time.Time]map[string]float64)
	row := func(d time.Time) map[string]float64 {
		r, ok := rows[d]
		if !ok {
			r = make(map[string]float64)
			rows[d] = r
		}
		return r
	}
	set := func(r map[string]float64, name string, v *float64) {
		if v != nil {
			r[name] = *v
		}
	}

	for _, d := range days {
		r := row(d.Date)
		set(r, correlate.MetricRestingHR, d.RestingHR)
		set(r, correlate.MetricAvgStress, stress(d.AvgStressLevel))
		set(r, correlate.MetricMaxStress, stress(d.MaxStressLevel))
		set(r, correlate.MetricTotalSteps, d.TotalSteps)
		set(r, correlate.MetricSleepHours, d.SleepHours)
		set(r, correlate.MetricBodyBatteryAtWake, d.BodyBatteryAtWake)
		set(r, correlate.MetricBodyBatteryHighest, d.BodyBatteryHighest)
		set(r, correlate.MetricBodyBatteryLowest, d.BodyBatteryLowest)
		set(r, correlate.MetricActiveKilocalories, d.ActiveKilocalories)
		set(r, correlate.MetricFloorsAscended, d.FloorsAscended)
		set(r, correlate.MetricDistanceKm, d.TotalDistanceKm)
		set(r, correlate.MetricModerateMinutes, d.IntensityMinutesModerate)
		set(r, correlate.MetricVigorousMinutes, d.IntensityMinutesVigorous)
	}
	for _, s := range sleep {
		r := row(s.Date)
		if _, ok := r[correlate.MetricSleepHours]; !ok {
			set(r, correlate.MetricSleepHours, s.TotalHours())
		}
		set(r, correlate.MetricSleepScore, s.SleepScore)
		set(r, correlate.MetricDeepSleepMinutes, s.DeepMinutes)
		set(r, correlate.MetricLightSleepMinutes, s.LightMinutes)
		set(r, correlate.MetricRemSleepMinutes, s.RemMinutes)
		set(r, correlate.MetricAwakeMinutes, s.AwakeMinutes)
	}
	for _, h := range hrv {
		r := row(h.Date)
		set(r, correlate.MetricHrvNightlyAvg, h.NightlyAvgMs)
		set(r, correlate.MetricHrvWeeklyAvg, h.WeeklyAvgMs)
	}

	out := make(correlate.Table, 0, len(rows))
	for d, values := range rows {
		out = append(out, correlate.Row{Date: d, Values: values})
	}
	return out.Sorted()
}

func stress(s *records.StressLevel) *float64 {
	if s == nil || !s.Reported() {
		return nil
	}
	v := float64(*s)
	return &v
}
