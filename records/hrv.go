package records

import (
	"sort"
	"strings"
	"time"
)

const (
	hrvNightly = "LAST_NIGHT_AVERAGE"
	hrvWeekly  = "WEEKLY_AVERAGE"
)

// Hrv normalizes raw HRV records into one sample per date. Sources deliver
// either typed rows ({type, value}), summary objects (lastNightAvg,
// weeklyAvg, baseline) or plain hrvValue rows; rows sharing a date merge.
// NightlyAvgMs stays nil when only a weekly aggregate exists.
func (n *Normalizer) Hrv(raws []RawHrv) ([]HrvSample, []Warning) {
	var warnings []Warning
	byDate := make(map[time.Time]*HrvSample, len(raws))

	for _, raw := range raws {
		if raw == nil {
			continue
		}
		body := map[string]any(raw)
		if inner, ok := asMap(raw["hrvSummary"]); ok {
			body = inner
		}
		s := n.scope("hrv", body, &warnings)
		date, ok := s.date("date", "calendarDate", "date")
		if !ok {
			s.warn(MissingField, "date", nil)
			continue
		}
		s.id = date.Format("2006-01-02")

		sample, ok := byDate[date]
		if !ok {
			sample = &HrvSample{Date: date}
			byDate[date] = sample
		}
		mergeHrv(s, sample)
	}

	out := make([]HrvSample, 0, len(byDate))
	for _, sample := range byDate {
		out = append(out, *sample)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	n.log.Debug("normalized hrv", "in", len(raws), "out", len(out), "warnings", len(warnings))
	return out, warnings
}

func mergeHrv(s *scope, sample *HrvSample) {
	switch strings.ToUpper(s.text("type")) {
	case hrvNightly:
		setIfAbsent(&sample.NightlyAvgMs, s.nonNegative("nightly_avg_ms", "value"))
	case hrvWeekly:
		setIfAbsent(&sample.WeeklyAvgMs, s.nonNegative("weekly_avg_ms", "value"))
	case "":
		setIfAbsent(&sample.NightlyAvgMs, s.nonNegative("nightly_avg_ms", "lastNightAvg", "hrvValue"))
		setIfAbsent(&sample.WeeklyAvgMs, s.nonNegative("weekly_avg_ms", "weeklyAvg"))
	default:
		// Other row types (e.g. 5-minute highs) carry no field of interest.
	}

	if status := s.text("status", "hrvStatus"); status != "" && sample.Status == "" {
		sample.Status = strings.ToUpper(status)
	}
	setIfAbsent(&sample.BaselineLow, s.nonNegative("baseline_low", "baselineLow", "baseline.balancedLow"))
	setIfAbsent(&sample.BaselineHigh, s.nonNegative("baseline_high", "baselineHigh", "baseline.balancedUpper"))
}

func setIfAbsent(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		*dst = v
	}
}
