package records

import (
	"fmt"
	"sort"
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
)

const (
	secondsPerMinute  = 60.0
	metersPerKm       = 1000.0
	maxTrainingEffect = 5.0
)

// Activities normalizes raw activity records. Records without an identifiable
// start time are skipped with a warning; every other problem only blanks the
// affected field. Output is ordered by start time, then ID.
func (n *Normalizer) Activities(raws []RawActivity) ([]Activity, []Warning) {
	var warnings []Warning
	out := make([]Activity, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))

	for i, raw := range raws {
		if raw == nil {
			continue
		}
		s := n.scope("activity", raw, &warnings)
		act, ok := n.activity(s, i)
		if !ok {
			continue
		}
		if _, dup := seen[act.ID]; dup {
			s.warn(DuplicateRecord, "id", act.ID)
			continue
		}
		seen[act.ID] = struct{}{}
		out = append(out, act)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	n.log.Debug("normalized activities", "in", len(raws), "out", len(out), "warnings", len(warnings))
	return out, warnings
}

func (n *Normalizer) activity(s *scope, index int) (Activity, bool) {
	var a Activity
	a.ID = s.text("activityId", "activityID", "id", "summaryDTO.activityId")
	if a.ID == "" {
		a.ID = fmt.Sprintf("#%d", index)
	}
	s.id = a.ID
	a.Name = s.text("activityName", "name")

	start, day, ok := n.activityStart(s)
	if !ok {
		s.warn(MissingField, "start_time", nil)
		return Activity{}, false
	}
	a.StartTime = start
	a.Date = day
	a.Type = activityType(s)

	a.DurationSeconds = s.nonNegative("duration_seconds", "duration", "summaryDTO.duration", "elapsedDuration")
	if a.DurationSeconds == nil {
		a.DurationSeconds = s.scaled("duration_seconds", 0.001, "durationInMilliseconds")
	}
	if a.DurationSeconds != nil {
		a.DurationMinutes = floatPtr(*a.DurationSeconds / secondsPerMinute)
	}
	a.DistanceMeters = s.nonNegative("distance_meters", "distance", "summaryDTO.distance")
	if a.DistanceMeters != nil {
		a.DistanceKm = floatPtr(*a.DistanceMeters / metersPerKm)
	}
	if a.DistanceKm != nil && a.DurationMinutes != nil && *a.DistanceKm > 0 && *a.DurationMinutes > 0 {
		a.PaceMinPerKm = floatPtr(*a.DurationMinutes / *a.DistanceKm)
	}

	a.AvgHR = s.nonNegative("avg_hr", "averageHR", "avgHR", "summaryDTO.averageHR")
	a.MaxHR = s.nonNegative("max_hr", "maxHR", "summaryDTO.maxHR")
	a.Calories = s.nonNegative("calories", "calories", "summaryDTO.calories")
	a.AerobicTE = s.bounded("aerobic_te", 0, maxTrainingEffect, "aerobicTrainingEffect", "summaryDTO.trainingEffect")
	a.AnaerobicTE = s.bounded("anaerobic_te", 0, maxTrainingEffect, "anaerobicTrainingEffect", "summaryDTO.anaerobicTrainingEffect")

	// Running cadence is reported per foot.
	a.CadenceAvg = s.scaled("cadence_avg", 2, "averageRunningCadenceInStepsPerMinute")
	a.CadenceMax = s.scaled("cadence_max", 2, "maxRunningCadenceInStepsPerMinute")
	a.VO2Max = s.nonNegative("vo2max", "vO2MaxValue", "vo2MaxValue")

	a.ZoneMinutes = zoneMinutes(s)
	a.FastestSplitSeconds = fastestSplits(s)

	a.ElevationGainM = s.nonNegative("elevation_gain_m", "elevationGain", "summaryDTO.elevationGain")
	a.MaxSpeedMps = s.nonNegative("max_speed_mps", "maxSpeed", "summaryDTO.maxSpeed")
	a.MaxPowerW = s.nonNegative("max_power_w", "maxPower", "summaryDTO.maxPower")
	return a, true
}

// activityStart prefers the local wall clock for the calendar date and falls
// back to absolute timestamps converted into the configured zone.
func (n *Normalizer) activityStart(s *scope) (time.Time, time.Time, bool) {
	if v, key, ok := lookup(s.raw, "startTimeLocal", "summaryDTO.startTimeLocal"); ok {
		t, state := timeAny(v, n.loc)
		if state == fieldOK {
			return t, calendar.Day(t), true
		}
		if state == fieldMalformed {
			s.warn(MalformedValue, "start_time("+key+")", v)
		}
	}
	if v, key, ok := lookup(s.raw, "startTimeGMT", "summaryDTO.startTimeGMT", "startTime", "beginTimestamp"); ok {
		t, state := timeAny(v, time.UTC)
		if state == fieldOK {
			t = t.In(n.loc)
			return t, calendar.Day(t), true
		}
		if state == fieldMalformed {
			s.warn(MalformedValue, "start_time("+key+")", v)
		}
	}
	return time.Time{}, time.Time{}, false
}

// activityType accepts {"typeKey": "..."} or a bare string, used as given.
func activityType(s *scope) TypeKey {
	v, _, ok := lookup(s.raw, "activityType", "activityTypeDTO")
	if !ok {
		return TypeUnknown
	}
	switch x := v.(type) {
	case string:
		return TypeKey(x)
	default:
		if m, ok := asMap(x); ok {
			if key, ok := m["typeKey"].(string); ok {
				return TypeKey(key)
			}
		}
	}
	s.warn(MalformedValue, "type", v)
	return TypeUnknown
}

// zoneMinutes reads hrTimeInZone_1..5 in seconds, or a timeInHrZone list of
// {zoneNumber, timeInSeconds}. Missing zones are zero.
func zoneMinutes(s *scope) [5]float64 {
	var out [5]float64
	for i := 1; i <= 5; i++ {
		key := fmt.Sprintf("hrTimeInZone_%d", i)
		if p := s.nonNegative(fmt.Sprintf("zone%d_minutes", i), key); p != nil {
			out[i-1] = *p / secondsPerMinute
		}
	}
	list, _, ok := lookup(s.raw, "timeInHrZone", "hrTimeInZones")
	if !ok {
		return out
	}
	items, ok := list.([]any)
	if !ok {
		s.warn(MalformedValue, "zone_minutes", list)
		return out
	}
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			s.warn(MalformedValue, "zone_minutes", item)
			continue
		}
		zone, zs := floatAny(m["zoneNumber"])
		secs, ss := floatAny(m["timeInSeconds"])
		if zs != fieldOK || zone < 1 || zone > 5 || zone != float64(int(zone)) {
			s.warn(MalformedValue, "zone_minutes.zoneNumber", m["zoneNumber"])
			continue
		}
		if ss == fieldMissing {
			continue
		}
		if ss != fieldOK || secs < 0 {
			s.warn(MalformedValue, fmt.Sprintf("zone%d_minutes", int(zone)), m["timeInSeconds"])
			continue
		}
		if out[int(zone)-1] == 0 {
			out[int(zone)-1] = secs / secondsPerMinute
		}
	}
	return out
}

func fastestSplits(s *scope) map[int]float64 {
	var out map[int]float64
	for _, d := range SplitDistances {
		key := fmt.Sprintf("fastestSplit_%d", d)
		p := s.nonNegative(fmt.Sprintf("fastest_split_%d", d), key)
		if p == nil {
			continue
		}
		if out == nil {
			out = make(map[int]float64, len(SplitDistances))
		}
		out[d] = *p
	}
	return out
}
