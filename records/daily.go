package records

import (
	"sort"
	"time"
)

const maxStress = 100.0

// Days normalizes raw daily summaries into one record per calendar date. When
// the source repeats a date the later record wins.
func (n *Normalizer) Days(raws []RawDay) ([]DailySummary, []Warning) {
	var warnings []Warning
	byDate := make(map[time.Time]DailySummary, len(raws))

	for _, raw := range raws {
		if raw == nil {
			continue
		}
		s := n.scope("daily_summary", raw, &warnings)
		date, ok := s.date("date", "calendarDate", "date", "summaryDate")
		if !ok {
			s.warn(MissingField, "date", nil)
			continue
		}
		s.id = date.Format("2006-01-02")
		if _, dup := byDate[date]; dup {
			s.warn(DuplicateRecord, "date", s.id)
		}
		byDate[date] = n.day(s, date)
	}

	out := make([]DailySummary, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	n.log.Debug("normalized daily summaries", "in", len(raws), "out", len(out), "warnings", len(warnings))
	return out, warnings
}

func (n *Normalizer) day(s *scope, date time.Time) DailySummary {
	d := DailySummary{Date: date}

	d.RestingHR = s.nonNegative("resting_hr", "restingHeartRate")
	d.SevenDayAvgRestingHR = s.nonNegative("seven_day_avg_resting_hr", "lastSevenDaysAvgRestingHeartRate")
	d.AvgStressLevel = stressLevel(s, "avg_stress_level", "averageStressLevel")
	d.MaxStressLevel = stressLevel(s, "max_stress_level", "maxStressLevel")
	d.TotalSteps = s.nonNegative("total_steps", "totalSteps")

	d.BodyBatteryHighest = s.bounded("body_battery_highest", 0, 100, "bodyBatteryHighestValue")
	d.BodyBatteryLowest = s.bounded("body_battery_lowest", 0, 100, "bodyBatteryLowestValue")
	d.BodyBatteryAtWake = s.bounded("body_battery_at_wake", 0, 100, "bodyBatteryAtWakeTime")
	d.BodyBatteryMostRecent = s.bounded("body_battery_most_recent", 0, 100, "bodyBatteryMostRecentValue")

	sleepSeconds := s.nonNegative("sleep_minutes", "sleepingSeconds")
	d.SleepMinutes = minutesFromSeconds(sleepSeconds)
	if sleepSeconds != nil {
		d.SleepHours = floatPtr(*sleepSeconds / 3600)
	}

	d.HighlyActiveMinutes = minutesFromSeconds(s.nonNegative("highly_active_minutes", "highlyActiveSeconds"))
	d.ActiveMinutes = minutesFromSeconds(s.nonNegative("active_minutes", "activeSeconds"))
	d.SedentaryMinutes = minutesFromSeconds(s.nonNegative("sedentary_minutes", "sedentarySeconds"))

	d.StressDurationMinutes = minutesFromSeconds(s.nonNegative("stress_duration_minutes", "stressDuration"))
	d.RestStressMinutes = minutesFromSeconds(s.nonNegative("rest_stress_minutes", "restStressDuration"))
	d.ActivityStressMinutes = minutesFromSeconds(s.nonNegative("activity_stress_minutes", "activityStressDuration"))
	d.LowStressMinutes = minutesFromSeconds(s.nonNegative("low_stress_minutes", "lowStressDuration"))
	d.MediumStressMinutes = minutesFromSeconds(s.nonNegative("medium_stress_minutes", "mediumStressDuration"))
	d.HighStressMinutes = minutesFromSeconds(s.nonNegative("high_stress_minutes", "highStressDuration"))

	d.IntensityMinutesModerate = s.nonNegative("intensity_minutes_moderate", "moderateIntensityMinutes")
	d.IntensityMinutesVigorous = s.nonNegative("intensity_minutes_vigorous", "vigorousIntensityMinutes")
	d.IntensityMinutesGoal = s.nonNegative("intensity_minutes_goal", "intensityMinutesGoal")

	d.FloorsAscended = s.nonNegative("floors_ascended", "floorsAscended")
	d.TotalDistanceMeters = s.nonNegative("total_distance_meters", "totalDistanceMeters")
	if d.TotalDistanceMeters != nil {
		d.TotalDistanceKm = floatPtr(*d.TotalDistanceMeters / metersPerKm)
	}
	d.ActiveKilocalories = s.nonNegative("active_kilocalories", "activeKilocalories")
	return d
}

// stressLevel keeps StressNoData as delivered and rejects anything else
// outside 0..100.
func stressLevel(s *scope, field string, keys ...string) *StressLevel {
	p := s.number(field, keys...)
	if p == nil {
		return nil
	}
	v := StressLevel(*p)
	if v == StressNoData {
		return &v
	}
	if *p < 0 || *p > maxStress {
		s.warn(MalformedValue, field, *p)
		return nil
	}
	return &v
}
