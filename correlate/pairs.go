package correlate

// Daily metric names used in tables built from daily summaries, sleep and
// HRV records.
const (
	MetricRestingHR          = "resting_hr"
	MetricAvgStress          = "avg_stress"
	MetricMaxStress          = "max_stress"
	MetricTotalSteps         = "total_steps"
	MetricSleepHours         = "sleep_hours"
	MetricBodyBatteryAtWake  = "body_battery_at_wake"
	MetricBodyBatteryHighest = "body_battery_highest"
	MetricBodyBatteryLowest  = "body_battery_lowest"
	MetricActiveKilocalories = "active_kilocalories"
	MetricFloorsAscended     = "floors_ascended"
	MetricDistanceKm         = "total_distance_km"
	MetricModerateMinutes    = "intensity_minutes_moderate"
	MetricVigorousMinutes    = "intensity_minutes_vigorous"
	MetricSleepScore         = "sleep_score"
	MetricDeepSleepMinutes   = "deep_sleep_minutes"
	MetricLightSleepMinutes  = "light_sleep_minutes"
	MetricRemSleepMinutes    = "rem_sleep_minutes"
	MetricAwakeMinutes       = "awake_minutes"
	MetricHrvNightlyAvg      = "hrv_nightly_avg"
	MetricHrvWeeklyAvg       = "hrv_weekly_avg"
)

// Pair names a curated correlation.
type Pair struct {
	Title string `json:"title"`
	X     string `json:"x"`
	Y     string `json:"y"`
	Lag   int    `json:"lag"`
}

// KeyPairs returns the curated health correlations.
func KeyPairs() []Pair {
	return []Pair{
		{Title: "Average Stress vs. Resting Heart Rate (Same Day)", X: MetricAvgStress, Y: MetricRestingHR},
		{Title: "Sleep Duration vs. Next Day's Resting Heart Rate", X: MetricSleepHours, Y: MetricRestingHR, Lag: 1},
		{Title: "Sleep Duration vs. Next Day's Average Stress", X: MetricSleepHours, Y: MetricAvgStress, Lag: 1},
		{Title: "Active Calories vs. Average Stress (Same Day)", X: MetricActiveKilocalories, Y: MetricAvgStress},
		{Title: "Total Steps vs. Sleep Duration (Same Day's Night)", X: MetricTotalSteps, Y: MetricSleepHours},
		{Title: "Previous Night's Sleep vs. Morning Body Battery", X: MetricSleepHours, Y: MetricBodyBatteryAtWake},
	}
}

// NamedResult is a curated pair and its outcome.
type NamedResult struct {
	Title string `json:"title"`
	Result
}

// KeyInsights correlates every curated pair over t.
func KeyInsights(t Table) []NamedResult {
	pairs := KeyPairs()
	out := make([]NamedResult, 0, len(pairs))
	for _, p := range pairs {
		res, err := Correlate(t, p.X, p.Y, p.Lag)
		if err != nil {
			// Curated lags are always 0 or 1.
			panic(err)
		}
		out = append(out, NamedResult{Title: p.Title, Result: res})
	}
	return out
}
