package records

import "time"

// Raw records as delivered by the data source: flat or nested JSON-like maps
// with loosely typed values.
type (
	RawActivity map[string]any
	RawDay      map[string]any
	RawSleep    map[string]any
	RawHrv      map[string]any
)

// SplitDistances are the nominal split lengths, in meters, carried per activity.
var SplitDistances = []int{1000, 1609, 5000, 10000}

// Activity is one normalized workout. Optional metrics are nil when absent.
type Activity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	StartTime time.Time `json:"start_time"`
	Date      time.Time `json:"date"`
	Type      TypeKey   `json:"type"`

	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	// PaceMinPerKm is set iff distance and duration are both positive.
	PaceMinPerKm *float64 `json:"pace_min_per_km,omitempty"`

	AvgHR       *float64 `json:"avg_hr,omitempty"`
	MaxHR       *float64 `json:"max_hr,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`
	AerobicTE   *float64 `json:"aerobic_te,omitempty"`
	AnaerobicTE *float64 `json:"anaerobic_te,omitempty"`
	// Cadence is in steps per minute counting both feet.
	CadenceAvg *float64 `json:"cadence_avg,omitempty"`
	CadenceMax *float64 `json:"cadence_max,omitempty"`
	VO2Max     *float64 `json:"vo2max,omitempty"`

	// ZoneMinutes holds minutes spent in HR zones 1..5; missing zones are 0.
	ZoneMinutes [5]float64 `json:"zone_minutes"`
	// FastestSplitSeconds is keyed by nominal split distance in meters and
	// only holds splits the source reported.
	FastestSplitSeconds map[int]float64 `json:"fastest_split_seconds,omitempty"`

	ElevationGainM *float64 `json:"elevation_gain_m,omitempty"`
	MaxSpeedMps    *float64 `json:"max_speed_mps,omitempty"`
	MaxPowerW      *float64 `json:"max_power_w,omitempty"`
}

// TotalZoneMinutes sums ZoneMinutes.
func (a Activity) TotalZoneMinutes() float64 {
	var total float64
	for _, m := range a.ZoneMinutes {
		total += m
	}
	return total
}

// StressLevel is a daily stress reading on a 0..100 scale. StressNoData is the
// device marker for a day without enough data and is not a measurement.
type StressLevel float64

// StressNoData marks a day the device could not score.
const StressNoData StressLevel = -1

// Reported reports whether s is an actual measurement.
func (s StressLevel) Reported() bool { return s >= 0 }

// DailySummary is one day of wellness metrics for a user.
type DailySummary struct {
	Date time.Time `json:"date"`

	RestingHR            *float64 `json:"resting_hr,omitempty"`
	SevenDayAvgRestingHR *float64 `json:"seven_day_avg_resting_hr,omitempty"`

	// AvgStressLevel keeps StressNoData as delivered; consumers filter it.
	AvgStressLevel *StressLevel `json:"avg_stress_level,omitempty"`
	MaxStressLevel *StressLevel `json:"max_stress_level,omitempty"`

	TotalSteps *float64 `json:"total_steps,omitempty"`

	BodyBatteryHighest    *float64 `json:"body_battery_highest,omitempty"`
	BodyBatteryLowest     *float64 `json:"body_battery_lowest,omitempty"`
	BodyBatteryAtWake     *float64 `json:"body_battery_at_wake,omitempty"`
	BodyBatteryMostRecent *float64 `json:"body_battery_most_recent,omitempty"`

	SleepMinutes *float64 `json:"sleep_minutes,omitempty"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`

	HighlyActiveMinutes *float64 `json:"highly_active_minutes,omitempty"`
	ActiveMinutes       *float64 `json:"active_minutes,omitempty"`
	SedentaryMinutes    *float64 `json:"sedentary_minutes,omitempty"`

	StressDurationMinutes *float64 `json:"stress_duration_minutes,omitempty"`
	RestStressMinutes     *float64 `json:"rest_stress_minutes,omitempty"`
	ActivityStressMinutes *float64 `json:"activity_stress_minutes,omitempty"`
	LowStressMinutes      *float64 `json:"low_stress_minutes,omitempty"`
	MediumStressMinutes   *float64 `json:"medium_stress_minutes,omitempty"`
	HighStressMinutes     *float64 `json:"high_stress_minutes,omitempty"`

	IntensityMinutesModerate *float64 `json:"intensity_minutes_moderate,omitempty"`
	IntensityMinutesVigorous *float64 `json:"intensity_minutes_vigorous,omitempty"`
	IntensityMinutesGoal     *float64 `json:"intensity_minutes_goal,omitempty"`

	FloorsAscended      *float64 `json:"floors_ascended,omitempty"`
	TotalDistanceMeters *float64 `json:"total_distance_meters,omitempty"`
	TotalDistanceKm     *float64 `json:"total_distance_km,omitempty"`
	ActiveKilocalories  *float64 `json:"active_kilocalories,omitempty"`
}

// SleepSession is one night of sleep, dated by the wake day.
type SleepSession struct {
	Date  time.Time  `json:"date"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`

	TotalMinutes *float64 `json:"total_minutes,omitempty"`
	DeepMinutes  *float64 `json:"deep_minutes,omitempty"`
	LightMinutes *float64 `json:"light_minutes,omitempty"`
	RemMinutes   *float64 `json:"rem_minutes,omitempty"`
	AwakeMinutes *float64 `json:"awake_minutes,omitempty"`
	SleepScore   *float64 `json:"sleep_score,omitempty"`
}

// TotalHours converts TotalMinutes to hours.
func (s SleepSession) TotalHours() *float64 {
	if s.TotalMinutes == nil {
		return nil
	}
	return floatPtr(*s.TotalMinutes / 60)
}

// HrvSample is one night of heart-rate variability.
type HrvSample struct {
	Date         time.Time `json:"date"`
	NightlyAvgMs *float64  `json:"nightly_avg_ms,omitempty"`
	WeeklyAvgMs  *float64  `json:"weekly_avg_ms,omitempty"`
	Status       string    `json:"status,omitempty"`
	BaselineLow  *float64  `json:"baseline_low,omitempty"`
	BaselineHigh *float64  `json:"baseline_high,omitempty"`
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
