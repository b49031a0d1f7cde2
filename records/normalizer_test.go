package records

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quietNormalizer(opts ...Option) *Normalizer {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewNormalizer(append([]Option{WithLogger(logger)}, opts...)...)
}

func TestActivitiesPaceDefinedIffDistanceAndDurationPositive(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{
		{"activityId": 1.0, "startTimeLocal": "2024-05-01 07:00:00", "duration": 1500.0, "distance": 4000.0},
		{"activityId": 2.0, "startTimeLocal": "2024-05-02 07:00:00", "duration": 1500.0, "distance": 0.0},
		{"activityId": 3.0, "startTimeLocal": "2024-05-03 07:00:00", "distance": 4000.0},
		{"activityId": 4.0, "startTimeLocal": "2024-05-04 07:00:00", "duration": 0.0, "distance": 4000.0},
	})
	require.Empty(t, warnings)
	require.Len(t, acts, 4)

	require.NotNil(t, acts[0].PaceMinPerKm)
	require.InDelta(t, 6.25, *acts[0].PaceMinPerKm, 1e-9)
	require.InDelta(t, 25.0, *acts[0].DurationMinutes, 1e-9)
	require.InDelta(t, 4.0, *acts[0].DistanceKm, 1e-9)

	for _, a := range acts[1:] {
		require.Nil(t, a.PaceMinPerKm, "activity %s", a.ID)
	}
	require.Nil(t, acts[2].DurationSeconds)
}

func TestActivitiesCoercionAndUnits(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{{
		"activityId":                            "abc",
		"activityName":                          "Morning Run",
		"startTimeLocal":                        "2024-05-01 07:00:00",
		"activityType":                          map[string]any{"typeKey": "trail_running"},
		"duration":                              "3600",
		"distance":                              10000,
		"averageHR":                             151.0,
		"averageRunningCadenceInStepsPerMinute": 85.0,
		"maxRunningCadenceInStepsPerMinute":     95.5,
		"hrTimeInZone_2":                        600.0,
		"hrTimeInZone_3":                        1800.0,
		"fastestSplit_1000":                     290.0,
		"fastestSplit_5000":                     1500.0,
		"aerobicTrainingEffect":                 3.4,
	}})
	require.Empty(t, warnings)
	require.Len(t, acts, 1)
	a := acts[0]

	require.Equal(t, "abc", a.ID)
	require.Equal(t, TypeTrailRunning, a.Type)
	require.True(t, a.Type.IsRunning())
	require.InDelta(t, 170.0, *a.CadenceAvg, 1e-9)
	require.InDelta(t, 191.0, *a.CadenceMax, 1e-9)
	require.Equal(t, [5]float64{0, 10, 30, 0, 0}, a.ZoneMinutes)
	require.Equal(t, map[int]float64{1000: 290, 5000: 1500}, a.FastestSplitSeconds)
	require.InDelta(t, 6.0, *a.PaceMinPerKm, 1e-9)
	require.Equal(t, day("2024-05-01"), a.Date)
}

func TestActivitiesZoneList(t *testing.T) {
	n := quietNormalizer()
	acts, _ := n.Activities([]RawActivity{{
		"activityId":     1.0,
		"startTimeLocal": "2024-05-01 07:00:00",
		"timeInHrZone": []any{
			map[string]any{"zoneNumber": 1.0, "timeInSeconds": 120.0},
			map[string]any{"zoneNumber": 4.0, "timeInSeconds": 300.0},
		},
	}})
	require.Len(t, acts, 1)
	require.Equal(t, [5]float64{2, 0, 0, 5, 0}, acts[0].ZoneMinutes)
}

func TestActivityTypeVariants(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{
		{"activityId": 1.0, "startTimeLocal": "2024-05-01 07:00:00", "activityType": "cycling"},
		{"activityId": 2.0, "startTimeLocal": "2024-05-02 07:00:00", "activityType": map[string]any{"typeKey": "paddleboarding"}},
		{"activityId": 3.0, "startTimeLocal": "2024-05-03 07:00:00"},
		{"activityId": 4.0, "startTimeLocal": "2024-05-04 07:00:00", "activityType": 7.0},
	})
	require.Len(t, acts, 4)
	require.Equal(t, TypeCycling, acts[0].Type)
	require.True(t, acts[0].Type.Known())

	require.Equal(t, TypeKey("paddleboarding"), acts[1].Type)
	require.False(t, acts[1].Type.Known())

	require.Equal(t, TypeUnknown, acts[2].Type)
	require.Equal(t, TypeUnknown, acts[3].Type)
	require.Len(t, warnings, 1)
	require.Equal(t, MalformedValue, warnings[0].Kind)
	require.Equal(t, "type", warnings[0].Field)
}

func TestActivitiesMalformedFieldIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	n := NewNormalizer(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	acts, warnings := n.Activities([]RawActivity{
		{"activityId": 1.0, "startTimeLocal": "2024-05-01 07:00:00", "averageHR": "n/a", "duration": 1800.0},
		{"activityId": 2.0, "startTimeLocal": "2024-05-02 07:00:00", "averageHR": 140.0},
		{"activityId": 3.0, "startTimeLocal": "2024-05-03 07:00:00", "aerobicTrainingEffect": 7.5},
	})
	require.Len(t, acts, 3)
	require.Nil(t, acts[0].AvgHR)
	require.NotNil(t, acts[0].DurationSeconds)
	require.InDelta(t, 140.0, *acts[1].AvgHR, 1e-9)
	require.Nil(t, acts[2].AerobicTE)

	require.Len(t, warnings, 2)
	require.Equal(t, Warning{Kind: MalformedValue, Record: "activity", RecordID: "1", Field: "avg_hr", Value: "n/a"}, warnings[0])
	require.Equal(t, "aerobic_te", warnings[1].Field)

	out := buf.String()
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "field=avg_hr")
}

func TestActivitiesWithoutStartAreSkipped(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{
		{"activityId": 1.0, "duration": 60.0},
		{"activityId": 2.0, "startTimeLocal": "not a time"},
		{"activityId": 3.0, "startTimeLocal": "2024-05-01 07:00:00"},
	})
	require.Len(t, acts, 1)
	require.Equal(t, "3", acts[0].ID)

	var kinds []WarningKind
	for _, w := range warnings {
		kinds = append(kinds, w.Kind)
	}
	require.Equal(t, []WarningKind{MissingField, MalformedValue, MissingField}, kinds)
}

func TestActivitiesOrderingAndDuplicates(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{
		{"activityId": "b", "startTimeLocal": "2024-05-02 07:00:00"},
		{"activityId": "c", "startTimeLocal": "2024-05-01 07:00:00"},
		{"activityId": "a", "startTimeLocal": "2024-05-02 07:00:00"},
		{"activityId": "c", "startTimeLocal": "2024-05-09 07:00:00"},
	})
	var ids []string
	for _, a := range acts {
		ids = append(ids, a.ID)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, warnings, 1)
	require.Equal(t, DuplicateRecord, warnings[0].Kind)
}

func TestActivitiesDateUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	n := quietNormalizer(WithLocation(loc))
	ms := float64(time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC).UnixMilli())

	acts, _ := n.Activities([]RawActivity{
		{"activityId": 1.0, "startTimeGMT": ms},
		{"activityId": 2.0, "startTimeLocal": "2024-05-02 23:30:00"},
	})
	require.Len(t, acts, 2)
	require.Equal(t, day("2024-05-01"), acts[0].Date)
	require.Equal(t, day("2024-05-02"), acts[1].Date)
	require.Equal(t, loc, acts[1].StartTime.Location())
}

func TestActivitiesNestedSummary(t *testing.T) {
	n := quietNormalizer()
	acts, _ := n.Activities([]RawActivity{{
		"activityId": 9.0,
		"summaryDTO": map[string]any{
			"startTimeLocal": "2024-05-01T06:00:00",
			"duration":       3000.0,
			"distance":       10000.0,
			"averageHR":      150.0,
		},
	}})
	require.Len(t, acts, 1)
	require.InDelta(t, 5.0, *acts[0].PaceMinPerKm, 1e-9)
	require.InDelta(t, 150.0, *acts[0].AvgHR, 1e-9)
}

func TestDaysStressSentinelAndUnits(t *testing.T) {
	n := quietNormalizer()
	days, warnings := n.Days([]RawDay{
		{"calendarDate": "2024-05-02", "averageStressLevel": 40.0, "sleepingSeconds": 27000.0, "totalDistanceMeters": 8500.0},
		{"calendarDate": "2024-05-01", "averageStressLevel": -1.0, "restingHeartRate": 52.0},
		{"calendarDate": "2024-05-03", "averageStressLevel": 150.0, "bodyBatteryAtWakeTime": "N/A"},
	})
	require.Len(t, days, 3)
	require.Equal(t, day("2024-05-01"), days[0].Date)

	require.NotNil(t, days[0].AvgStressLevel)
	require.Equal(t, StressNoData, *days[0].AvgStressLevel)
	require.False(t, days[0].AvgStressLevel.Reported())

	require.InDelta(t, 450.0, *days[1].SleepMinutes, 1e-9)
	require.InDelta(t, 7.5, *days[1].SleepHours, 1e-9)
	require.InDelta(t, 8.5, *days[1].TotalDistanceKm, 1e-9)
	require.True(t, days[1].AvgStressLevel.Reported())

	require.Nil(t, days[2].AvgStressLevel)
	require.Nil(t, days[2].BodyBatteryAtWake)
	require.Len(t, warnings, 2)
}

func TestDaysDuplicateDateLastWins(t *testing.T) {
	n := quietNormalizer()
	days, warnings := n.Days([]RawDay{
		{"calendarDate": "2024-05-01", "totalSteps": 1000.0},
		{"calendarDate": "2024-05-01", "totalSteps": 9000.0},
		{"totalSteps": 5.0},
	})
	require.Len(t, days, 1)
	require.InDelta(t, 9000.0, *days[0].TotalSteps, 1e-9)
	require.Len(t, warnings, 2)
	require.Equal(t, DuplicateRecord, warnings[0].Kind)
	require.Equal(t, MissingField, warnings[1].Kind)
}

func TestSleepVariants(t *testing.T) {
	n := quietNormalizer()
	end := float64(time.Date(2024, 5, 3, 6, 30, 0, 0, time.UTC).UnixMilli())
	sessions, warnings := n.Sleep([]RawSleep{
		{"dailySleepDTO": map[string]any{
			"calendarDate":      "2024-05-02",
			"sleepTimeSeconds":  25200.0,
			"deepSleepSeconds":  5400.0,
			"remSleepSeconds":   6000.0,
			"awakeSleepSeconds": 600.0,
			"sleepScores":       map[string]any{"overall": map[string]any{"value": 81.0}},
		}},
		{"sleepEndTimestampLocal": end, "durationInSeconds": 28800.0, "overallSleepScore": map[string]any{"value": 77.0}},
		{"calendarDate": "2024-05-04", "overallSleepScore": 140.0},
	})
	require.Len(t, sessions, 3)

	require.Equal(t, day("2024-05-02"), sessions[0].Date)
	require.InDelta(t, 420.0, *sessions[0].TotalMinutes, 1e-9)
	require.InDelta(t, 7.0, *sessions[0].TotalHours(), 1e-9)
	require.InDelta(t, 81.0, *sessions[0].SleepScore, 1e-9)

	require.Equal(t, day("2024-05-03"), sessions[1].Date)
	require.InDelta(t, 77.0, *sessions[1].SleepScore, 1e-9)

	require.Nil(t, sessions[2].SleepScore)
	require.Len(t, warnings, 1)
	require.Equal(t, "sleep_score", warnings[0].Field)
}

func TestHrvMergesRowsPerDate(t *testing.T) {
	n := quietNormalizer()
	samples, warnings := n.Hrv([]RawHrv{
		{"calendarDate": "2024-05-01", "type": "LAST_NIGHT_AVERAGE", "value": 48.0, "status": "balanced", "baselineLow": 40.0, "baselineHigh": 55.0},
		{"calendarDate": "2024-05-01", "type": "WEEKLY_AVERAGE", "value": 50.0},
		{"calendarDate": "2024-05-02", "type": "WEEKLY_AVERAGE", "value": 51.0},
		{"hrvSummary": map[string]any{
			"calendarDate": "2024-05-03",
			"lastNightAvg": 44.0,
			"weeklyAvg":    49.0,
			"status":       "UNBALANCED",
			"baseline":     map[string]any{"balancedLow": 41.0, "balancedUpper": 56.0},
		}},
	})
	require.Empty(t, warnings)
	require.Len(t, samples, 3)

	require.InDelta(t, 48.0, *samples[0].NightlyAvgMs, 1e-9)
	require.InDelta(t, 50.0, *samples[0].WeeklyAvgMs, 1e-9)
	require.Equal(t, "BALANCED", samples[0].Status)

	require.Nil(t, samples[1].NightlyAvgMs)
	require.InDelta(t, 51.0, *samples[1].WeeklyAvgMs, 1e-9)

	require.InDelta(t, 44.0, *samples[2].NightlyAvgMs, 1e-9)
	require.InDelta(t, 41.0, *samples[2].BaselineLow, 1e-9)
	require.InDelta(t, 56.0, *samples[2].BaselineHigh, 1e-9)
}

func TestFilterRunning(t *testing.T) {
	acts := []Activity{{ID: "1", Type: TypeRunning}, {ID: "2", Type: TypeCycling}, {ID: "3", Type: TypeTreadmillRunning}, {ID: "4"}}
	got := FilterRunning(acts)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)
	require.True(t, strings.Contains(TypeUnknown.String(), "unknown"))
}

func TestActivityTypeKeptAsGiven(t *testing.T) {
	n := quietNormalizer()
	acts, warnings := n.Activities([]RawActivity{
		{"activityId": "a", "startTimeLocal": "2024-05-01 07:00:00", "activityType": "Trail_Running"},
		{"activityId": "b", "startTimeLocal": "2024-05-02 07:00:00", "activityType": map[string]any{"typeKey": "running"}},
	})
	require.Empty(t, warnings)
	require.Len(t, acts, 2)
	require.Equal(t, TypeKey("Trail_Running"), acts[0].Type)
	require.False(t, acts[0].Type.IsRunning())
	require.Equal(t, TypeRunning, acts[1].Type)
}
