package prs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/fit-insights/records"
)

func f(v float64) *float64 { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func run(id, date string, km, minutes float64) records.Activity {
	secs := minutes * 60
	pace := minutes / km
	return records.Activity{
		ID:              id,
		Name:            "Run " + id,
		Type:            records.TypeRunning,
		Date:            day(date),
		StartTime:       day(date).Add(7 * time.Hour),
		DistanceKm:      f(km),
		DistanceMeters:  f(km * 1000),
		DurationSeconds: f(secs),
		DurationMinutes: f(minutes),
		PaceMinPerKm:    f(pace),
	}
}

func find(entries []Entry, criterion string) (Entry, bool) {
	for _, e := range entries {
		if e.Criterion == criterion {
			return e, true
		}
	}
	return Entry{}, false
}

func TestExtractShortRunLandsInFirstBand(t *testing.T) {
	got := Extract([]records.Activity{run("1", "2024-03-01", 4.0, 25)})

	e, ok := find(got, "fastest_pace_lt5k")
	require.True(t, ok)
	require.InDelta(t, 6.25, e.Value, 1e-9)
	require.Equal(t, "Fastest Pace (<5km)", e.Label)
	require.Equal(t, "(4.00 km run)", e.Annotation)
	require.Equal(t, "1", e.ActivityID)
	require.Equal(t, day("2024-03-01"), e.AchievedDate)

	longest, ok := find(got, "longest_run")
	require.True(t, ok)
	require.InDelta(t, 4.0, longest.Value, 1e-9)
}

func TestExtractHalfMarathonDistanceBands(t *testing.T) {
	got := Extract([]records.Activity{run("1", "2024-03-01", 21.1, 120)})

	_, ok := find(got, "fastest_pace_15k_hm")
	require.True(t, ok)
	_, ok = find(got, "fastest_pace_hm_plus")
	require.False(t, ok)

	hm, ok := find(got, "full_event_half_marathon")
	require.True(t, ok)
	require.InDelta(t, 7200.0, hm.Value, 1e-9)
	require.Equal(t, FamilyEvent, hm.Family)
}

func TestExtractTieGoesToEarliest(t *testing.T) {
	later := run("a", "2024-04-10", 8, 40)
	earlier := run("z", "2024-04-02", 8, 40)

	got := Extract([]records.Activity{later, earlier})
	e, ok := find(got, "fastest_pace_5_10k")
	require.True(t, ok)
	require.InDelta(t, 5.0, e.Value, 1e-9)
	require.Equal(t, "z", e.ActivityID)
	require.Equal(t, day("2024-04-02"), e.AchievedDate)
}

func TestExtractFullEventTolerance(t *testing.T) {
	fast := run("fast", "2024-05-01", 10.3, 45)
	slow := run("slow", "2024-05-08", 10.0, 50)

	got := Extract([]records.Activity{fast, slow})
	e, ok := find(got, "full_event_10k")
	require.True(t, ok)
	require.Equal(t, "slow", e.ActivityID)
	require.InDelta(t, 3000.0, e.Value, 1e-9)
	require.Equal(t, "(10.00 km run)", e.Annotation)
}

func TestExtractSegmentBests(t *testing.T) {
	a := run("1", "2024-05-01", 5, 25)
	a.FastestSplitSeconds = map[int]float64{1000: 290, 5000: 1500}
	b := run("2", "2024-05-03", 6, 30)
	b.FastestSplitSeconds = map[int]float64{1000: 280, 1609: 0}

	got := Extract([]records.Activity{a, b})
	k1, ok := find(got, "fastest_split_1000")
	require.True(t, ok)
	require.Equal(t, "2", k1.ActivityID)
	require.InDelta(t, 280.0, k1.Value, 1e-9)

	_, ok = find(got, "fastest_split_1609")
	require.False(t, ok)

	k5, ok := find(got, "fastest_split_5000")
	require.True(t, ok)
	require.Equal(t, "Fastest 5 km", k5.Label)
	require.Equal(t, FamilySegment, k5.Family)
}

func TestExtractLowestHRIsAnnotatedWithPace(t *testing.T) {
	a := run("1", "2024-06-01", 10, 52.5)
	a.AvgHR = f(148)
	b := run("2", "2024-06-05", 10, 52.5)
	b.AvgHR = f(152)

	got := Extract([]records.Activity{a, b})
	e, ok := find(got, "lowest_avg_hr_10_15k")
	require.True(t, ok)
	require.Equal(t, "1", e.ActivityID)
	require.Equal(t, "(10.00 km run, 5:15 min/km)", e.Annotation)

	eff, ok := find(got, "efficient_hr_target_pace")
	require.True(t, ok)
	require.InDelta(t, 148.0, eff.Value, 1e-9)
	require.Equal(t, FamilyEfficiency, eff.Family)
}

func TestExtractMilestones(t *testing.T) {
	a := run("1", "2024-06-01", 12, 60)
	a.MaxSpeedMps = f(5)
	a.MaxPowerW = f(410)
	a.ElevationGainM = f(0)
	a.CadenceAvg = f(172)
	b := run("2", "2024-06-02", 8, 40)
	b.ElevationGainM = f(95)
	b.VO2Max = f(54)

	got := Extract([]records.Activity{a, b})

	speed, ok := find(got, "fastest_speed")
	require.True(t, ok)
	require.InDelta(t, 18.0, speed.Value, 1e-9)
	require.Equal(t, "km/h", speed.Unit)

	elev, ok := find(got, "max_elevation_gain")
	require.True(t, ok)
	require.Equal(t, "2", elev.ActivityID)

	vo2, ok := find(got, "highest_vo2max")
	require.True(t, ok)
	require.InDelta(t, 54.0, vo2.Value, 1e-9)

	cad, ok := find(got, "highest_avg_cadence_10_15k")
	require.True(t, ok)
	require.InDelta(t, 172.0, cad.Value, 1e-9)
}

func TestExtractEmpty(t *testing.T) {
	require.Empty(t, Extract(nil))
}

func TestNewExtractorRejectsBadTables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands[0].MinKm = -1
	_, err := NewExtractor(cfg)
	require.True(t, errors.Is(err, ErrInvalidBands))

	cfg = DefaultConfig()
	cfg.Bands[1].MinKm = 4
	_, err = NewExtractor(cfg)
	require.True(t, errors.Is(err, ErrInvalidBands))

	cfg = DefaultConfig()
	cfg.Events[0].MaxKm = 4
	_, err = NewExtractor(cfg)
	require.True(t, errors.Is(err, ErrInvalidEvents))

	_, err = NewExtractor(DefaultConfig())
	require.NoError(t, err)
}

func TestMinSecRoundsToWholeSeconds(t *testing.T) {
	require.Equal(t, "5:15", minSec(5.25))
	require.Equal(t, "6:00", minSec(5.999))
	require.Equal(t, "4:46", minSec(4.7667))
}
