package fitinsights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/lucasjlepore/fit-insights/correlate"
	"github.com/lucasjlepore/fit-insights/internal/observability"
	"github.com/lucasjlepore/fit-insights/load"
	"github.com/lucasjlepore/fit-insights/prs"
	"github.com/lucasjlepore/fit-insights/records"
)

type stubSource struct {
	activities []records.RawActivity
	days       []records.RawDay
	sleep      []records.RawSleep
	hrv        []records.RawHrv
	err        error
}

func (s stubSource) FetchActivities(context.Context, string, time.Time, time.Time) ([]records.RawActivity, error) {
	return s.activities, s.err
}

func (s stubSource) FetchDailySummaries(context.Context, string, time.Time, time.Time) ([]records.RawDay, error) {
	return s.days, nil
}

func (s stubSource) FetchSleep(context.Context, string, time.Time, time.Time) ([]records.RawSleep, error) {
	return s.sleep, nil
}

func (s stubSource) FetchHrv(context.Context, string, time.Time, time.Time) ([]records.RawHrv, error) {
	return s.hrv, nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rawRun(id, day string, km, minutes, hr float64) records.RawActivity {
	return records.RawActivity{
		"activityId":     id,
		"activityName":   "Run " + id,
		"activityType":   map[string]any{"typeKey": "running"},
		"startTimeLocal": day + " 07:00:00",
		"distance":       km * 1000,
		"duration":       minutes * 60,
		"averageHR":      hr,
	}
}

func threeRuns() stubSource {
	src := stubSource{
		activities: []records.RawActivity{
			rawRun("a", "2024-03-01", 4.0, 25, 150),
			rawRun("b", "2024-03-03", 10.2, 55, 140),
			rawRun("c", "2024-03-06", 21.1, 110, 155),
			rawRun("outside", "2024-04-20", 5.0, 20, 160),
		},
	}
	for i := 0; i < 7; i++ {
		src.days = append(src.days, records.RawDay{
			"calendarDate":       fmt.Sprintf("2024-03-%02d", i+1),
			"restingHeartRate":   50 + i,
			"averageStressLevel": 20 + 5*i,
		})
	}
	return src
}

func request() Request {
	p := DefaultParams()
	p.LoadMethod = load.DurationHRBasic
	p.Correlations = []MetricPair{{X: correlate.MetricTotalSteps, Y: correlate.MetricRestingHR}}
	return Request{User: "alex", Start: date("2024-03-01"), End: date("2024-03-31"), Params: p}
}

func findRecord(entries []prs.Entry, criterion string) (prs.Entry, bool) {
	for _, e := range entries {
		if e.Criterion == criterion {
			return e, true
		}
	}
	return prs.Entry{}, false
}

func TestAnalyzeThreeRuns(t *testing.T) {
	r, err := Analyze(context.Background(), threeRuns(), request())
	require.NoError(t, err)

	require.Len(t, r.Activities, 3)
	require.Len(t, r.Days, 7)
	require.Empty(t, r.Warnings)

	fastest, ok := findRecord(r.PersonalRecords, "fastest_pace_lt5k")
	require.True(t, ok)
	require.Equal(t, "a", fastest.ActivityID)
	require.InDelta(t, 6.25, fastest.Value, 1e-9)
	_, ok = findRecord(r.PersonalRecords, "fastest_pace_hm_plus")
	require.False(t, ok)
	half, ok := findRecord(r.PersonalRecords, "fastest_pace_15k_hm")
	require.True(t, ok)
	require.Equal(t, "c", half.ActivityID)

	require.Len(t, r.DailyLoad, 3)
	require.InDelta(t, 25*150.0, r.DailyLoad[0].Load, 1e-9)
	require.Len(t, r.Load, 3)
	require.NotNil(t, r.Load[0].Acute7d)
	require.Nil(t, r.Load[0].Chronic28d)

	require.Equal(t, 3, r.RunningTotals.Runs)
	require.InDelta(t, 35.3, r.RunningTotals.DistanceKm, 1e-9)

	require.Len(t, r.Correlations, len(correlate.KeyPairs())+1)
	stress := r.Correlations[0]
	require.Equal(t, correlate.KeyPairs()[0].Title, stress.Title)
	require.NotNil(t, stress.PearsonR)
	require.InDelta(t, 1.0, *stress.PearsonR, 1e-9)
	require.Equal(t, 7, stress.SampleCount)

	custom := r.Correlations[len(r.Correlations)-1]
	require.Equal(t, "total_steps vs. resting_hr", custom.Title)
	require.Nil(t, custom.PearsonR)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a, err := Analyze(context.Background(), threeRuns(), request())
	require.NoError(t, err)
	b, err := Analyze(context.Background(), threeRuns(), request())
	require.NoError(t, err)

	require.Equal(t, a.Key, b.Key)
	require.Equal(t, a.PersonalRecords, b.PersonalRecords)
	require.Equal(t, a.Load, b.Load)
	require.Equal(t, BuildNotes(a), BuildNotes(b))
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	ctx := context.Background()

	req := request()
	req.Params.LoadMethod = "banister"
	_, err := Analyze(ctx, threeRuns(), req)
	require.ErrorIs(t, err, load.ErrUnknownMethod)

	req = request()
	req.Params.CorrelationLag = 2
	_, err = Analyze(ctx, threeRuns(), req)
	require.ErrorIs(t, err, correlate.ErrInvalidLag)

	req = request()
	req.Start, req.End = req.End, req.Start
	_, err = Analyze(ctx, threeRuns(), req)
	require.ErrorIs(t, err, ErrInvalidRange)

	req = request()
	req.Params.Timezone = "Mars/Olympus_Mons"
	_, err = Analyze(ctx, threeRuns(), req)
	require.Error(t, err)
}

func TestAnalyzePropagatesSourceErrors(t *testing.T) {
	boom := errors.New("export unavailable")
	src := threeRuns()
	src.err = boom

	_, err := Analyze(context.Background(), src, request())
	require.ErrorIs(t, err, boom)
	require.ErrorContains(t, err, "fetch activities")
}

func TestRequestKey(t *testing.T) {
	base := request()
	k1, err := base.Key()
	require.NoError(t, err)
	require.Len(t, k1, 64)

	later := base
	later.Start = base.Start.Add(9 * time.Hour)
	k2, err := later.Key()
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	other := base
	other.Params.CorrelationLag = 1
	k3, err := other.Key()
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)
}

func TestBuildNotes(t *testing.T) {
	r, err := Analyze(context.Background(), threeRuns(), request())
	require.NoError(t, err)

	notes := BuildNotes(r)
	require.Contains(t, notes, "User: alex")
	require.Contains(t, notes, "Range: 2024-03-01 to 2024-03-31")
	require.Contains(t, notes, "3 activities (3 runs)")
	require.Contains(t, notes, "Fastest Pace (<5km): 6:15 min/km on 2024-03-01 (4.00 km run)")
	require.Contains(t, notes, "Average Stress vs. Resting Heart Rate (Same Day): r=1.00 (7 points, strong)")
	require.Contains(t, notes, "total_steps vs. resting_hr: not enough data")
	require.Contains(t, notes, "Not enough history for a chronic baseline yet.")

	require.Empty(t, BuildNotes(nil))
}

func runsTotal(outcome string, n int) string {
	return fmt.Sprintf(`
# HELP fit_insights_analysis_runs_total Finished analysis runs by outcome.
# TYPE fit_insights_analysis_runs_total counter
fit_insights_analysis_runs_total{outcome=%q} %d
`, outcome, n)
}

func TestAnalyzeMetricsArePerRun(t *testing.T) {
	ctx := context.Background()
	a, err := Analyze(ctx, threeRuns(), request())
	require.NoError(t, err)
	b, err := Analyze(ctx, threeRuns(), request())
	require.NoError(t, err)
	require.NotSame(t, a.Metrics, b.Metrics)

	for _, r := range []*Report{a, b} {
		require.NoError(t, testutil.GatherAndCompare(r.Metrics.Registry(),
			strings.NewReader(runsTotal("ok", 1)), "fit_insights_analysis_runs_total"))
	}

	m := observability.NewRun()
	src := threeRuns()
	src.err = errors.New("disk gone")
	_, err = Analyze(ctx, src, request(), WithMetrics(m))
	require.Error(t, err)
	require.NoError(t, testutil.GatherAndCompare(m.Registry(),
		strings.NewReader(runsTotal("error", 1)), "fit_insights_analysis_runs_total"))
}
