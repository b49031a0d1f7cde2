// Package fitinsights turns raw activity and wellness exports into training
// load, zone, personal record and correlation tables.
//
// Analyze fetches raw records from a DataSource, normalizes them once and
// runs every analytic over the same immutable typed tables. The result is a
// Report; identical requests over identical source data produce identical
// reports.
package fitinsights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/correlate"
	"github.com/lucasjlepore/fit-insights/internal/observability"
	"github.com/lucasjlepore/fit-insights/load"
	"github.com/lucasjlepore/fit-insights/prs"
	"github.com/lucasjlepore/fit-insights/records"
	"github.com/lucasjlepore/fit-insights/wellness"
	"github.com/lucasjlepore/fit-insights/zones"
)

// ErrInvalidRange is returned when End precedes Start.
var ErrInvalidRange = errors.New("end date precedes start date")

// DataSource supplies raw records for a user and inclusive date range.
type DataSource interface {
	FetchActivities(ctx context.Context, user string, start, end time.Time) ([]records.RawActivity, error)
	FetchDailySummaries(ctx context.Context, user string, start, end time.Time) ([]records.RawDay, error)
	FetchSleep(ctx context.Context, user string, start, end time.Time) ([]records.RawSleep, error)
	FetchHrv(ctx context.Context, user string, start, end time.Time) ([]records.RawHrv, error)
}

// Report holds every table one analysis produces.
type Report struct {
	Key         string    `json:"key"`
	User        string    `json:"user"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Params      Params    `json:"params"`
	GeneratedBy string    `json:"generated_by"`

	Activities []records.Activity     `json:"activities"`
	Days       []records.DailySummary `json:"days"`
	Sleep      []records.SleepSession `json:"sleep"`
	Hrv        []records.HrvSample    `json:"hrv"`
	Warnings   []records.Warning      `json:"warnings,omitempty"`

	TimeInZone        []zones.TimeInZoneRow   `json:"time_in_zone"`
	PaceByZone        []zones.ZonePaceRow     `json:"pace_by_zone"`
	AerobicEfficiency []zones.EfficiencyPoint `json:"aerobic_efficiency"`

	DailyLoad []load.DailyLoad `json:"daily_load"`
	Load      []load.Entry     `json:"training_load"`

	PersonalRecords []prs.Entry `json:"personal_records"`

	DailyTable   correlate.Table         `json:"daily_table"`
	Correlations []correlate.NamedResult `json:"correlations"`

	Wellness      []wellness.PeriodRow  `json:"wellness"`
	Running       []wellness.RunningRow `json:"running"`
	RunningTotals wellness.Totals       `json:"running_totals"`

	// Metrics holds this run's counters; output writers add to it.
	Metrics *observability.Run `json:"-"`
}

// Runs returns the running-family activities of the report.
func (r *Report) Runs() []records.Activity {
	return records.FilterRunning(r.Activities)
}

type options struct {
	log     *slog.Logger
	metrics *observability.Run
}

// Option configures Analyze.
type Option func(*options)

// WithLogger sets the logger handed to the normalizer and used for run
// diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records the run on m instead of a fresh observability.Run, so
// callers can export metrics of failed runs too.
func WithMetrics(m *observability.Run) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

const generator = "fit-insights"

// Analyze runs one request end to end. Source errors and invalid parameters
// are returned; bad individual records only produce warnings.
func Analyze(ctx context.Context, src DataSource, req Request, opts ...Option) (report *Report, err error) {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = observability.NewRun()
	}
	started := time.Now()
	defer func() {
		o.metrics.RecordRun(err, time.Since(started).Seconds())
	}()

	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	start, end := calendar.Day(req.Start), calendar.Day(req.End)
	if !req.Start.IsZero() && !req.End.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	key, err := req.Key()
	if err != nil {
		return nil, err
	}
	loc, err := req.Params.Location()
	if err != nil {
		return nil, err
	}

	raw, err := fetch(ctx, src, req)
	if err != nil {
		return nil, err
	}

	n := records.NewNormalizer(records.WithLogger(o.log), records.WithLocation(loc))
	r := &Report{
		Key:         key,
		User:        req.User,
		Start:       start,
		End:         end,
		Params:      req.Params,
		GeneratedBy: generator,
		Metrics:     o.metrics,
	}
	var w []records.Warning
	r.Activities, w = n.Activities(raw.activities)
	r.Warnings = append(r.Warnings, w...)
	r.Days, w = n.Days(raw.days)
	r.Warnings = append(r.Warnings, w...)
	r.Sleep, w = n.Sleep(raw.sleep)
	r.Warnings = append(r.Warnings, w...)
	r.Hrv, w = n.Hrv(raw.hrv)
	r.Warnings = append(r.Warnings, w...)

	r.clip(req.Start, req.End)
	for _, warning := range r.Warnings {
		o.metrics.RecordWarning(warning.Record, string(warning.Kind))
	}
	o.metrics.RecordNormalized("activity", len(r.Activities))
	o.metrics.RecordNormalized("daily_summary", len(r.Days))
	o.metrics.RecordNormalized("sleep", len(r.Sleep))
	o.metrics.RecordNormalized("hrv", len(r.Hrv))

	if err := r.compute(ctx, req); err != nil {
		return nil, err
	}
	o.log.Info("analysis complete",
		"user", req.User,
		"key", key,
		"activities", len(r.Activities),
		"days", len(r.Days),
		"warnings", len(r.Warnings),
	)
	return r, nil
}

type rawRecords struct {
	activities []records.RawActivity
	days       []records.RawDay
	sleep      []records.RawSleep
	hrv        []records.RawHrv
}

func fetch(ctx context.Context, src DataSource, req Request) (rawRecords, error) {
	var raw rawRecords
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw.activities, err = src.FetchActivities(gctx, req.User, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("fetch activities: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		raw.days, err = src.FetchDailySummaries(gctx, req.User, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("fetch daily summaries: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		raw.sleep, err = src.FetchSleep(gctx, req.User, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("fetch sleep: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		raw.hrv, err = src.FetchHrv(gctx, req.User, req.Start, req.End)
		if err != nil {
			return fmt.Errorf("fetch hrv: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return rawRecords{}, err
	}
	return raw, nil
}

// clip drops typed records dated outside [start, end]. A zero bound is open.
func (r *Report) clip(start, end time.Time) {
	in := func(d time.Time) bool {
		if !start.IsZero() && d.Before(calendar.Day(start)) {
			return false
		}
		if !end.IsZero() && d.After(calendar.Day(end)) {
			return false
		}
		return true
	}
	r.Activities = filter(r.Activities, func(a records.Activity) bool { return in(a.Date) })
	r.Days = filter(r.Days, func(d records.DailySummary) bool { return in(d.Date) })
	r.Sleep = filter(r.Sleep, func(s records.SleepSession) bool { return in(s.Date) })
	r.Hrv = filter(r.Hrv, func(h records.HrvSample) bool { return in(h.Date) })
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// compute runs the analytics concurrently. Each goroutine reads the shared
// typed tables and writes only its own report fields.
func (r *Report) compute(ctx context.Context, req Request) error {
	p := req.Params
	runs := r.Runs()
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		if !req.Start.IsZero() && !req.End.IsZero() {
			r.TimeInZone = zones.AggregateTimeInZoneBetween(runs, p.Period, req.Start, req.End)
		} else {
			r.TimeInZone = zones.AggregateTimeInZone(runs, p.Period)
		}
		r.PaceByZone = zones.PaceByDominantZone(runs, p.Zones, p.MinZoneDurationMinutes)
		r.AerobicEfficiency = zones.AerobicEfficiency(zones.Zone2Runs(runs, zones.Zone2Criteria{MaxHR: p.MaxHR}))
		return nil
	})
	g.Go(func() error {
		daily, err := load.Compute(r.Activities, p.LoadMethod, load.WithZoneWeights(p.ZoneWeights))
		if err != nil {
			return fmt.Errorf("training load: %w", err)
		}
		r.DailyLoad = daily
		r.Load = load.RollingWith(daily, p.Windows)
		return nil
	})
	g.Go(func() error {
		x, err := prs.NewExtractor(p.Records)
		if err != nil {
			return fmt.Errorf("personal records: %w", err)
		}
		r.PersonalRecords = x.Extract(runs)
		return nil
	})
	g.Go(func() error {
		r.DailyTable = wellness.DailyTable(r.Days, r.Sleep, r.Hrv)
		r.Correlations = correlate.KeyInsights(r.DailyTable)
		for _, pair := range p.Correlations {
			res, err := correlate.Correlate(r.DailyTable, pair.X, pair.Y, p.CorrelationLag)
			if err != nil {
				return fmt.Errorf("correlate %s/%s: %w", pair.X, pair.Y, err)
			}
			r.Correlations = append(r.Correlations, correlate.NamedResult{
				Title:  fmt.Sprintf("%s vs. %s", pair.X, pair.Y),
				Result: res,
			})
		}
		return nil
	})
	g.Go(func() error {
		r.Wellness = wellness.Aggregate(r.Days, p.Period)
		r.Running = wellness.AggregateRunning(r.Activities, p.Period)
		r.RunningTotals = wellness.RunningTotals(r.Activities)
		return nil
	})
	return g.Wait()
}
