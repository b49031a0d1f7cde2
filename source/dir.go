// Package source implements DataSource over local exports: a directory of
// JSON record dumps and FIT activity files.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lucasjlepore/fit-insights/records"
	"github.com/lucasjlepore/fit-insights/zones"
)

// Export file names inside a data directory.
const (
	ActivitiesFile = "activities.json"
	DailyFile      = "daily_summaries.json"
	SleepFile      = "sleep.json"
	HrvFile        = "hrv.json"
	FITDir         = "fit"
)

// Dir reads raw records from a data directory. Each JSON file holds either
// an array of records or an object mapping user names to arrays. Missing
// files yield no records.
type Dir struct {
	root  string
	zones zones.Definitions
	log   *slog.Logger
}

// NewDir returns a Dir rooted at root. defs are used to derive HR zone time
// from FIT record streams; nil skips it.
func NewDir(root string, defs zones.Definitions, log *slog.Logger) *Dir {
	if log == nil {
		log = slog.Default()
	}
	return &Dir{root: root, zones: defs, log: log}
}

// FetchActivities returns activities from activities.json followed by the
// decoded FIT files under fit/. Unreadable FIT files are logged and skipped.
func (d *Dir) FetchActivities(ctx context.Context, user string, start, end time.Time) ([]records.RawActivity, error) {
	maps, err := d.readJSON(ActivitiesFile, user)
	if err != nil {
		return nil, err
	}
	out := make([]records.RawActivity, 0, len(maps))
	for _, m := range maps {
		if activityInRange(m, start, end) {
			out = append(out, records.RawActivity(m))
		}
	}

	paths, err := filepath.Glob(filepath.Join(d.root, FITDir, "*.fit"))
	if err != nil {
		return nil, fmt.Errorf("list FIT files: %w", err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := DecodeFITFile(p, d.zones)
		if err != nil {
			d.log.Warn("skipping FIT file", "path", p, "error", err)
			continue
		}
		if activityInRange(raw, start, end) {
			out = append(out, raw)
		}
	}
	d.log.Debug("fetched activities", "user", user, "count", len(out))
	return out, nil
}

// FetchDailySummaries returns daily_summaries.json records within range.
func (d *Dir) FetchDailySummaries(_ context.Context, user string, start, end time.Time) ([]records.RawDay, error) {
	maps, err := d.readJSON(DailyFile, user)
	if err != nil {
		return nil, err
	}
	out := make([]records.RawDay, 0, len(maps))
	for _, m := range maps {
		if inRange(m, start, end, "calendarDate", "date", "summaryDate") {
			out = append(out, records.RawDay(m))
		}
	}
	return out, nil
}

// FetchSleep returns sleep.json records within range.
func (d *Dir) FetchSleep(_ context.Context, user string, start, end time.Time) ([]records.RawSleep, error) {
	maps, err := d.readJSON(SleepFile, user)
	if err != nil {
		return nil, err
	}
	out := make([]records.RawSleep, 0, len(maps))
	for _, m := range maps {
		if inRange(m, start, end, "calendarDate", "dailySleepDTO.calendarDate") {
			out = append(out, records.RawSleep(m))
		}
	}
	return out, nil
}

// FetchHrv returns hrv.json records within range.
func (d *Dir) FetchHrv(_ context.Context, user string, start, end time.Time) ([]records.RawHrv, error) {
	maps, err := d.readJSON(HrvFile, user)
	if err != nil {
		return nil, err
	}
	out := make([]records.RawHrv, 0, len(maps))
	for _, m := range maps {
		if inRange(m, start, end, "calendarDate", "hrvSummary.calendarDate") {
			out = append(out, records.RawHrv(m))
		}
	}
	return out, nil
}

func (d *Dir) readJSON(name, user string) ([]map[string]any, error) {
	path := filepath.Join(d.root, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.log.Debug("export file absent", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		byUser, ok := v[user].([]any)
		if !ok {
			if _, present := v[user]; present {
				return nil, fmt.Errorf("decode %s: user %q is not an array", name, user)
			}
			return nil, nil
		}
		items = byUser
	default:
		return nil, fmt.Errorf("decode %s: expected an array or an object keyed by user", name)
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			d.log.Warn("skipping non-object record", "file", name, "index", i)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// inRange reports whether the first date-like key of m falls within
// [start, end]. Records without a readable date are kept; the normalizer
// decides what to do with them.
func inRange(m map[string]any, start, end time.Time, keys ...string) bool {
	day, ok := firstDay(m, keys...)
	if !ok {
		return true
	}
	return within(day, start, end, 0)
}

// activityInRange prefers local start times. A UTC start time can sit on a
// neighbouring local day, so it is given a day of slack on each side and the
// local calendar day is settled after normalization.
func activityInRange(m map[string]any, start, end time.Time) bool {
	if day, ok := firstDay(m, "startTimeLocal", "summaryDTO.startTimeLocal", "startTime"); ok {
		return within(day, start, end, 0)
	}
	if day, ok := firstDay(m, "startTimeGMT"); ok {
		return within(day, start, end, 1)
	}
	return true
}

func firstDay(m map[string]any, keys ...string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := lookupPath(m, k)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || len(s) < len("2006-01-02") {
			continue
		}
		day, err := time.Parse("2006-01-02", s[:10])
		if err != nil {
			continue
		}
		return day, true
	}
	return time.Time{}, false
}

func within(day, start, end time.Time, slackDays int) bool {
	if !start.IsZero() && day.Before(dayOf(start).AddDate(0, 0, -slackDays)) {
		return false
	}
	if !end.IsZero() && day.After(dayOf(end).AddDate(0, 0, slackDays)) {
		return false
	}
	return true
}

func lookupPath(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
