package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"github.com/lucasjlepore/fit-insights/records"
	"github.com/lucasjlepore/fit-insights/zones"
)

// Gaps longer than this between two samples are treated as a pause and do
// not accrue zone time.
const maxSampleGapSeconds = 10.0

// FITActivities decodes every path into a raw activity. The activity ID is
// the file name without extension.
func FITActivities(paths []string, defs zones.Definitions) ([]records.RawActivity, error) {
	out := make([]records.RawActivity, 0, len(paths))
	for _, p := range paths {
		raw, err := DecodeFITFile(p, defs)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeFITFile opens and decodes one activity file.
func DecodeFITFile(path string, defs zones.Definitions) (records.RawActivity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	raw, err := DecodeFIT(f, id, defs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}

// DecodeFIT reads an activity FIT stream into the raw activity shape the
// normalizer accepts. Session totals are preferred; the record stream
// fills gaps and supplies HR zone time and fastest splits.
func DecodeFIT(r io.Reader, id string, defs zones.Definitions) (records.RawActivity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, fmt.Errorf("activity file has no session message")
	}

	series := buildSeries(activity.Records)
	session := activity.Sessions[0]
	typeKey := sportKey(session.Sport, session.SubSport)

	raw := records.RawActivity{
		"activityId":   id,
		"activityName": id,
		"activityType": map[string]any{"typeKey": string(typeKey)},
	}

	start := validTimeOrZero(session.StartTime)
	if start.IsZero() {
		start = series.start
	}
	if !start.IsZero() {
		raw["startTimeGMT"] = start.UTC().Format(time.RFC3339)
	}

	duration := safePositive(session.GetTotalTimerTimeScaled())
	if duration == 0 {
		duration = series.durationSec
	}
	setPositive(raw, "duration", duration)

	distance := safePositive(session.GetTotalDistanceScaled())
	if distance == 0 {
		distance = series.lastDistance
	}
	setPositive(raw, "distance", distance)

	setPositive(raw, "elevationGain", float64(validUint16(session.TotalAscent)))
	setPositive(raw, "calories", float64(validUint16(session.TotalCalories)))

	maxSpeed := safePositive(session.GetEnhancedMaxSpeedScaled())
	if maxSpeed == 0 {
		maxSpeed = safePositive(session.GetMaxSpeedScaled())
	}
	if maxSpeed == 0 {
		maxSpeed = maxValue(series.speed)
	}
	setPositive(raw, "maxSpeed", maxSpeed)

	maxPower := float64(validUint16(session.MaxPower))
	if maxPower == 0 {
		maxPower = maxValue(series.power)
	}
	setPositive(raw, "maxPower", maxPower)

	avgHR := float64(validUint8(session.AvgHeartRate))
	if avgHR == 0 {
		avgHR = average(series.hr)
	}
	setPositive(raw, "averageHR", avgHR)
	maxHR := float64(validUint8(session.MaxHeartRate))
	if maxHR == 0 {
		maxHR = maxValue(series.hr)
	}
	setPositive(raw, "maxHR", maxHR)

	// FIT running cadence is per foot, matching the export field.
	if typeKey.IsRunning() {
		setPositive(raw, "averageRunningCadenceInStepsPerMinute", cadenceFromAny(session.GetAvgCadence()))
		setPositive(raw, "maxRunningCadenceInStepsPerMinute", cadenceFromAny(session.GetMaxCadence()))
	}

	if len(defs) == zones.Count {
		for i, secs := range series.zoneSeconds(defs) {
			raw[fmt.Sprintf("hrTimeInZone_%d", i+1)] = secs
		}
	}
	for _, d := range records.SplitDistances {
		if secs, ok := series.fastestSplit(float64(d)); ok {
			raw[fmt.Sprintf("fastestSplit_%d", d)] = secs
		}
	}
	return raw, nil
}

func sportKey(sport fit.Sport, sub fit.SubSport) records.TypeKey {
	switch sport {
	case fit.SportRunning:
		switch sub {
		case fit.SubSportTreadmill:
			return records.TypeTreadmillRunning
		case fit.SubSportTrail:
			return records.TypeTrailRunning
		case fit.SubSportTrack:
			return records.TypeTrackRunning
		case fit.SubSportStreet:
			return records.TypeStreetRunning
		}
		return records.TypeRunning
	case fit.SportCycling:
		if sub == fit.SubSportIndoorCycling {
			return records.TypeIndoorCycling
		}
		return records.TypeCycling
	case fit.SportSwimming:
		switch sub {
		case fit.SubSportLapSwimming:
			return records.TypeLapSwimming
		case fit.SubSportOpenWater:
			return records.TypeOpenWaterSwim
		}
		return records.TypeSwimming
	case fit.SportWalking:
		return records.TypeWalking
	case fit.SportHiking:
		return records.TypeHiking
	case fit.SportTraining:
		switch sub {
		case fit.SubSportStrengthTraining:
			return records.TypeStrength
		case fit.SubSportYoga:
			return records.TypeYoga
		}
		return records.TypeCardio
	}
	return records.TypeKey(strings.ToLower(fmt.Sprint(sport)))
}

type sample struct {
	offset   float64
	hr       float64
	hasHR    bool
	distance float64
}

type series struct {
	start        time.Time
	durationSec  float64
	lastDistance float64

	hr    []float64
	power []float64
	speed []float64

	samples []sample
}

func buildSeries(recs []*fit.RecordMsg) series {
	var s series
	rows := make([]*fit.RecordMsg, 0, len(recs))
	for _, rec := range recs {
		if rec != nil && !validTimeOrZero(rec.Timestamp).IsZero() {
			rows = append(rows, rec)
		}
	}
	if len(rows) == 0 {
		return s
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.Before(rows[j].Timestamp) })

	s.start = rows[0].Timestamp
	end := rows[len(rows)-1].Timestamp
	if end.After(s.start) {
		s.durationSec = end.Sub(s.start).Seconds()
	}

	for _, rec := range rows {
		smp := sample{offset: rec.Timestamp.Sub(s.start).Seconds()}
		if rec.HeartRate != math.MaxUint8 && rec.HeartRate > 0 {
			smp.hr, smp.hasHR = float64(rec.HeartRate), true
			s.hr = append(s.hr, smp.hr)
		}
		if rec.Power != math.MaxUint16 {
			s.power = append(s.power, float64(rec.Power))
		}
		if speed := rec.GetEnhancedSpeedScaled(); isFinite(speed) && speed >= 0 {
			s.speed = append(s.speed, speed)
		} else if speed := rec.GetSpeedScaled(); isFinite(speed) && speed >= 0 {
			s.speed = append(s.speed, speed)
		}
		if d := safePositive(rec.GetDistanceScaled()); d > 0 {
			smp.distance = d
			s.lastDistance = d
		} else {
			smp.distance = s.lastDistance
		}
		s.samples = append(s.samples, smp)
	}
	return s
}

// zoneSeconds credits the time until the next sample to the zone of each
// sample's heart rate.
func (s series) zoneSeconds(defs zones.Definitions) [zones.Count]float64 {
	var out [zones.Count]float64
	for i := 0; i+1 < len(s.samples); i++ {
		cur := s.samples[i]
		if !cur.hasHR {
			continue
		}
		delta := s.samples[i+1].offset - cur.offset
		if delta <= 0 || delta > maxSampleGapSeconds {
			continue
		}
		label, ok := defs.ClassifyHR(cur.hr)
		if !ok {
			continue
		}
		out[defs.Index(label)] += delta
	}
	return out
}

// fastestSplit returns the shortest elapsed time between two samples at
// least meters apart in cumulative distance.
func (s series) fastestSplit(meters float64) (float64, bool) {
	best, found := 0.0, false
	i := 0
	for j := range s.samples {
		for i+1 < j && s.samples[j].distance-s.samples[i+1].distance >= meters {
			i++
		}
		if s.samples[j].distance-s.samples[i].distance < meters {
			continue
		}
		elapsed := s.samples[j].offset - s.samples[i].offset
		if elapsed > 0 && (!found || elapsed < best) {
			best, found = elapsed, true
		}
	}
	return best, found
}

func setPositive(raw records.RawActivity, key string, v float64) {
	if v > 0 && isFinite(v) {
		raw[key] = v
	}
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func cadenceFromAny(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case int:
		if x < 0 {
			return 0
		}
		return float64(x)
	case float64:
		return safePositive(x)
	default:
		return 0
	}
}

func average(values []float64) float64 {
	total, count := 0.0, 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func maxValue(values []float64) float64 {
	max, found := 0.0, false
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if !found || v > max {
			max, found = v, true
		}
	}
	return max
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
