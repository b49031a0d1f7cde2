package records

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type fieldState int

const (
	fieldMissing fieldState = iota
	fieldOK
	fieldMalformed
)

// lookup resolves the first present key. Keys may be dotted paths into
// nested maps. A JSON null counts as missing.
func lookup(raw map[string]any, keys ...string) (any, string, bool) {
	for _, key := range keys {
		if v, ok := lookupPath(raw, key); ok && v != nil {
			return v, key, true
		}
	}
	return nil, "", false
}

func lookupPath(raw map[string]any, path string) (any, bool) {
	if v, ok := raw[path]; ok {
		return v, true
	}
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		return nil, false
	}
	var cur any = raw
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case RawActivity:
		return m, true
	case RawDay:
		return m, true
	case RawSleep:
		return m, true
	case RawHrv:
		return m, true
	default:
		return nil, false
	}
}

// floatAny coerces a loosely typed scalar into a finite float.
func floatAny(v any) (float64, fieldState) {
	var out float64
	switch x := v.(type) {
	case nil:
		return 0, fieldMissing
	case float64:
		out = x
	case float32:
		out = float64(x)
	case int:
		out = float64(x)
	case int8:
		out = float64(x)
	case int16:
		out = float64(x)
	case int32:
		out = float64(x)
	case int64:
		out = float64(x)
	case uint:
		out = float64(x)
	case uint8:
		out = float64(x)
	case uint16:
		out = float64(x)
	case uint32:
		out = float64(x)
	case uint64:
		out = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fieldMalformed
		}
		out = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, fieldMissing
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fieldMalformed
		}
		out = f
	default:
		return 0, fieldMalformed
	}
	if !isFinite(out) {
		return 0, fieldMalformed
	}
	return out, fieldOK
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// stringAny renders identifiers and labels. Integral floats print without
// a fractional part so numeric IDs survive a JSON round trip.
func stringAny(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case json.Number:
		return x.String(), true
	case float64:
		if x == math.Trunc(x) && isFinite(x) {
			return strconv.FormatFloat(x, 'f', -1, 64), true
		}
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02T15:04:05.0",
	"2006-01-02 15:04",
	"2006-01-02",
}

// timeAny parses epoch numbers, RFC3339 and naive local layouts. Naive
// values are read in loc. Epoch values at or above 1e11 are milliseconds.
func timeAny(v any, loc *time.Location) (time.Time, fieldState) {
	if loc == nil {
		loc = time.UTC
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, fieldMissing
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, fieldOK
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, fieldOK
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, fieldMalformed
		}
	}
	f, state := floatAny(v)
	if state != fieldOK {
		return time.Time{}, state
	}
	if f <= 0 {
		return time.Time{}, fieldMalformed
	}
	if math.Abs(f) >= 1e11 {
		return time.UnixMilli(int64(f)).In(loc), fieldOK
	}
	return time.Unix(int64(f), 0).In(loc), fieldOK
}

// wallClockMillis interprets Garmin "local" epoch values, which encode the
// local wall clock as if it were UTC.
func wallClockMillis(v any) (time.Time, fieldState) {
	f, state := floatAny(v)
	if state != fieldOK {
		return time.Time{}, state
	}
	if f <= 0 {
		return time.Time{}, fieldMalformed
	}
	return time.UnixMilli(int64(f)).UTC(), fieldOK
}
