package records

import (
	"sort"
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
)

// Sleep normalizes raw sleep records. Each session is dated by its wake day:
// the source calendarDate when given, otherwise the end (or start) timestamp.
func (n *Normalizer) Sleep(raws []RawSleep) ([]SleepSession, []Warning) {
	var warnings []Warning
	byDate := make(map[time.Time]SleepSession, len(raws))

	for _, raw := range raws {
		if raw == nil {
			continue
		}
		body := map[string]any(raw)
		if inner, ok := asMap(raw["dailySleepDTO"]); ok {
			body = inner
		}
		s := n.scope("sleep", body, &warnings)
		sess, ok := n.sleep(s)
		if !ok {
			s.warn(MissingField, "date", nil)
			continue
		}
		if _, dup := byDate[sess.Date]; dup {
			s.warn(DuplicateRecord, "date", s.id)
		}
		byDate[sess.Date] = sess
	}

	out := make([]SleepSession, 0, len(byDate))
	for _, sess := range byDate {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	n.log.Debug("normalized sleep", "in", len(raws), "out", len(out), "warnings", len(warnings))
	return out, warnings
}

func (n *Normalizer) sleep(s *scope) (SleepSession, bool) {
	var sess SleepSession

	sess.Start = n.sleepInstant(s, "sleep_start", "sleepStartTimestampGMT")
	sess.End = n.sleepInstant(s, "sleep_end", "sleepEndTimestampGMT")

	date, ok := s.date("date", "calendarDate", "date")
	if !ok {
		date, ok = wakeDay(s, n.loc)
	}
	if !ok {
		return SleepSession{}, false
	}
	sess.Date = date
	s.id = date.Format("2006-01-02")

	sess.TotalMinutes = minutesFromSeconds(s.nonNegative("total_minutes", "durationInSeconds", "sleepTimeSeconds"))
	sess.DeepMinutes = minutesFromSeconds(s.nonNegative("deep_minutes", "deepSleepSeconds"))
	sess.LightMinutes = minutesFromSeconds(s.nonNegative("light_minutes", "lightSleepSeconds"))
	sess.RemMinutes = minutesFromSeconds(s.nonNegative("rem_minutes", "remSleepSeconds"))
	sess.AwakeMinutes = minutesFromSeconds(s.nonNegative("awake_minutes", "awakeSleepSeconds"))
	sess.SleepScore = sleepScore(s)
	return sess, true
}

func (n *Normalizer) sleepInstant(s *scope, field, key string) *time.Time {
	v, ok := lookupPath(s.raw, key)
	if !ok || v == nil {
		return nil
	}
	t, state := timeAny(v, time.UTC)
	if state == fieldMalformed {
		s.warn(MalformedValue, field, v)
		return nil
	}
	if state != fieldOK {
		return nil
	}
	t = t.In(n.loc)
	return &t
}

// wakeDay prefers the local-wall-clock end timestamp, then the absolute end,
// then the start.
func wakeDay(s *scope, loc *time.Location) (time.Time, bool) {
	for _, key := range []string{"sleepEndTimestampLocal", "sleepStartTimestampLocal"} {
		if v, ok := lookupPath(s.raw, key); ok && v != nil {
			if t, state := wallClockMillis(v); state == fieldOK {
				return calendar.Day(t), true
			}
		}
	}
	for _, key := range []string{"sleepEndTimestampGMT", "sleepStartTimestampGMT"} {
		if v, ok := lookupPath(s.raw, key); ok && v != nil {
			if t, state := timeAny(v, time.UTC); state == fieldOK {
				return calendar.DayIn(t, loc), true
			}
		}
	}
	return time.Time{}, false
}

// sleepScore accepts overallSleepScore as {"value": n} or a bare number, or
// the nested sleepScores.overall.value form.
func sleepScore(s *scope) *float64 {
	if v, ok := lookupPath(s.raw, "overallSleepScore"); ok && v != nil {
		if m, isMap := asMap(v); isMap {
			v = m["value"]
		}
		f, state := floatAny(v)
		switch {
		case state == fieldOK && f >= 0 && f <= 100:
			return floatPtr(f)
		case state != fieldMissing:
			s.warn(MalformedValue, "sleep_score", v)
			return nil
		}
	}
	return s.bounded("sleep_score", 0, 100, "sleepScores.overall.value", "sleepScore")
}
