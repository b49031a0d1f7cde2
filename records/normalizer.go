package records

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
)

// WarningKind classifies a per-field normalization problem.
type WarningKind string

const (
	// MissingField means a field the record cannot exist without was absent;
	// the record is skipped.
	MissingField WarningKind = "missing_field"
	// MalformedValue means a present value could not be coerced or was out
	// of range; the field is set absent.
	MalformedValue WarningKind = "malformed_value"
	// DuplicateRecord means a later record replaced or was dropped in favour
	// of an earlier one with the same identity.
	DuplicateRecord WarningKind = "duplicate_record"
)

// Warning describes one normalization problem. Warnings never abort a batch.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Record   string      `json:"record"`
	RecordID string      `json:"record_id,omitempty"`
	Field    string      `json:"field"`
	Value    string      `json:"value,omitempty"`
}

func (w Warning) String() string {
	if w.Value == "" {
		return fmt.Sprintf("%s %s[%s].%s", w.Kind, w.Record, w.RecordID, w.Field)
	}
	return fmt.Sprintf("%s %s[%s].%s=%s", w.Kind, w.Record, w.RecordID, w.Field, w.Value)
}

// Normalizer turns raw source records into typed records. It is stateless
// apart from its configuration and safe for concurrent use.
type Normalizer struct {
	log *slog.Logger
	loc *time.Location
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for warnings.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

// WithLocation sets the zone used to read naive local timestamps and to
// derive calendar dates from absolute ones.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// NewNormalizer returns a Normalizer with the given options applied.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{log: slog.Default(), loc: time.UTC}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Location returns the configured zone.
func (n *Normalizer) Location() *time.Location { return n.loc }

// scope collects warnings for one raw record.
type scope struct {
	n        *Normalizer
	record   string
	id       string
	raw      map[string]any
	warnings *[]Warning
}

func (n *Normalizer) scope(record string, raw map[string]any, warnings *[]Warning) *scope {
	return &scope{n: n, record: record, raw: raw, warnings: warnings}
}

func (s *scope) warn(kind WarningKind, field string, value any) {
	w := Warning{Kind: kind, Record: s.record, RecordID: s.id, Field: field}
	if value != nil {
		w.Value = fmt.Sprint(value)
	}
	*s.warnings = append(*s.warnings, w)
	attrs := []any{"record", s.record, "record_id", s.id, "field", field, "kind", string(kind)}
	if w.Value != "" {
		attrs = append(attrs, "value", w.Value)
	}
	s.n.log.Warn("normalization warning", attrs...)
}

func (s *scope) missing(field string) {
	s.n.log.Debug("field absent", "record", s.record, "record_id", s.id, "field", field)
}

// number reads the first present key as a finite float.
func (s *scope) number(field string, keys ...string) *float64 {
	v, _, ok := lookup(s.raw, keys...)
	if !ok {
		s.missing(field)
		return nil
	}
	f, state := floatAny(v)
	switch state {
	case fieldOK:
		return floatPtr(f)
	case fieldMalformed:
		s.warn(MalformedValue, field, v)
	default:
		s.missing(field)
	}
	return nil
}

// bounded reads a number and rejects values outside [lo, hi].
func (s *scope) bounded(field string, lo, hi float64, keys ...string) *float64 {
	p := s.number(field, keys...)
	if p == nil {
		return nil
	}
	if *p < lo || *p > hi {
		s.warn(MalformedValue, field, *p)
		return nil
	}
	return p
}

// nonNegative reads a number and rejects negative values.
func (s *scope) nonNegative(field string, keys ...string) *float64 {
	p := s.number(field, keys...)
	if p != nil && *p < 0 {
		s.warn(MalformedValue, field, *p)
		return nil
	}
	return p
}

// scaled reads a non-negative number and multiplies it by factor.
func (s *scope) scaled(field string, factor float64, keys ...string) *float64 {
	p := s.nonNegative(field, keys...)
	if p == nil {
		return nil
	}
	return floatPtr(*p * factor)
}

func (s *scope) text(keys ...string) string {
	v, _, ok := lookup(s.raw, keys...)
	if !ok {
		return ""
	}
	str, _ := stringAny(v)
	return str
}

// date reads a calendar day from a date or timestamp field.
func (s *scope) date(field string, keys ...string) (time.Time, bool) {
	v, key, ok := lookup(s.raw, keys...)
	if !ok {
		return time.Time{}, false
	}
	t, state := timeAny(v, s.n.loc)
	if state == fieldMalformed {
		s.warn(MalformedValue, field+"("+key+")", v)
		return time.Time{}, false
	}
	if state != fieldOK {
		return time.Time{}, false
	}
	return calendar.Day(t), true
}

func minutesFromSeconds(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return floatPtr(*p / 60)
}
