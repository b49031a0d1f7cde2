package fitinsights

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/correlate"
	"github.com/lucasjlepore/fit-insights/load"
	"github.com/lucasjlepore/fit-insights/prs"
	"github.com/lucasjlepore/fit-insights/zones"
)

// MetricPair is a caller-chosen correlation, evaluated with Params.CorrelationLag.
type MetricPair struct {
	X string `json:"x" yaml:"x"`
	Y string `json:"y" yaml:"y"`
}

// Params is the tunable surface of one analysis.
type Params struct {
	Zones                  zones.Definitions `json:"zones"`
	LoadMethod             load.Method       `json:"load_method"`
	ZoneWeights            [5]float64        `json:"zone_weights"`
	Windows                load.Windows      `json:"windows"`
	CorrelationLag         int               `json:"correlation_lag"`
	Correlations           []MetricPair      `json:"correlations,omitempty"`
	Records                prs.Config        `json:"records"`
	MinZoneDurationMinutes float64           `json:"min_zone_duration_minutes"`
	Period                 calendar.Period   `json:"period"`
	// Timezone is an IANA name used for naive timestamps and calendar dates.
	Timezone string `json:"timezone"`
	// MaxHR enables the %-of-max zone 2 rule when positive.
	MaxHR float64 `json:"max_hr,omitempty"`
}

// DefaultParams returns the stock configuration.
func DefaultParams() Params {
	return Params{
		Zones:                  zones.DefaultDefinitions(),
		LoadMethod:             load.TrimpEdwards,
		ZoneWeights:            load.DefaultZoneWeights,
		Windows:                load.DefaultWindows(),
		Records:                prs.DefaultConfig(),
		MinZoneDurationMinutes: zones.DefaultMinDurationMinutes,
		Period:                 calendar.Weekly,
		Timezone:               "UTC",
	}
}

// Validate checks every table and enum in p.
func (p Params) Validate() error {
	if err := p.Zones.Validate(); err != nil {
		return err
	}
	if _, err := load.ParseMethod(string(p.LoadMethod)); err != nil {
		return err
	}
	if p.CorrelationLag != 0 && p.CorrelationLag != 1 {
		return fmt.Errorf("%w: got %d", correlate.ErrInvalidLag, p.CorrelationLag)
	}
	for _, w := range p.ZoneWeights {
		if w < 0 {
			return fmt.Errorf("negative zone weight %g", w)
		}
	}
	if w := p.Windows.Acute; w.Days <= 0 || w.MinPeriods < 0 {
		return fmt.Errorf("invalid acute window %+v", w)
	}
	if w := p.Windows.Chronic; w.Days <= 0 || w.MinPeriods < 0 {
		return fmt.Errorf("invalid chronic window %+v", w)
	}
	if err := p.Records.Validate(); err != nil {
		return err
	}
	if p.MinZoneDurationMinutes < 0 {
		return fmt.Errorf("negative minimum zone duration %g", p.MinZoneDurationMinutes)
	}
	if _, err := calendar.ParsePeriod(string(p.Period)); err != nil {
		return err
	}
	if _, err := p.Location(); err != nil {
		return err
	}
	for _, c := range p.Correlations {
		if c.X == "" || c.Y == "" {
			return fmt.Errorf("correlation pair %+v needs both metrics", c)
		}
	}
	return nil
}

// Location resolves Timezone; empty means UTC.
func (p Params) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// Request is one analysis: a user, an inclusive date range and parameters.
type Request struct {
	User   string    `json:"user"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Params Params    `json:"params"`
}

// Key returns a stable hex digest of the request for use as a memoization
// key. Requests that differ only in the time of day of Start or End share a
// key.
func (r Request) Key() (string, error) {
	canonical := struct {
		User   string `json:"user"`
		Start  string `json:"start"`
		End    string `json:"end"`
		Params Params `json:"params"`
	}{
		User:   r.User,
		Start:  calendar.Day(r.Start).Format("2006-01-02"),
		End:    calendar.Day(r.End).Format("2006-01-02"),
		Params: r.Params,
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
