package prs

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidBands reports a malformed distance-band table.
	ErrInvalidBands = errors.New("invalid distance bands")
	// ErrInvalidEvents reports a malformed full-event table.
	ErrInvalidEvents = errors.New("invalid event tolerance bands")
)

// DistanceBand is a half-open distance range [MinKm, MaxKm). MaxKm of zero
// means the band has no upper edge.
type DistanceBand struct {
	Key   string  `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
	MinKm float64 `json:"min_km" yaml:"min_km"`
	MaxKm float64 `json:"max_km" yaml:"max_km"`
}

// Contains reports whether km falls in the band.
func (b DistanceBand) Contains(km float64) bool {
	return km >= b.MinKm && (b.MaxKm == 0 || km < b.MaxKm)
}

// EventBand is the closed distance tolerance [MinKm, MaxKm] accepted as a
// full race-distance effort.
type EventBand struct {
	Key   string  `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
	MinKm float64 `json:"min_km" yaml:"min_km"`
	MaxKm float64 `json:"max_km" yaml:"max_km"`
}

// Contains reports whether km is within tolerance.
func (e EventBand) Contains(km float64) bool {
	return km >= e.MinKm && km <= e.MaxKm
}

// EfficiencyBracket selects runs near a target distance and pace for the
// lowest-HR efficiency record. Bounds are inclusive.
type EfficiencyBracket struct {
	Label      string  `json:"label" yaml:"label"`
	MinKm      float64 `json:"min_km" yaml:"min_km"`
	MaxKm      float64 `json:"max_km" yaml:"max_km"`
	MinPaceMin float64 `json:"min_pace_min_per_km" yaml:"min_pace_min_per_km"`
	MaxPaceMin float64 `json:"max_pace_min_per_km" yaml:"max_pace_min_per_km"`
}

// Config holds the tables the extractor ranks against.
type Config struct {
	Bands      []DistanceBand    `json:"bands" yaml:"bands"`
	Events     []EventBand       `json:"events" yaml:"events"`
	Efficiency EfficiencyBracket `json:"efficiency" yaml:"efficiency"`
}

// DefaultBands returns the five stock distance bands.
func DefaultBands() []DistanceBand {
	return []DistanceBand{
		{Key: "lt5k", Label: "<5km", MinKm: 0.5, MaxKm: 5},
		{Key: "5_10k", Label: "5-10km", MinKm: 5, MaxKm: 10},
		{Key: "10_15k", Label: "10-15km", MinKm: 10, MaxKm: 15},
		{Key: "15k_hm", Label: "15km-HM", MinKm: 15, MaxKm: 21.31},
		{Key: "hm_plus", Label: "HM+", MinKm: 21.31},
	}
}

// DefaultEvents returns the stock race-distance tolerances.
func DefaultEvents() []EventBand {
	return []EventBand{
		{Key: "5k", Label: "5K", MinKm: 4.90, MaxKm: 5.15},
		{Key: "10k", Label: "10K", MinKm: 9.80, MaxKm: 10.25},
		{Key: "15k", Label: "15K", MinKm: 14.75, MaxKm: 15.30},
		{Key: "half_marathon", Label: "Half Marathon", MinKm: 20.75, MaxKm: 21.50},
	}
}

// DefaultEfficiency returns the ~10k target-pace bracket.
func DefaultEfficiency() EfficiencyBracket {
	return EfficiencyBracket{Label: "Efficient HR (~10k Target Pace)", MinKm: 9.8, MaxKm: 10.2, MinPaceMin: 5.0, MaxPaceMin: 5.5}
}

// DefaultConfig bundles the stock tables.
func DefaultConfig() Config {
	return Config{Bands: DefaultBands(), Events: DefaultEvents(), Efficiency: DefaultEfficiency()}
}

// Validate rejects negative edges, inverted ranges and overlaps.
func (c Config) Validate() error {
	if err := validateBands(c.Bands); err != nil {
		return err
	}
	if err := validateEvents(c.Events); err != nil {
		return err
	}
	e := c.Efficiency
	if e.MinKm < 0 || e.MaxKm < e.MinKm || e.MinPaceMin < 0 || e.MaxPaceMin < e.MinPaceMin {
		return fmt.Errorf("%w: efficiency bracket %+v", ErrInvalidBands, e)
	}
	return nil
}

func validateBands(bands []DistanceBand) error {
	sorted := append([]DistanceBand(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinKm < sorted[j].MinKm })
	keys := make(map[string]struct{}, len(sorted))
	for i, b := range sorted {
		if b.Key == "" {
			return fmt.Errorf("%w: band %q has no key", ErrInvalidBands, b.Label)
		}
		if _, dup := keys[b.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidBands, b.Key)
		}
		keys[b.Key] = struct{}{}
		if b.MinKm < 0 || b.MaxKm < 0 {
			return fmt.Errorf("%w: band %s has a negative edge", ErrInvalidBands, b.Key)
		}
		if b.MaxKm != 0 && b.MaxKm <= b.MinKm {
			return fmt.Errorf("%w: band %s is empty [%g, %g)", ErrInvalidBands, b.Key, b.MinKm, b.MaxKm)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MaxKm == 0 || b.MinKm < prev.MaxKm {
			return fmt.Errorf("%w: band %s overlaps %s", ErrInvalidBands, b.Key, prev.Key)
		}
	}
	return nil
}

func validateEvents(events []EventBand) error {
	sorted := append([]EventBand(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinKm < sorted[j].MinKm })
	keys := make(map[string]struct{}, len(sorted))
	for i, e := range sorted {
		if e.Key == "" {
			return fmt.Errorf("%w: event %q has no key", ErrInvalidEvents, e.Label)
		}
		if _, dup := keys[e.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidEvents, e.Key)
		}
		keys[e.Key] = struct{}{}
		if e.MinKm < 0 || e.MaxKm < e.MinKm {
			return fmt.Errorf("%w: event %s has bounds [%g, %g]", ErrInvalidEvents, e.Key, e.MinKm, e.MaxKm)
		}
		if i > 0 && e.MinKm <= sorted[i-1].MaxKm {
			return fmt.Errorf("%w: event %s overlaps %s", ErrInvalidEvents, e.Key, sorted[i-1].Key)
		}
	}
	return nil
}
