// Package zones classifies activities into heart-rate zones and aggregates
// time and pace per zone over calendar periods.
package zones

import (
	"errors"
	"fmt"

	"github.com/lucasjlepore/fit-insights/records"
)

// ErrInvalidDefinitions reports a malformed zone table.
var ErrInvalidDefinitions = errors.New("invalid zone definitions")

// Count is the number of heart-rate zones.
const Count = 5

// Zone is a closed heart-rate interval [MinBPM, MaxBPM].
type Zone struct {
	Label  string  `json:"label" yaml:"label"`
	MinBPM float64 `json:"min_bpm" yaml:"min_bpm"`
	MaxBPM float64 `json:"max_bpm" yaml:"max_bpm"`
}

// Definitions is an ordered set of five zones. The last zone has no upper
// bound when classifying; its MaxBPM is informational.
type Definitions []Zone

// DefaultDefinitions returns the stock five-zone table.
func DefaultDefinitions() Definitions {
	return Definitions{
		{Label: "Z1", MinBPM: 0, MaxBPM: 120},
		{Label: "Z2", MinBPM: 121, MaxBPM: 145},
		{Label: "Z3", MinBPM: 146, MaxBPM: 160},
		{Label: "Z4", MinBPM: 161, MaxBPM: 175},
		{Label: "Z5", MinBPM: 176, MaxBPM: 220},
	}
}

// Validate checks there are five labelled, ascending, non-overlapping zones
// with non-negative bounds.
func (d Definitions) Validate() error {
	if len(d) != Count {
		return fmt.Errorf("%w: want %d zones, got %d", ErrInvalidDefinitions, Count, len(d))
	}
	seen := make(map[string]struct{}, len(d))
	for i, z := range d {
		if z.Label == "" {
			return fmt.Errorf("%w: zone %d has no label", ErrInvalidDefinitions, i+1)
		}
		if _, dup := seen[z.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidDefinitions, z.Label)
		}
		seen[z.Label] = struct{}{}
		if z.MinBPM < 0 || z.MaxBPM < z.MinBPM {
			return fmt.Errorf("%w: zone %s has bounds [%g, %g]", ErrInvalidDefinitions, z.Label, z.MinBPM, z.MaxBPM)
		}
		if i > 0 && z.MinBPM <= d[i-1].MaxBPM {
			return fmt.Errorf("%w: zone %s overlaps %s", ErrInvalidDefinitions, z.Label, d[i-1].Label)
		}
	}
	return nil
}

// Index returns the position of label, or -1.
func (d Definitions) Index(label string) int {
	for i, z := range d {
		if z.Label == label {
			return i
		}
	}
	return -1
}

// ClassifyHR returns the zone containing hr. A value that falls between two
// zones' bounds matches none.
func (d Definitions) ClassifyHR(hr float64) (string, bool) {
	for i, z := range d {
		if hr < z.MinBPM {
			continue
		}
		if i == len(d)-1 || hr <= z.MaxBPM {
			return z.Label, true
		}
	}
	return "", false
}

// Classify returns the zone of the activity's average heart rate. Activities
// without an average heart rate have no zone.
func Classify(a records.Activity, defs Definitions) (string, bool) {
	if a.AvgHR == nil {
		return "", false
	}
	return defs.ClassifyHR(*a.AvgHR)
}
