package fitinsights

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasjlepore/fit-insights/internal/format"
	"github.com/lucasjlepore/fit-insights/load"
	"github.com/lucasjlepore/fit-insights/prs"
)

// BuildNotes turns a report into a plain-text training summary.
func BuildNotes(r *Report) string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "User: %s\n", nonEmpty(r.User, "-"))
	fmt.Fprintf(&b, "Range: %s to %s\n", format.Date(r.Start), format.Date(r.End))
	fmt.Fprintf(
		&b,
		"Records: %d activities (%d runs) | %d days | %d nights | %d HRV samples | %d warnings\n",
		len(r.Activities),
		r.RunningTotals.Runs,
		len(r.Days),
		len(r.Sleep),
		len(r.Hrv),
		len(r.Warnings),
	)

	t := r.RunningTotals
	if t.Runs > 0 {
		fmt.Fprintf(
			&b,
			"Running: %.1f km in %s | avg pace %s min/km | avg HR %s bpm | longest %s km\n",
			t.DistanceKm,
			formatDuration(t.DurationMinutes*60),
			paceOrDash(t.AvgPaceMinPerKm),
			format.Float(t.AvgHR, 0),
			format.Float(t.LongestRunKm, 1),
		)
	}

	b.WriteString("\nTraining Load\n")
	if len(r.Load) == 0 {
		b.WriteString("- No load data for this range.\n")
	} else {
		last := r.Load[len(r.Load)-1]
		fmt.Fprintf(
			&b,
			"- %s (%s): acute %s | chronic %s | ACWR %.2f (%s)\n",
			format.Date(last.Date),
			r.Params.LoadMethod,
			format.Float(last.Acute7d, 1),
			format.Float(last.Chronic28d, 1),
			last.ACWR,
			last.Classify(),
		)
		b.WriteString("- ")
		b.WriteString(loadAssessment(last))
		b.WriteByte('\n')
	}

	if len(r.PersonalRecords) > 0 {
		b.WriteString("\nPersonal Records\n")
		for _, e := range r.PersonalRecords {
			fmt.Fprintf(&b, "- %s: %s on %s", e.Label, RecordValue(e), format.Date(e.AchievedDate))
			if e.Annotation != "" {
				fmt.Fprintf(&b, " %s", e.Annotation)
			}
			b.WriteByte('\n')
		}
	}

	if len(r.Correlations) > 0 {
		b.WriteString("\nCorrelations\n")
		for _, c := range r.Correlations {
			if c.PearsonR == nil {
				fmt.Fprintf(&b, "- %s: not enough data (%d points)\n", c.Title, c.SampleCount)
				continue
			}
			fmt.Fprintf(&b, "- %s: r=%.2f (%d points, %s)\n", c.Title, *c.PearsonR, c.SampleCount, strength(*c.PearsonR))
		}
	}

	return strings.TrimSpace(b.String())
}

func loadAssessment(e load.Entry) string {
	switch e.Classify() {
	case load.BandHighRisk:
		return "Acute load is well above the chronic base; ease off before stacking more hard days."
	case load.BandLow:
		return "Acute load is below the chronic base; there is room to build if recovery is good."
	case load.BandOptimal:
		return "Acute and chronic load are balanced."
	default:
		return "Not enough history for a chronic baseline yet."
	}
}

// RecordValue renders a personal record value with its unit.
func RecordValue(e prs.Entry) string {
	switch e.Unit {
	case "s":
		return formatDuration(e.Value)
	case "min/km":
		return format.Pace(e.Value) + " min/km"
	case "km", "km/h":
		return fmt.Sprintf("%.2f %s", e.Value, e.Unit)
	default:
		return fmt.Sprintf("%.0f %s", e.Value, e.Unit)
	}
}

func strength(r float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.7:
		return "strong"
	case a >= 0.4:
		return "moderate"
	case a >= 0.2:
		return "weak"
	default:
		return "negligible"
	}
}

func paceOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return format.Pace(*p)
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
