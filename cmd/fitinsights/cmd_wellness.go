package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucasjlepore/fit-insights/internal/format"
)

var wellnessCmd = &cobra.Command{
	Use:   "wellness",
	Short: "Print resting HR, stress, sleep and running volume by period",
	RunE:  runWellness,
}

func init() {
	wellnessCmd.Flags().StringVar(&periodFlag, "period", "", "Aggregation period: weekly|monthly")
}

func runWellness(cmd *cobra.Command, _ []string) error {
	mutate, err := withPeriod()
	if err != nil {
		return err
	}
	req, err := newRequest(mutate)
	if err != nil {
		return err
	}
	report, err := analyze(cmd, req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	w := newTable()
	w.Header("Period", "Days", "Resting HR", "Stress", "Sleep h", "Steps")
	for _, row := range report.Wellness {
		w.Row(format.Date(row.Period), row.Days, format.Float(row.AvgRestingHR, 1), format.Float(row.AvgStress, 1), format.Float(row.AvgSleepHours, 1), fmt.Sprintf("%.0f", row.TotalSteps))
	}
	fmt.Fprintf(out, "Wellness (%s)\n", report.Params.Period)
	printTable(cmd, w)

	r := newTable()
	r.Header("Period", "Runs", "Distance km", "Minutes", "Avg HR", "Pace")
	for _, row := range report.Running {
		pace := "-"
		if row.AvgPaceMinPerKm != nil {
			pace = format.Pace(*row.AvgPaceMinPerKm)
		}
		r.Row(format.Date(row.Period), row.Runs, fmt.Sprintf("%.1f", row.TotalDistanceKm), fmt.Sprintf("%.0f", row.TotalDurationMinutes), format.Float(row.AvgHR, 0), pace)
	}
	fmt.Fprintf(out, "\nRunning (%s)\n", report.Params.Period)
	printTable(cmd, r)
	return nil
}
