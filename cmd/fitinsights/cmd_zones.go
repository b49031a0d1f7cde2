package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/internal/format"
)

var periodFlag string

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Print time in zone, pace by zone and aerobic efficiency",
	RunE:  runZones,
}

func init() {
	zonesCmd.Flags().StringVar(&periodFlag, "period", "", "Aggregation period: weekly|monthly")
}

// withPeriod applies the --period flag, shared by zones and wellness.
func withPeriod() (func(*fitinsights.Params), error) {
	if periodFlag == "" {
		return nil, nil
	}
	period, err := calendar.ParsePeriod(periodFlag)
	if err != nil {
		return nil, err
	}
	return func(p *fitinsights.Params) { p.Period = period }, nil
}

func runZones(cmd *cobra.Command, _ []string) error {
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

	tiz := newTable()
	header := []string{"Period"}
	for _, z := range report.Params.Zones {
		header = append(header, z.Label)
	}
	tiz.Header(append(header, "Total")...)
	for _, row := range report.TimeInZone {
		cells := []any{format.Date(row.Period)}
		for _, m := range row.Minutes {
			cells = append(cells, fmt.Sprintf("%.0f", m))
		}
		tiz.Row(append(cells, fmt.Sprintf("%.0f", row.Total()))...)
	}
	fmt.Fprintf(out, "Time in zone (minutes, %s)\n", report.Params.Period)
	printTable(cmd, tiz)

	pace := newTable()
	pace.Header("Week", "Zone", "Mean pace", "Runs")
	for _, row := range report.PaceByZone {
		pace.Row(format.Date(row.PeriodStart), row.Zone, format.Pace(row.MeanPace), row.Runs)
	}
	fmt.Fprintln(out, "\nPace by dominant zone (min/km)")
	printTable(cmd, pace)

	eff := newTable()
	eff.Header("Date", "Activity", "Pace", "Avg HR", "Distance")
	for _, p := range report.AerobicEfficiency {
		eff.Row(format.Date(p.Date), p.ActivityID, format.Pace(p.PaceMinPerKm), fmt.Sprintf("%.0f", p.AvgHR), fmt.Sprintf("%.2f km", p.DistanceKm))
	}
	fmt.Fprintln(out, "\nAerobic efficiency (zone 2 runs)")
	printTable(cmd, eff)
	return nil
}
