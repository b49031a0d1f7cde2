package main

import (
	"github.com/spf13/cobra"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/internal/format"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print personal records across running activities",
	RunE:  runRecords,
}

func runRecords(cmd *cobra.Command, _ []string) error {
	req, err := newRequest(nil)
	if err != nil {
		return err
	}
	report, err := analyze(cmd, req)
	if err != nil {
		return err
	}

	tb := newTable()
	tb.Header("Record", "Value", "Date", "Activity", "Note")
	for _, e := range report.PersonalRecords {
		activity := e.ActivityName
		if activity == "" {
			activity = e.ActivityID
		}
		tb.Row(e.Label, fitinsights.RecordValue(e), format.Date(e.AchievedDate), activity, e.Annotation)
	}
	tb.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
	printTable(cmd, tb)
	return nil
}
