package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/internal/format"
	"github.com/lucasjlepore/fit-insights/load"
)

var loadFlags struct {
	method string
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print daily training load with acute, chronic and ACWR",
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadFlags.method, "method", "", "Load method: trimp_edwards|duration_hr_basic|aerobic_te_sum")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	var method load.Method
	if loadFlags.method != "" {
		m, err := load.ParseMethod(loadFlags.method)
		if err != nil {
			return err
		}
		method = m
	}
	req, err := newRequest(func(p *fitinsights.Params) {
		if method != "" {
			p.LoadMethod = method
		}
	})
	if err != nil {
		return err
	}
	report, err := analyze(cmd, req)
	if err != nil {
		return err
	}

	tb := newTable()
	tb.Header("Date", "Load", "Acute", "Chronic", "ACWR", "Band")
	for _, e := range report.Load {
		tb.Row(format.Date(e.Date), fmt.Sprintf("%.1f", e.RawLoad), format.Float(e.Acute7d, 1), format.Float(e.Chronic28d, 1), fmt.Sprintf("%.2f", e.ACWR), string(e.Classify()))
	}
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Method: %s\n", report.Params.LoadMethod)
	printTable(cmd, tb)
	return nil
}
