package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasjlepore/fit-insights/correlate"
)

var correlateFlags struct {
	x        string
	y        string
	lag      int
	keyPairs bool
}

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlate two daily metrics, or print the curated key pairs",
	RunE:  runCorrelate,
}

func init() {
	f := correlateCmd.Flags()
	f.StringVar(&correlateFlags.x, "x", "", "X metric")
	f.StringVar(&correlateFlags.y, "y", "", "Y metric")
	f.IntVar(&correlateFlags.lag, "lag", 0, "1 pairs x with the next day's y (default from config)")
	f.BoolVar(&correlateFlags.keyPairs, "key-pairs", false, "Evaluate the curated key pairs")
}

func runCorrelate(cmd *cobra.Command, _ []string) error {
	if !correlateFlags.keyPairs && (correlateFlags.x == "" || correlateFlags.y == "") {
		return fmt.Errorf("either --key-pairs or both --x and --y are required")
	}
	req, err := newRequest(nil)
	if err != nil {
		return err
	}
	report, err := analyze(cmd, req)
	if err != nil {
		return err
	}

	tb := newTable()
	tb.Header("Pair", "Lag", "r", "n", "Slope", "Intercept")
	if correlateFlags.keyPairs {
		for _, res := range correlate.KeyInsights(report.DailyTable) {
			tb.Row(resultRow(res.Title, res.Result)...)
		}
		printTable(cmd, tb)
		return nil
	}

	lag := req.Params.CorrelationLag
	if cmd.Flags().Changed("lag") {
		lag = correlateFlags.lag
	}
	res, err := correlate.Correlate(report.DailyTable, correlateFlags.x, correlateFlags.y, lag)
	if err != nil {
		return err
	}
	tb.Row(resultRow(fmt.Sprintf("%s vs. %s", res.XMetric, res.YMetric), res)...)
	printTable(cmd, tb)
	if !res.Defined() {
		fmt.Fprintf(cmd.OutOrStdout(), "Metrics with enough variation: %s\n", strings.Join(correlate.Selectable(report.DailyTable), ", "))
	}
	return nil
}

func resultRow(title string, res correlate.Result) []any {
	r, slope, intercept := "-", "-", "-"
	if res.PearsonR != nil {
		r = fmt.Sprintf("%.3f", *res.PearsonR)
	}
	if res.Fit != nil {
		slope = fmt.Sprintf("%.3f", res.Fit.Slope)
		intercept = fmt.Sprintf("%.3f", res.Fit.Intercept)
	}
	return []any{title, res.Lag, r, res.SampleCount, slope, intercept}
}
