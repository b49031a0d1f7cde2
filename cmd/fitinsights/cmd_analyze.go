package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/internal/observability"
	"github.com/lucasjlepore/fit-insights/pipeline"
)

var analyzeFlags struct {
	out         string
	format      string
	overwrite   bool
	metricsFile string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run every analysis and write the output tables",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.out, "out", "o", "", "Output directory (required)")
	f.StringVar(&analyzeFlags.format, "format", string(pipeline.FormatParquet), "Table format: parquet|csv|xlsx|json")
	f.BoolVar(&analyzeFlags.overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	f.StringVar(&analyzeFlags.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")

	_ = analyzeCmd.MarkFlagRequired("out")
}

func runAnalyze(cmd *cobra.Command, _ []string) (err error) {
	metrics := observability.NewRun()
	if analyzeFlags.metricsFile != "" {
		defer func() {
			if werr := metrics.WriteTextfile(analyzeFlags.metricsFile); werr != nil && err == nil {
				err = fmt.Errorf("write metrics: %w", werr)
			}
		}()
	}

	req, err := newRequest(nil)
	if err != nil {
		return err
	}
	report, err := analyze(cmd, req, fitinsights.WithMetrics(metrics))
	if err != nil {
		return err
	}
	res, err := pipeline.Write(report, pipeline.Options{
		OutDir:    analyzeFlags.out,
		Format:    analyzeFlags.format,
		Overwrite: analyzeFlags.overwrite,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, fitinsights.BuildNotes(report))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Output:  %s (%s)\n", res.OutputDir, res.Format)
	fmt.Fprintf(out, "Report:  %s\n", res.ReportPath)
	fmt.Fprintf(out, "Summary: %s\n", res.SummaryPath)

	names := make([]string, 0, len(res.Tables))
	for name := range res.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %s\n", name, res.Tables[name])
	}
	return nil
}
