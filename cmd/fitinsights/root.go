package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/internal/config"
	"github.com/lucasjlepore/fit-insights/internal/format"
	"github.com/lucasjlepore/fit-insights/internal/logging"
	"github.com/lucasjlepore/fit-insights/source"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	logLevel  string
	logFormat string
	dataDir   string
	user      string
	start     string
	end       string
	markdown  bool
}

// cfg is resolved once per invocation: file, then env, then flags.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "fitinsights",
	Short: "Training load, zones, personal records and wellness correlations",
	Long: "fitinsights normalizes exported activity, daily summary, sleep and HRV\n" +
		"records and derives training load, zone, personal record and correlation tables.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.config, "config", "", "Path to a YAML config file")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text|json")
	f.StringVar(&rootFlags.dataDir, "data-dir", "", "Directory holding the exported records")
	f.StringVar(&rootFlags.user, "user", "", "User key inside per-user export files")
	f.StringVar(&rootFlags.start, "start", "", "First day of the range (YYYY-MM-DD)")
	f.StringVar(&rootFlags.end, "end", "", "Last day of the range (YYYY-MM-DD)")
	f.BoolVar(&rootFlags.markdown, "markdown", false, "Print tables as Markdown")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(wellnessCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(rootFlags.config)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		loaded.DataDir = rootFlags.dataDir
	}
	if flags.Changed("user") {
		loaded.User = rootFlags.user
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = rootFlags.logLevel
	}
	if flags.Changed("log-format") {
		loaded.LogFormat = rootFlags.logFormat
	}

	level, err := logging.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, loaded.LogFormat, cmd.ErrOrStderr())
	cfg = loaded
	return nil
}

// newRequest builds the request for this invocation after mutate has
// adjusted the configured parameters.
func newRequest(mutate func(*fitinsights.Params)) (fitinsights.Request, error) {
	params, err := cfg.Params()
	if err != nil {
		return fitinsights.Request{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if mutate != nil {
		mutate(&params)
	}
	start, err := parseDay("start", rootFlags.start)
	if err != nil {
		return fitinsights.Request{}, err
	}
	end, err := parseDay("end", rootFlags.end)
	if err != nil {
		return fitinsights.Request{}, err
	}
	return fitinsights.Request{User: cfg.User, Start: start, End: end, Params: params}, nil
}

func parseDay(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}

// analyze runs the request against the configured data directory.
func analyze(cmd *cobra.Command, req fitinsights.Request, opts ...fitinsights.Option) (*fitinsights.Report, error) {
	src := source.NewDir(cfg.DataDir, req.Params.Zones, logging.New("source"))
	opts = append([]fitinsights.Option{fitinsights.WithLogger(logging.New("analyze"))}, opts...)
	return fitinsights.Analyze(cmd.Context(), src, req, opts...)
}

func newTable() format.TableBuilder {
	if rootFlags.markdown {
		return format.NewTable(format.Markdown)
	}
	return format.NewTable(format.ASCII)
}

func printTable(cmd *cobra.Command, tb format.TableBuilder) {
	fmt.Fprintln(cmd.OutOrStdout(), tb.String())
}
