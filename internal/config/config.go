// Package config centralises configuration for the fitinsights command: an
// optional YAML file, then FITINSIGHTS_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/calendar"
	"github.com/lucasjlepore/fit-insights/load"
	"github.com/lucasjlepore/fit-insights/prs"
	"github.com/lucasjlepore/fit-insights/zones"
)

const envPrefix = "FITINSIGHTS_"

// Config captures runtime configuration values.
type Config struct {
	DataDir   string   `yaml:"data_dir"`
	User      string   `yaml:"user"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	Analysis  Analysis `yaml:"analysis"`
}

// Analysis is the file form of fitinsights.Params.
type Analysis struct {
	Zones                  zones.Definitions        `yaml:"zones"`
	LoadMethod             string                   `yaml:"load_method"`
	ZoneWeights            []float64                `yaml:"zone_weights"`
	Windows                load.Windows             `yaml:"windows"`
	CorrelationLag         int                      `yaml:"correlation_lag"`
	Correlations           []fitinsights.MetricPair `yaml:"correlations"`
	Records                prs.Config               `yaml:"records"`
	MinZoneDurationMinutes float64                  `yaml:"min_zone_duration_minutes"`
	Period                 string                   `yaml:"period"`
	Timezone               string                   `yaml:"timezone"`
	MaxHR                  float64                  `yaml:"max_hr"`
}

// Default returns the stock configuration.
func Default() Config {
	p := fitinsights.DefaultParams()
	return Config{
		DataDir:   ".",
		LogLevel:  "info",
		LogFormat: "text",
		Analysis: Analysis{
			Zones:                  p.Zones,
			LoadMethod:             string(p.LoadMethod),
			ZoneWeights:            p.ZoneWeights[:],
			Windows:                p.Windows,
			CorrelationLag:         p.CorrelationLag,
			Records:                p.Records,
			MinZoneDurationMinutes: p.MinZoneDurationMinutes,
			Period:                 string(p.Period),
			Timezone:               p.Timezone,
		},
	}
}

// Load reads path over the defaults when path is not empty, then applies
// environment overrides. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.User = getEnv("USER", cfg.User)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.Analysis.LoadMethod = getEnv("LOAD_METHOD", cfg.Analysis.LoadMethod)
	lag, err := getIntEnv("CORRELATION_LAG", cfg.Analysis.CorrelationLag)
	if err != nil {
		return Config{}, err
	}
	cfg.Analysis.CorrelationLag = lag
	cfg.Analysis.Period = getEnv("PERIOD", cfg.Analysis.Period)
	cfg.Analysis.Timezone = getEnv("TIMEZONE", cfg.Analysis.Timezone)
	if pairs := getEnv("CORRELATIONS", ""); pairs != "" {
		parsed, err := parsePairs(pairs)
		if err != nil {
			return Config{}, err
		}
		cfg.Analysis.Correlations = parsed
	}
	return cfg, nil
}

// Params converts the analysis section into validated parameters.
func (c Config) Params() (fitinsights.Params, error) {
	a := c.Analysis
	method, err := load.ParseMethod(a.LoadMethod)
	if err != nil {
		return fitinsights.Params{}, err
	}
	period, err := calendar.ParsePeriod(a.Period)
	if err != nil {
		return fitinsights.Params{}, err
	}
	if len(a.ZoneWeights) != zones.Count {
		return fitinsights.Params{}, fmt.Errorf("zone_weights: want %d values, got %d", zones.Count, len(a.ZoneWeights))
	}

	p := fitinsights.Params{
		Zones:                  a.Zones,
		LoadMethod:             method,
		Windows:                a.Windows,
		CorrelationLag:         a.CorrelationLag,
		Correlations:           a.Correlations,
		Records:                a.Records,
		MinZoneDurationMinutes: a.MinZoneDurationMinutes,
		Period:                 period,
		Timezone:               a.Timezone,
		MaxHR:                  a.MaxHR,
	}
	copy(p.ZoneWeights[:], a.ZoneWeights)
	if err := p.Validate(); err != nil {
		return fitinsights.Params{}, err
	}
	return p, nil
}

// parsePairs reads "x:y,x:y".
func parsePairs(value string) ([]fitinsights.MetricPair, error) {
	var out []fitinsights.MetricPair
	for _, part := range splitAndTrim(value) {
		x, y, ok := strings.Cut(part, ":")
		x, y = strings.TrimSpace(x), strings.TrimSpace(y)
		if !ok || x == "" || y == "" {
			return nil, fmt.Errorf("%sCORRELATIONS: malformed pair %q (want x:y)", envPrefix, part)
		}
		out = append(out, fitinsights.MetricPair{X: x, Y: y})
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(envPrefix + key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s%s: not an integer: %q", envPrefix, key, value)
	}
	return parsed, nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
