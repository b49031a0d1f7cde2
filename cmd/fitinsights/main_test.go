package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const activitiesJSON = `[
  {"activityId": "a", "activityName": "Easy", "activityType": {"typeKey": "running"},
   "startTimeLocal": "2024-03-01 07:00:00", "distance": 4000, "duration": 1500, "averageHR": 150},
  {"activityId": "b", "activityName": "Long", "activityType": {"typeKey": "running"},
   "startTimeLocal": "2024-03-03 07:00:00", "distance": 10200, "duration": 3300, "averageHR": 140},
  {"activityId": "c", "activityName": "Half", "activityType": {"typeKey": "running"},
   "startTimeLocal": "2024-03-06 07:00:00", "distance": 21100, "duration": 6600, "averageHR": 155}
]`

const dailyJSON = `[
  {"calendarDate": "2024-03-01", "restingHeartRate": 50, "averageStressLevel": 20, "totalSteps": 9000},
  {"calendarDate": "2024-03-02", "restingHeartRate": 51, "averageStressLevel": 25, "totalSteps": 7000},
  {"calendarDate": "2024-03-03", "restingHeartRate": 52, "averageStressLevel": 30, "totalSteps": 15000},
  {"calendarDate": "2024-03-04", "restingHeartRate": 53, "averageStressLevel": 35, "totalSteps": 6000}
]`

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activities.json"), []byte(activitiesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daily_summaries.json"), []byte(dailyJSON), 0o644))
	return dir
}

// resetFlags restores every flag to its default so package-level command
// state does not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecordsCommand(t *testing.T) {
	dir := writeDataDir(t)
	out, err := run(t, "records", "--data-dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Fastest Pace (<5km)")
	require.Contains(t, out, "6:15 min/km")
	require.Contains(t, out, "2024-03-01")
}

func TestLoadCommandMethod(t *testing.T) {
	dir := writeDataDir(t)
	out, err := run(t, "load", "--data-dir", dir, "--method", "duration_hr_basic")
	require.NoError(t, err)
	require.Contains(t, out, "Method: duration_hr_basic")
	require.Contains(t, out, "2024-03-06")

	_, err = run(t, "load", "--data-dir", dir, "--method", "banister")
	require.Error(t, err)
}

func TestCorrelateCommand(t *testing.T) {
	dir := writeDataDir(t)
	out, err := run(t, "correlate", "--data-dir", dir, "--x", "avg_stress", "--y", "resting_hr")
	require.NoError(t, err)
	require.Contains(t, out, "avg_stress vs. resting_hr")
	require.Contains(t, out, "1.000")

	out, err = run(t, "correlate", "--data-dir", dir, "--key-pairs")
	require.NoError(t, err)
	require.Contains(t, out, "Average Stress vs. Resting Heart Rate (Same Day)")

	_, err = run(t, "correlate", "--data-dir", dir)
	require.ErrorContains(t, err, "--key-pairs")
}

func TestZonesAndWellnessMarkdown(t *testing.T) {
	dir := writeDataDir(t)
	out, err := run(t, "zones", "--data-dir", dir, "--period", "monthly", "--markdown")
	require.NoError(t, err)
	require.Contains(t, out, "Time in zone (minutes, monthly)")
	require.Contains(t, out, "| ")

	out, err = run(t, "wellness", "--data-dir", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Wellness (weekly)")
	require.Contains(t, out, "Running (weekly)")

	_, err = run(t, "wellness", "--data-dir", dir, "--period", "daily")
	require.Error(t, err)
}

func TestAnalyzeCommandWritesTables(t *testing.T) {
	dir := writeDataDir(t)
	outDir := filepath.Join(t.TempDir(), "out")
	metrics := filepath.Join(t.TempDir(), "fitinsights.prom")

	out, err := run(t, "analyze", "--data-dir", dir, "--out", outDir, "--format", "csv", "--metrics-file", metrics)
	require.NoError(t, err)
	require.Contains(t, out, "Output:")
	require.FileExists(t, filepath.Join(outDir, "report.json"))
	require.FileExists(t, filepath.Join(outDir, "personal_records.csv"))
	require.FileExists(t, metrics)

	_, err = run(t, "analyze", "--data-dir", dir, "--out", outDir, "--format", "csv")
	require.Error(t, err, "non-empty output directory without --overwrite")

	_, err = run(t, "analyze", "--data-dir", dir, "--out", outDir, "--format", "csv", "--overwrite")
	require.NoError(t, err)
}

func TestBadRange(t *testing.T) {
	dir := writeDataDir(t)
	_, err := run(t, "records", "--data-dir", dir, "--start", "03/01/2024")
	require.ErrorContains(t, err, "--start")

	_, err = run(t, "records", "--data-dir", dir, "--start", "2024-03-10", "--end", "2024-03-01")
	require.Error(t, err)
}
