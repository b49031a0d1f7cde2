package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/records"
)

type stubSource struct{}

func (stubSource) FetchActivities(context.Context, string, time.Time, time.Time) ([]records.RawActivity, error) {
	run := func(id, day string, km, minutes, hr float64) records.RawActivity {
		return records.RawActivity{
			"activityId":     id,
			"activityType":   map[string]any{"typeKey": "running"},
			"startTimeLocal": day + " 07:00:00",
			"distance":       km * 1000,
			"duration":       minutes * 60,
			"averageHR":      hr,
			"hrTimeInZone_2": minutes * 60,
		}
	}
	return []records.RawActivity{
		run("a", "2024-03-01", 4.0, 25, 150),
		run("b", "2024-03-03", 10.2, 55, 140),
		run("c", "2024-03-06", 21.1, 110, 155),
		{"activityId": "broken", "startTimeLocal": "2024-03-01 18:00:00", "distance": "far"},
	}, nil
}

func (stubSource) FetchDailySummaries(context.Context, string, time.Time, time.Time) ([]records.RawDay, error) {
	return []records.RawDay{
		{"calendarDate": "2024-03-01", "restingHeartRate": 50, "averageStressLevel": 20},
		{"calendarDate": "2024-03-02", "restingHeartRate": 52, "averageStressLevel": -1},
	}, nil
}

func (stubSource) FetchSleep(context.Context, string, time.Time, time.Time) ([]records.RawSleep, error) {
	return nil, nil
}

func (stubSource) FetchHrv(context.Context, string, time.Time, time.Time) ([]records.RawHrv, error) {
	return nil, nil
}

func testReport(t *testing.T) *fitinsights.Report {
	t.Helper()
	req := fitinsights.Request{
		User:   "alex",
		Start:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Params: fitinsights.DefaultParams(),
	}
	r, err := fitinsights.Analyze(context.Background(), stubSource{}, req)
	require.NoError(t, err)
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSVProducesEveryTable(t *testing.T) {
	r := testReport(t)
	outDir := filepath.Join(t.TempDir(), "out")

	res, err := Write(r, Options{OutDir: outDir, Format: "csv"})
	require.NoError(t, err)
	require.Equal(t, FormatCSV, res.Format)
	require.Len(t, res.Tables, len(Tables(r)))

	for name, path := range res.Tables {
		_, err := os.Stat(path)
		require.NoError(t, err, name)
	}
	_, err = os.Stat(res.ReportPath)
	require.NoError(t, err)

	summary, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	require.Contains(t, string(summary), "User: alex")

	prs := readCSV(t, res.Tables[TablePersonalRecords])
	require.Equal(t, []string{
		"family", "criterion", "label", "value", "unit",
		"achieved_date", "activity_id", "activity_name", "annotation",
	}, prs[0])

	load := readCSV(t, res.Tables[TableTrainingLoad])
	require.Len(t, load, 1+len(r.Load))
	require.Equal(t, "2024-03-01", load[1][0])
	require.Equal(t, "", load[1][3], "chronic load is blank before enough history")

	warnings := readCSV(t, res.Tables[TableWarnings])
	require.Len(t, warnings, 1+len(r.Warnings))
	require.NotEmpty(t, r.Warnings)
}

func TestWriteRefusesNonEmptyDirWithoutOverwrite(t *testing.T) {
	r := testReport(t)
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0o644))

	_, err := Write(r, Options{OutDir: outDir, Format: "json"})
	require.ErrorContains(t, err, "not empty")

	_, err = Write(r, Options{OutDir: outDir, Format: "json", Overwrite: true})
	require.NoError(t, err)
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	_, err := Write(testReport(t), Options{OutDir: t.TempDir(), Format: "avro"})
	require.ErrorContains(t, err, "unsupported format")

	_, err = Write(nil, Options{OutDir: t.TempDir()})
	require.Error(t, err)
}

func TestRenderJSONTables(t *testing.T) {
	r := testReport(t)
	files, err := Render(r, FormatJSON)
	require.NoError(t, err)

	var daily []map[string]any
	require.NoError(t, json.Unmarshal(files["daily_load.json"], &daily))
	require.Len(t, daily, 3)
	require.Equal(t, "2024-03-01", daily[0]["date"])

	var metrics []map[string]any
	require.NoError(t, json.Unmarshal(files["daily_metrics.json"], &metrics))
	require.Len(t, metrics, 2)
	require.Nil(t, metrics[1]["avg_stress"], "no-data stress marker is not a value")

	var report fitinsights.Report
	require.NoError(t, json.Unmarshal(files[reportFile], &report))
	require.Equal(t, r.Key, report.Key)
}

func TestRenderParquetTables(t *testing.T) {
	files, err := Render(testReport(t), FormatParquet)
	require.NoError(t, err)

	for _, name := range []string{"training_load.parquet", "personal_records.parquet", "warnings.parquet"} {
		data, ok := files[name]
		require.True(t, ok, name)
		require.True(t, bytes.HasPrefix(data, []byte("PAR1")), name)
		require.True(t, bytes.HasSuffix(data, []byte("PAR1")), name)
	}
}

func TestRenderWorkbook(t *testing.T) {
	r := testReport(t)
	files, err := Render(r, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, files, 3)

	f, err := excelize.OpenReader(bytes.NewReader(files[workbookFile]))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.NotContains(t, sheets, "Sheet1")
	for _, tbl := range Tables(r) {
		require.Contains(t, sheets, tbl.Name)
	}

	rows, err := f.GetRows(TableDailyLoad)
	require.NoError(t, err)
	require.Equal(t, []string{"date", "load", "activities"}, rows[0])
	require.Len(t, rows, 4)
}

func TestWriteCountsRowsPerRun(t *testing.T) {
	for i := 0; i < 2; i++ {
		r := testReport(t)
		_, err := Write(r, Options{OutDir: t.TempDir(), Format: "json", Overwrite: true})
		require.NoError(t, err)

		nonEmpty := 0
		for _, tbl := range Tables(r) {
			if len(tbl.Rows) > 0 {
				nonEmpty++
			}
		}
		n, err := testutil.GatherAndCount(r.Metrics.Registry(), "fit_insights_analysis_output_rows_total")
		require.NoError(t, err)
		require.Equal(t, nonEmpty, n)

		path := filepath.Join(t.TempDir(), "run.prom")
		require.NoError(t, r.Metrics.WriteTextfile(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(data), `fit_insights_analysis_output_rows_total{table="daily_load"} 3`)
	}
}
