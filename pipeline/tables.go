package pipeline

import (
	"fmt"
	"math"
	"time"

	fitinsights "github.com/lucasjlepore/fit-insights"
	"github.com/lucasjlepore/fit-insights/zones"
)

// Table names, also used as file stems and sheet names.
const (
	TableTrainingLoad      = "training_load"
	TableDailyLoad         = "daily_load"
	TablePersonalRecords   = "personal_records"
	TableTimeInZone        = "time_in_zone"
	TablePaceByZone        = "pace_by_zone"
	TableAerobicEfficiency = "aerobic_efficiency"
	TableActivities        = "activities"
	TableDailyMetrics      = "daily_metrics"
	TableCorrelations      = "correlations"
	TableWellness          = "wellness"
	TableRunning           = "running"
	TableWarnings          = "warnings"
)

// Tables flattens a report into its output tables, in a fixed order.
func Tables(r *fitinsights.Report) []Table {
	return []Table{
		trainingLoad(r),
		dailyLoad(r),
		personalRecords(r),
		timeInZone(r),
		paceByZone(r),
		aerobicEfficiency(r),
		activities(r),
		dailyMetrics(r),
		correlations(r),
		wellnessTable(r),
		running(r),
		warnings(r),
	}
}

func trainingLoad(r *fitinsights.Report) Table {
	t := Table{Name: TableTrainingLoad, Columns: []Column{
		{"date", Text}, {"raw_load", Number}, {"acute_7d", Number},
		{"chronic_28d", Number}, {"acwr", Number}, {"band", Text},
	}}
	for _, e := range r.Load {
		t.Rows = append(t.Rows, []any{day(e.Date), num(e.RawLoad), opt(e.Acute7d), opt(e.Chronic28d), num(e.ACWR), string(e.Classify())})
	}
	return t
}

func dailyLoad(r *fitinsights.Report) Table {
	t := Table{Name: TableDailyLoad, Columns: []Column{
		{"date", Text}, {"load", Number}, {"activities", Integer},
	}}
	for _, d := range r.DailyLoad {
		t.Rows = append(t.Rows, []any{day(d.Date), num(d.Load), int64(d.Activities)})
	}
	return t
}

func personalRecords(r *fitinsights.Report) Table {
	t := Table{Name: TablePersonalRecords, Columns: []Column{
		{"family", Text}, {"criterion", Text}, {"label", Text}, {"value", Number}, {"unit", Text},
		{"achieved_date", Text}, {"activity_id", Text}, {"activity_name", Text}, {"annotation", Text},
	}}
	for _, e := range r.PersonalRecords {
		t.Rows = append(t.Rows, []any{
			string(e.Family), e.Criterion, e.Label, num(e.Value), e.Unit,
			day(e.AchievedDate), e.ActivityID, e.ActivityName, e.Annotation,
		})
	}
	return t
}

func timeInZone(r *fitinsights.Report) Table {
	t := Table{Name: TableTimeInZone, Columns: []Column{{"period", Text}}}
	for i := 1; i <= zones.Count; i++ {
		t.Columns = append(t.Columns, Column{fmt.Sprintf("zone%d_minutes", i), Number})
	}
	t.Columns = append(t.Columns, Column{"total_minutes", Number})
	for _, row := range r.TimeInZone {
		cells := []any{day(row.Period)}
		for _, m := range row.Minutes {
			cells = append(cells, num(m))
		}
		t.Rows = append(t.Rows, append(cells, num(row.Total())))
	}
	return t
}

func paceByZone(r *fitinsights.Report) Table {
	t := Table{Name: TablePaceByZone, Columns: []Column{
		{"period_start", Text}, {"zone", Text}, {"mean_pace_min_per_km", Number}, {"runs", Integer},
	}}
	for _, row := range r.PaceByZone {
		t.Rows = append(t.Rows, []any{day(row.PeriodStart), row.Zone, num(row.MeanPace), int64(row.Runs)})
	}
	return t
}

func aerobicEfficiency(r *fitinsights.Report) Table {
	t := Table{Name: TableAerobicEfficiency, Columns: []Column{
		{"date", Text}, {"activity_id", Text}, {"pace_min_per_km", Number}, {"avg_hr", Number}, {"distance_km", Number},
	}}
	for _, p := range r.AerobicEfficiency {
		t.Rows = append(t.Rows, []any{day(p.Date), p.ActivityID, num(p.PaceMinPerKm), num(p.AvgHR), num(p.DistanceKm)})
	}
	return t
}

func activities(r *fitinsights.Report) Table {
	t := Table{Name: TableActivities, Columns: []Column{
		{"id", Text}, {"name", Text}, {"date", Text}, {"start_time", Text}, {"type", Text},
		{"duration_minutes", Number}, {"distance_km", Number}, {"pace_min_per_km", Number},
		{"avg_hr", Number}, {"max_hr", Number}, {"calories", Number}, {"aerobic_te", Number},
		{"cadence_avg", Number}, {"vo2max", Number},
	}}
	for i := 1; i <= zones.Count; i++ {
		t.Columns = append(t.Columns, Column{fmt.Sprintf("zone%d_minutes", i), Number})
	}
	for _, a := range r.Activities {
		cells := []any{
			a.ID, a.Name, day(a.Date), a.StartTime.Format(time.RFC3339), a.Type.String(),
			opt(a.DurationMinutes), opt(a.DistanceKm), opt(a.PaceMinPerKm),
			opt(a.AvgHR), opt(a.MaxHR), opt(a.Calories), opt(a.AerobicTE),
			opt(a.CadenceAvg), opt(a.VO2Max),
		}
		for _, m := range a.ZoneMinutes {
			cells = append(cells, num(m))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// dailyMetrics has one column per metric observed anywhere in the daily
// table.
func dailyMetrics(r *fitinsights.Report) Table {
	metrics := r.DailyTable.Metrics()
	t := Table{Name: TableDailyMetrics, Columns: []Column{{"date", Text}}}
	for _, m := range metrics {
		t.Columns = append(t.Columns, Column{m, Number})
	}
	for _, row := range r.DailyTable.Sorted() {
		cells := []any{day(row.Date)}
		for _, m := range metrics {
			v, ok := row.Values[m]
			if !ok {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, num(v))
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func correlations(r *fitinsights.Report) Table {
	t := Table{Name: TableCorrelations, Columns: []Column{
		{"title", Text}, {"x_metric", Text}, {"y_metric", Text}, {"lag", Integer},
		{"pearson_r", Number}, {"sample_count", Integer}, {"slope", Number}, {"intercept", Number},
	}}
	for _, c := range r.Correlations {
		var slope, intercept any
		if c.Fit != nil {
			slope, intercept = num(c.Fit.Slope), num(c.Fit.Intercept)
		}
		t.Rows = append(t.Rows, []any{
			c.Title, c.XMetric, c.YMetric, int64(c.Lag),
			opt(c.PearsonR), int64(c.SampleCount), slope, intercept,
		})
	}
	return t
}

func wellnessTable(r *fitinsights.Report) Table {
	t := Table{Name: TableWellness, Columns: []Column{
		{"period", Text}, {"days", Integer}, {"avg_resting_hr", Number},
		{"avg_stress", Number}, {"avg_sleep_hours", Number}, {"total_steps", Number},
	}}
	for _, row := range r.Wellness {
		t.Rows = append(t.Rows, []any{
			day(row.Period), int64(row.Days), opt(row.AvgRestingHR),
			opt(row.AvgStress), opt(row.AvgSleepHours), num(row.TotalSteps),
		})
	}
	return t
}

func running(r *fitinsights.Report) Table {
	t := Table{Name: TableRunning, Columns: []Column{
		{"period", Text}, {"runs", Integer}, {"total_distance_km", Number},
		{"total_duration_minutes", Number}, {"avg_hr", Number}, {"avg_pace_min_per_km", Number},
	}}
	for _, row := range r.Running {
		t.Rows = append(t.Rows, []any{
			day(row.Period), int64(row.Runs), num(row.TotalDistanceKm),
			num(row.TotalDurationMinutes), opt(row.AvgHR), opt(row.AvgPaceMinPerKm),
		})
	}
	return t
}

func warnings(r *fitinsights.Report) Table {
	t := Table{Name: TableWarnings, Columns: []Column{
		{"kind", Text}, {"record", Text}, {"record_id", Text}, {"field", Text}, {"value", Text},
	}}
	for _, w := range r.Warnings {
		t.Rows = append(t.Rows, []any{string(w.Kind), w.Record, w.RecordID, w.Field, w.Value})
	}
	return t
}

func day(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}

func num(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func opt(v *float64) any {
	if v == nil {
		return nil
	}
	return num(*v)
}
