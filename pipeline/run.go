// Package pipeline writes an analysis report as typed output tables for
// charting and downstream tools.
package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	fitinsights "github.com/lucasjlepore/fit-insights"
)

const (
	reportFile   = "report.json"
	summaryFile  = "summary.md"
	workbookFile = "report.xlsx"
)

// Write renders every table of r into opts.OutDir, plus report.json and
// summary.md.
func Write(r *fitinsights.Report, opts Options) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("report is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	files, err := Render(r, format)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(opts.OutDir, name), files[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	res := &Result{
		OutputDir:   opts.OutDir,
		Format:      format,
		ReportPath:  filepath.Join(opts.OutDir, reportFile),
		SummaryPath: filepath.Join(opts.OutDir, summaryFile),
		Tables:      make(map[string]string),
	}
	for _, t := range Tables(r) {
		res.Tables[t.Name] = filepath.Join(opts.OutDir, tableFile(t.Name, format))
		r.Metrics.RecordRows(t.Name, len(t.Rows))
	}
	return res, nil
}

// Render encodes r in memory, keyed by file name.
func Render(r *fitinsights.Report, format Format) (map[string][]byte, error) {
	files := make(map[string][]byte)

	report, err := marshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", reportFile, err)
	}
	files[reportFile] = report
	files[summaryFile] = []byte(summaryMarkdown(r))

	tables := Tables(r)
	if format == FormatXLSX {
		data, err := marshalWorkbook(tables)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", workbookFile, err)
		}
		files[workbookFile] = data
		return files, nil
	}

	for _, t := range tables {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatCSV:
			data, err = marshalCSV(t)
		case FormatJSON:
			data, err = marshalJSON(tableObjects(t))
		case FormatParquet:
			data, err = marshalParquet(t)
		default:
			return nil, fmt.Errorf("unsupported format %q", format)
		}
		name := tableFile(t.Name, format)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		files[name] = data
	}
	return files, nil
}

func tableFile(name string, format Format) string {
	if format == FormatXLSX {
		return workbookFile
	}
	return name + "." + string(format)
}

func summaryMarkdown(r *fitinsights.Report) string {
	var b strings.Builder
	b.WriteString("# Training Summary\n\n```text\n")
	b.WriteString(fitinsights.BuildNotes(r))
	b.WriteString("\n```\n")
	return b.String()
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tableObjects(t Table) []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			obj[c.Name] = row[i]
		}
		out = append(out, obj)
	}
	return out
}

func marshalCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header()); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 6, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
