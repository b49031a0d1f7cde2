package pipeline

import (
	"fmt"
	"strings"
)

// Format is an output table encoding.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatJSON    Format = "json"
)

// ParseFormat resolves a format name; empty means parquet.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatParquet, nil
	case FormatParquet, FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected parquet|csv|xlsx|json)", s)
}

// Options configures Write.
type Options struct {
	OutDir    string
	Format    string // parquet|csv|xlsx|json
	Overwrite bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir   string `json:"output_dir"`
	Format      Format `json:"format"`
	ReportPath  string `json:"report_path"`
	SummaryPath string `json:"summary_path"`
	// Tables maps each table name to the file holding it. With xlsx every
	// table points at the same workbook.
	Tables map[string]string `json:"tables"`
}

// ColumnKind is the storage type of a column.
type ColumnKind int

const (
	Text ColumnKind = iota
	Number
	Integer
)

// Column describes one table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table is one typed output table. Cells are string, float64, int64 or nil
// for an absent value.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Header returns the column names.
func (t Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
