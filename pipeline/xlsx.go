package pipeline

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// marshalWorkbook writes every table to its own sheet with a frozen, bold
// header row.
func marshalWorkbook(tables []Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2E75B6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, t := range tables {
		idx, err := f.NewSheet(t.Name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", t.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		cols := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			cols[j] = c.Name
		}
		if err := f.SetSheetRow(t.Name, "A1", &cols); err != nil {
			return nil, fmt.Errorf("write %s header: %w", t.Name, err)
		}
		if len(t.Columns) > 0 {
			last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(t.Name, "A1", last, header); err != nil {
				return nil, fmt.Errorf("style %s header: %w", t.Name, err)
			}
		}
		if err := f.SetPanes(t.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("freeze %s header: %w", t.Name, err)
		}

		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return nil, err
			}
			values := append([]any(nil), row...)
			if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("write %s row %d: %w", t.Name, r+1, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
