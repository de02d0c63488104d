package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Tasks"

var baseColumns = []string{"Farm", "Year", "Field", "TaskID", "Machine", "Crop", "Start", "End", "TimeRange", "TLGs"}

// Columns returns the fixed columns followed by the sorted property names.
func (r Report) Columns() []string {
	return append(append([]string{}, baseColumns...), r.PropertyNames()...)
}

// Rows flattens the report one task per row under Columns. Property cells
// hold numbers; missing properties are nil.
func (r Report) Rows() [][]any {
	props := r.PropertyNames()
	var out [][]any
	for _, t := range r.Tasks() {
		row := []any{t.Farm, t.Year, t.Field, t.TaskID, t.Machine, t.Crop, t.Start, t.End, t.TimeRange(), strings.Join(t.TLGs, ", ")}
		byName := make(map[string]Property, len(t.Properties))
		for _, p := range t.Properties {
			if _, dup := byName[p.Name]; !dup {
				byName[p.Name] = p
			}
		}
		for _, name := range props {
			p, ok := byName[name]
			switch {
			case !ok:
				row = append(row, nil)
			case p.Value.IsScaled:
				row = append(row, p.Value.Scaled)
			default:
				row = append(row, p.Value.Raw)
			}
		}
		out = append(out, row)
	}
	return out
}

// WriteXLSX saves the report as a single-sheet workbook.
func WriteXLSX(path string, r Report) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := r.Columns()
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := x.SetSheetRow(SheetName, "A1", &hdr); err != nil {
		return err
	}
	for i, row := range r.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := x.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := x.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	if err := x.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
