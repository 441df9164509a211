package grid

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	ExportSheetName = "Daily Entries"
	ExportFileName  = "DailyEntries.xlsx"
)

// ExportRows builds the sheet content: a header, one row per supplier with effective
// values, row total and average fat%, and a totals row when there are suppliers.
func (g *Grid) ExportRows() [][]any {
	days := g.Days()
	totals := g.Totals()

	header := make([]any, 0, len(days)+3)
	header = append(header, "Supplier")
	for _, d := range days {
		header = append(header, strconv.Itoa(d))
	}
	header = append(header, "Total", "mm")

	rows := [][]any{header}
	for _, s := range g.suppliers {
		row := make([]any, 0, len(header))
		row = append(row, s.FullName())
		for _, d := range days {
			row = append(row, g.EffectiveValue(s.ID, d))
		}
		row = append(row, totals.RowTotals[s.ID])
		if avg, ok := g.AverageFatPct(s.ID); ok {
			row = append(row, fmt.Sprintf("%.2f", avg))
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	if len(g.suppliers) > 0 {
		footer := make([]any, 0, len(header)+1)
		footer = append(footer, "Column Totals")
		for _, d := range days {
			footer = append(footer, fmt.Sprintf("%.2f", totals.ColumnTotals[d]))
		}
		footer = append(footer, fmt.Sprintf("%.2f", totals.GrandTotal), "", "")
		rows = append(rows, footer)
	}
	return rows
}

// Export writes the grid as an XLSX workbook.
func (g *Grid) Export(w io.Writer) error {
	if err := g.Ready(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := g.ExportRows()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for i, h := range rows[0] {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(len(fmt.Sprint(h)) + 5)
		if err := f.SetColWidth(ExportSheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
