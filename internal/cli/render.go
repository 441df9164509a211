package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"milkdesk/internal/api"
	"milkdesk/internal/grid"
	"milkdesk/internal/summary"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func writeSuppliers(w io.Writer, suppliers []api.Supplier) error {
	tw := newTable(w)
	row(tw, "#", "ID", "NAME", "CITY", "PHONE", "AGRICULTURE NO")
	for _, s := range suppliers {
		row(tw,
			strconv.Itoa(s.OrderIndex),
			strconv.FormatInt(s.ID, 10),
			s.FullName(),
			s.City,
			s.Phone,
			s.AgricultureNumber,
		)
	}
	if len(suppliers) == 0 {
		row(tw, "", "", "No suppliers found")
	}
	return tw.Flush()
}

// writeGrid prints the daily-entry grid. Edited cells carry a trailing '*', days with a
// fat% reading a trailing apostrophe.
func writeGrid(w io.Writer, g *grid.Grid) error {
	days := g.Days()
	totals := g.Totals()

	fmt.Fprintf(w, "Daily entries %s\n", g.Selection())

	tw := newTable(w)
	header := []string{"SUPPLIER"}
	for _, d := range days {
		header = append(header, strconv.Itoa(d))
	}
	row(tw, append(header, "TOTAL", "MM")...)

	edits := g.Edits()
	for _, s := range g.Suppliers() {
		cells := []string{fmt.Sprintf("%d %s", s.ID, s.FullName())}
		for _, d := range days {
			cell := g.DisplayValue(s.ID, d)
			if _, edited := edits.Get(s.ID, d); edited {
				cell += "*"
			} else if g.HasQuality(s.ID, d) {
				cell += "'"
			}
			cells = append(cells, cell)
		}
		cells = append(cells, grid.FormatQty(totals.RowTotals[s.ID]))
		if avg, ok := g.AverageFatPct(s.ID); ok {
			cells = append(cells, fmt.Sprintf("%.2f", avg))
		} else {
			cells = append(cells, "-")
		}
		row(tw, cells...)
	}

	if len(g.Suppliers()) == 0 {
		row(tw, "No suppliers found")
	} else {
		footer := []string{"Column Totals"}
		for _, d := range days {
			footer = append(footer, fmt.Sprintf("%.2f", totals.ColumnTotals[d]))
		}
		row(tw, append(footer, fmt.Sprintf("%.2f", totals.GrandTotal), "")...)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if g.HasChanges() {
		fmt.Fprintf(w, "Unsaved changes: %d cell(s)\n", g.Edits().Len())
	}
	return nil
}

func writeQualityReadings(w io.Writer, s api.Supplier, readings []grid.QualityReading) error {
	fmt.Fprintf(w, "Quality readings for %s\n", s.FullName())
	tw := newTable(w)
	row(tw, "DATE", "MM", "ENTRY ID")
	for _, r := range readings {
		id := "new"
		if r.ID != nil {
			id = strconv.FormatInt(*r.ID, 10)
		}
		row(tw, r.Date, fmt.Sprintf("%.2f", r.FatPct), id)
	}
	if len(readings) == 0 {
		row(tw, "No readings")
	}
	return tw.Flush()
}

func writeMonthlySummary(w io.Writer, rows []api.MonthlySummary) error {
	tw := newTable(w)
	row(tw, "RB", "LAST NAME", "FIRST NAME", "QTY (L)", "MM", "PRICE/MM", "PRICE FOR QTY", "VAT %", "PRICE WITH VAT", "STIMULATION", "TOTAL")
	for _, r := range rows {
		row(tw,
			strconv.Itoa(r.SerialNum),
			r.LastName,
			r.FirstName,
			grid.FormatQty(r.Qty),
			fmt.Sprintf("%.1f", r.FatPct),
			grid.FormatQty(r.PricePerFatPct),
			fmt.Sprintf("%.2f", r.PricePerQty),
			fmt.Sprintf("%.2f", r.TaxPercentage),
			fmt.Sprintf("%.2f", r.PriceWithTax),
			grid.FormatQty(r.Stimulation),
			fmt.Sprintf("%.1f", r.TotalAmount),
		)
	}
	if len(rows) == 0 {
		row(tw, "", "No data found")
	} else {
		f := summary.MonthlyTotals(rows)
		row(tw, "", "Totals:", "",
			f.Qty.StringFixed(2), "", "",
			f.PricePerQty.StringFixed(2), "",
			f.PriceWithTax.StringFixed(2),
			f.Stimulation.StringFixed(2),
			f.TotalAmount.StringFixed(2),
		)
	}
	return tw.Flush()
}

func writeQuarterlySummary(w io.Writer, rows []api.QuarterlySummary) error {
	tw := newTable(w)
	row(tw, "RB", "LAST NAME", "FIRST NAME", "QTY", "COWS", "PREMIUM", "TOTAL PREMIUM")
	for _, r := range rows {
		row(tw,
			strconv.Itoa(r.SerialNum),
			r.LastName,
			r.FirstName,
			grid.FormatQty(r.Qty),
			strconv.Itoa(r.Cows),
			grid.FormatQty(r.PremiumPerL),
			grid.FormatQty(r.TotalPremium),
		)
	}
	if len(rows) == 0 {
		row(tw, "", "No data found")
	} else {
		f := summary.QuarterlyTotals(rows)
		row(tw, "", "Totals:", "",
			f.Qty.StringFixed(2),
			strconv.Itoa(f.Cows),
			f.PremiumPerL.StringFixed(2),
			f.TotalPremium.StringFixed(2),
		)
	}
	return tw.Flush()
}
