package grid

import "milkdesk/internal/api"

type cellKey struct {
	supplierID int64
	date       string
}

// baseline indexes fetched entries by (supplier, date). Duplicates resolve to the
// first entry in list order.
type baseline map[cellKey]api.DailyEntry

func newBaseline(entries []api.DailyEntry) baseline {
	b := make(baseline, len(entries))
	for _, e := range entries {
		key := cellKey{supplierID: e.SupplierID, date: e.Date}
		if _, ok := b[key]; ok {
			continue
		}
		b[key] = e
	}
	return b
}

func (b baseline) entry(sel Selection, supplierID int64, day int) (api.DailyEntry, bool) {
	e, ok := b[cellKey{supplierID: supplierID, date: sel.Date(day)}]
	return e, ok
}

func (b baseline) qty(sel Selection, supplierID int64, day int) float64 {
	if e, ok := b.entry(sel, supplierID, day); ok {
		return e.Qty
	}
	return 0
}

func effectiveValue(b baseline, edits PendingEdits, sel Selection, supplierID int64, day int) float64 {
	if raw, ok := edits.Get(supplierID, day); ok {
		return ParseQty(raw)
	}
	return b.qty(sel, supplierID, day)
}

type Totals struct {
	RowTotals    map[int64]float64
	ColumnTotals map[int]float64
	GrandTotal   float64
}

// DeriveTotals sums effective cell values over the visible days of sel: per supplier,
// per day, and overall. It has no side effects.
func DeriveTotals(suppliers []api.Supplier, entries []api.DailyEntry, edits PendingEdits, sel Selection) Totals {
	return deriveTotals(suppliers, newBaseline(entries), edits, sel)
}

func deriveTotals(suppliers []api.Supplier, b baseline, edits PendingEdits, sel Selection) Totals {
	days := sel.Days()
	totals := Totals{
		RowTotals:    make(map[int64]float64, len(suppliers)),
		ColumnTotals: make(map[int]float64, len(days)),
	}
	for _, day := range days {
		totals.ColumnTotals[day] = 0
	}

	for _, s := range suppliers {
		var row float64
		for _, day := range days {
			v := effectiveValue(b, edits, sel, s.ID, day)
			row += v
			totals.ColumnTotals[day] += v
		}
		totals.RowTotals[s.ID] = row
		totals.GrandTotal += row
	}
	return totals
}
