package grid

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// PendingEdits holds uncommitted cell input: supplier id -> day of month -> raw text.
type PendingEdits map[int64]map[int]string

func (p PendingEdits) Set(supplierID int64, day int, raw string) {
	row, ok := p[supplierID]
	if !ok {
		row = map[int]string{}
		p[supplierID] = row
	}
	row[day] = raw
}

func (p PendingEdits) Get(supplierID int64, day int) (string, bool) {
	raw, ok := p[supplierID][day]
	return raw, ok
}

// Empty reports whether no supplier has an edited cell.
func (p PendingEdits) Empty() bool {
	for _, row := range p {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

func (p PendingEdits) Len() int {
	n := 0
	for _, row := range p {
		n += len(row)
	}
	return n
}

func (p PendingEdits) Clone() PendingEdits {
	out := make(PendingEdits, len(p))
	for id, row := range p {
		cp := make(map[int]string, len(row))
		for day, raw := range row {
			cp[day] = raw
		}
		out[id] = cp
	}
	return out
}

type editedCell struct {
	SupplierID int64
	Day        int
	Raw        string
}

// cells flattens the edits ordered by supplier id then day.
func (p PendingEdits) cells() []editedCell {
	out := make([]editedCell, 0, p.Len())
	for id, row := range p {
		for day, raw := range row {
			out = append(out, editedCell{SupplierID: id, Day: day, Raw: raw})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupplierID != out[j].SupplierID {
			return out[i].SupplierID < out[j].SupplierID
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// ParseQty turns raw cell input into liters. Unparseable or non-finite input counts as 0.
func ParseQty(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatQty renders a quantity the way the grid displays it: no trailing zeros.
func FormatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
