package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"milkdesk/internal/api"

	"go.uber.org/zap"
)

// DefaultFatPct prefills a newly added quality reading.
const DefaultFatPct = 3.8

// QualityReading is one fat% measurement as edited by the user. ID is nil for readings
// that do not exist on the server yet.
type QualityReading struct {
	ID     *int64
	Date   string
	FatPct float64
}

// AverageFatPct averages the readings of the supplier on the visible days. The second
// result is false when there is no reading to average.
func (g *Grid) AverageFatPct(supplierID int64) (float64, bool) {
	days := g.Days()
	var sum float64
	var n int
	for _, e := range g.entries {
		if e.SupplierID != supplierID || e.FatPct == nil {
			continue
		}
		if !e.InMonth(g.sel.Year, g.sel.Month) || !slices.Contains(days, e.Day()) {
			continue
		}
		sum += *e.FatPct
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (g *Grid) FatPctForDay(supplierID int64, day int) (float64, bool) {
	e, ok := g.baseline.entry(g.sel, supplierID, day)
	if !ok || e.FatPct == nil {
		return 0, false
	}
	return *e.FatPct, true
}

func (g *Grid) HasQuality(supplierID int64, day int) bool {
	_, ok := g.FatPctForDay(supplierID, day)
	return ok
}

// QualityReadings lists the supplier's readings for the whole month, by date.
func (g *Grid) QualityReadings(supplierID int64) []QualityReading {
	var out []QualityReading
	for _, e := range g.entries {
		if e.SupplierID != supplierID || e.FatPct == nil || !e.InMonth(g.sel.Year, g.sel.Month) {
			continue
		}
		id := e.ID
		out = append(out, QualityReading{ID: &id, Date: e.Date, FatPct: *e.FatPct})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Compare(out[i].Date, out[j].Date) < 0
	})
	return out
}

// NewQualityReading is the template for an added reading: first visible day, default fat%.
func (g *Grid) NewQualityReading() QualityReading {
	day := 1
	if days := g.Days(); len(days) > 0 {
		day = days[0]
	}
	return QualityReading{Date: g.sel.Date(day), FatPct: DefaultFatPct}
}

type QualityPlan struct {
	Deletes []int64
	Upserts []api.QualityUpsert
}

func (p QualityPlan) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Upserts) == 0
}

// PlanQuality diffs the stored readings against the edited list: stored ids missing
// from the edited list are deleted and every edited reading is upserted.
func PlanQuality(supplierID int64, existing, edited []QualityReading) QualityPlan {
	kept := map[int64]struct{}{}
	for _, r := range edited {
		if r.ID != nil {
			kept[*r.ID] = struct{}{}
		}
	}

	var plan QualityPlan
	for _, r := range existing {
		if r.ID == nil {
			continue
		}
		if _, ok := kept[*r.ID]; !ok {
			plan.Deletes = append(plan.Deletes, *r.ID)
		}
	}
	for _, r := range edited {
		plan.Upserts = append(plan.Upserts, api.QualityUpsert{
			ID:         r.ID,
			Date:       r.Date,
			SupplierID: supplierID,
			FatPct:     r.FatPct,
		})
	}
	return plan
}

// SaveQuality replaces the supplier's fat% readings for the month with edited, then
// reloads the grid. Pending quantity edits are lost by the reload; callers guard this
// with Guard first.
func (g *Grid) SaveQuality(ctx context.Context, store Store, supplierID int64, edited []QualityReading) error {
	if _, ok := g.Supplier(supplierID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSupplier, supplierID)
	}
	for _, r := range edited {
		if !(api.DailyEntry{Date: r.Date}).InMonth(g.sel.Year, g.sel.Month) {
			return fmt.Errorf("reading date %s is outside %04d-%02d", r.Date, g.sel.Year, g.sel.Month)
		}
	}

	plan := PlanQuality(supplierID, g.QualityReadings(supplierID), edited)
	var errs []error
	for _, id := range plan.Deletes {
		if err := store.DeleteEntry(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	for _, upsert := range plan.Upserts {
		if err := store.UpsertEntry(ctx, upsert); err != nil {
			errs = append(errs, err)
		}
	}

	saveErr := errors.Join(errs...)
	if saveErr != nil {
		g.logger.Warn("saving quality failed", zap.Int64("supplier_id", supplierID), zap.Error(saveErr))
		saveErr = fmt.Errorf("save quality: %w", saveErr)
	} else {
		g.logger.Info("quality saved",
			zap.Int64("supplier_id", supplierID),
			zap.Int("deleted", len(plan.Deletes)),
			zap.Int("upserted", len(plan.Upserts)),
		)
	}

	return errors.Join(saveErr, g.Load(ctx, store))
}
