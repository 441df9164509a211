package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"milkdesk/internal/api"

	"go.uber.org/zap"
)

var (
	ErrFetch           = errors.New("fetch failed")
	ErrNotLoaded       = errors.New("grid is not loaded")
	ErrNothingToSave   = errors.New("no changes to save")
	ErrUnknownSupplier = errors.New("unknown supplier")
	ErrDayOutOfRange   = errors.New("day is outside the visible period")
)

// Store is the subset of the cooperative API the grid works against.
type Store interface {
	ListSuppliers(ctx context.Context) ([]api.Supplier, error)
	ListDailyEntries(ctx context.Context, year, month int) ([]api.DailyEntry, error)
	BulkUpsertEntries(ctx context.Context, upserts []api.EntryUpsert) error
	UpsertEntry(ctx context.Context, upsert api.QualityUpsert) error
	DeleteEntry(ctx context.Context, id int64) error
}

// Grid is the daily-entry grid for one month: a fetched baseline of suppliers and
// entries plus the user's uncommitted edits. It is not safe for concurrent use.
type Grid struct {
	sel       Selection
	suppliers []api.Supplier
	entries   []api.DailyEntry
	baseline  baseline
	edits     PendingEdits
	loaded    bool
	err       error
	logger    *zap.Logger
}

func New(sel Selection, logger *zap.Logger) (*Grid, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grid{
		sel:      sel,
		baseline: baseline{},
		edits:    PendingEdits{},
		logger:   logger.Named("grid"),
	}, nil
}

// Load replaces the snapshot with a fresh fetch for the selected year and month and
// drops all pending edits. On failure the grid enters the error state reported by Err.
func (g *Grid) Load(ctx context.Context, store Store) error {
	suppliers, err := store.ListSuppliers(ctx)
	if err != nil {
		return g.fail(fmt.Errorf("%w: suppliers: %w", ErrFetch, err))
	}
	entries, err := store.ListDailyEntries(ctx, g.sel.Year, g.sel.Month)
	if err != nil {
		return g.fail(fmt.Errorf("%w: daily entries: %w", ErrFetch, err))
	}

	g.Replace(suppliers, entries)
	g.logger.Debug("grid loaded",
		zap.Stringer("selection", g.sel),
		zap.Int("suppliers", len(g.suppliers)),
		zap.Int("entries", len(g.entries)),
	)
	return nil
}

// Replace installs a snapshot directly, ordering suppliers by orderIndex.
func (g *Grid) Replace(suppliers []api.Supplier, entries []api.DailyEntry) {
	g.suppliers = api.SortByOrderIndex(suppliers)
	g.entries = slices.Clone(entries)
	g.baseline = newBaseline(g.entries)
	g.edits = PendingEdits{}
	g.loaded = true
	g.err = nil
}

func (g *Grid) fail(err error) error {
	g.err = err
	g.logger.Warn("grid fetch failed", zap.Stringer("selection", g.sel), zap.Error(err))
	return err
}

// Err is the blocking error of the last fetch, nil once a fetch succeeds.
func (g *Grid) Err() error {
	return g.err
}

// Ready reports whether the grid can be rendered.
func (g *Grid) Ready() error {
	if g.err != nil {
		return g.err
	}
	if !g.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (g *Grid) Selection() Selection {
	return g.sel
}

// SetPeriod changes the visible days. Pending edits stay, since the fetched month is unchanged.
func (g *Grid) SetPeriod(p Period) error {
	next := g.sel
	next.Period = p
	if err := next.Validate(); err != nil {
		return err
	}
	g.sel = next
	return nil
}

// SetMonth switches to another month. The snapshot must be reloaded afterwards.
func (g *Grid) SetMonth(year, month int) error {
	next := g.sel
	next.Year, next.Month = year, month
	if err := next.Validate(); err != nil {
		return err
	}
	g.sel = next
	g.loaded = false
	g.edits = PendingEdits{}
	return nil
}

func (g *Grid) Suppliers() []api.Supplier {
	return g.suppliers
}

func (g *Grid) Entries() []api.DailyEntry {
	return g.entries
}

func (g *Grid) Days() []int {
	return g.sel.Days()
}

func (g *Grid) Supplier(id int64) (api.Supplier, bool) {
	return api.FindSupplier(g.suppliers, id)
}

func (g *Grid) OriginalQty(supplierID int64, day int) float64 {
	return g.baseline.qty(g.sel, supplierID, day)
}

func (g *Grid) EffectiveValue(supplierID int64, day int) float64 {
	return effectiveValue(g.baseline, g.edits, g.sel, supplierID, day)
}

// DisplayValue is the text shown in a cell: the raw edit if any, else the baseline quantity.
func (g *Grid) DisplayValue(supplierID int64, day int) string {
	if raw, ok := g.edits.Get(supplierID, day); ok {
		return raw
	}
	return FormatQty(g.OriginalQty(supplierID, day))
}

// SetCell applies a committed cell input (the blur of an input box). Input equal to
// what the cell already displays is ignored. Reports whether an edit was recorded.
func (g *Grid) SetCell(supplierID int64, day int, raw string) (bool, error) {
	if _, ok := g.Supplier(supplierID); !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownSupplier, supplierID)
	}
	if !slices.Contains(g.Days(), day) {
		return false, fmt.Errorf("%w: %d not in %s", ErrDayOutOfRange, day, g.sel)
	}
	if raw == g.DisplayValue(supplierID, day) {
		return false, nil
	}
	g.edits.Set(supplierID, day, raw)
	return true, nil
}

// HasChanges is the unsaved-changes signal.
func (g *Grid) HasChanges() bool {
	return !g.edits.Empty()
}

func (g *Grid) Edits() PendingEdits {
	return g.edits.Clone()
}

func (g *Grid) Totals() Totals {
	return deriveTotals(g.suppliers, g.baseline, g.edits, g.sel)
}

// PendingUpserts lists the edited cells whose parsed value differs from the baseline,
// ordered by supplier id then date.
func (g *Grid) PendingUpserts() []api.EntryUpsert {
	var upserts []api.EntryUpsert
	for _, cell := range g.edits.cells() {
		qty := ParseQty(cell.Raw)
		if qty == g.OriginalQty(cell.SupplierID, cell.Day) {
			continue
		}
		upserts = append(upserts, api.EntryUpsert{
			Date:       g.sel.Date(cell.Day),
			Qty:        qty,
			SupplierID: cell.SupplierID,
		})
	}
	return upserts
}

// Save sends the pending upserts in one bulk request, then clears the edits and
// refreshes the baseline. A failed submission leaves the edits untouched.
func (g *Grid) Save(ctx context.Context, store Store) (int, error) {
	upserts := g.PendingUpserts()
	if len(upserts) == 0 {
		return 0, ErrNothingToSave
	}

	if err := store.BulkUpsertEntries(ctx, upserts); err != nil {
		g.logger.Warn("bulk save failed", zap.Int("upserts", len(upserts)), zap.Error(err))
		return 0, fmt.Errorf("save entries: %w", err)
	}
	g.logger.Info("entries saved", zap.Stringer("selection", g.sel), zap.Int("upserts", len(upserts)))

	g.edits = PendingEdits{}
	if err := g.Load(ctx, store); err != nil {
		return len(upserts), err
	}
	return len(upserts), nil
}

// Discard drops every pending edit without contacting the server.
func (g *Grid) Discard() {
	g.edits = PendingEdits{}
}
