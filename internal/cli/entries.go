package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"milkdesk/internal/grid"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (r *Runner) entriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"daily"},
		Short:   "Daily milk quantities per supplier",
	}
	cmd.AddCommand(
		r.entriesShowCommand(),
		r.entriesSetCommand(),
		r.entriesExportCommand(),
		r.entriesEditCommand(),
	)
	return cmd
}

// loadGrid fetches the month of sel. A failed fetch is the grid's blocking error.
func (r *Runner) loadGrid(ctx context.Context, sel grid.Selection) (*grid.Grid, error) {
	g, err := grid.New(sel, r.logger)
	if err != nil {
		return nil, err
	}
	if err := g.Load(ctx, r.client); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Runner) entriesShowCommand() *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the grid with row, column and grand totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := sf.selection(r.now())
			if err != nil {
				return err
			}
			g, err := r.loadGrid(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), gridJSON(g))
			}
			return writeGrid(cmd.OutOrStdout(), g)
		},
	}
	sf.register(cmd, true)
	return cmd
}

func (r *Runner) entriesSetCommand() *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "set <supplier> <day> <qty> [<supplier> <day> <qty>...]",
		Short: "Record quantities and save them in one bulk request",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%3 != 0 {
				return errors.New("expected <supplier> <day> <qty> triples")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			sel, err := sf.selection(r.now())
			if err != nil {
				return err
			}
			sel.Period = grid.Full

			g, err := r.loadGrid(cmd.Context(), sel)
			if err != nil {
				return err
			}
			for i := 0; i < len(args); i += 3 {
				id, err := parseID(args[i])
				if err != nil {
					return err
				}
				day, err := parseDay(args[i+1])
				if err != nil {
					return err
				}
				if _, err := g.SetCell(id, day, args[i+2]); err != nil {
					return err
				}
			}

			n, err := g.Save(cmd.Context(), r.client)
			if errors.Is(err, grid.ErrNothingToSave) {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes to save.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d entr%s.\n", n, plural(n, "y", "ies"))
			return nil
		},
	}
	sf.register(cmd, false)
	return cmd
}

func (r *Runner) entriesExportCommand() *cobra.Command {
	var sf selectionFlags
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the visible grid to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := sf.selection(r.now())
			if err != nil {
				return err
			}
			g, err := r.loadGrid(cmd.Context(), sel)
			if err != nil {
				return err
			}
			if err := exportGrid(g, out, r.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", sel, out)
			return nil
		},
	}
	sf.register(cmd, true)
	cmd.Flags().StringVar(&out, "out", grid.ExportFileName, "Output file")
	return cmd
}

// exportGrid writes the workbook next to path and renames it into place, so a failed
// export leaves an existing file untouched.
func exportGrid(g *grid.Grid, path string, logger *zap.Logger) error {
	if err := g.Ready(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".milkdesk-export-*.xlsx")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if err := g.Export(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	logger.Info("grid exported", zap.String("path", path), zap.Stringer("selection", g.Selection()))
	return nil
}

type gridRowJSON struct {
	SupplierID int64           `json:"supplierId"`
	Name       string          `json:"name"`
	Cells      map[int]float64 `json:"cells"`
	Total      float64         `json:"total"`
	AvgFatPct  *float64        `json:"avgFatPct,omitempty"`
	Edited     map[int]string  `json:"edited,omitempty"`
}

type gridJSONView struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Period       grid.Period     `json:"period"`
	Days         []int           `json:"days"`
	Rows         []gridRowJSON   `json:"rows"`
	ColumnTotals map[int]float64 `json:"columnTotals"`
	GrandTotal   float64         `json:"grandTotal"`
}

func gridJSON(g *grid.Grid) gridJSONView {
	sel := g.Selection()
	totals := g.Totals()
	edits := g.Edits()
	view := gridJSONView{
		Year:         sel.Year,
		Month:        sel.Month,
		Period:       sel.Period,
		Days:         g.Days(),
		ColumnTotals: totals.ColumnTotals,
		GrandTotal:   totals.GrandTotal,
	}
	for _, s := range g.Suppliers() {
		row := gridRowJSON{
			SupplierID: s.ID,
			Name:       s.FullName(),
			Cells:      map[int]float64{},
			Total:      totals.RowTotals[s.ID],
			Edited:     edits[s.ID],
		}
		for _, d := range view.Days {
			row.Cells[d] = g.EffectiveValue(s.ID, d)
		}
		if avg, ok := g.AverageFatPct(s.ID); ok {
			row.AvgFatPct = &avg
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
