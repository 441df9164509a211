package cli

import (
	"fmt"

	"milkdesk/internal/api"
	"milkdesk/internal/grid"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (r *Runner) qualityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Fat percentage (mm) readings",
	}
	cmd.AddCommand(
		r.qualityListCommand(),
		r.qualitySetCommand(),
		r.qualityDeleteCommand(),
	)
	return cmd
}

func (r *Runner) qualityListCommand() *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "list <supplier>",
		Short: "List a supplier's readings for the month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sel, err := sf.selection(r.now())
			if err != nil {
				return err
			}
			g, err := r.loadGrid(cmd.Context(), sel)
			if err != nil {
				return err
			}
			s, ok := g.Supplier(id)
			if !ok {
				return fmt.Errorf("%w: %d", grid.ErrUnknownSupplier, id)
			}

			readings := g.QualityReadings(id)
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), readings)
			}
			return writeQualityReadings(cmd.OutOrStdout(), s, readings)
		},
	}
	sf.register(cmd, false)
	return cmd
}

func (r *Runner) qualitySetCommand() *cobra.Command {
	var entryID int64
	cmd := &cobra.Command{
		Use:   "set <supplier> <date> <mm>",
		Short: "Create or update one reading",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			supplierID, err := parseID(args[0])
			if err != nil {
				return err
			}
			date, err := resolveDate(grid.CurrentSelection(r.now()), args[1])
			if err != nil {
				return err
			}
			pct, err := parseFatPct(args[2])
			if err != nil {
				return err
			}

			upsert := api.QualityUpsert{Date: date, SupplierID: supplierID, FatPct: pct}
			if entryID > 0 {
				upsert.ID = &entryID
			}
			if _, err := trackCall(r.logger, "upsert_quality", []zap.Field{zap.Int64("supplier_id", supplierID), zap.String("date", date)}, func() (struct{}, error) {
				return struct{}{}, r.client.UpsertEntry(cmd.Context(), upsert)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %.2f mm for supplier %d on %s\n", pct, supplierID, date)
			return nil
		},
	}
	cmd.Flags().Int64Var(&entryID, "id", 0, "Entry id of an existing reading")
	return cmd
}

func (r *Runner) qualityDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a reading by entry id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := trackCall(r.logger, "delete_entry", []zap.Field{zap.Int64("entry_id", id)}, func() (struct{}, error) {
				return struct{}{}, r.client.DeleteEntry(cmd.Context(), id)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		},
	}
}
