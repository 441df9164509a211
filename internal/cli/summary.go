package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"milkdesk/internal/api"
	"milkdesk/internal/summary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (r *Runner) summaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Monthly payouts and quarterly premiums",
	}
	cmd.AddCommand(r.summaryMonthlyCommand(), r.summaryQuarterlyCommand())
	return cmd
}

func (r *Runner) summaryMonthlyCommand() *cobra.Command {
	var (
		year, month     int
		period, city    string
		export, receipt bool
		out             string
	)
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly payout summary per supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := summary.ParsePeriod(period)
			if err != nil {
				return err
			}
			if year == 0 || month == 0 {
				now := r.now()
				if year == 0 {
					year = now.Year()
				}
				if month == 0 {
					month = int(now.Month())
				}
			}
			query := api.MonthlyQuery{Year: year, Month: month, Period: p, City: city}

			if export || receipt {
				if export && receipt && out != "" {
					return errors.New("--out names a single file; use --export and --receipts separately")
				}
				if export {
					name := outputName(out, summary.MonthlyExportName(year, month))
					if err := r.download(cmd, name, func(ctx context.Context) ([]byte, error) {
						return r.client.ExportMonthly(ctx, query)
					}); err != nil {
						return err
					}
				}
				if receipt {
					name := outputName(out, summary.ReceiptsName(year, month))
					if err := r.download(cmd, name, func(ctx context.Context) ([]byte, error) {
						return r.client.MonthlyReceipts(ctx, query)
					}); err != nil {
						return err
					}
				}
				return nil
			}

			rows, err := r.client.MonthlySummaries(cmd.Context(), query)
			if err != nil {
				return err
			}
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeMonthlySummary(cmd.OutOrStdout(), rows)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&year, "year", 0, "Year (defaults to the current year)")
	fs.IntVar(&month, "month", 0, "Month 1-12 (defaults to the current month)")
	fs.StringVar(&period, "period", summary.PeriodAll, "first, second or all")
	fs.StringVar(&city, "city", "", "Only suppliers from this city")
	fs.BoolVar(&export, "export", false, "Download the summary workbook")
	fs.BoolVar(&receipt, "receipts", false, "Download the payout receipts workbook")
	fs.StringVar(&out, "out", "", "Output file for the download")
	return cmd
}

func (r *Runner) summaryQuarterlyCommand() *cobra.Command {
	var (
		year, quarter int
		export        bool
		out           string
	)
	cmd := &cobra.Command{
		Use:   "quarterly",
		Short: "Quarterly premium summary per supplier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := r.now()
			if year == 0 {
				year = now.Year()
			}
			if quarter == 0 {
				quarter = summary.QuarterOf(int(now.Month()))
			}
			query := api.QuarterlyQuery{Year: year, Quarter: quarter}

			if export {
				name := outputName(out, summary.QuarterlyExportName(year, quarter))
				return r.download(cmd, name, func(ctx context.Context) ([]byte, error) {
					return r.client.ExportQuarterly(ctx, query)
				})
			}

			rows, err := r.client.QuarterlySummaries(cmd.Context(), query)
			if err != nil {
				return err
			}
			if r.options.JSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeQuarterlySummary(cmd.OutOrStdout(), rows)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&year, "year", 0, "Year (defaults to the current year)")
	fs.IntVar(&quarter, "quarter", 0, "Quarter 1-4 (defaults to the current quarter)")
	fs.BoolVar(&export, "export", false, "Download the summary workbook")
	fs.StringVar(&out, "out", "", "Output file for the download")
	return cmd
}

func outputName(out, fallback string) string {
	if out != "" {
		return out
	}
	return fallback
}

// download saves a server-generated blob to path.
func (r *Runner) download(cmd *cobra.Command, path string, fetch func(ctx context.Context) ([]byte, error)) error {
	blob, err := trackCall(r.logger, "download", []zap.Field{zap.String("path", path)}, func() ([]byte, error) {
		return fetch(cmd.Context())
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(blob))
	return nil
}
