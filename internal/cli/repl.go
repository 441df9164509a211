package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"milkdesk/internal/grid"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const replHelp = `Commands:
  show                              print the grid
  set <supplier> <day> [qty]        enter a quantity (empty clears the cell)
  save                              send changed cells in one bulk request
  discard                           drop unsaved changes
  period FIRST_HALF|SECOND_HALF|FULL
  month YYYY-MM                     switch month (reloads)
  reload                            fetch the month again
  quality <supplier>                list fat% readings for the month
  quality <supplier> <date>=<mm>... replace the month's readings (date or day)
  quality <supplier> clear          delete the month's readings
  export [file]                     write the visible grid to XLSX
  history [clear]                   show or forget recent commands
  exit                              leave`

func (r *Runner) entriesEditCommand() *cobra.Command {
	var sf selectionFlags
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the grid interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireWrite(cmd); err != nil {
				return err
			}
			sel, err := sf.selection(r.now())
			if err != nil {
				return err
			}
			g, err := grid.New(sel, r.logger)
			if err != nil {
				return err
			}
			e := &editor{
				runner:  r,
				grid:    g,
				in:      bufio.NewScanner(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
				history: newCommandHistory(defaultHistoryMaxEntries),
				logger:  r.logger.Named("repl"),
			}
			return e.run(cmd.Context())
		},
	}
	sf.register(cmd, true)
	return cmd
}

type editor struct {
	runner  *Runner
	grid    *grid.Grid
	in      *bufio.Scanner
	out     io.Writer
	history *commandHistory
	logger  *zap.Logger
}

func (e *editor) run(ctx context.Context) error {
	fmt.Fprintln(e.out, "Daily entries editor (type 'help' for commands, 'exit' to quit)")
	if err := e.grid.Load(ctx, e.runner.client); err != nil {
		e.printError(err)
	} else {
		_ = writeGrid(e.out, e.grid)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(e.out, "> ")
		if !e.in.Scan() {
			if e.grid.HasChanges() {
				fmt.Fprintln(e.out, "\nInput closed; unsaved changes were discarded.")
			}
			return e.in.Err()
		}

		line := strings.TrimSpace(e.in.Text())
		if line == "" {
			continue
		}
		e.history.Append(line)

		quit, err := e.handle(ctx, line)
		if err != nil {
			e.printError(err)
		}
		if quit {
			return nil
		}
	}
}

func (e *editor) printError(err error) {
	fmt.Fprintf(e.out, "Error: %s\n", friendlyError(err))
}

func (e *editor) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "help", "?":
		fmt.Fprintln(e.out, replHelp)
	case "show":
		if err := e.grid.Ready(); err != nil {
			return false, err
		}
		return false, writeGrid(e.out, e.grid)
	case "set":
		return false, e.set(args)
	case "save":
		return false, e.save(ctx)
	case "discard":
		e.grid.Discard()
		fmt.Fprintln(e.out, "Changes discarded.")
	case "period":
		if len(args) != 1 {
			return false, errors.New("usage: period FIRST_HALF|SECOND_HALF|FULL")
		}
		p, err := grid.ParsePeriod(args[0])
		if err != nil {
			return false, err
		}
		if err := e.grid.SetPeriod(p); err != nil {
			return false, err
		}
		return false, e.showIfReady()
	case "month":
		if len(args) != 1 {
			return false, errors.New("usage: month YYYY-MM")
		}
		year, month, err := parseMonth(args[0])
		if err != nil {
			return false, err
		}
		if ok, err := e.guard(ctx); !ok {
			return false, err
		}
		if err := e.grid.SetMonth(year, month); err != nil {
			return false, err
		}
		return false, e.reload(ctx)
	case "reload":
		if ok, err := e.guard(ctx); !ok {
			return false, err
		}
		return false, e.reload(ctx)
	case "quality":
		return false, e.quality(ctx, args)
	case "export":
		path := grid.ExportFileName
		if len(args) > 0 {
			path = args[0]
		}
		if err := exportGrid(e.grid, path, e.logger); err != nil {
			return false, err
		}
		fmt.Fprintf(e.out, "Exported to %s\n", path)
	case "history":
		if len(args) == 1 && strings.EqualFold(args[0], "clear") {
			e.history.Clear()
			return false, nil
		}
		for i, h := range e.history.Entries() {
			fmt.Fprintf(e.out, "%d) %s\n", i+1, h)
		}
	case "exit", "quit":
		ok, err := e.guard(ctx)
		return ok, err
	default:
		return false, fmt.Errorf("unknown command %q, type 'help'", command)
	}
	return false, nil
}

func (e *editor) set(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("usage: set <supplier> <day> [qty]")
	}
	if err := e.grid.Ready(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	day, err := parseDay(args[1])
	if err != nil {
		return err
	}
	raw := ""
	if len(args) == 3 {
		raw = args[2]
	}

	changed, err := e.grid.SetCell(id, day, raw)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(e.out, "Unchanged.")
		return nil
	}
	totals := e.grid.Totals()
	fmt.Fprintf(e.out, "Row total %s, grand total %s\n",
		grid.FormatQty(totals.RowTotals[id]), grid.FormatQty(totals.GrandTotal))
	return nil
}

func (e *editor) save(ctx context.Context) error {
	n, err := e.grid.Save(ctx, e.runner.client)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Saved %d entr%s.\n", n, plural(n, "y", "ies"))
	return nil
}

func (e *editor) reload(ctx context.Context) error {
	if err := e.grid.Load(ctx, e.runner.client); err != nil {
		return err
	}
	return writeGrid(e.out, e.grid)
}

func (e *editor) showIfReady() error {
	if e.grid.Ready() != nil {
		return nil
	}
	return writeGrid(e.out, e.grid)
}

// guard asks what to do with unsaved changes before they would be lost.
func (e *editor) guard(ctx context.Context) (bool, error) {
	return e.grid.Guard(ctx, e.runner.client, e.ask)
}

func (e *editor) ask() grid.GuardChoice {
	fmt.Fprintf(e.out, "You have %d unsaved change(s): [s]ave, [d]iscard, [c]ancel? ", e.grid.Edits().Len())
	if !e.in.Scan() {
		return grid.GuardCancel
	}
	switch strings.ToLower(strings.TrimSpace(e.in.Text())) {
	case "s", "save":
		return grid.GuardSave
	case "d", "discard":
		return grid.GuardDiscard
	default:
		return grid.GuardCancel
	}
}

func (e *editor) quality(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: quality <supplier> [<date>=<mm>...|clear]")
	}
	if err := e.grid.Ready(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, ok := e.grid.Supplier(id)
	if !ok {
		return fmt.Errorf("%w: %d", grid.ErrUnknownSupplier, id)
	}

	existing := e.grid.QualityReadings(id)
	if len(args) == 1 {
		return writeQualityReadings(e.out, s, existing)
	}

	edited, err := parseReadings(e.grid.Selection(), existing, args[1:])
	if err != nil {
		return err
	}
	if ok, err := e.guard(ctx); !ok {
		return err
	}
	if err := e.grid.SaveQuality(ctx, e.runner.client, id, edited); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Saved %d reading(s) for %s.\n", len(edited), s.FullName())
	return writeQualityReadings(e.out, s, e.grid.QualityReadings(id))
}

// parseReadings turns date=mm pairs into the edited reading list. A date that already
// has a reading keeps its entry id.
func parseReadings(sel grid.Selection, existing []grid.QualityReading, args []string) ([]grid.QualityReading, error) {
	if len(args) == 1 && strings.EqualFold(args[0], "clear") {
		return nil, nil
	}

	byDate := map[string]grid.QualityReading{}
	for _, r := range existing {
		byDate[r.Date] = r
	}

	var out []grid.QualityReading
	seen := map[string]bool{}
	for _, arg := range args {
		datePart, pctPart, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid reading %q, want <date>=<mm>", arg)
		}
		date, err := resolveDate(sel, datePart)
		if err != nil {
			return nil, err
		}
		pct, err := parseFatPct(pctPart)
		if err != nil {
			return nil, err
		}
		if seen[date] {
			return nil, fmt.Errorf("reading for %s given twice", date)
		}
		seen[date] = true

		reading := grid.QualityReading{Date: date, FatPct: pct}
		if prev, ok := byDate[date]; ok {
			reading.ID = prev.ID
		}
		out = append(out, reading)
	}
	return out, nil
}
