package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"milkdesk/internal/api"
	"milkdesk/internal/grid"
	"milkdesk/internal/session"
	"milkdesk/internal/summary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type commandError struct {
	message string
	err     error
}

func (e *commandError) Error() string {
	return e.message
}

func (e *commandError) Unwrap() error {
	return e.err
}

func friendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrNotSignedIn):
		return "Not signed in: set API_TOKEN or pass --token."
	case errors.Is(err, session.ErrExpired):
		return "Session expired: sign in again and update API_TOKEN."
	case errors.Is(err, session.ErrForbidden), errors.Is(err, api.ErrUnauthorized):
		return "Access denied: the token is invalid or lacks permission."
	case errors.Is(err, api.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, grid.ErrFetch):
		return "Could not load data from the server: " + err.Error()
	case errors.Is(err, grid.ErrNothingToSave):
		return "No changes to save."
	case errors.Is(err, grid.ErrInvalidPeriod), errors.Is(err, summary.ErrInvalidPeriod):
		return "Invalid period: " + err.Error()
	default:
		return err.Error()
	}
}

// trackCall runs one API action and logs how it went.
func trackCall[T any](logger *zap.Logger, name string, fields []zap.Field, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	fields = append(fields,
		zap.String("action", name),
		zap.Int64("ms", time.Since(start).Milliseconds()),
		zap.Bool("ok", err == nil),
	)
	if err != nil {
		logger.Warn("action failed", append(fields, zap.Error(err))...)
	} else {
		logger.Info("action", fields...)
	}
	return result, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func parseDay(value string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid day %q", value)
	}
	return day, nil
}

func parseFatPct(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid fat percentage %q", value)
	}
	return v, nil
}

// resolveDate accepts a full YYYY-MM-DD date or a day of the selected month.
func resolveDate(sel grid.Selection, value string) (string, error) {
	value = strings.TrimSpace(value)
	if day, err := strconv.Atoi(value); err == nil {
		if day < 1 || day > sel.DaysInMonth() {
			return "", fmt.Errorf("day %d is outside %04d-%02d", day, sel.Year, sel.Month)
		}
		return sel.Date(day), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, want YYYY-MM-DD or a day of month", value)
	}
	return t.Format(time.DateOnly), nil
}

// parseMonth reads YYYY-MM.
func parseMonth(value string) (int, int, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", value)
	}
	return t.Year(), int(t.Month()), nil
}

type selectionFlags struct {
	year   int
	month  int
	period string
}

func (f *selectionFlags) register(cmd *cobra.Command, withPeriod bool) {
	cmd.Flags().IntVar(&f.year, "year", 0, "Year (defaults to the current year)")
	cmd.Flags().IntVar(&f.month, "month", 0, "Month 1-12 (defaults to the current month)")
	if withPeriod {
		cmd.Flags().StringVar(&f.period, "period", "", "FIRST_HALF, SECOND_HALF or FULL (defaults by today's day)")
	}
}

// selection fills unset flags from now: current year and month, period by day of month.
func (f *selectionFlags) selection(now time.Time) (grid.Selection, error) {
	sel := grid.CurrentSelection(now)
	if f.year != 0 {
		sel.Year = f.year
	}
	if f.month != 0 {
		sel.Month = f.month
	}
	if f.period != "" {
		p, err := grid.ParsePeriod(f.period)
		if err != nil {
			return grid.Selection{}, err
		}
		sel.Period = p
	}
	if err := sel.Validate(); err != nil {
		return grid.Selection{}, err
	}
	return sel, nil
}
