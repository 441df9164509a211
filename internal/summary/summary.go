package summary

import (
	"errors"
	"fmt"
	"strings"

	"milkdesk/internal/api"

	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("period must be first, second or all")

// Monthly report periods as the summary endpoints name them.
const (
	PeriodFirst  = "first"
	PeriodSecond = "second"
	PeriodAll    = "all"
)

// ParsePeriod normalizes a monthly report period; empty means the whole month.
func ParsePeriod(raw string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "":
		return PeriodAll, nil
	case PeriodFirst, PeriodSecond, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, raw)
	}
}

// QuarterlyFooter carries the column totals under the quarterly premium table.
type QuarterlyFooter struct {
	Qty          decimal.Decimal
	Cows         int
	PremiumPerL  decimal.Decimal
	TotalPremium decimal.Decimal
}

func QuarterlyTotals(rows []api.QuarterlySummary) QuarterlyFooter {
	footer := QuarterlyFooter{
		Qty:          decimal.Zero,
		PremiumPerL:  decimal.Zero,
		TotalPremium: decimal.Zero,
	}
	for _, r := range rows {
		footer.Qty = footer.Qty.Add(decimal.NewFromFloat(r.Qty))
		footer.Cows += r.Cows
		footer.PremiumPerL = footer.PremiumPerL.Add(decimal.NewFromFloat(r.PremiumPerL))
		footer.TotalPremium = footer.TotalPremium.Add(decimal.NewFromFloat(r.TotalPremium))
	}
	return footer
}

// MonthlyFooter sums the monetary columns of the monthly payout table.
type MonthlyFooter struct {
	Qty          decimal.Decimal
	PricePerQty  decimal.Decimal
	PriceWithTax decimal.Decimal
	Stimulation  decimal.Decimal
	TotalAmount  decimal.Decimal
}

func MonthlyTotals(rows []api.MonthlySummary) MonthlyFooter {
	footer := MonthlyFooter{
		Qty:          decimal.Zero,
		PricePerQty:  decimal.Zero,
		PriceWithTax: decimal.Zero,
		Stimulation:  decimal.Zero,
		TotalAmount:  decimal.Zero,
	}
	for _, r := range rows {
		footer.Qty = footer.Qty.Add(decimal.NewFromFloat(r.Qty))
		footer.PricePerQty = footer.PricePerQty.Add(decimal.NewFromFloat(r.PricePerQty))
		footer.PriceWithTax = footer.PriceWithTax.Add(decimal.NewFromFloat(r.PriceWithTax))
		footer.Stimulation = footer.Stimulation.Add(decimal.NewFromFloat(r.Stimulation))
		footer.TotalAmount = footer.TotalAmount.Add(decimal.NewFromFloat(r.TotalAmount))
	}
	return footer
}

func MonthlyExportName(year, month int) string {
	return fmt.Sprintf("monthly_summary_%d_%d.xlsx", year, month)
}

func ReceiptsName(year, month int) string {
	return fmt.Sprintf("receipts_%d_%d.xlsx", year, month)
}

func QuarterlyExportName(year, quarter int) string {
	return fmt.Sprintf("quarterly_summary_%d_%d.xlsx", year, quarter)
}

// QuarterOf maps a month to its quarter, 0 for an invalid month.
func QuarterOf(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return (month-1)/3 + 1
}
