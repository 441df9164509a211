package summary

import (
	"testing"

	"milkdesk/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: PeriodAll},
		{in: "first", want: PeriodFirst},
		{in: " Second ", want: PeriodSecond},
		{in: "ALL", want: PeriodAll},
		{in: "third", wantErr: true},
		{in: "FIRST_HALF", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuarterlyTotals(t *testing.T) {
	rows := []api.QuarterlySummary{
		{SupplierID: 1, Qty: 1200.5, Cows: 3, PremiumPerL: 0.1, TotalPremium: 120.05},
		{SupplierID: 2, Qty: 800.25, Cows: 2, PremiumPerL: 0.2, TotalPremium: 160.05},
	}

	footer := QuarterlyTotals(rows)
	assert.Equal(t, "2000.75", footer.Qty.StringFixed(2))
	assert.Equal(t, 5, footer.Cows)
	assert.Equal(t, "0.30", footer.PremiumPerL.StringFixed(2))
	assert.Equal(t, "280.10", footer.TotalPremium.StringFixed(2))

	empty := QuarterlyTotals(nil)
	assert.True(t, empty.Qty.IsZero())
	assert.Zero(t, empty.Cows)
}

func TestMonthlyTotals(t *testing.T) {
	rows := []api.MonthlySummary{
		{Qty: 310, PricePerQty: 15500, PriceWithTax: 17360, Stimulation: 500, TotalAmount: 17860},
		{Qty: 90.5, PricePerQty: 4525.4, PriceWithTax: 5068.45, Stimulation: 0, TotalAmount: 5068.45},
	}

	footer := MonthlyTotals(rows)
	assert.Equal(t, "400.50", footer.Qty.StringFixed(2))
	assert.Equal(t, "20025.40", footer.PricePerQty.StringFixed(2))
	assert.Equal(t, "22428.45", footer.PriceWithTax.StringFixed(2))
	assert.Equal(t, "500.00", footer.Stimulation.StringFixed(2))
	assert.Equal(t, "22928.45", footer.TotalAmount.StringFixed(2))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "monthly_summary_2025_2.xlsx", MonthlyExportName(2025, 2))
	assert.Equal(t, "receipts_2025_12.xlsx", ReceiptsName(2025, 12))
	assert.Equal(t, "quarterly_summary_2024_3.xlsx", QuarterlyExportName(2024, 3))
}

func TestQuarterOf(t *testing.T) {
	assert.Equal(t, 1, QuarterOf(1))
	assert.Equal(t, 1, QuarterOf(3))
	assert.Equal(t, 2, QuarterOf(4))
	assert.Equal(t, 4, QuarterOf(12))
	assert.Zero(t, QuarterOf(13))
}
