package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"same_day", date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"zero", date(2024, 1, 15), 0, date(2024, 1, 15)},
		{"clamp_leap_february", date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"clamp_february", date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"clamp_thirty_day_month", date(2024, 3, 31), 1, date(2024, 4, 30)},
		{"year_rollover", date(2024, 11, 30), 3, date(2025, 2, 28)},
		{"twelve_months", date(2024, 3, 1), 12, date(2025, 3, 1)},
		{"no_drift_after_clamp", date(2024, 1, 31), 2, date(2024, 3, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.n))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("installment_example", func(t *testing.T) {
		entries := Generate(date(2024, 1, 15), 3, decimal.NewFromInt(400))
		require.Len(t, entries, 3)

		wantDates := []time.Time{date(2024, 1, 15), date(2024, 2, 15), date(2024, 3, 15)}
		for i, e := range entries {
			assert.Equal(t, wantDates[i], e.Date)
			assert.Equal(t, int(wantDates[i].Month()), e.Month)
			assert.Equal(t, wantDates[i].Year(), e.Year)
			assert.True(t, e.Amount.Equal(decimal.NewFromInt(400)))
		}
	})

	t.Run("fixed_expense_twelve_months", func(t *testing.T) {
		entries := Generate(date(2024, 3, 1), FixedExpenseMonths, decimal.NewFromInt(150))
		require.Len(t, entries, 12)
		assert.Equal(t, date(2024, 3, 1), entries[0].Date)
		assert.Equal(t, date(2025, 2, 1), entries[11].Date)
		assert.Equal(t, 2, entries[11].Month)
		assert.Equal(t, 2025, entries[11].Year)
	})

	t.Run("non_positive_count", func(t *testing.T) {
		assert.Empty(t, Generate(date(2024, 1, 1), 0, decimal.NewFromInt(1)))
		assert.Empty(t, Generate(date(2024, 1, 1), -2, decimal.NewFromInt(1)))
	})
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total string
		count int
		want  []string
	}{
		{"even", "1200", 3, []string{"400", "400", "400"}},
		{"remainder_on_last", "100", 3, []string{"33.33", "33.33", "33.34"}},
		{"remainder_spread_over_last", "100", 7, []string{"14.28", "14.28", "14.28", "14.29", "14.29", "14.29", "14.29"}},
		{"small_total_many_installments", "0.15", 10, []string{"0.01", "0.01", "0.01", "0.01", "0.01", "0.02", "0.02", "0.02", "0.02", "0.02"}},
		{"single", "99.99", 1, []string{"99.99"}},
		{"bankers_rounding", "0.25", 2, []string{"0.12", "0.13"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			got := Split(total, tt.count)
			require.Len(t, got, len(tt.want))

			sum := decimal.Zero
			for i, amount := range got {
				assert.True(t, amount.Equal(decimal.RequireFromString(tt.want[i])), "amount[%d] = %s, want %s", i, amount, tt.want[i])
				sum = sum.Add(amount)
			}
			assert.True(t, sum.Equal(total), "sum %s != total %s", sum, total)
		})
	}

	assert.Empty(t, Split(decimal.NewFromInt(10), 0))
}

func TestSplitStaysWithinOneCent(t *testing.T) {
	cases := []struct {
		total string
		count int
	}{
		{"1.50", 100},
		{"0.15", 10},
		{"3.50", 100},
		{"100.05", 30},
		{"0.01", 360},
		{"99999999.99", 360},
	}

	cent := decimal.RequireFromString("0.01")
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_over_%d", tc.total, tc.count), func(t *testing.T) {
			total := decimal.RequireFromString(tc.total)
			got := Split(total, tc.count)
			require.Len(t, got, tc.count)

			sum := decimal.Zero
			lowest, highest := got[0], got[0]
			for i, amount := range got {
				assert.False(t, amount.IsNegative(), "amount[%d] = %s is negative", i, amount)
				assert.True(t, amount.Equal(amount.Round(2)), "amount[%d] = %s has more than two places", i, amount)
				lowest = decimal.Min(lowest, amount)
				highest = decimal.Max(highest, amount)
				sum = sum.Add(amount)
			}
			assert.True(t, highest.Sub(lowest).LessThanOrEqual(cent), "spread %s..%s exceeds one cent", lowest, highest)
			assert.True(t, sum.Equal(total), "sum %s != total %s", sum, total)
		})
	}
}

func TestEndDate(t *testing.T) {
	assert.Equal(t, date(2025, 2, 1), EndDate(date(2024, 3, 1), FixedExpenseMonths))
	assert.Equal(t, date(2024, 3, 1), EndDate(date(2024, 3, 1), 0))
}
