// Package schedule generates monthly-spaced payment dates for installment
// expenses and recurring fixed expenses.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// FixedExpenseMonths is the number of occurrences materialized for a fixed expense.
const FixedExpenseMonths = 12

// amountPlaces is the stored precision of every amount column.
const amountPlaces = 2

// Entry is a single scheduled occurrence.
type Entry struct {
	Date   time.Time
	Month  int
	Year   int
	Amount decimal.Decimal
}

// AddMonths advances t by n calendar months. The day of month is preserved when
// the target month has it and clamped to the month's last day otherwise, so
// Jan 31 + 1 month is Feb 28 (or 29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Generate returns count entries starting at anchor, one calendar month apart,
// each carrying amount.
func Generate(anchor time.Time, count int, amount decimal.Decimal) []Entry {
	if count <= 0 {
		return []Entry{}
	}
	amounts := make([]decimal.Decimal, count)
	for i := range amounts {
		amounts[i] = amount
	}
	return GenerateAmounts(anchor, amounts)
}

// GenerateAmounts is Generate with a distinct amount per entry.
func GenerateAmounts(anchor time.Time, amounts []decimal.Decimal) []Entry {
	entries := make([]Entry, 0, len(amounts))
	for i, amount := range amounts {
		date := AddMonths(anchor, i)
		entries = append(entries, Entry{
			Date:   date,
			Month:  int(date.Month()),
			Year:   date.Year(),
			Amount: amount,
		})
	}
	return entries
}

// Split divides total into count installment amounts. Each amount is
// total/count truncated to the stored precision, and the leftover cents are
// spread one per installment over the last ones. Amounts never differ by more
// than one cent and always sum to total.
func Split(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return []decimal.Decimal{}
	}

	n := decimal.NewFromInt(int64(count))
	each := total.DivRound(n, amountPlaces+4).Truncate(amountPlaces)
	cent := decimal.New(1, -amountPlaces)
	if total.IsNegative() {
		cent = cent.Neg()
	}
	leftover := total.Sub(each.Mul(n)).Div(cent).IntPart()

	amounts := make([]decimal.Decimal, count)
	for i := range amounts {
		amounts[i] = each
		if int64(count-i) <= leftover {
			amounts[i] = each.Add(cent)
		}
	}
	return amounts
}

// EndDate returns the date of the last of n monthly occurrences starting at start.
func EndDate(start time.Time, n int) time.Time {
	if n <= 0 {
		return start
	}
	return AddMonths(start, n-1)
}
