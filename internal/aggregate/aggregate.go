// Package aggregate derives balances, totals and trend series from a snapshot
// of one user's transactions. Every function is pure; sums are exact decimals,
// so results do not depend on iteration order.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
)

// WeekDays is the length of the trend series.
const WeekDays = 7

// Balance is the sum of every amount.
func Balance(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// TotalIncome sums the positive amounts.
func TotalIncome(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsIncome() {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// TotalExpense is the absolute value of the sum of the negative amounts.
func TotalExpense(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsExpense() {
			total = total.Add(tx.Amount)
		}
	}
	return total.Abs()
}

// WeeklySeries returns one point per calendar day for the seven days ending
// on today, oldest first. Days are calendar days in loc.
func WeeklySeries(txs []core.Transaction, today time.Time, loc *time.Location) []core.DailyPoint {
	if loc == nil {
		loc = time.Local
	}
	last := midnight(today, loc)

	points := make([]core.DailyPoint, WeekDays)
	index := make(map[string]int, WeekDays)
	for i := range points {
		day := last.AddDate(0, 0, i-(WeekDays-1))
		date := day.Format(time.DateOnly)
		points[i] = core.DailyPoint{
			Day:   day,
			Date:  date,
			Label: day.Format("02"),
			Total: decimal.Zero,
		}
		index[date] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		points[i].Total = points[i].Total.Add(tx.Amount)
	}
	return points
}

// ByCategory totals amounts per category in display order. Categories with
// no transactions are omitted.
func ByCategory(txs []core.Transaction) []core.CategoryAmount {
	totals := make(map[core.Category]*core.CategoryAmount)
	for _, tx := range txs {
		ca, ok := totals[tx.Category]
		if !ok {
			ca = &core.CategoryAmount{Category: tx.Category, Amount: decimal.Zero}
			totals[tx.Category] = ca
		}
		ca.Amount = ca.Amount.Add(tx.Amount)
		ca.Count++
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for _, c := range core.Categories() {
		if ca, ok := totals[c]; ok {
			out = append(out, *ca)
		}
	}
	return out
}

// Summarize bundles every aggregate for the dashboard.
func Summarize(txs []core.Transaction, today time.Time, loc *time.Location) core.Summary {
	return core.Summary{
		Balance:    Balance(txs),
		Income:     TotalIncome(txs),
		Expense:    TotalExpense(txs),
		Count:      len(txs),
		ByCategory: ByCategory(txs),
		Weekly:     WeeklySeries(txs, today, loc),
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
