package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
	Count    int
}

// DailyPoint is one day of the trend series.
type DailyPoint struct {
	Day   time.Time       // midnight of the day in the series' location
	Date  string          // ISO date, 2006-01-02
	Label string          // day of month, zero padded
	Total decimal.Decimal // net amount of the day
}

// Summary is the derived view of one user's ledger. It is never persisted.
type Summary struct {
	Balance    decimal.Decimal
	Income     decimal.Decimal
	Expense    decimal.Decimal // absolute value
	Count      int
	ByCategory []CategoryAmount
	Weekly     []DailyPoint
}
