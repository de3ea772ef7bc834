package models

import "time"

// TradingDay returns the trading day (YYYY-MM-DD) for a given timestamp.
// The day boundary is fixed at UTC midnight regardless of process timezone.
func TradingDay(ts time.Time) string {
	return ts.UTC().Format("2006-01-02")
}

// TradingDayNow returns the trading day for the current moment.
func TradingDayNow() string {
	return TradingDay(time.Now())
}
