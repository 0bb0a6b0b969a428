package exporter

import (
	"strconv"
	"time"
)

// formatFloat formats a monetary value with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatNumber formats a count-like value without trailing zeros, so 3 stays "3"
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDate formats a calendar date, leaving the zero time blank
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
