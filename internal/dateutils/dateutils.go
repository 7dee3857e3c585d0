// Package dateutils provides the day-first date handling shared by the parsers,
// the aggregator and the report layer.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layout constants
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutDayFirst = "02/01/2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// DayFirstFormats are tried in order. Day always precedes month unless the
// year leads, as in ISO dates.
var DayFirstFormats = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/06",
	"2/1/06 15:04",
	"2-1-2006",
	"2-1-2006 15:04:05",
	"2.1.2006",
	DateLayoutISO,
	DateLayoutFull,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseDayFirst parses a date written day-first. The result is in UTC.
// Returns the parsed time and the layout that matched.
func ParseDayFirst(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	for _, layout := range DayFirstFormats {
		if t, err := time.ParseInLocation(layout, dateStr, time.UTC); err == nil {
			return t, layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	return whitespace.ReplaceAllString(dateStr, " ")
}

// FormatDayFirst renders a date as DD/MM/YYYY.
func FormatDayFirst(date time.Time) string {
	return date.Format(DateLayoutDayFirst)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// StartOfDay truncates a time to midnight in its own location.
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month at 00:00.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// MonthKey returns the month-end bucket of a date, at 00:00 UTC.
func MonthKey(date time.Time) time.Time {
	return EndOfMonth(time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// CompareDates compares two dates ignoring time components.
// Returns -1 if date1 < date2, 0 if equal, 1 if date1 > date2.
func CompareDates(date1, date2 time.Time) int {
	d1 := StartOfDay(date1)
	d2 := StartOfDay(date2)

	if d1.Before(d2) {
		return -1
	}
	if d1.After(d2) {
		return 1
	}
	return 0
}
