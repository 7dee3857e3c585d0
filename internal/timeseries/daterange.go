package timeseries

import (
	"fmt"
	"time"

	"arsat/finanzas/internal/dateutils"
	"arsat/finanzas/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// IsZero reports whether neither bound is set.
func (dr DateRange) IsZero() bool {
	return dr.Start.IsZero() && dr.End.IsZero()
}

// Contains reports whether t falls within the range. Bounds are whole days and
// inclusive; an unset bound is open.
func (dr DateRange) Contains(t time.Time) bool {
	if !dr.Start.IsZero() && dateutils.CompareDates(t, dr.Start) < 0 {
		return false
	}
	if !dr.End.IsZero() && dateutils.CompareDates(t, dr.End) > 0 {
		return false
	}
	return true
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// TableDateRange returns the span of the valid dates in a column.
func TableDateRange(t *models.Table, dateCol string) DateRange {
	idx := t.ColumnIndex(dateCol)
	if idx < 0 {
		return DateRange{}
	}
	var dr DateRange
	for _, row := range t.Rows {
		d := row[idx].Date
		if d.Valid {
			dr = dr.Merge(DateRange{Start: d.Time, End: d.Time})
		}
	}
	return dr
}
