/*
period.go - Time-column generation

PURPOSE:
  Turns the report's overall date range plus a frequency into the ordered
  sequence of time columns that forms the grid's horizontal axis.

INVARIANTS:
  - Columns are contiguous and non-overlapping
  - Their union is exactly [start, end]: the first and last columns are
    clipped to the range (and marked Partial when clipping shortened them)
  - A single-day range yields exactly one column regardless of frequency

ROUTING:
  Each column exposes an O(1) lookup key. ColumnKey(date, freq) computes
  the same key from a work entry's date, so the compiler routes entries to
  columns with a single map lookup and no scanning.
*/
package report

import (
	"fmt"
)

// EntireKey is the sentinel lookup key of the single whole-range column.
const EntireKey = "entire"

// TimeColumn is one contiguous date sub-range of the report grid.
type TimeColumn struct {
	Start   Date
	End     Date // inclusive
	Key     string
	Label   string
	Partial bool // clipped against the report range
}

func (c TimeColumn) Contains(d Date) bool {
	return d.AfterOrEqual(c.Start) && d.BeforeOrEqual(c.End)
}

// Columns generates the ordered column sequence for a range and frequency.
// The range must be concrete (non-zero) and ordered by the time Columns is
// called; the compiler resolves "all" ranges before invoking it.
func Columns(period Period, freq Frequency) ([]TimeColumn, error) {
	if period.IsZero() || period.End.Before(period.Start) {
		return nil, NewConfigurationError("range", period.String())
	}

	if freq == FrequencyEntire {
		return []TimeColumn{{
			Start: period.Start,
			End:   period.End,
			Key:   EntireKey,
			Label: period.String(),
		}}, nil
	}

	var columns []TimeColumn
	cur := alignStart(period.Start, freq)
	for cur.BeforeOrEqual(period.End) {
		next := stepForward(cur, freq)
		col := TimeColumn{
			Start: maxDate(cur, period.Start),
			End:   minDate(next.AddDays(-1), period.End),
			Key:   cur.Key(freq),
			Label: columnLabel(cur, freq),
		}
		col.Partial = col.Start.After(cur) || col.End.Before(next.AddDays(-1))
		columns = append(columns, col)
		cur = next
	}
	return columns, nil
}

// ColumnKey returns the lookup key of the column containing d, without
// materialising the column. Must agree with Columns for every in-range date.
func ColumnKey(d Date, freq Frequency) string {
	if freq == FrequencyEntire {
		return EntireKey
	}
	return alignStart(d, freq).Key(freq)
}

// Key formats a date as a column lookup key for the given frequency.
func (d Date) Key(freq Frequency) string {
	return string(freq) + ":" + d.String()
}

func alignStart(d Date, freq Frequency) Date {
	switch freq {
	case FrequencyWeek:
		return d.StartOfWeek()
	case FrequencyMonth:
		return d.StartOfMonth()
	case FrequencyQuarter:
		return d.StartOfQuarter()
	default: // FrequencyDay
		return d
	}
}

func stepForward(d Date, freq Frequency) Date {
	switch freq {
	case FrequencyWeek:
		return d.AddDays(7)
	case FrequencyMonth:
		return d.AddMonths(1)
	case FrequencyQuarter:
		return d.AddMonths(3)
	default:
		return d.AddDays(1)
	}
}

func columnLabel(aligned Date, freq Frequency) string {
	switch freq {
	case FrequencyWeek:
		return "Week of " + aligned.String()
	case FrequencyMonth:
		return aligned.Time().Format("Jan 2006")
	case FrequencyQuarter:
		q := (int(aligned.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", q, aligned.Year())
	default:
		return aligned.String()
	}
}

func minDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}
