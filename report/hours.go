/*
hours.go - The hour accumulator underlying every total in the grid

PURPOSE:
  Every cell, row, column, section, user and grand total in a compiled
  report is an HourAccumulator: a pair of committed / not-committed hour
  buckets with a derived total. Hours are decimal.Decimal throughout -
  quarter-hour quantisation and zero-equality checks are load-bearing,
  so binary floating point is never used for hour math.

INVARIANT:
  Accumulating entry-by-entry and re-summing the underlying entries must
  produce identical buckets. Buckets never go negative: upstream guarantees
  non-negative amounts, and tests enforce it.

SEE ALSO:
  - compile.go: The six accumulator families updated per work entry
  - export/workday.go: Consumes totals for day quantisation
*/
package report

import (
	"github.com/shopspring/decimal"
)

// HourAccumulator buckets hours into committed (finalised timesheet) and
// not-committed (still editable). Created zero; mutated only by Add; treated
// as read-only once the owning Report is compiled.
type HourAccumulator struct {
	committed    decimal.Decimal
	notCommitted decimal.Decimal
}

func NewHourAccumulator() *HourAccumulator {
	return &HourAccumulator{}
}

// Add accumulates amount into the committed or not-committed bucket.
// Amounts are expected to be >= 0 (bounded upstream, e.g. <= 24h/day).
func (h *HourAccumulator) Add(amount decimal.Decimal, committed bool) {
	if committed {
		h.committed = h.committed.Add(amount)
	} else {
		h.notCommitted = h.notCommitted.Add(amount)
	}
}

func (h *HourAccumulator) Committed() decimal.Decimal    { return h.committed }
func (h *HourAccumulator) NotCommitted() decimal.Decimal { return h.notCommitted }

// Total returns committed + not-committed.
func (h *HourAccumulator) Total() decimal.Decimal {
	return h.committed.Add(h.notCommitted)
}

func (h *HourAccumulator) IsZero() bool {
	return h.committed.IsZero() && h.notCommitted.IsZero()
}

// Merge returns a new accumulator with bucket-wise sums. Neither operand is
// modified; a nil other is treated as zero.
func (h *HourAccumulator) Merge(other *HourAccumulator) *HourAccumulator {
	merged := NewHourAccumulator()
	merged.committed = h.committed
	merged.notCommitted = h.notCommitted
	if other != nil {
		merged.committed = merged.committed.Add(other.committed)
		merged.notCommitted = merged.notCommitted.Add(other.notCommitted)
	}
	return merged
}
