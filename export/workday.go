/*
workday.go - Workday rounding / redistribution generator

PURPOSE:
  Converts a compiled daily report into whole/half "workday" credits per
  (user, task, day), optionally moving hours booked on weekends/holidays
  onto working days first.

PIPELINE per (user, row):
  a. Redistribution: sum hours on avoided days (toMove) and spread them
     over the non-avoided days via error diffusion; avoided days are
     zeroed. NOTE: this step deliberately collapses committed and
     not-committed hours into a single bucket for the affected row. That
     is a documented simplification of this rarely-used export, not a bug.
  b. Error diffusion: quarter-hour quantisation with a running error so
     the quantised sum never falls below toMove, every amount is a
     non-negative multiple of 0.25h, and none exceeds toMove.
  c. Bucket assignment: workdays = ceil(total x 2) / 2, then split the
     non-zero days into zero/half/full credits (with spill when more
     workdays were earned than days exist to show them).
  d. Calendar assignment: days with the least booked hours are the least
     likely to represent a genuine full day, so ascending-by-hours order
     receives zero, then half, then full credits.
  e. Metrics: workdayTotal, roundingError, compoundedError per row; a
     trailing per-user summary warns when compoundedError != 0.

CALCULATION SCOPE:
  Workday totals are computed over the whole report range. A per-month
  variant exists upstream only as an unfinished sketch; whole-range is the
  sole supported mode pending clarified requirements.

FAILURE SEMANTICS:
  toMove > 0 with zero receiving days is a fatal DataIntegrityError
  (LessThanZeroReportableDays): the export aborts and no partial file is
  written. A missing holiday calendar degrades to "no redistribution".
*/
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/report-engine/report"
)

var (
	// workdayHours is the standardized working day: 7.5h.
	workdayHours = decimal.New(75, -1)

	// dummyDayHours is display-only, used for synthetic start/end clock
	// times: 8.0h.
	dummyDayHours = decimal.New(8, 0)

	quarterHour = decimal.New(25, -2)
	half        = decimal.New(5, -1)
	two         = decimal.New(2, 0)
)

// clockBase is the synthetic start-of-day for export clock times.
const clockBase = 8 * time.Hour

// WorkdayCSV renders the day-quantised workday export.
type WorkdayCSV struct{}

func NewWorkdayCSV() *WorkdayCSV { return &WorkdayCSV{} }

func (g *WorkdayCSV) Understands(kind Kind) bool { return kind == KindWorkdayCSV }

func (g *WorkdayCSV) DescribeOptions(kind Kind) []OptionSpec {
	if kind != KindWorkdayCSV {
		return nil
	}
	return []OptionSpec{
		{Kind: OptionCheckbox, ID: "redistribute_weekends", Label: "Move weekend hours onto weekdays", Default: true},
		{Kind: OptionCheckbox, ID: "redistribute_holidays", Label: "Move holiday hours onto working days", Default: true},
		{Kind: OptionSeparator},
		{Kind: OptionCheckbox, ID: "placeholders", Label: "Emit placeholder lines for avoided days", Default: false},
	}
}

func (g *WorkdayCSV) Generate(kind Kind, rep *report.Report, opts Options, w io.Writer) error {
	if kind != KindWorkdayCSV {
		return report.ErrUnknownReportKind
	}
	if !rep.IsDaily() {
		return report.NewConfigurationError("frequency", string(rep.Config.Frequency))
	}
	specs := g.DescribeOptions(kind)
	avoidWeekends := opts.Enabled("redistribute_weekends", specs)
	avoidHolidays := opts.Enabled("redistribute_holidays", specs) && rep.Holidays != nil
	placeholders := opts.Enabled("placeholders", specs)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write([]string{"User", "Date", "Start", "End", "Days", "Task", "Project"})

	days := rep.Range.Days()

	for _, user := range rep.Users {
		userTotal := decimal.Zero
		userCompound := decimal.Zero
		emitted := false
		clocks := make(map[report.Date]time.Duration)

		for _, row := range rep.Rows() {
			result, err := quantiseRow(rep, row, user.ID, days, avoidWeekends, avoidHolidays)
			if err != nil {
				return err
			}
			if result == nil {
				continue
			}

			for _, credit := range result.credits {
				clock, ok := clocks[credit.day]
				if !ok {
					clock = clockBase
				}
				span := hoursToDuration(credit.days.Mul(dummyDayHours))
				start := credit.day.Time().Add(clock)
				end := start.Add(span)
				// Each line advances the day's clock by days x 8.0 + 1
				// hours; the extra hour models a lunch break.
				clocks[credit.day] = clock + span + time.Hour

				cw.Write([]string{
					user.Name,
					credit.day.String(),
					start.Format("15:04"),
					end.Format("15:04"),
					credit.days.String(),
					taskLabel(row.Task),
					projectLabel(row.Project),
				})
				emitted = true
			}

			userTotal = userTotal.Add(result.workdayTotal)
			userCompound = userCompound.Add(result.compoundedError)
		}

		if placeholders && emitted {
			for _, d := range days {
				label, avoided := avoidedLabel(rep, d, avoidWeekends, avoidHolidays)
				if avoided {
					cw.Write([]string{user.Name, d.String(), "", "", "0", label, ""})
				}
			}
		}

		if emitted {
			summary := fmt.Sprintf("Total workdays: %s", userTotal.String())
			if !userCompound.IsZero() {
				if userCompound.IsPositive() {
					summary += fmt.Sprintf(" (over-booked by %s hours)", userCompound.String())
				} else {
					summary += fmt.Sprintf(" (under-booked by %s hours)", userCompound.Neg().String())
				}
			}
			cw.Write([]string{user.Name, "", "", "", "", summary, ""})
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// =============================================================================
// PER-ROW QUANTISATION
// =============================================================================

type dayCredit struct {
	day  report.Date
	days decimal.Decimal // 0, 0.5 or 1
}

type rowResult struct {
	credits         []dayCredit
	workdayTotal    decimal.Decimal
	roundingError   decimal.Decimal
	compoundedError decimal.Decimal
}

// quantiseRow runs steps a-e for one (user, row). Returns nil when the user
// booked nothing on the row.
func quantiseRow(rep *report.Report, row *report.Row, userID string, days []report.Date, avoidWeekends, avoidHolidays bool) (*rowResult, error) {
	hoursByDay := make(map[report.Date]decimal.Decimal, len(days))
	total := decimal.Zero
	for _, d := range days {
		key := report.ColumnKey(d, report.FrequencyDay)
		h := row.Cell(key).UserTotal(userID).Total()
		if h.IsZero() {
			continue
		}
		hoursByDay[d] = h
		total = total.Add(h)
	}
	if total.IsZero() {
		return nil, nil
	}

	if avoidWeekends || avoidHolidays {
		var receivers []report.Date
		toMove := decimal.Zero
		for _, d := range days {
			if _, avoided := avoidedLabel(rep, d, avoidWeekends, avoidHolidays); avoided {
				if h, ok := hoursByDay[d]; ok {
					toMove = toMove.Add(h)
					delete(hoursByDay, d)
				}
			} else {
				receivers = append(receivers, d)
			}
		}
		if toMove.IsPositive() {
			if len(receivers) == 0 {
				return nil, &report.DataIntegrityError{
					Cause: report.ErrLessThanZeroReportableDays,
					Message: fmt.Sprintf("cannot redistribute %s hours on task %q: no working days in range %s",
						toMove.String(), row.Task.Title, rep.Range.String()),
				}
			}
			// Redistributed hours land in a single collapsed bucket per
			// day (see the package comment on this simplification).
			for i, amount := range Diffuse(toMove, len(receivers)) {
				if amount.IsZero() {
					continue
				}
				hoursByDay[receivers[i]] = hoursByDay[receivers[i]].Add(amount)
			}
		}
	}

	// Recompute the row total after redistribution; diffusion may round
	// the moved hours up.
	total = decimal.Zero
	type dayHours struct {
		day   report.Date
		hours decimal.Decimal
	}
	var nonZero []dayHours
	for _, d := range days {
		if h, ok := hoursByDay[d]; ok && !h.IsZero() {
			nonZero = append(nonZero, dayHours{day: d, hours: h})
			total = total.Add(h)
		}
	}
	if total.IsZero() {
		return nil, nil
	}

	workdays := ceilToHalf(total.Div(workdayHours))
	zeroes, halves, fulls, spill := AssignBuckets(len(nonZero), workdays)

	// Ascending by booked hours, ties by date: least-booked days are the
	// least likely to represent a genuine full day.
	order := make([]int, len(nonZero))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if !nonZero[order[a]].hours.Equal(nonZero[order[b]].hours) {
			return nonZero[order[a]].hours.LessThan(nonZero[order[b]].hours)
		}
		return nonZero[order[a]].day.Before(nonZero[order[b]].day)
	})

	credits := make([]dayCredit, len(nonZero))
	for rank, idx := range order {
		var credit decimal.Decimal
		switch {
		case rank < zeroes:
			credit = decimal.Zero
		case rank < zeroes+halves:
			credit = half
		default:
			credit = decimal.New(1, 0)
		}
		credits[idx] = dayCredit{day: nonZero[idx].day, days: credit}
	}

	workdayTotal := decimal.New(int64(fulls), 0).Add(decimal.New(int64(halves), 0).Mul(half))
	roundingError := workdays.Mul(workdayHours).Sub(total)
	compounded := roundingError.Sub(spill.Mul(workdayHours))

	return &rowResult{
		credits:         credits,
		workdayTotal:    workdayTotal,
		roundingError:   roundingError,
		compoundedError: compounded,
	}, nil
}

// =============================================================================
// QUANTISATION PRIMITIVES
// =============================================================================

// Diffuse spreads toMove over n days by quarter-hour error diffusion.
// Guarantees: the amounts sum to at least toMove, each is a non-negative
// multiple of 0.25, and none exceeds toMove.
func Diffuse(toMove decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 || !toMove.IsPositive() {
		return nil
	}
	// The running error stays in [0, 0.25), so every quantised amount sits
	// between 0 and ceilToQuarter(exact) <= ceilToQuarter(toMove).
	exact := toMove.Div(decimal.New(int64(n), 0))
	amounts := make([]decimal.Decimal, n)
	diffusionError := decimal.Zero
	for i := 0; i < n; i++ {
		quantised := ceilToQuarter(exact.Sub(diffusionError))
		amounts[i] = quantised
		diffusionError = diffusionError.Add(quantised.Sub(exact))
	}
	return amounts
}

// AssignBuckets splits nonZeroDayCount days into zero/half/full-day credits
// for the given workday total. Spill is workdays beyond what the available
// days can represent.
func AssignBuckets(nonZeroDayCount int, workdays decimal.Decimal) (zeroes, halves, fulls int, spill decimal.Decimal) {
	count := decimal.New(int64(nonZeroDayCount), 0)
	extra := count.Sub(workdays)
	switch {
	case extra.IsNegative():
		fulls = nonZeroDayCount
		spill = extra.Neg()
	case extra.GreaterThanOrEqual(workdays):
		zeroes = int(extra.Sub(workdays).IntPart())
		halves = int(workdays.Mul(two).IntPart())
	default:
		halves = int(extra.Mul(two).IntPart())
		fulls = int(workdays.Sub(extra).IntPart())
	}
	return zeroes, halves, fulls, spill
}

// ceilToQuarter rounds up to the nearest 0.25, clamped at zero.
func ceilToQuarter(d decimal.Decimal) decimal.Decimal {
	q := d.Div(quarterHour).Ceil().Mul(quarterHour)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}

// ceilToHalf rounds up to the nearest 0.5 (half-day rounding).
func ceilToHalf(d decimal.Decimal) decimal.Decimal {
	return d.Mul(two).Ceil().Div(two)
}

func hoursToDuration(hours decimal.Decimal) time.Duration {
	mins := hours.Mul(decimal.New(60, 0)).IntPart()
	return time.Duration(mins) * time.Minute
}

// avoidedLabel classifies a date as weekend/holiday under the active
// redistribution options.
func avoidedLabel(rep *report.Report, d report.Date, avoidWeekends, avoidHolidays bool) (string, bool) {
	if avoidWeekends && d.IsWeekend() {
		return "weekend", true
	}
	if avoidHolidays {
		if name, ok := rep.HolidayName(d); ok {
			return name, true
		}
	}
	return "", false
}

func projectLabel(p *report.Project) string {
	if p == nil {
		return ""
	}
	return p.SectionTitle()
}
