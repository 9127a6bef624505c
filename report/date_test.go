package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/report-engine/report"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := report.ParseDate("2025-06-02")
	require.NoError(t, err)
	assert.True(t, d.Equal(report.NewDate(2025, time.June, 2)))

	_, err = report.ParseDate("06/02/2025")
	assert.Error(t, err)
}

func TestDate_StartOfWeekIsMonday(t *testing.T) {
	monday := report.NewDate(2025, time.June, 2)
	for i := 0; i < 7; i++ {
		got := monday.AddDays(i).StartOfWeek()
		assert.True(t, got.Equal(monday), "day +%d aligned to %s", i, got)
	}
	// A Sunday belongs to the week that started six days earlier.
	sunday := report.NewDate(2025, time.June, 8)
	assert.True(t, sunday.StartOfWeek().Equal(monday))
}

func TestDate_StartOfQuarter(t *testing.T) {
	cases := []struct {
		in   report.Date
		want report.Date
	}{
		{report.NewDate(2025, time.February, 14), report.NewDate(2025, time.January, 1)},
		{report.NewDate(2025, time.June, 30), report.NewDate(2025, time.April, 1)},
		{report.NewDate(2025, time.December, 31), report.NewDate(2025, time.October, 1)},
	}
	for _, tc := range cases {
		assert.True(t, tc.in.StartOfQuarter().Equal(tc.want), "%s -> %s", tc.in, tc.in.StartOfQuarter())
	}
}

func TestDate_Weekend(t *testing.T) {
	assert.False(t, report.NewDate(2025, time.June, 6).IsWeekend()) // Friday
	assert.True(t, report.NewDate(2025, time.June, 7).IsWeekend())  // Saturday
	assert.True(t, report.NewDate(2025, time.June, 8).IsWeekend())  // Sunday
	assert.False(t, report.NewDate(2025, time.June, 9).IsWeekend()) // Monday
}

func TestDaysBetween(t *testing.T) {
	a := report.NewDate(2025, time.June, 2)
	assert.Equal(t, 0, report.DaysBetween(a, a))
	assert.Equal(t, 6, report.DaysBetween(a, a.AddDays(6)))
	// Across a month boundary.
	assert.Equal(t, 30, report.DaysBetween(report.NewDate(2025, time.June, 15), report.NewDate(2025, time.July, 15)))
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod_Days(t *testing.T) {
	p := report.Period{
		Start: report.NewDate(2025, time.June, 2),
		End:   report.NewDate(2025, time.June, 4),
	}
	days := p.Days()
	require.Len(t, days, 3)
	assert.True(t, days[0].Equal(p.Start))
	assert.True(t, days[2].Equal(p.End))
}

func TestPeriod_ZeroMeansUnbounded(t *testing.T) {
	assert.True(t, report.Period{}.IsZero())
	assert.False(t, report.Period{Start: report.Today(), End: report.Today()}.IsZero())
}
