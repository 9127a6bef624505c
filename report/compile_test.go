package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/report-engine/report"
	"github.com/warp/report-engine/report/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// fixtureSource builds a small but structurally complete dataset: two
// customers, two projects, a non-billable task, an inactive task and two
// users booking across two weeks of June 2025 (June 2 is a Monday).
func fixtureSource() *store.Memory {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	src := store.NewMemory()

	src.AddCustomer(report.Customer{ID: "c1", Code: "ACME", Title: "Acme", CreatedAt: created})
	src.AddCustomer(report.Customer{ID: "c2", Code: "INI", Title: "Initech", CreatedAt: created})

	src.AddProject(report.Project{ID: "p1", CustomerID: "c1", Code: "ROLL", Title: "Rollout", CreatedAt: created})
	src.AddProject(report.Project{ID: "p2", CustomerID: "c2", Code: "AUD", Title: "Audit", CreatedAt: created})

	src.AddTask(report.Task{ID: "t1", ProjectID: "p1", Code: "API", Title: "API work", Billable: true, Active: true, CreatedAt: created})
	src.AddTask(report.Task{ID: "t2", ProjectID: "p1", Code: "DOC", Title: "Docs", Billable: false, Active: true, CreatedAt: created})
	src.AddTask(report.Task{ID: "t3", ProjectID: "p2", Code: "REV", Title: "Review", Billable: true, Active: true, CreatedAt: created})
	src.AddTask(report.Task{ID: "t4", ProjectID: "p2", Code: "OLD", Title: "Retired", Billable: true, Active: false, CreatedAt: created})

	src.AddUser(report.User{ID: "u1", Name: "Ada"})
	src.AddUser(report.User{ID: "u2", Name: "Grace"})

	monday := report.NewDate(2025, time.June, 2)
	for day := 0; day < 5; day++ {
		src.AddEntry(report.WorkEntry{TaskID: "t1", UserID: "u1", Date: monday.AddDays(day), Hours: dec("7.5"), Committed: true})
		src.AddEntry(report.WorkEntry{TaskID: "t3", UserID: "u2", Date: monday.AddDays(day), Hours: dec("6"), Committed: false})
	}
	src.AddEntry(report.WorkEntry{TaskID: "t2", UserID: "u1", Date: monday.AddDays(7), Hours: dec("1.5"), Committed: false})
	src.AddEntry(report.WorkEntry{TaskID: "t3", UserID: "u2", Date: monday.AddDays(8), Hours: dec("2"), Committed: true})

	src.AddHoliday(monday.AddDays(3), "Fixture Day")
	return src
}

func fixtureConfig() report.Config {
	return report.Config{
		Range: report.Period{
			Start: report.NewDate(2025, time.June, 2),
			End:   report.NewDate(2025, time.June, 15),
		},
		Frequency:    report.FrequencyDay,
		TaskFilter:   report.TasksAll,
		Grouping:     report.GroupingDefault,
		CustomerSort: report.SortByTitle,
		ProjectSort:  report.SortByTitle,
		TaskSort:     report.SortByTitle,
		ShowTotal:    true,
	}
}

func compileFixture(t *testing.T, cfg report.Config) *report.Report {
	t.Helper()
	rep, err := report.NewCompiler(fixtureSource()).Compile(context.Background(), cfg)
	require.NoError(t, err)
	return rep
}

// =============================================================================
// ACCUMULATOR AGREEMENT
// =============================================================================

// Every accumulator family must agree with the direct sum of the entries
// that feed it: cells vs rows, rows vs grand, columns vs grand, sections vs
// grand, users vs grand.
func TestCompile_AccumulatorFamiliesAgree(t *testing.T) {
	rep := compileFixture(t, fixtureConfig())
	grand := rep.Total().Total()
	require.True(t, grand.Equal(dec("71")), "grand = %s", grand) // 5*7.5 + 5*6 + 1.5 + 2

	rowSum := report.NewHourAccumulator()
	for _, row := range rep.AllRows {
		cellSum := report.NewHourAccumulator()
		for _, col := range rep.AllColumns {
			cellSum = cellSum.Merge(row.Cell(col.Key).Totals())
		}
		assert.True(t, cellSum.Total().Equal(row.Hours.Total()),
			"task %s: cells %s != row %s", row.Task.ID, cellSum.Total(), row.Hours.Total())
		rowSum = rowSum.Merge(row.Hours)
	}
	assert.True(t, rowSum.Total().Equal(grand), "rows %s != grand %s", rowSum.Total(), grand)

	colSum := report.NewHourAccumulator()
	for _, col := range rep.AllColumns {
		colSum = colSum.Merge(rep.ColumnTotal(col.Key))
	}
	assert.True(t, colSum.Total().Equal(grand), "columns %s != grand %s", colSum.Total(), grand)

	sectionSum := report.NewHourAccumulator()
	for _, s := range rep.Tracker.Sections() {
		sectionSum = sectionSum.Merge(s.Hours)
	}
	assert.True(t, sectionSum.Total().Equal(grand), "sections %s != grand %s", sectionSum.Total(), grand)

	userSum := report.NewHourAccumulator()
	for _, u := range rep.Users {
		userSum = userSum.Merge(rep.UserTotal(u.ID))
	}
	assert.True(t, userSum.Total().Equal(grand), "users %s != grand %s", userSum.Total(), grand)
}

func TestCompile_CommittedSplitPreserved(t *testing.T) {
	rep := compileFixture(t, fixtureConfig())

	assert.True(t, rep.Total().Committed().Equal(dec("39.5")), "committed = %s", rep.Total().Committed())
	assert.True(t, rep.Total().NotCommitted().Equal(dec("31.5")), "open = %s", rep.Total().NotCommitted())

	// Per-user split: Ada booked 37.5 committed + 1.5 open.
	ada := rep.UserTotal("u1")
	assert.True(t, ada.Committed().Equal(dec("37.5")))
	assert.True(t, ada.NotCommitted().Equal(dec("1.5")))
}

// Compiling the same config twice from the same data yields identical totals.
func TestCompile_Deterministic(t *testing.T) {
	cfg := fixtureConfig()
	first := compileFixture(t, cfg)
	second := compileFixture(t, cfg)

	require.Equal(t, len(first.AllRows), len(second.AllRows))
	for i := range first.AllRows {
		assert.Equal(t, first.AllRows[i].Task.ID, second.AllRows[i].Task.ID, "row order differs at %d", i)
		assert.True(t, first.AllRows[i].Hours.Total().Equal(second.AllRows[i].Hours.Total()))
	}
	assert.True(t, first.Total().Total().Equal(second.Total().Total()))
}

// =============================================================================
// SUPPRESSION
// =============================================================================

func TestCompile_SuppressionNeverAltersTotals(t *testing.T) {
	// GIVEN the same data compiled with and without suppression
	plain := compileFixture(t, fixtureConfig())

	cfg := fixtureConfig()
	cfg.IncludeInactive = true // t4 has no hours: a suppressible row
	cfg.HideEmptyRows = true
	cfg.HideEmptyColumns = true
	suppressed := compileFixture(t, cfg)

	// THEN emitted structure shrinks (t4 and the weekend columns carry no
	// hours) but totals are identical
	assert.Less(t, len(suppressed.Rows()), len(suppressed.AllRows))
	assert.Less(t, len(suppressed.Columns()), len(suppressed.AllColumns))
	for _, row := range suppressed.Rows() {
		assert.False(t, row.Hours.IsZero())
	}
	for _, col := range suppressed.Columns() {
		assert.False(t, suppressed.ColumnTotal(col.Key).IsZero())
	}
	assert.True(t, plain.Total().Total().Equal(suppressed.Total().Total()))
	for _, u := range plain.Users {
		assert.True(t, plain.UserTotal(u.ID).Total().Equal(suppressed.UserTotal(u.ID).Total()))
	}
}

// =============================================================================
// FILTERS AND RANGE
// =============================================================================

func TestCompile_TaskFilters(t *testing.T) {
	cases := []struct {
		name            string
		filter          report.TaskFilter
		includeInactive bool
		wantTasks       []string
	}{
		{"all active", report.TasksAll, false, []string{"t1", "t2", "t3"}},
		{"all with inactive", report.TasksAll, true, []string{"t1", "t2", "t3", "t4"}},
		{"billable only", report.TasksBillable, false, []string{"t1", "t3"}},
		{"non-billable only", report.TasksNonBillable, false, []string{"t2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := fixtureConfig()
			cfg.TaskFilter = tc.filter
			cfg.IncludeInactive = tc.includeInactive
			rep := compileFixture(t, cfg)

			var got []string
			for _, row := range rep.AllRows {
				got = append(got, row.Task.ID)
			}
			assert.ElementsMatch(t, tc.wantTasks, got)
		})
	}
}

func TestCompile_FilteredEntriesDropSilently(t *testing.T) {
	// GIVEN entries referencing an unknown task, an unknown user, and a date
	// outside the range
	src := fixtureSource()
	src.AddEntry(report.WorkEntry{TaskID: "t-ghost", UserID: "u1", Date: report.NewDate(2025, time.June, 3), Hours: dec("4"), Committed: true})
	src.AddEntry(report.WorkEntry{TaskID: "t1", UserID: "u-ghost", Date: report.NewDate(2025, time.June, 3), Hours: dec("4"), Committed: true})
	src.AddEntry(report.WorkEntry{TaskID: "t1", UserID: "u1", Date: report.NewDate(2025, time.December, 24), Hours: dec("4"), Committed: true})

	rep, err := report.NewCompiler(src).Compile(context.Background(), fixtureConfig())
	require.NoError(t, err)

	// THEN none of them reach any total
	assert.True(t, rep.Total().Total().Equal(dec("71")), "grand = %s", rep.Total().Total())
}

func TestCompile_AllRangeResolvesFromEntries(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Range = report.Period{} // "all"

	rep := compileFixture(t, cfg)

	assert.True(t, rep.Range.Start.Equal(report.NewDate(2025, time.June, 2)), "start = %s", rep.Range.Start)
	assert.True(t, rep.Range.End.Equal(report.NewDate(2025, time.June, 10)), "end = %s", rep.Range.End)
	assert.True(t, rep.Total().Total().Equal(dec("71")))
}

func TestCompile_AllRangeWithNoEntriesIsToday(t *testing.T) {
	src := store.NewMemory()
	src.AddUser(report.User{ID: "u1", Name: "Ada"})

	cfg := fixtureConfig()
	cfg.Range = report.Period{}
	rep, err := report.NewCompiler(src).Compile(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, rep.Range.Start.Equal(report.Today()))
	assert.True(t, rep.Range.End.Equal(report.Today()))
	assert.Len(t, rep.AllColumns, 1)
	assert.True(t, rep.Total().IsZero())
}

func TestCompile_InvertedRangeRejected(t *testing.T) {
	cfg := fixtureConfig()
	cfg.Range = report.Period{
		Start: report.NewDate(2025, time.June, 15),
		End:   report.NewDate(2025, time.June, 2),
	}

	_, err := report.NewCompiler(fixtureSource()).Compile(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrInvalidConfiguration)
	assert.True(t, report.IsClientError(err))
}

// =============================================================================
// ORDERING AND SECTIONS
// =============================================================================

func TestCompile_RowOrderCustomerMajor(t *testing.T) {
	rep := compileFixture(t, fixtureConfig())

	var got []string
	for _, row := range rep.AllRows {
		got = append(got, row.Task.ID)
	}
	// Acme (ROLL Rollout: API work, Docs) before Initech (AUD Audit: Review).
	assert.Equal(t, []string{"t1", "t2", "t3"}, got)
}

func TestCompile_SectionsFollowRowOrder(t *testing.T) {
	rep := compileFixture(t, fixtureConfig())

	require.Len(t, rep.AllRows, 3)
	assert.True(t, rep.AllRows[0].NewSection)
	assert.False(t, rep.AllRows[1].NewSection, "t2 shares t1's project")
	assert.True(t, rep.AllRows[2].NewSection)

	sections := rep.Tracker.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, "ROLL Rollout", sections[0].Title)
	assert.Equal(t, "AUD Audit", sections[1].Title)
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

func TestCompile_HolidayLookup(t *testing.T) {
	rep := compileFixture(t, fixtureConfig())

	name, ok := rep.HolidayName(report.NewDate(2025, time.June, 5))
	assert.True(t, ok)
	assert.Equal(t, "Fixture Day", name)

	_, ok = rep.HolidayName(report.NewDate(2025, time.June, 6))
	assert.False(t, ok)
}

func TestCompile_HolidayFailureDegradesToNoCalendar(t *testing.T) {
	// GIVEN a data source whose holiday calendar cannot be read
	src := fixtureSource()
	src.HolidayErr = errors.New("calendar file corrupt")

	// WHEN compiling
	rep, err := report.NewCompiler(src).Compile(context.Background(), fixtureConfig())

	// THEN the report compiles anyway with no calendar attached
	require.NoError(t, err)
	assert.Nil(t, rep.Holidays)
	_, ok := rep.HolidayName(report.NewDate(2025, time.June, 5))
	assert.False(t, ok)
}
