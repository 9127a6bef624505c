package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/report-engine/report"
	"github.com/warp/report-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedWeek loads one customer/project, two tasks, two users and a week of
// entries starting Monday June 2 2025.
func seedWeek(t *testing.T, s *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertCustomer(ctx, report.Customer{ID: "c1", Code: "ACME", Title: "Acme", CreatedAt: created}))
	require.NoError(t, s.InsertProject(ctx, report.Project{ID: "p1", CustomerID: "c1", Code: "ROLL", Title: "Rollout", CreatedAt: created}))
	require.NoError(t, s.InsertTask(ctx, report.Task{
		ID: "t1", ProjectID: "p1", Code: "API", Title: "API work",
		Billable: true, Active: true, Duration: dec("120"), CreatedAt: created,
	}))
	require.NoError(t, s.InsertTask(ctx, report.Task{
		ID: "t2", ProjectID: "p1", Code: "DOC", Title: "Docs",
		Billable: false, Active: true, Duration: dec("40"), CreatedAt: created,
	}))
	require.NoError(t, s.InsertUser(ctx, report.User{ID: "u2", Name: "Grace"}, 2))
	require.NoError(t, s.InsertUser(ctx, report.User{ID: "u1", Name: "Ada"}, 1))

	monday := report.NewDate(2025, time.June, 2)
	for day := 0; day < 5; day++ {
		require.NoError(t, s.InsertWorkEntry(ctx, report.WorkEntry{
			TaskID: "t1", UserID: "u1", Date: monday.AddDays(day), Hours: dec("7.5"), Committed: true,
		}))
	}
	require.NoError(t, s.InsertWorkEntry(ctx, report.WorkEntry{
		TaskID: "t2", UserID: "u2", Date: monday.AddDays(2), Hours: dec("1.25"), Committed: false,
	}))
	require.NoError(t, s.InsertHoliday(ctx, report.NewDate(2025, time.June, 5), "Fixture Day"))
}

// =============================================================================
// ROUNDTRIP TESTS
// =============================================================================

func TestStore_MetadataRoundtrip(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)
	ctx := context.Background()

	customers, err := s.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Acme", customers[0].Title)

	tasks, err := s.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].Duration.Equal(dec("120")), "duration = %s", tasks[0].Duration)
	assert.True(t, tasks[0].Billable)
	assert.False(t, tasks[1].Billable)
}

func TestStore_UsersOrderedByPosition(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)

	users, err := s.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	// Ada was inserted second but holds position 1.
	assert.Equal(t, "Ada", users[0].Name)
	assert.Equal(t, "Grace", users[1].Name)
}

func TestStore_WorkEntriesRangeFiltering(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)
	ctx := context.Background()

	all, err := s.WorkEntries(ctx, report.Date{}, report.Date{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	// Closed range covering Wednesday only.
	wed := report.NewDate(2025, time.June, 4)
	onlyWed, err := s.WorkEntries(ctx, wed, wed)
	require.NoError(t, err)
	require.Len(t, onlyWed, 2)
	for _, e := range onlyWed {
		assert.True(t, e.Date.Equal(wed))
	}
	// Hours survive as exact decimals.
	assert.True(t, onlyWed[0].Hours.Equal(dec("7.5")))
	assert.True(t, onlyWed[1].Hours.Equal(dec("1.25")))

	// Open-ended lower bound.
	fromThu, err := s.WorkEntries(ctx, report.NewDate(2025, time.June, 5), report.Date{})
	require.NoError(t, err)
	assert.Len(t, fromThu, 2)
}

func TestStore_HolidaysFilteredByPeriod(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)
	ctx := context.Background()

	inRange, err := s.Holidays(ctx, report.Period{
		Start: report.NewDate(2025, time.June, 1),
		End:   report.NewDate(2025, time.June, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, map[report.Date]string{report.NewDate(2025, time.June, 5): "Fixture Day"}, inRange)

	outOfRange, err := s.Holidays(ctx, report.Period{
		Start: report.NewDate(2025, time.July, 1),
		End:   report.NewDate(2025, time.July, 31),
	})
	require.NoError(t, err)
	assert.Empty(t, outOfRange)
}

func TestStore_HolidayUpsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	d := report.NewDate(2025, time.December, 24)

	require.NoError(t, s.InsertHoliday(ctx, d, "Christmas Eve"))
	require.NoError(t, s.InsertHoliday(ctx, d, "Xmas Eve"))

	holidays, err := s.Holidays(ctx, report.Period{Start: d, End: d})
	require.NoError(t, err)
	assert.Equal(t, "Xmas Eve", holidays[d])
}

func TestStore_ResetClearsEverything(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx))

	tasks, err := s.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	entries, err := s.WorkEntries(ctx, report.Date{}, report.Date{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// COMPILER INTEGRATION
// =============================================================================

// The store must be usable as the compiler's data source end to end.
func TestStore_CompilesReport(t *testing.T) {
	s := newStore(t)
	seedWeek(t, s)

	cfg := report.Config{
		Range: report.Period{
			Start: report.NewDate(2025, time.June, 2),
			End:   report.NewDate(2025, time.June, 8),
		},
		Frequency:    report.FrequencyDay,
		TaskFilter:   report.TasksAll,
		Grouping:     report.GroupingDefault,
		CustomerSort: report.SortByTitle,
		ProjectSort:  report.SortByTitle,
		TaskSort:     report.SortByTitle,
		ShowTotal:    true,
	}
	rep, err := report.NewCompiler(s).Compile(context.Background(), cfg)
	require.NoError(t, err)

	assert.True(t, rep.Total().Total().Equal(dec("38.75")), "grand = %s", rep.Total().Total())
	assert.True(t, rep.Total().Committed().Equal(dec("37.5")))
	assert.Len(t, rep.AllColumns, 7)
	assert.Len(t, rep.AllRows, 2)

	name, ok := rep.HolidayName(report.NewDate(2025, time.June, 5))
	assert.True(t, ok)
	assert.Equal(t, "Fixture Day", name)
}
