/*
Package report implements the work-hour aggregation engine.

PURPOSE:
  Aggregates recorded work hours across tasks, time periods and users into
  a multi-dimensional grid: cells, rows, time columns, sections, user
  totals and a grand total, all of which must agree exactly.

KEY CONCEPTS IN THIS FILE (types.go):
  - Task / Project / Customer / User: Read-only metadata rows come from
  - WorkEntry: One recorded quantity of hours (user x task x day)
  - Config: Immutable report configuration (range, frequency, filters)

DESIGN PRINCIPLES:
  1. Precision: hours are decimal.Decimal, never float64
  2. Read-only inputs: the data source is never written by this package
  3. Determinism: identical config + data always compiles to identical totals

SEE ALSO:
  - period.go: Time-column generation
  - section.go: Section/group boundary tracking
  - compile.go: The single-pass aggregator
*/
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SOURCE METADATA - Supplied by the read-only input collaborator
// =============================================================================

// Customer owns projects. Only referenced for row ordering.
type Customer struct {
	ID        string
	Code      string
	Title     string
	CreatedAt time.Time
}

// Project groups tasks and defines section boundaries.
type Project struct {
	ID         string
	CustomerID string
	Code       string
	Title      string
	CreatedAt  time.Time
}

// SectionTitle is how a project labels its section in rendered output.
func (p Project) SectionTitle() string {
	if p.Code != "" {
		return p.Code + " " + p.Title
	}
	return p.Title
}

// Task is what a report row is bound to.
type Task struct {
	ID        string
	ProjectID string
	Title     string
	Code      string
	Billable  bool
	Active    bool
	Duration  decimal.Decimal // planned hours, display only
	CreatedAt time.Time
}

// User books hours on tasks.
type User struct {
	ID   string
	Name string
}

// WorkEntry is one recorded quantity of hours by one user on one task on
// one day, tagged committed (finalised timesheet) or not.
type WorkEntry struct {
	TaskID    string
	UserID    string
	Date      Date
	Hours     decimal.Decimal
	Committed bool
}

// =============================================================================
// CONFIGURATION - Parsed and validated before compile (see factory package)
// =============================================================================

// Frequency selects the granularity of the report's time columns.
type Frequency string

const (
	FrequencyDay     Frequency = "day"
	FrequencyWeek    Frequency = "week"
	FrequencyMonth   Frequency = "month"
	FrequencyQuarter Frequency = "quarter"
	FrequencyEntire  Frequency = "entire" // single column spanning the whole range
)

// GroupingMode controls where section and group boundaries fall.
//
// Sections always break on project change. The billable/active flags widen
// that: "billable" and "both" also break the section on a billable-flag
// change, "active" on an active-flag change, and "both" additionally tracks
// active-flag transitions as nested groups inside a section.
type GroupingMode string

const (
	GroupingDefault  GroupingMode = "default"
	GroupingBillable GroupingMode = "billable"
	GroupingActive   GroupingMode = "active"
	GroupingBoth     GroupingMode = "both"
)

// TaskFilter restricts which tasks become rows.
type TaskFilter string

const (
	TasksAll         TaskFilter = "all"
	TasksBillable    TaskFilter = "billable"
	TasksNonBillable TaskFilter = "non_billable"
)

// SortField orders customers, projects or tasks.
type SortField string

const (
	SortByTitle     SortField = "title"
	SortByCode      SortField = "code"
	SortByCreatedAt SortField = "created_at"
)

// Config is the immutable configuration a Report is compiled from.
// Values arrive already validated (factory.OptionsFactory); the compiler
// only re-checks what it cannot proceed without.
type Config struct {
	// Range covers the report. A zero Period means "all": the compiler
	// derives the range from the earliest and latest work entries.
	Range     Period
	Frequency Frequency

	TaskFilter      TaskFilter
	IncludeInactive bool
	Grouping        GroupingMode

	CustomerSort SortField
	ProjectSort  SortField
	TaskSort     SortField

	// Suppression removes empty rows/columns from the emitted structure
	// only; it never alters computed totals.
	HideEmptyRows    bool
	HideEmptyColumns bool

	// Hour-class display flags for rendered output.
	ShowTotal        bool
	ShowCommitted    bool
	ShowNotCommitted bool
}
