/*
compile.go - The single-pass report aggregator

PURPOSE:
  Compiles raw work entries into the full report grid: cells, rows,
  columns, sections, user totals and the grand total, in exactly one pass
  over the entry input.

ACCUMULATOR FAMILIES:
  Each qualifying entry updates six families, which must all agree with
  the direct sum of underlying entries:
    1. Cell (with nested per-user cell)
    2. Row (with per-user row total)
    3. Column total (with per-user column total)
    4. Section (via the section tracker)
    5. User total
    6. Grand total

LIFECYCLE:
  Compiler.Compile builds a fresh Report per call. Identical config + data
  always yields identical totals, and the data source is never written, so
  a caller compiles once and renders any number of output formats from the
  same Report. After Compile returns, the Report is read-only.

SUPPRESSION:
  Zero-row/zero-column suppression filters the EMITTED structure only
  (Rows()/Columns() accessors); every computed total, including the grand
  total, is over the unsuppressed grid.
*/
package report

import (
	"context"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// GRID STRUCTURES
// =============================================================================

// Cell is the intersection of one row and one time column.
type Cell struct {
	Hours     *HourAccumulator
	UserHours map[string]*HourAccumulator
}

func newCell() *Cell {
	return &Cell{Hours: NewHourAccumulator(), UserHours: make(map[string]*HourAccumulator)}
}

// Totals returns the cell's accumulator, nil-safe for empty intersections.
func (c *Cell) Totals() *HourAccumulator {
	if c == nil {
		return NewHourAccumulator()
	}
	return c.Hours
}

// UserTotal returns the per-user accumulator of this cell, nil-safe.
func (c *Cell) UserTotal(userID string) *HourAccumulator {
	if c == nil {
		return NewHourAccumulator()
	}
	if acc, ok := c.UserHours[userID]; ok {
		return acc
	}
	return NewHourAccumulator()
}

// Row is bound to one task and owns one cell per column it has hours in.
type Row struct {
	Task     *Task
	Project  *Project
	Customer *Customer

	Section    *Section
	NewSection bool
	Group      *Group
	NewGroup   bool

	Cells     map[string]*Cell // by column key
	Hours     *HourAccumulator
	UserHours map[string]*HourAccumulator
}

// Cell returns the cell for a column key; nil if the intersection is empty.
func (r *Row) Cell(columnKey string) *Cell {
	return r.Cells[columnKey]
}

// UserTotal returns the row-level accumulator for one user, nil-safe.
func (r *Row) UserTotal(userID string) *HourAccumulator {
	if acc, ok := r.UserHours[userID]; ok {
		return acc
	}
	return NewHourAccumulator()
}

// Report is the compiled grid. Read-only once compiled; generators may
// render it any number of times.
type Report struct {
	Config Config

	// Range is the resolved concrete period ("all" ranges are resolved
	// against the data during compilation).
	Range Period

	AllColumns []TimeColumn
	AllRows    []*Row
	Users      []User
	Tracker    *SectionTracker

	// Holidays is the calendar lookup for the range. Nil when holiday data
	// was missing or malformed; consumers degrade to "no redistribution".
	Holidays map[Date]string

	ColumnHours     map[string]*HourAccumulator
	ColumnUserHours map[string]map[string]*HourAccumulator
	UserHours       map[string]*HourAccumulator
	Grand           *HourAccumulator
}

// Rows returns the emitted rows, honoring zero-row suppression.
func (r *Report) Rows() []*Row {
	if !r.Config.HideEmptyRows {
		return r.AllRows
	}
	var rows []*Row
	for _, row := range r.AllRows {
		if !row.Hours.IsZero() {
			rows = append(rows, row)
		}
	}
	return rows
}

// Columns returns the emitted columns, honoring zero-column suppression.
func (r *Report) Columns() []TimeColumn {
	if !r.Config.HideEmptyColumns {
		return r.AllColumns
	}
	var cols []TimeColumn
	for _, col := range r.AllColumns {
		if acc, ok := r.ColumnHours[col.Key]; ok && !acc.IsZero() {
			cols = append(cols, col)
		}
	}
	return cols
}

// ColumnTotal returns the total accumulator for a column key, nil-safe.
func (r *Report) ColumnTotal(key string) *HourAccumulator {
	if acc, ok := r.ColumnHours[key]; ok {
		return acc
	}
	return NewHourAccumulator()
}

// ColumnUserTotal returns the per-user total for one column, nil-safe.
func (r *Report) ColumnUserTotal(key, userID string) *HourAccumulator {
	if byUser, ok := r.ColumnUserHours[key]; ok {
		if acc, ok := byUser[userID]; ok {
			return acc
		}
	}
	return NewHourAccumulator()
}

// UserTotal returns the report-wide accumulator for one user, nil-safe.
func (r *Report) UserTotal(userID string) *HourAccumulator {
	if acc, ok := r.UserHours[userID]; ok {
		return acc
	}
	return NewHourAccumulator()
}

// Total returns the grand total accumulator.
func (r *Report) Total() *HourAccumulator { return r.Grand }

// IsDaily reports whether the grid's columns are daily (required by the
// workday export).
func (r *Report) IsDaily() bool { return r.Config.Frequency == FrequencyDay }

// HolidayName looks up a holiday for a date; ok is false on non-holidays
// and when no calendar was available.
func (r *Report) HolidayName(d Date) (string, bool) {
	name, ok := r.Holidays[d]
	return name, ok
}

// =============================================================================
// COMPILER
// =============================================================================

// Compiler builds Reports from a data source. A Compiler is stateless and
// safe to share; each Compile call produces an independent Report.
type Compiler struct {
	Source DataSource
}

func NewCompiler(source DataSource) *Compiler {
	return &Compiler{Source: source}
}

// Compile performs the aggregation pass and returns the compiled Report.
func (c *Compiler) Compile(ctx context.Context, cfg Config) (*Report, error) {
	if !cfg.Range.IsZero() && cfg.Range.End.Before(cfg.Range.Start) {
		return nil, NewConfigurationError("range", cfg.Range.String())
	}

	tasks, err := c.Source.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := c.Source.Projects(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := c.Source.Customers(ctx)
	if err != nil {
		return nil, err
	}
	users, err := c.Source.Users(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := c.Source.WorkEntries(ctx, cfg.Range.Start, cfg.Range.End)
	if err != nil {
		return nil, err
	}

	projectByID := make(map[string]*Project, len(projects))
	for i := range projects {
		projectByID[projects[i].ID] = &projects[i]
	}
	customerByID := make(map[string]*Customer, len(customers))
	for i := range customers {
		customerByID[customers[i].ID] = &customers[i]
	}

	rows := buildRows(tasks, cfg, projectByID, customerByID)
	orderRows(rows, cfg)

	rng := resolveRange(cfg.Range, entries)
	columns, err := Columns(rng, cfg.Frequency)
	if err != nil {
		return nil, err
	}
	columnIndex := make(map[string]int, len(columns))
	for i, col := range columns {
		columnIndex[col.Key] = i
	}

	rep := &Report{
		Config:          cfg,
		Range:           rng,
		AllColumns:      columns,
		AllRows:         rows,
		Users:           users,
		Tracker:         NewSectionTracker(cfg.Grouping, projectByID),
		ColumnHours:     make(map[string]*HourAccumulator),
		ColumnUserHours: make(map[string]map[string]*HourAccumulator),
		UserHours:       make(map[string]*HourAccumulator),
		Grand:           NewHourAccumulator(),
	}

	// Section pass: one explicit sequential walk in row order.
	rep.Tracker.Reset()
	for _, row := range rows {
		row.Section, row.NewSection, row.Group, row.NewGroup = rep.Tracker.Retrieve(row.Task)
	}

	rowByTask := make(map[string]*Row, len(rows))
	for _, row := range rows {
		rowByTask[row.Task.ID] = row
	}
	userOK := make(map[string]bool, len(users))
	for _, u := range users {
		userOK[u.ID] = true
	}

	// Entry pass: the single aggregation pass. Entries outside the range or
	// excluded by task/user filters are dropped silently.
	for _, entry := range entries {
		row, ok := rowByTask[entry.TaskID]
		if !ok || !userOK[entry.UserID] || !rng.Contains(entry.Date) {
			continue
		}
		key := ColumnKey(entry.Date, cfg.Frequency)
		if _, ok := columnIndex[key]; !ok {
			continue
		}
		rep.addEntry(row, key, entry)
	}

	// Calendar lookup for day-based exports. Missing or malformed holiday
	// data degrades to "no redistribution" rather than erroring.
	if holidays, err := c.Source.Holidays(ctx, rng); err == nil {
		rep.Holidays = holidays
	}

	return rep, nil
}

// addEntry routes one work entry into the six accumulator families.
func (r *Report) addEntry(row *Row, columnKey string, entry WorkEntry) {
	// 1. Cell + nested per-user cell
	cell, ok := row.Cells[columnKey]
	if !ok {
		cell = newCell()
		row.Cells[columnKey] = cell
	}
	cell.Hours.Add(entry.Hours, entry.Committed)
	addUserHours(cell.UserHours, entry)

	// 2. Row + per-user row total
	row.Hours.Add(entry.Hours, entry.Committed)
	addUserHours(row.UserHours, entry)

	// 3. Column total + per-user column total
	col, ok := r.ColumnHours[columnKey]
	if !ok {
		col = NewHourAccumulator()
		r.ColumnHours[columnKey] = col
	}
	col.Add(entry.Hours, entry.Committed)
	byUser, ok := r.ColumnUserHours[columnKey]
	if !ok {
		byUser = make(map[string]*HourAccumulator)
		r.ColumnUserHours[columnKey] = byUser
	}
	addUserHours(byUser, entry)

	// 4. Section (and nested group in mode "both")
	if row.Section != nil {
		row.Section.addEntry(columnKey, entry)
	}
	if row.Group != nil {
		row.Group.Hours.Add(entry.Hours, entry.Committed)
	}

	// 5. User total
	addUserHours(r.UserHours, entry)

	// 6. Grand total
	r.Grand.Add(entry.Hours, entry.Committed)
}

func addUserHours(m map[string]*HourAccumulator, entry WorkEntry) {
	acc, ok := m[entry.UserID]
	if !ok {
		acc = NewHourAccumulator()
		m[entry.UserID] = acc
	}
	acc.Add(entry.Hours, entry.Committed)
}

// =============================================================================
// ROW CONSTRUCTION AND ORDERING
// =============================================================================

func buildRows(tasks []Task, cfg Config, projects map[string]*Project, customers map[string]*Customer) []*Row {
	var rows []*Row
	for i := range tasks {
		task := &tasks[i]
		switch cfg.TaskFilter {
		case TasksBillable:
			if !task.Billable {
				continue
			}
		case TasksNonBillable:
			if task.Billable {
				continue
			}
		}
		if !task.Active && !cfg.IncludeInactive {
			continue
		}
		row := &Row{
			Task:      task,
			Project:   projects[task.ProjectID],
			Cells:     make(map[string]*Cell),
			Hours:     NewHourAccumulator(),
			UserHours: make(map[string]*HourAccumulator),
		}
		if row.Project != nil {
			row.Customer = customers[row.Project.CustomerID]
		}
		rows = append(rows, row)
	}
	return rows
}

// orderRows sorts customer-major, then project, then task, each by its
// configured sort field, tie-broken by task ID for a total order.
func orderRows(rows []*Row, cfg Config) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := strings.Compare(customerKey(a, cfg.CustomerSort), customerKey(b, cfg.CustomerSort)); c != 0 {
			return c < 0
		}
		if c := strings.Compare(projectKey(a, cfg.ProjectSort), projectKey(b, cfg.ProjectSort)); c != 0 {
			return c < 0
		}
		if c := strings.Compare(taskKey(a.Task, cfg.TaskSort), taskKey(b.Task, cfg.TaskSort)); c != 0 {
			return c < 0
		}
		return a.Task.ID < b.Task.ID
	})
}

func sortKey(field SortField, title, code string, created time.Time) string {
	switch field {
	case SortByCode:
		return code
	case SortByCreatedAt:
		return created.UTC().Format(time.RFC3339Nano)
	default:
		return title
	}
}

func customerKey(r *Row, field SortField) string {
	if r.Customer == nil {
		return ""
	}
	return sortKey(field, r.Customer.Title, r.Customer.Code, r.Customer.CreatedAt) + "\x00" + r.Customer.ID
}

func projectKey(r *Row, field SortField) string {
	if r.Project == nil {
		return ""
	}
	return sortKey(field, r.Project.Title, r.Project.Code, r.Project.CreatedAt) + "\x00" + r.Project.ID
}

func taskKey(t *Task, field SortField) string {
	return sortKey(field, t.Title, t.Code, t.CreatedAt)
}

// resolveRange replaces an "all" (zero) range with the span of the actual
// entries. With no entries at all, today stands in for both ends.
func resolveRange(rng Period, entries []WorkEntry) Period {
	if !rng.IsZero() {
		return rng
	}
	if len(entries) == 0 {
		today := Today()
		return Period{Start: today, End: today}
	}
	resolved := Period{Start: entries[0].Date, End: entries[0].Date}
	for _, e := range entries[1:] {
		if e.Date.Before(resolved.Start) {
			resolved.Start = e.Date
		}
		if e.Date.After(resolved.End) {
			resolved.End = e.Date
		}
	}
	return resolved
}
