/*
source.go - Read-only data source interface

PURPOSE:
  The seam between the aggregation engine and whatever supplies the data.
  Access control happens upstream: the source returns only permitted tasks
  and users, and the compiler treats every returned record as in scope.

READ-ONLY CONTRACT:
  The report subsystem never writes through this interface. Repeated calls
  with unchanged underlying data must return the same records, which is
  what makes compile() idempotent.

IMPLEMENTATIONS:
  - report/store/memory.go: In-memory source for tests/dev
  - store/sqlite/sqlite.go:  SQLite-backed production source
*/
package report

import "context"

// DataSource supplies everything a report compilation reads.
type DataSource interface {
	// Tasks returns the permitted tasks (already access-filtered upstream).
	Tasks(ctx context.Context) ([]Task, error)

	// Projects returns all projects referenced by permitted tasks.
	Projects(ctx context.Context) ([]Project, error)

	// Customers returns all customers referenced by those projects.
	Customers(ctx context.Context) ([]Customer, error)

	// Users returns the reportable users in selection order. Order is
	// significant: the report preserves it.
	Users(ctx context.Context) ([]User, error)

	// WorkEntries returns entries with from <= date <= to, in any order.
	// Zero from/to dates mean unbounded on that side.
	WorkEntries(ctx context.Context, from, to Date) ([]WorkEntry, error)

	// Holidays returns a date -> holiday-name lookup for the period.
	Holidays(ctx context.Context, period Period) (map[Date]string, error)
}
