/*
Package sqlite provides a SQLite-backed implementation of report.DataSource.

PURPOSE:
  Persists the task/user/work-entry/calendar metadata the report engine
  reads. The report subsystem itself never writes; the insert helpers here
  exist only for data loading (imports, demo scenarios).

KEY TABLES:
  customers:    Customer records (row ordering)
  projects:     Project records (section boundaries)
  tasks:        Permitted tasks (report rows)
  users:        Reportable users, with explicit selection order
  work_entries: Recorded hours (the aggregation input)
  holidays:     Calendar lookup date -> holiday name

PRECISION:
  Hours are stored as TEXT and parsed with shopspring/decimal; they never
  pass through float64.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, which matches the "parallel independent report requests" model.

USAGE:
  store, err := sqlite.New("./data/reports.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  rep, err := report.NewCompiler(store).Compile(ctx, cfg)

SEE ALSO:
  - report/source.go: Interface definition
  - report/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/report-engine/report"
)

// Store implements report.DataSource on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL REFERENCES customers(id),
		code TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_customer ON projects(customer_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id),
		code TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		billable INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1,
		duration TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS work_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL REFERENCES tasks(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		entry_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		committed INTEGER NOT NULL DEFAULT 0
	);

	-- Hot path: range scans for report compilation
	CREATE INDEX IF NOT EXISTS idx_entries_date ON work_entries(entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_task_date ON work_entries(task_id, entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_user_date ON work_entries(user_id, entry_date);

	CREATE TABLE IF NOT EXISTS holidays (
		holiday_date TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset clears all data (scenario loading in dev/demo environments only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{"work_entries", "holidays", "tasks", "projects", "customers", "users"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// DATA SOURCE - read side (report.DataSource)
// =============================================================================

func (s *Store) Customers(ctx context.Context) ([]report.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, title, created_at FROM customers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Customer
	for rows.Next() {
		var c report.Customer
		var created string
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &created); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Projects(ctx context.Context) ([]report.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, code, title, created_at FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Project
	for rows.Next() {
		var p report.Project
		var created string
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Code, &p.Title, &created); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Tasks(ctx context.Context) ([]report.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, code, title, billable, active, duration, created_at
		 FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.Task
	for rows.Next() {
		var t report.Task
		var created, duration string
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Code, &t.Title, &t.Billable, &t.Active, &duration, &created); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(duration)
		if err != nil {
			return nil, fmt.Errorf("task %s has malformed duration %q: %w", t.ID, duration, err)
		}
		t.Duration = d
		t.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Users(ctx context.Context) ([]report.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM users ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.User
	for rows.Next() {
		var u report.User
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) WorkEntries(ctx context.Context, from, to report.Date) ([]report.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT task_id, user_id, entry_date, hours, committed FROM work_entries`
	var args []any
	switch {
	case !from.IsZero() && !to.IsZero():
		query += " WHERE entry_date >= ? AND entry_date <= ?"
		args = append(args, from.String(), to.String())
	case !from.IsZero():
		query += " WHERE entry_date >= ?"
		args = append(args, from.String())
	case !to.IsZero():
		query += " WHERE entry_date <= ?"
		args = append(args, to.String())
	}
	query += " ORDER BY entry_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []report.WorkEntry
	for rows.Next() {
		var e report.WorkEntry
		var date, hours string
		if err := rows.Scan(&e.TaskID, &e.UserID, &date, &hours, &e.Committed); err != nil {
			return nil, err
		}
		e.Date, err = report.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("work entry has malformed date %q: %w", date, err)
		}
		e.Hours, err = decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("work entry has malformed hours %q: %w", hours, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Holidays(ctx context.Context, period report.Period) (map[report.Date]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT holiday_date, name FROM holidays WHERE holiday_date >= ? AND holiday_date <= ?`,
		period.Start.String(), period.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[report.Date]string)
	for rows.Next() {
		var date, name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		d, err := report.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("holiday has malformed date %q: %w", date, err)
		}
		out[d] = name
	}
	return out, rows.Err()
}

// =============================================================================
// DATA LOADING - write side (imports and demo scenarios only)
// =============================================================================

func (s *Store) InsertCustomer(ctx context.Context, c report.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, code, title, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Code, c.Title, c.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) InsertProject(ctx context.Context, p report.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, customer_id, code, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.Code, p.Title, p.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) InsertTask(ctx context.Context, t report.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, code, title, billable, active, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Code, t.Title, t.Billable, t.Active,
		t.Duration.String(), t.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) InsertUser(ctx context.Context, u report.User, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, position) VALUES (?, ?, ?)`,
		u.ID, u.Name, position)
	return err
}

func (s *Store) InsertWorkEntry(ctx context.Context, e report.WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO work_entries (task_id, user_id, entry_date, hours, committed)
		 VALUES (?, ?, ?, ?, ?)`,
		e.TaskID, e.UserID, e.Date.String(), e.Hours.String(), e.Committed)
	return err
}

func (s *Store) InsertHoliday(ctx context.Context, d report.Date, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holidays (holiday_date, name) VALUES (?, ?)
		 ON CONFLICT(holiday_date) DO UPDATE SET name = excluded.name`,
		d.String(), name)
	return err
}
