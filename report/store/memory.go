// Package store provides an in-memory DataSource implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/report-engine/report"
)

// =============================================================================
// MEMORY SOURCE - In-memory implementation of report.DataSource
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	customers []report.Customer
	projects  []report.Project
	tasks     []report.Task
	users     []report.User
	entries   []report.WorkEntry
	holidays  map[report.Date]string

	// HolidayErr, when set, makes Holidays fail. Lets tests exercise the
	// "malformed calendar degrades to no redistribution" path.
	HolidayErr error
}

func NewMemory() *Memory {
	return &Memory{holidays: make(map[report.Date]string)}
}

// Seed helpers. Insertion order is preserved; user order in particular is
// significant for report output.

func (m *Memory) AddCustomer(c report.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, c)
}

func (m *Memory) AddProject(p report.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, p)
}

func (m *Memory) AddTask(t report.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
}

func (m *Memory) AddUser(u report.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, u)
}

func (m *Memory) AddEntry(e report.WorkEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

func (m *Memory) AddHoliday(d report.Date, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[d] = name
}

// DataSource implementation. All reads return copies.

func (m *Memory) Customers(_ context.Context) ([]report.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]report.Customer(nil), m.customers...), nil
}

func (m *Memory) Projects(_ context.Context) ([]report.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]report.Project(nil), m.projects...), nil
}

func (m *Memory) Tasks(_ context.Context) ([]report.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]report.Task(nil), m.tasks...), nil
}

func (m *Memory) Users(_ context.Context) ([]report.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]report.User(nil), m.users...), nil
}

func (m *Memory) WorkEntries(_ context.Context, from, to report.Date) ([]report.WorkEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []report.WorkEntry
	for _, e := range m.entries {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) Holidays(_ context.Context, period report.Period) (map[report.Date]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.HolidayErr != nil {
		return nil, m.HolidayErr
	}
	out := make(map[report.Date]string)
	for d, name := range m.holidays {
		if period.Contains(d) {
			out[d] = name
		}
	}
	return out, nil
}
