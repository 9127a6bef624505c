/*
scenarios.go - Demo scenario loaders for testing and demonstrations

Each scenario resets the database and seeds customers, projects, tasks,
users, work entries and holidays that demonstrate specific engine
features. Dev/demo environments only.

AVAILABLE SCENARIOS:
  consulting-month: Two customers, mixed billable/non-billable tasks,
                    three users, weekend bookings and a holiday - enough
                    to exercise sections, grouping and redistribution
  solo-week:        One user, one task, one week - the simplest grid
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/report-engine/report"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "consulting-month",
		Name:        "Consulting month",
		Description: "Two customers, three users, weekend bookings and a holiday",
	},
	{
		ID:          "solo-week",
		Name:        "Solo week",
		Description: "One user booking a single task over one week",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and seeds the selected scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reset database")
		return
	}

	var err error
	switch req.ScenarioID {
	case "consulting-month":
		err = h.loadConsultingMonth(ctx)
	case "solo-week":
		err = h.loadSoloWeek(ctx)
	default:
		respondError(w, http.StatusNotFound, "unknown scenario: "+req.ScenarioID)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("scenario", req.ScenarioID).Msg("scenario load failed")
		respondError(w, http.StatusInternalServerError, "failed to load scenario")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadConsultingMonth(ctx context.Context) error {
	created := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	seed := seeder{ctx: ctx, h: h, created: created}

	seed.customer("cust-acme", "ACME", "Acme Industries")
	seed.customer("cust-initech", "INI", "Initech")

	seed.project("proj-rollout", "cust-acme", "ROLL", "Platform rollout")
	seed.project("proj-support", "cust-acme", "SUPP", "Support retainer")
	seed.project("proj-audit", "cust-initech", "AUD", "Compliance audit")

	seed.task("task-api", "proj-rollout", "API", "API integration", true, true, 120)
	seed.task("task-docs", "proj-rollout", "DOC", "Documentation", false, true, 40)
	seed.task("task-oncall", "proj-support", "ONC", "On-call support", true, true, 60)
	seed.task("task-legacy", "proj-support", "LEG", "Legacy maintenance", true, false, 20)
	seed.task("task-review", "proj-audit", "REV", "Control review", true, true, 80)

	seed.user("user-ada", "Ada", 1)
	seed.user("user-grace", "Grace", 2)
	seed.user("user-linus", "Linus", 3)

	// Four weeks of June 2025 (June 2 is a Monday).
	monday := report.NewDate(2025, time.June, 2)
	for week := 0; week < 4; week++ {
		for day := 0; day < 5; day++ {
			d := monday.AddDays(week*7 + day)
			seed.entry("task-api", "user-ada", d, "7.5", true)
			seed.entry("task-review", "user-grace", d, "6", true)
			if day < 3 {
				seed.entry("task-oncall", "user-linus", d, "4", false)
			}
		}
	}
	// Weekend bookings (redistribution fodder) and a booked holiday.
	seed.entry("task-oncall", "user-linus", monday.AddDays(5), "3.75", false)
	seed.entry("task-api", "user-ada", monday.AddDays(12), "2", true)
	seed.entry("task-docs", "user-grace", monday.AddDays(7), "1.5", false)

	seed.holiday(report.NewDate(2025, time.June, 19), "Midsummer Eve")
	return seed.err
}

func (h *Handler) loadSoloWeek(ctx context.Context) error {
	created := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	seed := seeder{ctx: ctx, h: h, created: created}

	seed.customer("cust-solo", "SOLO", "Solo Client")
	seed.project("proj-solo", "cust-solo", "ONE", "The one project")
	seed.task("task-solo", "proj-solo", "T1", "The one task", true, true, 40)
	seed.user("user-solo", "Sam", 1)

	monday := report.NewDate(2025, time.March, 3)
	for day := 0; day < 5; day++ {
		seed.entry("task-solo", "user-solo", monday.AddDays(day), "7.5", day < 3)
	}
	return seed.err
}

// seeder collects the first insert error so loaders read linearly.
type seeder struct {
	ctx     context.Context
	h       *Handler
	created time.Time
	err     error
}

func (s *seeder) customer(id, code, title string) {
	if s.err != nil {
		return
	}
	s.err = s.h.Store.InsertCustomer(s.ctx, report.Customer{ID: id, Code: code, Title: title, CreatedAt: s.created})
}

func (s *seeder) project(id, customerID, code, title string) {
	if s.err != nil {
		return
	}
	s.err = s.h.Store.InsertProject(s.ctx, report.Project{ID: id, CustomerID: customerID, Code: code, Title: title, CreatedAt: s.created})
}

func (s *seeder) task(id, projectID, code, title string, billable, active bool, duration int64) {
	if s.err != nil {
		return
	}
	s.err = s.h.Store.InsertTask(s.ctx, report.Task{
		ID: id, ProjectID: projectID, Code: code, Title: title,
		Billable: billable, Active: active,
		Duration: decimal.New(duration, 0), CreatedAt: s.created,
	})
}

func (s *seeder) user(id, name string, position int) {
	if s.err != nil {
		return
	}
	s.err = s.h.Store.InsertUser(s.ctx, report.User{ID: id, Name: name}, position)
}

func (s *seeder) entry(taskID, userID string, d report.Date, hours string, committed bool) {
	if s.err != nil {
		return
	}
	h, err := decimal.NewFromString(hours)
	if err != nil {
		s.err = fmt.Errorf("bad seed hours %q: %w", hours, err)
		return
	}
	s.err = s.h.Store.InsertWorkEntry(s.ctx, report.WorkEntry{
		TaskID: taskID, UserID: userID, Date: d, Hours: h, Committed: committed,
	})
}

func (s *seeder) holiday(d report.Date, name string) {
	if s.err != nil {
		return
	}
	s.err = s.h.Store.InsertHoliday(s.ctx, d, name)
}
