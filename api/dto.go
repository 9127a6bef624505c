/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the compiled report grid from the API
  contract. DTOs are pure data carriers; validation happens in the
  factory (options) and handlers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/warp/report-engine/export"
	"github.com/warp/report-engine/factory"
	"github.com/warp/report-engine/report"
)

// ReportRequest submits report parameters, and for exports, the target
// kind plus generator option states.
type ReportRequest struct {
	Params  factory.Params  `json:"params"`
	Kind    string          `json:"kind,omitempty"`
	Options map[string]bool `json:"options,omitempty"`
}

// HoursDTO renders one accumulator.
type HoursDTO struct {
	Committed    string `json:"committed"`
	NotCommitted string `json:"not_committed"`
	Total        string `json:"total"`
}

func hoursDTO(acc *report.HourAccumulator) HoursDTO {
	return HoursDTO{
		Committed:    acc.Committed().String(),
		NotCommitted: acc.NotCommitted().String(),
		Total:        acc.Total().String(),
	}
}

// ColumnDTO is one time column of the grid.
type ColumnDTO struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Partial bool     `json:"partial"`
	Total   HoursDTO `json:"total"`
}

// RowDTO is one task row of the grid.
type RowDTO struct {
	TaskID     string              `json:"task_id"`
	Label      string              `json:"label"`
	Section    string              `json:"section,omitempty"`
	NewSection bool                `json:"new_section"`
	Cells      map[string]HoursDTO `json:"cells"`
	UserHours  map[string]HoursDTO `json:"user_hours,omitempty"`
	Total      HoursDTO            `json:"total"`
}

// ReportDTO is the compiled grid as returned by the preview endpoint.
type ReportDTO struct {
	Start      string              `json:"start"`
	End        string              `json:"end"`
	Frequency  string              `json:"frequency"`
	Columns    []ColumnDTO         `json:"columns"`
	Rows       []RowDTO            `json:"rows"`
	Users      []UserDTO           `json:"users"`
	UserTotals map[string]HoursDTO `json:"user_totals"`
	GrandTotal HoursDTO            `json:"grand_total"`
}

// OptionSpecDTO mirrors one generator option widget.
type OptionSpecDTO struct {
	Kind    string `json:"kind"`
	ID      string `json:"id,omitempty"`
	Label   string `json:"label,omitempty"`
	Default bool   `json:"default"`
}

// GeneratorDTO lists one export kind with its option form.
type GeneratorDTO struct {
	Kind    string          `json:"kind"`
	Options []OptionSpecDTO `json:"options"`
}

func optionSpecDTOs(specs []export.OptionSpec) []OptionSpecDTO {
	out := make([]OptionSpecDTO, 0, len(specs))
	for _, s := range specs {
		out = append(out, OptionSpecDTO{
			Kind:    string(s.Kind),
			ID:      s.ID,
			Label:   s.Label,
			Default: s.Default,
		})
	}
	return out
}

// TaskDTO represents a task in API responses.
type TaskDTO struct {
	ID       string `json:"id"`
	Project  string `json:"project"`
	Code     string `json:"code"`
	Title    string `json:"title"`
	Billable bool   `json:"billable"`
	Active   bool   `json:"active"`
	Duration string `json:"duration"`
}

// UserDTO represents a reportable user.
type UserDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HolidayDTO represents one calendar holiday.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
