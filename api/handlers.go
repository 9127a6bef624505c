/*
handlers.go - HTTP API handlers for the report engine

ENDPOINTS:
  Reports:
    GET  /api/generators        List export kinds and their option forms
    POST /api/reports/preview   Compile and return the grid as JSON
    POST /api/reports/export    Compile and stream a CSV attachment

  Data:
    GET  /api/tasks             List permitted tasks
    GET  /api/users             List reportable users
    GET  /api/holidays          List holidays in a range

  Scenarios:
    GET  /api/scenarios         List demo scenarios
    POST /api/scenarios/load    Load a demo scenario (resets the database)

ERROR HANDLING:
  - 400: invalid option values (ConfigurationError)
  - 404: unknown scenario
  - 422: data integrity conditions (e.g. LessThanZeroReportableDays);
         the export is aborted before any byte is sent - no partial files
  - 500: internal errors, including generator dispatch bugs

REQUEST FLOW:
  parse request -> factory validates options -> compile once ->
  render (JSON or CSV) from the compiled report.
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/warp/report-engine/export"
	"github.com/warp/report-engine/factory"
	"github.com/warp/report-engine/logger"
	"github.com/warp/report-engine/report"
	"github.com/warp/report-engine/store/sqlite"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Compiler *report.Compiler
	Registry *export.Registry
	Factory  *factory.OptionsFactory
	Log      *logger.Logger
}

// NewHandler wires the handler with the default generator registry.
func NewHandler(store *sqlite.Store, log *logger.Logger) *Handler {
	return &Handler{
		Store:    store,
		Compiler: report.NewCompiler(store),
		Registry: export.NewRegistry(export.NewTabularCSV(), export.NewWorkdayCSV()),
		Factory:  factory.NewOptionsFactory(),
		Log:      log,
	}
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// ListGenerators returns every export kind with its option form.
func (h *Handler) ListGenerators(w http.ResponseWriter, r *http.Request) {
	var out []GeneratorDTO
	for _, kind := range h.Registry.Kinds() {
		g, _ := h.Registry.Lookup(kind)
		out = append(out, GeneratorDTO{
			Kind:    string(kind),
			Options: optionSpecDTOs(g.DescribeOptions(kind)),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// PreviewReport compiles a report and returns the grid as JSON.
func (h *Handler) PreviewReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, ok := h.compile(w, r, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, reportDTO(rep))
}

// ExportReport compiles a report and streams it as a CSV attachment.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind := export.Kind(req.Kind)
	if _, ok := h.Registry.Lookup(kind); !ok {
		respondError(w, http.StatusBadRequest, "unknown export kind: "+req.Kind)
		return
	}

	rep, ok := h.compile(w, r, req)
	if !ok {
		return
	}

	// Generate fully in memory first: a failing generator must never leave
	// the client with a partial file.
	var buf bytes.Buffer
	if err := h.Registry.Generate(kind, rep, export.Options(req.Options), &buf); err != nil {
		h.Log.Error().Err(err).Str("kind", req.Kind).Msg("export failed")
		switch {
		case report.IsDataIntegrity(err):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case report.IsClientError(err):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "export failed")
		}
		return
	}

	filename := export.Filename(string(kind), report.Today(), rep.Range.Start, rep.Range.End)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Export-ID", uuid.NewString())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// compile parses options and runs the compiler, writing the error response
// itself when something fails.
func (h *Handler) compile(w http.ResponseWriter, r *http.Request, req ReportRequest) (*report.Report, bool) {
	cfg, err := h.Factory.Parse(req.Params)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	rep, err := h.Compiler.Compile(r.Context(), cfg)
	if err != nil {
		if report.IsClientError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
		} else {
			h.Log.Error().Err(err).Msg("compile failed")
			respondError(w, http.StatusInternalServerError, "report compilation failed")
		}
		return nil, false
	}
	return rep, true
}

func reportDTO(rep *report.Report) ReportDTO {
	dto := ReportDTO{
		Start:      rep.Range.Start.String(),
		End:        rep.Range.End.String(),
		Frequency:  string(rep.Config.Frequency),
		UserTotals: make(map[string]HoursDTO),
		GrandTotal: hoursDTO(rep.Total()),
	}
	for _, col := range rep.Columns() {
		dto.Columns = append(dto.Columns, ColumnDTO{
			Key:     col.Key,
			Label:   col.Label,
			Start:   col.Start.String(),
			End:     col.End.String(),
			Partial: col.Partial,
			Total:   hoursDTO(rep.ColumnTotal(col.Key)),
		})
	}
	for _, row := range rep.Rows() {
		rowDTO := RowDTO{
			TaskID:     row.Task.ID,
			Label:      row.Task.Title,
			NewSection: row.NewSection,
			Cells:      make(map[string]HoursDTO),
			Total:      hoursDTO(row.Hours),
		}
		if row.Section != nil {
			rowDTO.Section = row.Section.Title
		}
		for _, col := range rep.Columns() {
			if cell := row.Cell(col.Key); cell != nil {
				rowDTO.Cells[col.Key] = hoursDTO(cell.Totals())
			}
		}
		dto.Rows = append(dto.Rows, rowDTO)
	}
	for _, u := range rep.Users {
		dto.Users = append(dto.Users, UserDTO{ID: u.ID, Name: u.Name})
		dto.UserTotals[u.ID] = hoursDTO(rep.UserTotal(u.ID))
	}
	return dto
}

// =============================================================================
// DATA ENDPOINTS
// =============================================================================

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.Tasks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	projects, err := h.Store.Projects(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	titles := make(map[string]string, len(projects))
	for _, p := range projects {
		titles[p.ID] = p.SectionTitle()
	}

	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskDTO{
			ID:       t.ID,
			Project:  titles[t.ProjectID],
			Code:     t.Code,
			Title:    t.Title,
			Billable: t.Billable,
			Active:   t.Active,
			Duration: t.Duration.String(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.Users(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, UserDTO{ID: u.ID, Name: u.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	period := report.Period{
		Start: report.NewDate(report.Today().Year(), 1, 1),
		End:   report.NewDate(report.Today().Year(), 12, 31),
	}
	if from, err := report.ParseDate(r.URL.Query().Get("from")); err == nil {
		period.Start = from
	}
	if to, err := report.ParseDate(r.URL.Query().Get("to")); err == nil {
		period.End = to
	}

	holidays, err := h.Store.Holidays(r.Context(), period)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list holidays")
		return
	}
	out := make([]HolidayDTO, 0, len(holidays))
	for d, name := range holidays {
		out = append(out, HolidayDTO{Date: d.String(), Name: name})
	}
	respondJSON(w, http.StatusOK, out)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
