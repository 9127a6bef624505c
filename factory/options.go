/*
Package factory converts submitted report parameters into validated
configuration.

PURPOSE:
  The report compiler trusts its Config; this package is where untrusted
  option strings (HTTP form values, CLI flags) are checked. Every invalid
  value is rejected with a report.ConfigurationError BEFORE compilation -
  the compiler never sees a bad option.

RELATIVE RANGES:
  Besides fixed dates, the range selector accepts relative tokens resolved
  against "today" (injectable for tests):
    all         the span of the recorded entries (resolved by the compiler)
    this_week   Monday..Sunday of the current week
    last_week   the previous Monday..Sunday
    two_week    last week's Monday .. this week's Sunday
    this_month  the current calendar month
    last_month  the previous calendar month
    two_month   first of last month .. end of this month
*/
package factory

import (
	"github.com/warp/report-engine/report"
)

// Params are the raw, externally submitted report parameters. Zero-valued
// strings select the documented defaults.
type Params struct {
	Range string `json:"range"` // relative token, or "fixed"
	Start string `json:"start"` // YYYY-MM-DD, with Range == "fixed"
	End   string `json:"end"`

	Frequency  string `json:"frequency"`
	TaskFilter string `json:"task_filter"`
	Grouping   string `json:"grouping"`

	CustomerSort string `json:"customer_sort"`
	ProjectSort  string `json:"project_sort"`
	TaskSort     string `json:"task_sort"`

	IncludeInactive  bool `json:"include_inactive"`
	HideEmptyRows    bool `json:"hide_empty_rows"`
	HideEmptyColumns bool `json:"hide_empty_columns"`

	ShowTotal        bool `json:"show_total"`
	ShowCommitted    bool `json:"show_committed"`
	ShowNotCommitted bool `json:"show_not_committed"`
}

// OptionsFactory validates Params into a report.Config.
type OptionsFactory struct {
	// Today is injectable so relative ranges are testable.
	Today func() report.Date
}

func NewOptionsFactory() *OptionsFactory {
	return &OptionsFactory{Today: report.Today}
}

// Parse validates every option and resolves the date range. The first
// invalid value aborts with a ConfigurationError.
func (f *OptionsFactory) Parse(p Params) (report.Config, error) {
	var cfg report.Config

	rng, err := f.parseRange(p)
	if err != nil {
		return cfg, err
	}
	cfg.Range = rng

	cfg.Frequency, err = parseFrequency(p.Frequency)
	if err != nil {
		return cfg, err
	}
	cfg.TaskFilter, err = parseTaskFilter(p.TaskFilter)
	if err != nil {
		return cfg, err
	}
	cfg.Grouping, err = parseGrouping(p.Grouping)
	if err != nil {
		return cfg, err
	}
	cfg.CustomerSort, err = parseSortField("customer_sort", p.CustomerSort)
	if err != nil {
		return cfg, err
	}
	cfg.ProjectSort, err = parseSortField("project_sort", p.ProjectSort)
	if err != nil {
		return cfg, err
	}
	cfg.TaskSort, err = parseSortField("task_sort", p.TaskSort)
	if err != nil {
		return cfg, err
	}

	cfg.IncludeInactive = p.IncludeInactive
	cfg.HideEmptyRows = p.HideEmptyRows
	cfg.HideEmptyColumns = p.HideEmptyColumns
	cfg.ShowTotal = p.ShowTotal
	cfg.ShowCommitted = p.ShowCommitted
	cfg.ShowNotCommitted = p.ShowNotCommitted
	if !cfg.ShowTotal && !cfg.ShowCommitted && !cfg.ShowNotCommitted {
		cfg.ShowTotal = true
	}
	return cfg, nil
}

// =============================================================================
// RANGE RESOLUTION
// =============================================================================

func (f *OptionsFactory) parseRange(p Params) (report.Period, error) {
	today := f.Today()
	switch p.Range {
	case "all":
		// Zero period: the compiler derives the span from the entries.
		return report.Period{}, nil
	case "this_week":
		start := today.StartOfWeek()
		return report.Period{Start: start, End: start.AddDays(6)}, nil
	case "last_week":
		start := today.StartOfWeek().AddDays(-7)
		return report.Period{Start: start, End: start.AddDays(6)}, nil
	case "two_week":
		start := today.StartOfWeek().AddDays(-7)
		return report.Period{Start: start, End: start.AddDays(13)}, nil
	case "this_month":
		start := today.StartOfMonth()
		return report.Period{Start: start, End: start.AddMonths(1).AddDays(-1)}, nil
	case "last_month":
		start := today.StartOfMonth().AddMonths(-1)
		return report.Period{Start: start, End: start.AddMonths(1).AddDays(-1)}, nil
	case "two_month":
		start := today.StartOfMonth().AddMonths(-1)
		return report.Period{Start: start, End: start.AddMonths(2).AddDays(-1)}, nil
	case "", "fixed":
		return parseFixedRange(p)
	default:
		return report.Period{}, report.NewConfigurationError("range", p.Range)
	}
}

func parseFixedRange(p Params) (report.Period, error) {
	start, err := report.ParseDate(p.Start)
	if err != nil {
		return report.Period{}, report.NewConfigurationError("start", p.Start)
	}
	end, err := report.ParseDate(p.End)
	if err != nil {
		return report.Period{}, report.NewConfigurationError("end", p.End)
	}
	if end.Before(start) {
		return report.Period{}, report.NewConfigurationError("range", p.Start+".."+p.End)
	}
	return report.Period{Start: start, End: end}, nil
}

// =============================================================================
// ENUM VALIDATION
// =============================================================================

func parseFrequency(s string) (report.Frequency, error) {
	switch s {
	case "", string(report.FrequencyDay):
		return report.FrequencyDay, nil
	case string(report.FrequencyWeek):
		return report.FrequencyWeek, nil
	case string(report.FrequencyMonth):
		return report.FrequencyMonth, nil
	case string(report.FrequencyQuarter):
		return report.FrequencyQuarter, nil
	case string(report.FrequencyEntire):
		return report.FrequencyEntire, nil
	}
	return "", report.NewConfigurationError("frequency", s)
}

func parseTaskFilter(s string) (report.TaskFilter, error) {
	switch s {
	case "", string(report.TasksAll):
		return report.TasksAll, nil
	case string(report.TasksBillable):
		return report.TasksBillable, nil
	case string(report.TasksNonBillable):
		return report.TasksNonBillable, nil
	}
	return "", report.NewConfigurationError("task_filter", s)
}

func parseGrouping(s string) (report.GroupingMode, error) {
	switch s {
	case "", string(report.GroupingDefault):
		return report.GroupingDefault, nil
	case string(report.GroupingBillable):
		return report.GroupingBillable, nil
	case string(report.GroupingActive):
		return report.GroupingActive, nil
	case string(report.GroupingBoth):
		return report.GroupingBoth, nil
	}
	return "", report.NewConfigurationError("grouping", s)
}

func parseSortField(option, s string) (report.SortField, error) {
	switch s {
	case "", string(report.SortByTitle):
		return report.SortByTitle, nil
	case string(report.SortByCode):
		return report.SortByCode, nil
	case string(report.SortByCreatedAt):
		return report.SortByCreatedAt, nil
	}
	return "", report.NewConfigurationError(option, s)
}
