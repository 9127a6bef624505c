/*
Package export renders compiled reports into downloadable files.

PURPOSE:
  Defines the generator contract and the ordered registry that dispatches
  report kinds to generators. A generator is polymorphic over:
    - Understands(kind):     can this generator render the kind?
    - DescribeOptions(kind): ordered option widgets for the export form
    - Generate(...):         emit the file, or return an error - never both

NO PARTIAL FILES:
  Generators build their output in memory and copy it to the writer only
  on success. A DataIntegrityError mid-generation therefore never leaves a
  truncated file with the caller.

SEE ALSO:
  - csv.go:     Tabular CSV generator (by-task, by-user, combined)
  - workday.go: Workday rounding/redistribution generator
*/
package export

import (
	"io"

	"github.com/warp/report-engine/report"
)

// Kind identifies an export format.
type Kind string

const (
	KindTaskCSV     Kind = "task_csv"     // one line per task
	KindUserCSV     Kind = "user_csv"     // one line per user
	KindCombinedCSV Kind = "combined_csv" // tasks with per-user breakdown
	KindWorkdayCSV  Kind = "workday_csv"  // day-quantised workday export
)

// OptionKind is the widget type of one export option.
type OptionKind string

const (
	OptionCheckbox  OptionKind = "checkbox"
	OptionRadio     OptionKind = "radio"
	OptionSeparator OptionKind = "separator"
)

// OptionSpec describes one entry of a generator's option form, in order.
type OptionSpec struct {
	Kind    OptionKind
	ID      string
	Label   string
	Default bool
}

// Options carries the submitted option states, keyed by OptionSpec.ID.
// Missing keys fall back to the OptionSpec default.
type Options map[string]bool

// Enabled resolves an option against the generator's declared specs.
func (o Options) Enabled(id string, specs []OptionSpec) bool {
	if v, ok := o[id]; ok {
		return v
	}
	for _, s := range specs {
		if s.ID == id {
			return s.Default
		}
	}
	return false
}

// Generator renders one or more report kinds.
type Generator interface {
	// Understands reports whether this generator can render the kind.
	Understands(kind Kind) bool

	// DescribeOptions returns the ordered option widgets for the kind.
	DescribeOptions(kind Kind) []OptionSpec

	// Generate renders the report to w. Calling it with a kind the
	// generator does not understand is a programming error and returns
	// report.ErrUnknownReportKind.
	Generate(kind Kind, rep *report.Report, opts Options, w io.Writer) error
}

// =============================================================================
// REGISTRY - Ordered generator lookup
// =============================================================================

// Registry holds generators in registration order and dispatches a kind to
// the first generator that understands it.
type Registry struct {
	generators []Generator
}

func NewRegistry(generators ...Generator) *Registry {
	return &Registry{generators: generators}
}

func (r *Registry) Register(g Generator) {
	r.generators = append(r.generators, g)
}

// Lookup returns the first generator understanding the kind.
func (r *Registry) Lookup(kind Kind) (Generator, bool) {
	for _, g := range r.generators {
		if g.Understands(kind) {
			return g, true
		}
	}
	return nil, false
}

// Generate dispatches to the first understanding generator.
func (r *Registry) Generate(kind Kind, rep *report.Report, opts Options, w io.Writer) error {
	g, ok := r.Lookup(kind)
	if !ok {
		return report.ErrUnknownReportKind
	}
	return g.Generate(kind, rep, opts, w)
}

// Kinds returns every kind some registered generator understands, in
// registration order.
func (r *Registry) Kinds() []Kind {
	all := []Kind{KindTaskCSV, KindUserCSV, KindCombinedCSV, KindWorkdayCSV}
	var out []Kind
	for _, k := range all {
		if _, ok := r.Lookup(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// Filename builds the export attachment name:
// report_<label>_on_<today>_for_<start>_to_<end>.csv
func Filename(label string, today, start, end report.Date) string {
	return "report_" + label +
		"_on_" + today.Compact() +
		"_for_" + start.Compact() +
		"_to_" + end.Compact() + ".csv"
}
