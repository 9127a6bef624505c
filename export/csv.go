/*
csv.go - Tabular CSV generator

Renders the compiled grid as plain CSV in three shapes: one line per task
(with section subtotals), one line per user, or combined (task lines with a
nested per-user breakdown). Hour-class display flags on the report config
decide which of total/committed/not-committed appear per column.
*/
package export

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/report-engine/report"
)

// TabularCSV renders the task/user/combined CSV kinds.
type TabularCSV struct{}

func NewTabularCSV() *TabularCSV { return &TabularCSV{} }

func (g *TabularCSV) Understands(kind Kind) bool {
	switch kind {
	case KindTaskCSV, KindUserCSV, KindCombinedCSV:
		return true
	}
	return false
}

func (g *TabularCSV) DescribeOptions(kind Kind) []OptionSpec {
	if !g.Understands(kind) {
		return nil
	}
	return []OptionSpec{
		{Kind: OptionCheckbox, ID: "section_subtotals", Label: "Include section subtotal lines", Default: true},
		{Kind: OptionCheckbox, ID: "column_totals", Label: "Include column total line", Default: true},
	}
}

func (g *TabularCSV) Generate(kind Kind, rep *report.Report, opts Options, w io.Writer) error {
	if !g.Understands(kind) {
		return report.ErrUnknownReportKind
	}
	specs := g.DescribeOptions(kind)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	switch kind {
	case KindUserCSV:
		g.writeUsers(cw, rep, opts, specs)
	case KindCombinedCSV:
		g.writeTasks(cw, rep, opts, specs, true)
	default:
		g.writeTasks(cw, rep, opts, specs, false)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// hourClasses returns the enabled hour-class column suffixes in fixed order.
func hourClasses(cfg report.Config) []string {
	var classes []string
	if cfg.ShowTotal || (!cfg.ShowCommitted && !cfg.ShowNotCommitted) {
		classes = append(classes, "total")
	}
	if cfg.ShowCommitted {
		classes = append(classes, "committed")
	}
	if cfg.ShowNotCommitted {
		classes = append(classes, "open")
	}
	return classes
}

func classValue(acc *report.HourAccumulator, class string) decimal.Decimal {
	switch class {
	case "committed":
		return acc.Committed()
	case "open":
		return acc.NotCommitted()
	default:
		return acc.Total()
	}
}

func headerRecord(first string, columns []report.TimeColumn, classes []string) []string {
	rec := []string{first}
	for _, col := range columns {
		for _, class := range classes {
			label := col.Label
			if len(classes) > 1 {
				label += " (" + class + ")"
			}
			rec = append(rec, label)
		}
	}
	for _, class := range classes {
		label := "Total"
		if len(classes) > 1 {
			label += " (" + class + ")"
		}
		rec = append(rec, label)
	}
	return rec
}

func (g *TabularCSV) writeTasks(cw *csv.Writer, rep *report.Report, opts Options, specs []OptionSpec, perUser bool) {
	classes := hourClasses(rep.Config)
	columns := rep.Columns()
	cw.Write(headerRecord("Task", columns, classes))

	var section *report.Section
	flushSection := func() {
		if section == nil || !opts.Enabled("section_subtotals", specs) {
			return
		}
		rec := []string{"Section total: " + section.Title}
		for _, col := range columns {
			acc := section.ColumnHours[col.Key]
			if acc == nil {
				acc = report.NewHourAccumulator()
			}
			for _, class := range classes {
				rec = append(rec, classValue(acc, class).String())
			}
		}
		for _, class := range classes {
			rec = append(rec, classValue(section.Hours, class).String())
		}
		cw.Write(rec)
	}

	for _, row := range rep.Rows() {
		if row.Section != section {
			flushSection()
			section = row.Section
		}
		rec := []string{taskLabel(row.Task)}
		for _, col := range columns {
			acc := row.Cell(col.Key).Totals()
			for _, class := range classes {
				rec = append(rec, classValue(acc, class).String())
			}
		}
		for _, class := range classes {
			rec = append(rec, classValue(row.Hours, class).String())
		}
		cw.Write(rec)

		if perUser {
			for _, user := range rep.Users {
				acc := row.UserTotal(user.ID)
				if acc.IsZero() {
					continue
				}
				urec := []string{"  " + user.Name}
				for _, col := range columns {
					cellAcc := row.Cell(col.Key).UserTotal(user.ID)
					for _, class := range classes {
						urec = append(urec, classValue(cellAcc, class).String())
					}
				}
				for _, class := range classes {
					urec = append(urec, classValue(acc, class).String())
				}
				cw.Write(urec)
			}
		}
	}
	flushSection()

	if opts.Enabled("column_totals", specs) {
		rec := []string{"Total"}
		for _, col := range columns {
			for _, class := range classes {
				rec = append(rec, classValue(rep.ColumnTotal(col.Key), class).String())
			}
		}
		for _, class := range classes {
			rec = append(rec, classValue(rep.Total(), class).String())
		}
		cw.Write(rec)
	}
}

func (g *TabularCSV) writeUsers(cw *csv.Writer, rep *report.Report, opts Options, specs []OptionSpec) {
	classes := hourClasses(rep.Config)
	columns := rep.Columns()
	cw.Write(headerRecord("User", columns, classes))

	for _, user := range rep.Users {
		rec := []string{user.Name}
		for _, col := range columns {
			acc := rep.ColumnUserTotal(col.Key, user.ID)
			for _, class := range classes {
				rec = append(rec, classValue(acc, class).String())
			}
		}
		for _, class := range classes {
			rec = append(rec, classValue(rep.UserTotal(user.ID), class).String())
		}
		cw.Write(rec)
	}

	if opts.Enabled("column_totals", specs) {
		rec := []string{"Total"}
		for _, col := range columns {
			for _, class := range classes {
				rec = append(rec, classValue(rep.ColumnTotal(col.Key), class).String())
			}
		}
		for _, class := range classes {
			rec = append(rec, classValue(rep.Total(), class).String())
		}
		cw.Write(rec)
	}
}

func taskLabel(t *report.Task) string {
	if t.Code != "" {
		return t.Code + " " + t.Title
	}
	return t.Title
}
