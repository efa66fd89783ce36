package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/resourcelist"
)

const timeLayout = "2006-01-02 15:04"

func (cli *commandLine) renderTable(header table.Row, rows []table.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(cli.out, "(0 rows)")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(cli.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
	fmt.Fprintf(cli.out, "(%d rows)\n", len(rows))
}

// renderNextSlot prints the options of the first slot without a selection.
func (cli *commandLine) renderNextSlot(states []resourcelist.SlotState, slots []slotFlag) error {
	for i, s := range states {
		if s.Selected != "" {
			continue
		}
		if s.Err != nil {
			return s.Err
		}
		fmt.Fprintf(cli.out, "select a %s with --%s:\n", slots[i].label, slots[i].flag)
		opts := make([]table.Row, 0, len(s.Options))
		for _, opt := range s.Options {
			opts = append(opts, table.Row{opt.ID, opt.Label})
		}
		cli.renderTable(table.Row{"ID", "Name"}, opts)
		return nil
	}
	return nil
}

// renderState prints the list refreshed after a mutation, when there is one.
func renderState[E resourcelist.Entity, D any](cli *commandLine, k kind[E, D], st resourcelist.State[E]) {
	if st.Status != resourcelist.ListReady {
		return
	}
	cli.renderTable(k.header, rows(st.Items, k.row))
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func fmtNullTime(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return fmtTime(t.Time)
}

func fmtNullInt(i null.Int64) string {
	if !i.Valid {
		return ""
	}
	return fmt.Sprint(i.Int64)
}

func fmtNullFloat(f null.Float64) string {
	if !f.Valid {
		return ""
	}
	return fmt.Sprintf("%g", f.Float64)
}
