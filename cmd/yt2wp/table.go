package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

type tableSpec struct {
	Title   string
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
}

func writeTable(w io.Writer, spec tableSpec) {
	if len(spec.Headers) == 0 {
		return
	}
	fmt.Fprintln(w, renderTable(spec))
}

func renderTable(spec tableSpec) string {
	columns := len(spec.Headers)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if spec.Title != "" {
		tw.SetTitle(spec.Title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = spec.Headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range spec.Rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(spec.Aligns) && spec.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// statusCell renders a pass/fail marker, colored only on a terminal.
func statusCell(w io.Writer, ok bool, pass, fail string) string {
	label, color := fail, text.FgRed
	if ok {
		label, color = pass, text.FgGreen
	}
	if !isTerminal(w) {
		return label
	}
	return color.Sprint(label)
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
