package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableLayout describes a rounded go-pretty table. Rows shorter than Headers
// are padded with empty cells.
type tableLayout struct {
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
	Footer  []string
}

func (s tableLayout) render() string {
	if len(s.Headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(s.row(s.Headers))
	for _, r := range s.Rows {
		tw.AppendRow(s.row(r))
	}
	if len(s.Footer) > 0 {
		tw.AppendFooter(s.row(s.Footer))
	}

	configs := make([]table.ColumnConfig, len(s.Headers))
	for i := range s.Headers {
		align := text.AlignLeft
		if i < len(s.Aligns) && s.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft, AlignFooter: align}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func (s tableLayout) row(cells []string) table.Row {
	out := make(table.Row, len(s.Headers))
	for i := range out {
		if i < len(cells) {
			out[i] = cells[i]
		} else {
			out[i] = ""
		}
	}
	return out
}
