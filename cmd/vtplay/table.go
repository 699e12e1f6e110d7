package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var titleCaser = cases.Title(language.English)

func renderTable(title string, headers []string, rows [][]string, aligns []columnAlignment, colorize bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if colorize {
		style := tw.Style()
		style.Color.Header = text.Colors{text.Bold, text.FgBlue}
		style.Title.Colors = text.Colors{text.Bold}
	}
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
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

// property is one labelled value in a two-column table. Keys are snake_case
// and rendered as title-cased labels.
type property struct {
	key   string
	value string
}

func renderProperties(title string, props []property, colorize bool) string {
	rows := make([][]string, 0, len(props))
	for _, p := range props {
		rows = append(rows, []string{propertyLabel(p.key), p.value})
	}
	return renderTable(title, []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, colorize)
}

func propertyLabel(key string) string {
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}
