package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"marginalia/internal/annot"
	"marginalia/internal/db"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const maxTextColumn = 48

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
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

// recordTable renders the canonical annotation list for a terminal.
func recordTable(records []annot.Summary) string {
	headers := []string{"Page", "Stable Key", "Kind", "Source", "Text"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		kind := rec.KindLabel
		if kind == "" {
			kind = rec.Subtype
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.PageNumber()),
			rec.StableKey,
			kind,
			string(rec.Source),
			truncate(rec.TrimmedText(), maxTextColumn),
		})
	}
	return renderTable(headers, rows, aligns)
}

// snapshotTable renders the snapshot history listing for a terminal.
func snapshotTable(items []db.Snapshot) string {
	headers := []string{"ID", "Taken", "Records"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			s.ID,
			time.Unix(s.TakenAt, 0).UTC().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", s.RecordCount),
		})
	}
	return renderTable(headers, rows, aligns)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
