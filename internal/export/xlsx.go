package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jpalmerr/dashgrid/board"
)

const (
	// SummarySheet lists every panel with its statistics.
	SummarySheet = "Dashboard"

	// LayoutSheet lists every placement in every breakpoint.
	LayoutSheet = "Layouts"

	// maxSheetName is the longest sheet name Excel accepts.
	maxSheetName = 31

	defaultSheet = "Sheet1"
)

var summaryHeader = []any{"ID", "Title", "Kind", "Count", "Min", "Max", "Mean", "StdDev"}

var layoutHeader = []any{"Breakpoint", "Panel", "X", "Y", "W", "H"}

var seriesHeader = []any{"Time", "Value"}

// chartTypes maps panel chart kinds to native spreadsheet charts.
var chartTypes = map[board.ChartKind]excelize.ChartType{
	board.ChartLine: excelize.Line,
	board.ChartBar:  excelize.Col,
	board.ChartPie:  excelize.Pie,
	board.ChartArea: excelize.Area,
}

// SheetName returns the sheet holding a panel's series. Characters Excel
// rejects in sheet names are replaced and the result is truncated.
func SheetName(panelID string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', '\'':
			return '_'
		}
		return r
	}, panelID)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// writeXLSX writes a workbook with a summary sheet, a layout sheet and one
// sheet per panel holding its series and a chart of the panel's kind.
func writeXLSX(w io.Writer, d *board.Dashboard) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	// the new workbook's only sheet becomes the summary
	if err := f.SetSheetName(defaultSheet, SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for i, id := range d.PanelIDs() {
		p := d.Panels[id]
		s := board.Summarize(p.Series)
		row := []any{p.ID, p.Title, p.Kind.String(), s.Count, s.Min, s.Max, s.Mean, s.StdDev}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary row for %s: %w", p.ID, err)
		}

		if err := writePanelSheet(f, p); err != nil {
			return err
		}
	}

	if err := writeLayoutSheet(f, d.Layouts); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writePanelSheet(f *excelize.File, p *board.Panel) error {
	sheet := SheetName(p.ID)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet for %s: %w", p.ID, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &seriesHeader); err != nil {
		return fmt.Errorf("writing series header for %s: %w", p.ID, err)
	}

	for i, s := range p.Series {
		row := []any{s.Label, s.Value}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing series for %s: %w", p.ID, err)
		}
	}

	// an empty series renders as "No Data" in the UI; there is nothing to chart
	if len(p.Series) == 0 {
		return nil
	}

	last := len(p.Series) + 1
	chartType, ok := chartTypes[p.Kind]
	if !ok {
		chartType = excelize.Line
	}
	chart := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title: []excelize.RichTextRun{{Text: p.Title}},
		Legend: excelize.ChartLegend{
			Position: "bottom",
		},
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return fmt.Errorf("adding chart for %s: %w", p.ID, err)
	}
	return nil
}

func writeLayoutSheet(f *excelize.File, layouts board.Layouts) error {
	if _, err := f.NewSheet(LayoutSheet); err != nil {
		return fmt.Errorf("creating layout sheet: %w", err)
	}
	if err := f.SetSheetRow(LayoutSheet, "A1", &layoutHeader); err != nil {
		return fmt.Errorf("writing layout header: %w", err)
	}

	rowNum := 2
	for _, name := range board.BreakpointNames() {
		for _, pl := range layouts[name] {
			row := []any{name, pl.PanelID, pl.X, pl.Y, pl.W, pl.H}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetSheetRow(LayoutSheet, cell, &row); err != nil {
				return fmt.Errorf("writing layout row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}
