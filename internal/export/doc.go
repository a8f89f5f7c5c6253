// Package export writes a dashboard to JSON, YAML or an XLSX workbook.
//
// Unlike the stored document, exports include each panel's sample data and
// a statistical summary. The workbook holds a summary sheet, a layout sheet
// and one sheet per panel with a native chart matching the panel's kind.
package export
