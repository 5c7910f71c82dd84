// Package exporter writes the dashboard summary tables to report files for
// use in presentations. Two formats are supported: a sectioned CSV file with
// a UTF-8 BOM so Excel opens it correctly, and a multi-sheet Excel workbook.
package exporter
