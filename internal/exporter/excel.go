package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"retailpulse/internal/config"
)

// ExcelWriter writes reports as multi-sheet Excel workbooks under the
// configured reports directory.
type ExcelWriter struct {
	paths *config.Paths
}

// NewExcelWriter creates an Excel report writer.
func NewExcelWriter(paths *config.Paths) *ExcelWriter {
	return &ExcelWriter{paths: paths}
}

// WriteReport writes the report to filename inside the reports directory and
// returns the full path. Each table becomes its own sheet with a bold header
// row.
func (w *ExcelWriter) WriteReport(report Report, filename string) (string, error) {
	fullPath := w.resolvePath(filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	for i, table := range report.Tables {
		sheet := sheetName(table.Name)
		if i == 0 {
			// Reuse the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return "", fmt.Errorf("rename default sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return "", fmt.Errorf("create sheet %q: %w", sheet, err)
			}
		}

		for col, header := range table.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return "", err
			}
		}
		if len(table.Headers) > 0 {
			last, err := excelize.CoordinatesToCellName(len(table.Headers), 1)
			if err != nil {
				return "", err
			}
			if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
				return "", err
			}
		}

		for r, row := range table.Rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+2)
				if err != nil {
					return "", err
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return "", err
				}
			}
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return fullPath, nil
}

// sheetName makes a table name safe for Excel: at most 31 characters.
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

func (w *ExcelWriter) resolvePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return w.paths.GetReportPath(filename)
}
