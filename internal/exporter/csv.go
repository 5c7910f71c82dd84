package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"retailpulse/internal/config"
)

// CSVWriter writes reports as a single sectioned CSV file under the
// configured reports directory.
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a CSV report writer.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteReport writes the report to filename inside the reports directory and
// returns the full path. Each table appears as a section: a name row, the
// header row, the data rows, then a blank line. The file starts with a UTF-8
// BOM so Excel detects the encoding.
func (w *CSVWriter) WriteReport(report Report, filename string) (string, error) {
	fullPath := w.resolvePath(filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	for _, table := range report.Tables {
		if err := writer.Write([]string{table.Name}); err != nil {
			return "", fmt.Errorf("write section %q: %w", table.Name, err)
		}
		if err := writer.Write(table.Headers); err != nil {
			return "", fmt.Errorf("write headers for %q: %w", table.Name, err)
		}
		for i, row := range table.Rows {
			if err := writer.Write(row); err != nil {
				return "", fmt.Errorf("write row %d of %q: %w", i, table.Name, err)
			}
		}
		// csv.Writer drops fully empty records, write the separator directly.
		writer.Flush()
		if err := writer.Error(); err != nil {
			return "", err
		}
		if _, err := file.WriteString("\n"); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (w *CSVWriter) resolvePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return w.paths.GetReportPath(filename)
}
