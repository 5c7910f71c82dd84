// Package validation checks the data directory before the expensive load
// starts, so a misconfigured deployment fails with one complete error
// instead of surfacing missing files one at a time.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"retailpulse/internal/config"
)

// DataValidator validates the star-schema data directory.
type DataValidator struct {
	logger *slog.Logger
}

// NewDataValidator creates a data validator.
func NewDataValidator(logger *slog.Logger) *DataValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataValidator{logger: logger}
}

// ValidateDataDir checks that the data directory exists and contains all six
// source CSV files. All missing files are reported in a single error.
func (v *DataValidator) ValidateDataDir(paths *config.Paths) error {
	info, err := os.Stat(paths.DataDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", paths.DataDir)
	}
	if err != nil {
		return fmt.Errorf("cannot access data directory %s: %w", paths.DataDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path is not a directory: %s", paths.DataDir)
	}

	var missing []string
	for _, file := range []string{
		paths.CustomerDim(),
		paths.ItemDim(),
		paths.StoreDim(),
		paths.TimeDim(),
		paths.TransDim(),
		paths.FactTable(),
	} {
		if !config.FileExists(file) {
			missing = append(missing, file)
		}
	}

	if len(missing) > 0 {
		v.logger.Error("data directory is missing source files",
			slog.String("data_dir", paths.DataDir),
			slog.Int("missing", len(missing)))
		return fmt.Errorf("missing %d source file(s): %s",
			len(missing), strings.Join(missing, ", "))
	}

	v.logger.Debug("data directory validated", slog.String("data_dir", paths.DataDir))
	return nil
}
