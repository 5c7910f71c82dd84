package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Source CSV file names. These match the dataset exactly, including the
// historical "coustomer" spelling and the capital T in Trans_dim.csv.
const (
	CustomerDimFile = "customer_dim.csv"
	ItemDimFile     = "item_dim.csv"
	StoreDimFile    = "store_dim.csv"
	TimeDimFile     = "time_dim.csv"
	TransDimFile    = "Trans_dim.csv"
	FactTableFile   = "fact_table.csv"
)

// Paths is the single source of truth for all file paths in the application.
type Paths struct {
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// NewPaths resolves the configured directories to absolute paths.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	reportsDir, err := filepath.Abs(cfg.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reports dir: %w", err)
	}
	logsDir, err := filepath.Abs(cfg.LogsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}

	return &Paths{
		DataDir:    dataDir,
		ReportsDir: reportsDir,
		LogsDir:    logsDir,
	}, nil
}

// CustomerDim returns the path of the customer dimension file.
func (p *Paths) CustomerDim() string { return filepath.Join(p.DataDir, CustomerDimFile) }

// ItemDim returns the path of the item dimension file.
func (p *Paths) ItemDim() string { return filepath.Join(p.DataDir, ItemDimFile) }

// StoreDim returns the path of the store dimension file.
func (p *Paths) StoreDim() string { return filepath.Join(p.DataDir, StoreDimFile) }

// TimeDim returns the path of the time dimension file.
func (p *Paths) TimeDim() string { return filepath.Join(p.DataDir, TimeDimFile) }

// TransDim returns the path of the transaction-type dimension file.
func (p *Paths) TransDim() string { return filepath.Join(p.DataDir, TransDimFile) }

// FactTable returns the path of the fact table file.
func (p *Paths) FactTable() string { return filepath.Join(p.DataDir, FactTableFile) }

// GetReportPath returns the path for an exported report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// EnsureDirectories creates the writable directories if they do not exist.
// The data directory is input only and is not created here: a missing data
// directory is a configuration error that must surface at load time.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
