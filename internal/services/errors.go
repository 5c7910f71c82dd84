package services

import "errors"

var (
	// ErrDatasetNotLoaded is returned when a summary is requested before the
	// CSVs were loaded or after a failed refresh left no snapshot.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrUnsupportedFormat is returned for export formats other than csv and
	// xlsx.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
