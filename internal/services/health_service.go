package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

// DatasetStatus is what the health service needs from the dashboard service.
type DatasetStatus interface {
	Meta() (domain.DatasetMeta, bool)
}

// ClientCounter is what the health service needs from the websocket hub.
type ClientCounter interface {
	ClientCount() int
}

// HealthService reports service health for readiness and liveness probes.
type HealthService struct {
	version   string
	paths     *config.Paths
	dataset   DatasetStatus
	hub       ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth describes one dependency inside a readiness response.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. Dataset and hub may be nil in
// tests; the corresponding checks then report not_ready.
func NewHealthService(version string, paths *config.Paths, dataset DatasetStatus, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		dataset:   dataset,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck verifies the data files and the loaded snapshot.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data_files"] = hs.checkDataFiles()
	status.Services["dataset"] = hs.checkDataset()
	status.Services["websocket"] = hs.checkWebSocket()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status with runtime details.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version and build environment information.
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDataFiles() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "not_ready", Message: "paths not configured"}
	}
	files := []string{
		hs.paths.CustomerDim(),
		hs.paths.ItemDim(),
		hs.paths.StoreDim(),
		hs.paths.TimeDim(),
		hs.paths.TransDim(),
		hs.paths.FactTable(),
	}
	for _, file := range files {
		if !config.FileExists(file) {
			return ServiceHealth{
				Status:  "not_ready",
				Message: fmt.Sprintf("missing data file: %s", file),
			}
		}
	}
	return ServiceHealth{Status: "ready", Message: "all data files present"}
}

func (hs *HealthService) checkDataset() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dashboard service not initialized"}
	}
	meta, loaded := hs.dataset.Meta()
	if !loaded {
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d rows loaded, %d excluded", meta.RowsTotal, meta.RowsExcluded),
	}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "not_ready", Message: "websocket hub not initialized"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount()),
	}
}
