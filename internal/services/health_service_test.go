package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

type fixedDataset struct {
	meta   domain.DatasetMeta
	loaded bool
}

func (f fixedDataset) Meta() (domain.DatasetMeta, bool) { return f.meta, f.loaded }

type fixedCounter int

func (f fixedCounter) ClientCount() int { return int(f) }

func TestHealthCheck(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
}

func TestReadinessAllReady(t *testing.T) {
	paths := fixturePaths(t)
	dataset := fixedDataset{meta: domain.DatasetMeta{RowsTotal: 2, RowsExcluded: 1}, loaded: true}

	hs := NewHealthService("1.0.0", paths, dataset, fixedCounter(3), nil)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "ready", status.Status)
	data := status.Services["dataset"].(ServiceHealth)
	assert.Contains(t, data.Message, "2 rows loaded")
	ws := status.Services["websocket"].(ServiceHealth)
	assert.Contains(t, ws.Message, "3 clients")
}

func TestReadinessMissingDataFile(t *testing.T) {
	paths := fixturePaths(t)
	require.NoError(t, os.Remove(paths.FactTable()))

	hs := NewHealthService("1.0.0", paths, fixedDataset{loaded: true}, fixedCounter(0), nil)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", status.Status)
	files := status.Services["data_files"].(ServiceHealth)
	assert.Equal(t, "not_ready", files.Status)
	assert.Contains(t, files.Message, "fact_table.csv")
}

func TestReadinessDatasetNotLoaded(t *testing.T) {
	hs := NewHealthService("1.0.0", fixturePaths(t), fixedDataset{}, fixedCounter(0), nil)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", status.Status)
	data := status.Services["dataset"].(ServiceHealth)
	assert.Equal(t, "not_ready", data.Status)
}

func TestLivenessIncludesRuntime(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, nil, nil)
	status := hs.LivenessCheck(context.Background())

	assert.Equal(t, "alive", status.Status)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestVersionInfo(t *testing.T) {
	hs := NewHealthService("1.0.0", nil, nil, nil, nil)
	info := hs.Version()

	assert.Equal(t, "1.0.0", info["version"])
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "start_time")
}
