package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

// segmentRows builds a population with a clear spread of order counts so
// every segment is represented: one heavy spender with many orders, one
// mid-frequency customer, one repeat customer and two one-off buyers.
func segmentRows() []domain.DenormalizedRow {
	var rows []domain.DenormalizedRow
	add := func(customer string, orders int, each float64) {
		for i := 0; i < orders; i++ {
			rows = append(rows, row(customer, "I1", "Snacks", "Dhaka", "Dhaka", "cash", "",
				date(2021, time.March, 1+i), 1, each))
		}
	}
	add("C-vip", 6, 100)  // spent 600
	add("C-loyal", 3, 50) // spent 150
	add("C-reg", 2, 10)   // spent 20
	add("C-one", 1, 5)
	add("C-two", 1, 8)
	return rows
}

func TestCustomerMetricsRollup(t *testing.T) {
	metrics := CustomerMetrics(segmentRows())

	require.Len(t, metrics, 5)

	byKey := make(map[string]domain.CustomerMetric)
	for _, m := range metrics {
		byKey[m.CustomerKey] = m
	}

	vip := byKey["C-vip"]
	assert.Equal(t, 6, vip.OrderCount)
	assert.InDelta(t, 600, vip.TotalSpent, 1e-9)
	assert.InDelta(t, 100, vip.AvgOrderValue, 1e-9)
	assert.Equal(t, 6, vip.TotalQuantity)
}

func TestCustomerMetricsSegments(t *testing.T) {
	metrics := CustomerMetrics(segmentRows())

	segments := make(map[string]domain.CustomerSegment)
	for _, m := range metrics {
		segments[m.CustomerKey] = m.Segment
	}

	assert.Equal(t, domain.SegmentVIP, segments["C-vip"])
	assert.Equal(t, domain.SegmentLoyal, segments["C-loyal"])
	assert.Equal(t, domain.SegmentRegular, segments["C-reg"])
	assert.Equal(t, domain.SegmentOneTime, segments["C-one"])
	assert.Equal(t, domain.SegmentOneTime, segments["C-two"])
}

func TestCustomerMetricsSortedByKey(t *testing.T) {
	metrics := CustomerMetrics(segmentRows())

	keys := make([]string, len(metrics))
	for i, m := range metrics {
		keys[i] = m.CustomerKey
	}
	assert.Equal(t, []string{"C-loyal", "C-one", "C-reg", "C-two", "C-vip"}, keys)
}

func TestCustomerMetricsHighSpendLowFrequencyIsNotVIP(t *testing.T) {
	rows := segmentRows()
	// A single huge order dominates spend but stays below the order floor.
	rows = append(rows, row("C-whale", "I2", "Beverages", "Dhaka", "Dhaka", "card", "City Bank",
		date(2021, time.April, 1), 1, 10000))

	metrics := CustomerMetrics(rows)
	for _, m := range metrics {
		if m.CustomerKey == "C-whale" {
			assert.Equal(t, domain.SegmentOneTime, m.Segment)
			return
		}
	}
	t.Fatal("C-whale not found")
}

func TestSegmentCountsFixedOrder(t *testing.T) {
	counts := SegmentCounts(CustomerMetrics(segmentRows()))

	require.Len(t, counts, 4)
	assert.Equal(t, domain.SegmentCount{Segment: domain.SegmentVIP, Count: 1}, counts[0])
	assert.Equal(t, domain.SegmentCount{Segment: domain.SegmentLoyal, Count: 1}, counts[1])
	assert.Equal(t, domain.SegmentCount{Segment: domain.SegmentRegular, Count: 1}, counts[2])
	assert.Equal(t, domain.SegmentCount{Segment: domain.SegmentOneTime, Count: 2}, counts[3])
}

func TestSegmentCountsEmpty(t *testing.T) {
	counts := SegmentCounts(nil)

	require.Len(t, counts, 4)
	for _, c := range counts {
		assert.Zero(t, c.Count)
	}
}

func TestFrequencyHistogram(t *testing.T) {
	buckets := FrequencyHistogram(CustomerMetrics(segmentRows()))

	assert.Equal(t, []domain.FrequencyBucket{
		{Orders: 1, Customers: 2},
		{Orders: 2, Customers: 1},
		{Orders: 3, Customers: 1},
		{Orders: 6, Customers: 1},
	}, buckets)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{7}, 0.9, 7},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p75 interpolated", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"p90 interpolated", []float64{10, 20, 30}, 0.9, 28},
		{"min", []float64{1, 2, 3}, 0, 1},
		{"max", []float64{1, 2, 3}, 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quantile(tt.sorted, tt.q), 1e-9)
		})
	}
}
