package analytics

import (
	"math"
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// CustomerMetrics rolls the rows up per customer and assigns each customer a
// behavior segment:
//
//	VIP      ≥5 orders and spend at or above the 75th percentile
//	Loyal    ≥3 orders and spend at or above the median
//	Regular  ≥2 orders
//	One-time everything else
//
// The result is sorted by customer key.
func CustomerMetrics(rows []domain.DenormalizedRow) []domain.CustomerMetric {
	type acc struct {
		spent    float64
		orders   int
		quantity int
	}
	accs := make(map[string]*acc)
	for _, row := range rows {
		a := accs[row.CustomerKey]
		if a == nil {
			a = &acc{}
			accs[row.CustomerKey] = a
		}
		a.spent += row.TotalPrice
		a.orders++
		a.quantity += row.Quantity
	}

	metrics := make([]domain.CustomerMetric, 0, len(accs))
	spends := make([]float64, 0, len(accs))
	for key, a := range accs {
		m := domain.CustomerMetric{
			CustomerKey:   key,
			TotalSpent:    a.spent,
			OrderCount:    a.orders,
			TotalQuantity: a.quantity,
		}
		if a.orders > 0 {
			m.AvgOrderValue = a.spent / float64(a.orders)
		}
		metrics = append(metrics, m)
		spends = append(spends, a.spent)
	}

	sort.Float64s(spends)
	p75 := quantile(spends, 0.75)
	p50 := quantile(spends, 0.50)

	for i := range metrics {
		metrics[i].Segment = segmentFor(metrics[i], p75, p50)
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].CustomerKey < metrics[j].CustomerKey
	})
	return metrics
}

func segmentFor(m domain.CustomerMetric, p75, p50 float64) domain.CustomerSegment {
	switch {
	case m.OrderCount >= 5 && m.TotalSpent >= p75:
		return domain.SegmentVIP
	case m.OrderCount >= 3 && m.TotalSpent >= p50:
		return domain.SegmentLoyal
	case m.OrderCount >= 2:
		return domain.SegmentRegular
	default:
		return domain.SegmentOneTime
	}
}

// SegmentCounts tallies customers per segment in fixed presentation order.
func SegmentCounts(metrics []domain.CustomerMetric) []domain.SegmentCount {
	counts := make(map[domain.CustomerSegment]int)
	for _, m := range metrics {
		counts[m.Segment]++
	}

	order := []domain.CustomerSegment{
		domain.SegmentVIP, domain.SegmentLoyal, domain.SegmentRegular, domain.SegmentOneTime,
	}
	out := make([]domain.SegmentCount, 0, len(order))
	for _, segment := range order {
		out = append(out, domain.SegmentCount{Segment: segment, Count: counts[segment]})
	}
	return out
}

// FrequencyHistogram counts customers per order count, ascending by orders.
func FrequencyHistogram(metrics []domain.CustomerMetric) []domain.FrequencyBucket {
	counts := make(map[int]int)
	for _, m := range metrics {
		counts[m.OrderCount]++
	}

	out := make([]domain.FrequencyBucket, 0, len(counts))
	for orders, customers := range counts {
		out = append(out, domain.FrequencyBucket{Orders: orders, Customers: customers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Orders < out[j].Orders })
	return out
}

// quantile computes the q-th quantile of sorted values using linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
