package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/pkg/contracts/domain"
)

func TestKPIs(t *testing.T) {
	kpis := KPIs(sampleRows())

	assert.InDelta(t, 297.5, kpis.TotalRevenue, 1e-9)
	assert.Equal(t, 4, kpis.TotalOrders)
	assert.InDelta(t, 297.5/4, kpis.AvgOrderValue, 1e-9)
	assert.Equal(t, 3, kpis.UniqueCustomers)
	assert.Equal(t, 3, kpis.UniqueProducts)
}

func TestKPIsEmpty(t *testing.T) {
	kpis := KPIs(nil)

	assert.Zero(t, kpis.TotalRevenue)
	assert.Zero(t, kpis.TotalOrders)
	assert.Zero(t, kpis.AvgOrderValue)
}

func TestMonthlyTrendsSortedByMonthThenDivision(t *testing.T) {
	trends := MonthlyTrends(sampleRows())

	require.Len(t, trends, 4)
	assert.Equal(t, domain.TrendPoint{Month: "2021-01", Division: "Dhaka", Revenue: 21}, trends[0])
	assert.Equal(t, domain.TrendPoint{Month: "2021-02", Division: "Chattogram", Revenue: 25}, trends[1])
	assert.Equal(t, domain.TrendPoint{Month: "2021-07", Division: "Dhaka", Revenue: 220}, trends[2])
	assert.Equal(t, domain.TrendPoint{Month: "2021-07", Division: "Khulna", Revenue: 31.5}, trends[3])
}

func TestDivisionStats(t *testing.T) {
	stats := DivisionStats(sampleRows())

	require.Len(t, stats, 3)
	assert.Equal(t, "Dhaka", stats[0].Division)
	assert.InDelta(t, 241, stats[0].TotalRevenue, 1e-9)
	assert.InDelta(t, 120.5, stats[0].AvgOrderValue, 1e-9)
	assert.Equal(t, 6, stats[0].TotalQuantity)
	assert.Equal(t, 1, stats[0].UniqueCustomers)
}

func TestCategoryAdditivity(t *testing.T) {
	rows := sampleRows()

	categories := TopCategories(rows, 0)

	var sum float64
	for _, c := range categories {
		sum += c.Revenue
	}
	assert.InDelta(t, KPIs(rows).TotalRevenue, sum, 1e-9)
}

func TestCategoryAdditivityUnderFilter(t *testing.T) {
	filtered := Apply(sampleRows(), Filter{Divisions: []string{"Dhaka"}})

	var sum float64
	for _, c := range TopCategories(filtered, 0) {
		sum += c.Revenue
	}
	assert.InDelta(t, KPIs(filtered).TotalRevenue, sum, 1e-9)
}

func TestTopCategoriesLimit(t *testing.T) {
	categories := TopCategories(sampleRows(), 2)

	require.Len(t, categories, 2)
	assert.Equal(t, "Stationery", categories[0].Category)
	assert.Equal(t, "Snacks", categories[1].Category)
}

func TestTopCountriesEmptyRows(t *testing.T) {
	assert.Empty(t, TopCountries(nil, 10))
}

func TestWeekdayRevenuesMondayFirstComplete(t *testing.T) {
	revenues := WeekdayRevenues(sampleRows())

	require.Len(t, revenues, 7)
	assert.Equal(t, "Monday", revenues[0].Weekday)
	assert.Equal(t, "Sunday", revenues[6].Weekday)

	byDay := make(map[string]float64)
	for _, r := range revenues {
		byDay[r.Weekday] = r.Revenue
	}
	// 2021-01-15 was a Friday, 2021-07-05 a Monday, 2021-07-06 a Tuesday.
	assert.InDelta(t, 21, byDay["Friday"], 1e-9)
	assert.InDelta(t, 220, byDay["Monday"], 1e-9)
	assert.InDelta(t, 31.5, byDay["Tuesday"], 1e-9)
	assert.Zero(t, byDay["Sunday"])
}

func TestHourlyHeatmap(t *testing.T) {
	hm := HourlyHeatmap(sampleRows())

	require.Len(t, hm.Weekdays, 7)
	require.Len(t, hm.Hours, 24)
	require.Len(t, hm.Values, 7)

	// Friday row index 4, hour 12.
	assert.InDelta(t, 21, hm.Values[4][12], 1e-9)
	// Monday row index 0, hour 12.
	assert.InDelta(t, 220, hm.Values[0][12], 1e-9)
}

func TestPaymentStats(t *testing.T) {
	stats := PaymentStats(sampleRows())

	require.Len(t, stats, 3)
	assert.Equal(t, "card", stats[0].TransType)
	assert.InDelta(t, 241, stats[0].TotalRevenue, 1e-9)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 120.5, stats[0].AvgValue, 1e-9)
}

func TestTopBanksCardOnly(t *testing.T) {
	banks := TopBanks(sampleRows(), 8)

	require.Len(t, banks, 2)
	assert.Equal(t, "BRAC Bank", banks[0].Name)
	assert.InDelta(t, 220, banks[0].Value, 1e-9)
	assert.Equal(t, "City Bank", banks[1].Name)
}

func TestQuarterlySharesSkipsUnknownQuarter(t *testing.T) {
	rows := []domain.DenormalizedRow{
		{FactRow: domain.FactRow{TotalPrice: 10}, Quarter: "Q1"},
		{FactRow: domain.FactRow{TotalPrice: 5}, Quarter: ""},
		{FactRow: domain.FactRow{TotalPrice: 7}, Quarter: "Q2"},
	}

	shares := QuarterlyShares(rows)

	require.Len(t, shares, 2)
	assert.Equal(t, domain.Share{Name: "Q1", Value: 10}, shares[0])
	assert.Equal(t, domain.Share{Name: "Q2", Value: 7}, shares[1])
}

func TestExecutiveSummary(t *testing.T) {
	rows := sampleRows()
	metrics := CustomerMetrics(rows)

	summary := Executive(rows, metrics)

	assert.Equal(t, "Dhaka", summary.TopDivision)
	assert.Equal(t, "Monday", summary.PeakWeekday)
	assert.Equal(t, "Stationery", summary.TopCategory)
	assert.Equal(t, "card", summary.PreferredPayment)
	assert.InDelta(t, 297.5, summary.TotalRevenue, 1e-9)
	assert.Greater(t, summary.VIPSpendThreshold, 0.0)
}

func TestExecutiveSummaryEmpty(t *testing.T) {
	summary := Executive(nil, nil)

	assert.Empty(t, summary.TopDivision)
	assert.Zero(t, summary.TotalRevenue)
}

func TestAggregationDeterminism(t *testing.T) {
	rows := sampleRows()

	first := struct {
		Trends     []domain.TrendPoint
		Divisions  []domain.DivisionStat
		Categories []domain.CategoryRevenue
		Payments   []domain.PaymentStat
		Metrics    []domain.CustomerMetric
	}{
		MonthlyTrends(rows), DivisionStats(rows), TopCategories(rows, 10),
		PaymentStats(rows), CustomerMetrics(rows),
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Trends, MonthlyTrends(rows))
		assert.Equal(t, first.Divisions, DivisionStats(rows))
		assert.Equal(t, first.Categories, TopCategories(rows, 10))
		assert.Equal(t, first.Payments, PaymentStats(rows))
		assert.Equal(t, first.Metrics, CustomerMetrics(rows))
	}
}

func TestDistrictRevenues(t *testing.T) {
	out := DistrictRevenues(sampleRows())

	require.Len(t, out, 4)
	assert.Equal(t, "Chattogram", out[0].Division)
	assert.Equal(t, "Dhaka", out[1].Division)
	assert.Equal(t, "Dhaka", out[1].District)
	assert.Equal(t, "Gazipur", out[2].District)
}

func TestMonthlyTrendsSkipsUnknownDates(t *testing.T) {
	rows := append(sampleRows(), row("C9", "I9", "Misc", "Dhaka", "Dhaka", "cash", "", time.Time{}, 1, 99))

	trends := MonthlyTrends(rows)

	var sum float64
	for _, p := range trends {
		sum += p.Revenue
	}
	assert.InDelta(t, 297.5, sum, 1e-9)
}
