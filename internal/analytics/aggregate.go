package analytics

import (
	"sort"

	"retailpulse/pkg/contracts/domain"
)

// weekdayOrder is the Monday-first presentation order used by the
// time-of-day charts.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// KPIs computes the headline metrics for the filtered rows.
func KPIs(rows []domain.DenormalizedRow) domain.KPISet {
	customers := make(map[string]struct{})
	products := make(map[string]struct{})

	var revenue float64
	for _, row := range rows {
		revenue += row.TotalPrice
		customers[row.CustomerKey] = struct{}{}
		products[row.ItemKey] = struct{}{}
	}

	kpis := domain.KPISet{
		TotalRevenue:    revenue,
		TotalOrders:     len(rows),
		UniqueCustomers: len(customers),
		UniqueProducts:  len(products),
	}
	if len(rows) > 0 {
		kpis.AvgOrderValue = revenue / float64(len(rows))
	}
	return kpis
}

// MonthlyTrends groups revenue by month and division, sorted by month then
// division. Rows with an unknown date are skipped.
func MonthlyTrends(rows []domain.DenormalizedRow) []domain.TrendPoint {
	type bucket struct{ month, division string }
	sums := make(map[bucket]float64)

	for _, row := range rows {
		month := row.MonthKey()
		if month == "" {
			continue
		}
		sums[bucket{month, row.Division}] += row.TotalPrice
	}

	points := make([]domain.TrendPoint, 0, len(sums))
	for b, revenue := range sums {
		points = append(points, domain.TrendPoint{Month: b.month, Division: b.division, Revenue: revenue})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Month != points[j].Month {
			return points[i].Month < points[j].Month
		}
		return points[i].Division < points[j].Division
	})
	return points
}

// QuarterlyShares sums revenue per quarter, sorted by quarter label.
func QuarterlyShares(rows []domain.DenormalizedRow) []domain.Share {
	sums := make(map[string]float64)
	for _, row := range rows {
		if row.Quarter == "" {
			continue
		}
		sums[row.Quarter] += row.TotalPrice
	}
	return sortedShares(sums, byName)
}

// DivisionStats aggregates revenue, order value, quantity and distinct
// customers per division, sorted by revenue descending.
func DivisionStats(rows []domain.DenormalizedRow) []domain.DivisionStat {
	type acc struct {
		revenue   float64
		quantity  int
		orders    int
		customers map[string]struct{}
	}
	accs := make(map[string]*acc)

	for _, row := range rows {
		a := accs[row.Division]
		if a == nil {
			a = &acc{customers: make(map[string]struct{})}
			accs[row.Division] = a
		}
		a.revenue += row.TotalPrice
		a.quantity += row.Quantity
		a.orders++
		a.customers[row.CustomerKey] = struct{}{}
	}

	stats := make([]domain.DivisionStat, 0, len(accs))
	for division, a := range accs {
		stat := domain.DivisionStat{
			Division:        division,
			TotalRevenue:    a.revenue,
			TotalQuantity:   a.quantity,
			UniqueCustomers: len(a.customers),
		}
		if a.orders > 0 {
			stat.AvgOrderValue = a.revenue / float64(a.orders)
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalRevenue != stats[j].TotalRevenue {
			return stats[i].TotalRevenue > stats[j].TotalRevenue
		}
		return stats[i].Division < stats[j].Division
	})
	return stats
}

// DistrictRevenues sums revenue per division/district pair for the
// geographic treemap, sorted by division then district.
func DistrictRevenues(rows []domain.DenormalizedRow) []domain.DistrictRevenue {
	type bucket struct{ division, district string }
	sums := make(map[bucket]float64)
	for _, row := range rows {
		sums[bucket{row.Division, row.District}] += row.TotalPrice
	}

	out := make([]domain.DistrictRevenue, 0, len(sums))
	for b, revenue := range sums {
		out = append(out, domain.DistrictRevenue{Division: b.division, District: b.district, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Division != out[j].Division {
			return out[i].Division < out[j].Division
		}
		return out[i].District < out[j].District
	})
	return out
}

// TopCategories returns the highest-revenue item categories, descending,
// capped at limit (0 = no cap).
func TopCategories(rows []domain.DenormalizedRow, limit int) []domain.CategoryRevenue {
	sums := make(map[string]float64)
	for _, row := range rows {
		sums[row.MainCategory] += row.TotalPrice
	}

	out := make([]domain.CategoryRevenue, 0, len(sums))
	for category, revenue := range sums {
		out = append(out, domain.CategoryRevenue{Category: category, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopCountries returns revenue and quantity per manufacturing country,
// descending by revenue, capped at limit (0 = no cap).
func TopCountries(rows []domain.DenormalizedRow, limit int) []domain.CountryPerformance {
	type acc struct {
		revenue  float64
		quantity int
	}
	accs := make(map[string]*acc)
	for _, row := range rows {
		a := accs[row.ManCountry]
		if a == nil {
			a = &acc{}
			accs[row.ManCountry] = a
		}
		a.revenue += row.TotalPrice
		a.quantity += row.Quantity
	}

	out := make([]domain.CountryPerformance, 0, len(accs))
	for country, a := range accs {
		out = append(out, domain.CountryPerformance{Country: country, Revenue: a.revenue, Quantity: a.quantity})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Country < out[j].Country
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WeekdayRevenues sums revenue per day of week in Monday-first order. Days
// without revenue still appear with zero so the chart axis stays complete.
func WeekdayRevenues(rows []domain.DenormalizedRow) []domain.WeekdayRevenue {
	sums := make(map[string]float64)
	for _, row := range rows {
		if row.Weekday == "" {
			continue
		}
		sums[row.Weekday] += row.TotalPrice
	}

	out := make([]domain.WeekdayRevenue, 0, len(weekdayOrder))
	for _, day := range weekdayOrder {
		out = append(out, domain.WeekdayRevenue{Weekday: day, Revenue: sums[day]})
	}
	return out
}

// HourlyHeatmap builds the weekday × hour revenue matrix. Rows follow
// Monday-first weekday order, columns are hours 0-23.
func HourlyHeatmap(rows []domain.DenormalizedRow) domain.Heatmap {
	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}

	index := make(map[string]int, len(weekdayOrder))
	for i, day := range weekdayOrder {
		index[day] = i
	}

	values := make([][]float64, len(weekdayOrder))
	for i := range values {
		values[i] = make([]float64, 24)
	}
	for _, row := range rows {
		r, ok := index[row.Weekday]
		if !ok || row.Hour < 0 || row.Hour > 23 {
			continue
		}
		values[r][row.Hour] += row.TotalPrice
	}

	return domain.Heatmap{
		Weekdays: append([]string(nil), weekdayOrder...),
		Hours:    hours,
		Values:   values,
	}
}

// PaymentStats aggregates revenue, count and average per transaction type,
// sorted by revenue descending.
func PaymentStats(rows []domain.DenormalizedRow) []domain.PaymentStat {
	type acc struct {
		revenue float64
		count   int
	}
	accs := make(map[string]*acc)
	for _, row := range rows {
		a := accs[row.TransType]
		if a == nil {
			a = &acc{}
			accs[row.TransType] = a
		}
		a.revenue += row.TotalPrice
		a.count++
	}

	out := make([]domain.PaymentStat, 0, len(accs))
	for transType, a := range accs {
		stat := domain.PaymentStat{TransType: transType, TotalRevenue: a.revenue, Count: a.count}
		if a.count > 0 {
			stat.AvgValue = a.revenue / float64(a.count)
		}
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].TransType < out[j].TransType
	})
	return out
}

// TopBanks sums card-payment revenue per bank, descending, capped at limit
// (0 = no cap). Rows without a bank name are skipped.
func TopBanks(rows []domain.DenormalizedRow, limit int) []domain.Share {
	sums := make(map[string]float64)
	for _, row := range rows {
		if row.TransType != "card" || row.BankName == "" {
			continue
		}
		sums[row.BankName] += row.TotalPrice
	}

	out := sortedShares(sums, byValueDesc)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Executive condenses the filtered view into headline findings for the
// summary panel.
func Executive(rows []domain.DenormalizedRow, metrics []domain.CustomerMetric) domain.ExecutiveSummary {
	summary := domain.ExecutiveSummary{}
	if len(rows) == 0 {
		return summary
	}

	summary.TotalRevenue = KPIs(rows).TotalRevenue

	if divisions := DivisionStats(rows); len(divisions) > 0 {
		summary.TopDivision = divisions[0].Division
	}
	if categories := TopCategories(rows, 1); len(categories) > 0 {
		summary.TopCategory = categories[0].Category
	}
	if payments := PaymentStats(rows); len(payments) > 0 {
		// Preference is the most frequent type, not the highest revenue.
		top := payments[0]
		for _, p := range payments[1:] {
			if p.Count > top.Count {
				top = p
			}
		}
		summary.PreferredPayment = top.TransType
	}

	var peak domain.WeekdayRevenue
	for _, wd := range WeekdayRevenues(rows) {
		if wd.Revenue > peak.Revenue {
			peak = wd
		}
	}
	summary.PeakWeekday = peak.Weekday

	if len(metrics) > 0 {
		spends := make([]float64, len(metrics))
		for i, m := range metrics {
			spends[i] = m.TotalSpent
		}
		sort.Float64s(spends)
		summary.VIPSpendThreshold = quantile(spends, 0.9)
	}

	return summary
}

type shareOrder int

const (
	byName shareOrder = iota
	byValueDesc
)

func sortedShares(sums map[string]float64, order shareOrder) []domain.Share {
	out := make([]domain.Share, 0, len(sums))
	for name, value := range sums {
		out = append(out, domain.Share{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if order == byValueDesc && out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}
