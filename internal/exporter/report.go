package exporter

import (
	"strconv"
	"time"

	"retailpulse/pkg/contracts/domain"
)

// Table is one named summary table of a report.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Report bundles every summary table of one filtered dashboard view.
type Report struct {
	GeneratedAt time.Time
	Meta        domain.DatasetMeta
	Tables      []Table
}

// Summaries carries the chart payloads that become report tables.
type Summaries struct {
	KPIs       domain.KPISet
	Monthly    []domain.TrendPoint
	Quarterly  []domain.Share
	Divisions  []domain.DivisionStat
	Districts  []domain.DistrictRevenue
	Categories []domain.CategoryRevenue
	Countries  []domain.CountryPerformance
	Weekdays   []domain.WeekdayRevenue
	Payments   []domain.PaymentStat
	Banks      []domain.Share
	Segments   []domain.SegmentCount
	Executive  domain.ExecutiveSummary
}

// BuildReport converts the summaries into flat string tables ready for any
// writer. Table order matches the dashboard's section order.
func BuildReport(s Summaries, meta domain.DatasetMeta) Report {
	report := Report{
		GeneratedAt: time.Now(),
		Meta:        meta,
	}

	kpis := Table{
		Name:    "KPIs",
		Headers: []string{"metric", "value"},
		Rows: [][]string{
			{"total_revenue", money(s.KPIs.TotalRevenue)},
			{"total_orders", count(s.KPIs.TotalOrders)},
			{"avg_order_value", money(s.KPIs.AvgOrderValue)},
			{"unique_customers", count(s.KPIs.UniqueCustomers)},
			{"unique_products", count(s.KPIs.UniqueProducts)},
			{"rows_excluded", count(meta.RowsExcluded)},
		},
	}
	report.Tables = append(report.Tables, kpis)

	monthly := Table{Name: "Monthly Trends", Headers: []string{"month", "division", "revenue"}}
	for _, p := range s.Monthly {
		monthly.Rows = append(monthly.Rows, []string{p.Month, p.Division, money(p.Revenue)})
	}
	report.Tables = append(report.Tables, monthly)

	quarterly := Table{Name: "Quarterly Shares", Headers: []string{"quarter", "revenue"}}
	for _, q := range s.Quarterly {
		quarterly.Rows = append(quarterly.Rows, []string{q.Name, money(q.Value)})
	}
	report.Tables = append(report.Tables, quarterly)

	divisions := Table{
		Name:    "Division Stats",
		Headers: []string{"division", "total_revenue", "avg_order_value", "total_quantity", "unique_customers"},
	}
	for _, d := range s.Divisions {
		divisions.Rows = append(divisions.Rows, []string{
			d.Division, money(d.TotalRevenue), money(d.AvgOrderValue),
			count(d.TotalQuantity), count(d.UniqueCustomers),
		})
	}
	report.Tables = append(report.Tables, divisions)

	districts := Table{Name: "District Revenue", Headers: []string{"division", "district", "revenue"}}
	for _, d := range s.Districts {
		districts.Rows = append(districts.Rows, []string{d.Division, d.District, money(d.Revenue)})
	}
	report.Tables = append(report.Tables, districts)

	categories := Table{Name: "Top Categories", Headers: []string{"category", "revenue"}}
	for _, c := range s.Categories {
		categories.Rows = append(categories.Rows, []string{c.Category, money(c.Revenue)})
	}
	report.Tables = append(report.Tables, categories)

	countries := Table{Name: "Top Countries", Headers: []string{"country", "revenue", "quantity"}}
	for _, c := range s.Countries {
		countries.Rows = append(countries.Rows, []string{c.Country, money(c.Revenue), count(c.Quantity)})
	}
	report.Tables = append(report.Tables, countries)

	weekdays := Table{Name: "Weekday Revenue", Headers: []string{"weekday", "revenue"}}
	for _, w := range s.Weekdays {
		weekdays.Rows = append(weekdays.Rows, []string{w.Weekday, money(w.Revenue)})
	}
	report.Tables = append(report.Tables, weekdays)

	payments := Table{
		Name:    "Payment Stats",
		Headers: []string{"trans_type", "total_revenue", "count", "avg_value"},
	}
	for _, p := range s.Payments {
		payments.Rows = append(payments.Rows, []string{
			p.TransType, money(p.TotalRevenue), count(p.Count), money(p.AvgValue),
		})
	}
	report.Tables = append(report.Tables, payments)

	banks := Table{Name: "Top Banks", Headers: []string{"bank", "revenue"}}
	for _, b := range s.Banks {
		banks.Rows = append(banks.Rows, []string{b.Name, money(b.Value)})
	}
	report.Tables = append(report.Tables, banks)

	segments := Table{Name: "Customer Segments", Headers: []string{"segment", "customers"}}
	for _, seg := range s.Segments {
		segments.Rows = append(segments.Rows, []string{string(seg.Segment), count(seg.Count)})
	}
	report.Tables = append(report.Tables, segments)

	executive := Table{
		Name:    "Executive Summary",
		Headers: []string{"finding", "value"},
		Rows: [][]string{
			{"total_revenue", money(s.Executive.TotalRevenue)},
			{"top_division", s.Executive.TopDivision},
			{"peak_weekday", s.Executive.PeakWeekday},
			{"top_category", s.Executive.TopCategory},
			{"vip_spend_threshold", money(s.Executive.VIPSpendThreshold)},
			{"preferred_payment", s.Executive.PreferredPayment},
		},
	}
	report.Tables = append(report.Tables, executive)

	return report
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func count(v int) string {
	return strconv.Itoa(v)
}
