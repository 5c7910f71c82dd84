package domain

// KPISet holds the headline metrics shown at the top of the dashboard.
type KPISet struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalOrders      int     `json:"total_orders"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	UniqueCustomers  int     `json:"unique_customers"`
	UniqueProducts   int     `json:"unique_products"`
}

// TrendPoint is one month/division bucket of the revenue trend chart.
type TrendPoint struct {
	Month    string  `json:"month"` // YYYY-MM
	Division string  `json:"division"`
	Revenue  float64 `json:"revenue"`
}

// Share is a generic name/value pair for pie-style charts.
type Share struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DivisionStat aggregates performance per administrative division.
type DivisionStat struct {
	Division        string  `json:"division"`
	TotalRevenue    float64 `json:"total_revenue"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	TotalQuantity   int     `json:"total_quantity"`
	UniqueCustomers int     `json:"unique_customers"`
}

// DistrictRevenue is one node of the division→district revenue treemap.
type DistrictRevenue struct {
	Division string  `json:"division"`
	District string  `json:"district"`
	Revenue  float64 `json:"revenue"`
}

// CategoryRevenue is one bar of the top-categories chart.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// CountryPerformance aggregates product performance by manufacturing country.
type CountryPerformance struct {
	Country  string  `json:"country"`
	Revenue  float64 `json:"revenue"`
	Quantity int     `json:"quantity"`
}

// WeekdayRevenue is one bar of the day-of-week chart, in Monday-first order.
type WeekdayRevenue struct {
	Weekday string  `json:"weekday"`
	Revenue float64 `json:"revenue"`
}

// Heatmap is the weekday × hour revenue matrix. Rows follow Weekdays order,
// columns follow Hours order; Values[r][c] is the revenue for that cell.
type Heatmap struct {
	Weekdays []string    `json:"weekdays"`
	Hours    []int       `json:"hours"`
	Values   [][]float64 `json:"values"`
}

// PaymentStat aggregates per transaction type.
type PaymentStat struct {
	TransType    string  `json:"trans_type"`
	TotalRevenue float64 `json:"total_revenue"`
	Count        int     `json:"count"`
	AvgValue     float64 `json:"avg_value"`
}

// CustomerSegment labels a customer by purchasing behavior.
type CustomerSegment string

const (
	SegmentVIP     CustomerSegment = "VIP Customers"
	SegmentLoyal   CustomerSegment = "Loyal Customers"
	SegmentRegular CustomerSegment = "Regular Customers"
	SegmentOneTime CustomerSegment = "One-time Buyers"
)

// CustomerMetric is the per-customer rollup used for segmentation.
type CustomerMetric struct {
	CustomerKey   string          `json:"customer_key"`
	TotalSpent    float64         `json:"total_spent"`
	AvgOrderValue float64         `json:"avg_order_value"`
	OrderCount    int             `json:"order_count"`
	TotalQuantity int             `json:"total_quantity"`
	Segment       CustomerSegment `json:"segment"`
}

// SegmentCount is one slice of the customer segmentation pie.
type SegmentCount struct {
	Segment CustomerSegment `json:"segment"`
	Count   int             `json:"count"`
}

// FrequencyBucket is one bar of the order-frequency histogram.
type FrequencyBucket struct {
	Orders    int `json:"orders"`
	Customers int `json:"customers"`
}

// ExecutiveSummary condenses the filtered view into headline findings.
type ExecutiveSummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TopDivision      string  `json:"top_division"`
	PeakWeekday      string  `json:"peak_weekday"`
	TopCategory      string  `json:"top_category"`
	VIPSpendThreshold float64 `json:"vip_spend_threshold"`
	PreferredPayment string  `json:"preferred_payment"`
}

// DatasetMeta describes the loaded snapshot and the effect of the applied
// filter. RowsExcluded counts fact rows dropped during the join because a
// foreign key did not resolve.
type DatasetMeta struct {
	RowsTotal    int    `json:"rows_total"`
	RowsMatched  int    `json:"rows_matched"`
	RowsExcluded int    `json:"rows_excluded"`
	DateMin      string `json:"date_min,omitempty"`
	DateMax      string `json:"date_max,omitempty"`
	LoadedAt     string `json:"loaded_at"`
	NoData       bool   `json:"no_data"`
}
