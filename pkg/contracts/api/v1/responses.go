package api

import "retailpulse/pkg/contracts/domain"

// Every summary response carries the dataset meta block so the frontend can
// show the excluded-row count and flag the no-data state without a second
// request.

// KPIResponse is the headline metrics payload.
type KPIResponse struct {
	KPIs domain.KPISet      `json:"kpis"`
	Meta domain.DatasetMeta `json:"meta"`
}

// TrendsResponse feeds the revenue-over-time charts.
type TrendsResponse struct {
	Monthly   []domain.TrendPoint `json:"monthly"`
	Quarterly []domain.Share      `json:"quarterly"`
	Meta      domain.DatasetMeta  `json:"meta"`
}

// GeographyResponse feeds the division table and district treemap.
type GeographyResponse struct {
	Divisions []domain.DivisionStat    `json:"divisions"`
	Districts []domain.DistrictRevenue `json:"districts"`
	Meta      domain.DatasetMeta       `json:"meta"`
}

// CustomersResponse feeds the segmentation charts.
type CustomersResponse struct {
	Segments  []domain.SegmentCount    `json:"segments"`
	Frequency []domain.FrequencyBucket `json:"frequency"`
	Top       []domain.CustomerMetric  `json:"top_customers"`
	Meta      domain.DatasetMeta       `json:"meta"`
}

// ProductsResponse feeds the category and country charts.
type ProductsResponse struct {
	Categories []domain.CategoryRevenue    `json:"categories"`
	Countries  []domain.CountryPerformance `json:"countries"`
	Meta       domain.DatasetMeta          `json:"meta"`
}

// TimeResponse feeds the weekday chart and the weekday by hour heatmap.
type TimeResponse struct {
	Weekdays []domain.WeekdayRevenue `json:"weekdays"`
	Heatmap  domain.Heatmap          `json:"heatmap"`
	Meta     domain.DatasetMeta      `json:"meta"`
}

// PaymentsResponse feeds the payment method and bank charts.
type PaymentsResponse struct {
	Stats    []domain.PaymentStat `json:"stats"`
	TopBanks []domain.Share       `json:"top_banks"`
	Meta     domain.DatasetMeta   `json:"meta"`
}

// SummaryResponse is the executive summary panel payload.
type SummaryResponse struct {
	Executive domain.ExecutiveSummary `json:"executive"`
	KPIs      domain.KPISet           `json:"kpis"`
	Meta      domain.DatasetMeta      `json:"meta"`
}

// RefreshResponse reports the dataset state after a reload.
type RefreshResponse struct {
	Meta domain.DatasetMeta `json:"meta"`
}

// ExportResponse names the report file written by an export.
type ExportResponse struct {
	File   string             `json:"file"`
	Format string             `json:"format"`
	Meta   domain.DatasetMeta `json:"meta"`
}
