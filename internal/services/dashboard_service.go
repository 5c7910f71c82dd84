package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
	"retailpulse/internal/exporter"
	"retailpulse/internal/infrastructure"
	"retailpulse/internal/warehouse"
	api "retailpulse/pkg/contracts/api/v1"
	"retailpulse/pkg/contracts/domain"
)

const (
	topCategoriesLimit = 10
	topCountriesLimit  = 10
	topBanksLimit      = 8
	topCustomersLimit  = 10
)

// RefreshBroadcaster receives a notification after every successful reload.
// The websocket hub implements it.
type RefreshBroadcaster interface {
	BroadcastRefresh(source string, meta interface{})
}

// snapshot is one immutable load of the joined dataset. Requests read it
// without locking; Refresh swaps the pointer.
type snapshot struct {
	rows     []domain.DenormalizedRow
	excluded int
	loadedAt time.Time
	dateMin  time.Time
	dateMax  time.Time
}

// DashboardService loads the star-schema CSVs and serves filtered summary
// bundles for each dashboard section.
type DashboardService struct {
	paths       *config.Paths
	logger      *slog.Logger
	metrics     *infrastructure.BusinessMetrics
	broadcaster RefreshBroadcaster
	csvWriter   *exporter.CSVWriter
	excelWriter *exporter.ExcelWriter

	current atomic.Pointer[snapshot]
}

// NewDashboardService creates the dashboard service. Broadcaster and metrics
// may be nil; the service then skips notifications and instrumentation.
func NewDashboardService(paths *config.Paths, broadcaster RefreshBroadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dashboard_service"))

	return &DashboardService{
		paths:       paths,
		logger:      logger,
		metrics:     metrics,
		broadcaster: broadcaster,
		csvWriter:   exporter.NewCSVWriter(paths),
		excelWriter: exporter.NewExcelWriter(paths),
	}
}

// Load reads the six CSV files, joins them and installs the result as the
// current snapshot. Called once at startup and again on every refresh.
func (s *DashboardService) Load(ctx context.Context) error {
	start := time.Now()

	loader := warehouse.NewLoader(s.paths, s.logger)
	tables, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	joined := warehouse.Join(tables, s.logger)

	snap := &snapshot{
		rows:     joined.Rows,
		excluded: joined.Excluded,
		loadedAt: time.Now(),
	}
	for _, row := range joined.Rows {
		if row.Date.IsZero() {
			continue
		}
		if snap.dateMin.IsZero() || row.Date.Before(snap.dateMin) {
			snap.dateMin = row.Date
		}
		if row.Date.After(snap.dateMax) {
			snap.dateMax = row.Date
		}
	}
	s.current.Store(snap)

	if s.metrics != nil {
		s.metrics.RowsExcluded.Add(ctx, int64(joined.Excluded))
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("rows", len(joined.Rows)),
		slog.Int("excluded", joined.Excluded),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Refresh reloads the dataset and notifies connected dashboards. The old
// snapshot keeps serving requests until the reload succeeds.
func (s *DashboardService) Refresh(ctx context.Context, source string) (api.RefreshResponse, error) {
	if err := s.Load(ctx); err != nil {
		return api.RefreshResponse{}, err
	}

	meta := s.snapshotMeta(s.current.Load())
	meta.RowsMatched = meta.RowsTotal
	meta.NoData = meta.RowsTotal == 0

	if s.metrics != nil {
		s.metrics.RefreshesTotal.Add(ctx, 1)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastRefresh(source, meta)
	}
	return api.RefreshResponse{Meta: meta}, nil
}

// Meta reports the current snapshot state, or false when nothing is loaded.
func (s *DashboardService) Meta() (domain.DatasetMeta, bool) {
	snap := s.current.Load()
	if snap == nil {
		return domain.DatasetMeta{}, false
	}
	meta := s.snapshotMeta(snap)
	meta.RowsMatched = meta.RowsTotal
	meta.NoData = meta.RowsTotal == 0
	return meta, true
}

// KPIs returns the headline metrics for the filtered view.
func (s *DashboardService) KPIs(ctx context.Context, filter analytics.Filter) (api.KPIResponse, error) {
	rows, meta, err := s.view(ctx, filter, "kpis")
	if err != nil {
		return api.KPIResponse{}, err
	}
	return api.KPIResponse{KPIs: analytics.KPIs(rows), Meta: meta}, nil
}

// Trends returns the monthly and quarterly revenue series.
func (s *DashboardService) Trends(ctx context.Context, filter analytics.Filter) (api.TrendsResponse, error) {
	rows, meta, err := s.view(ctx, filter, "trends")
	if err != nil {
		return api.TrendsResponse{}, err
	}
	return api.TrendsResponse{
		Monthly:   analytics.MonthlyTrends(rows),
		Quarterly: analytics.QuarterlyShares(rows),
		Meta:      meta,
	}, nil
}

// Geography returns the division table and the district treemap data.
func (s *DashboardService) Geography(ctx context.Context, filter analytics.Filter) (api.GeographyResponse, error) {
	rows, meta, err := s.view(ctx, filter, "geography")
	if err != nil {
		return api.GeographyResponse{}, err
	}
	return api.GeographyResponse{
		Divisions: analytics.DivisionStats(rows),
		Districts: analytics.DistrictRevenues(rows),
		Meta:      meta,
	}, nil
}

// Customers returns the segmentation charts.
func (s *DashboardService) Customers(ctx context.Context, filter analytics.Filter) (api.CustomersResponse, error) {
	rows, meta, err := s.view(ctx, filter, "customers")
	if err != nil {
		return api.CustomersResponse{}, err
	}
	metrics := analytics.CustomerMetrics(rows)
	return api.CustomersResponse{
		Segments:  analytics.SegmentCounts(metrics),
		Frequency: analytics.FrequencyHistogram(metrics),
		Top:       topSpenders(metrics, topCustomersLimit),
		Meta:      meta,
	}, nil
}

// Products returns the category and manufacturing-country charts.
func (s *DashboardService) Products(ctx context.Context, filter analytics.Filter) (api.ProductsResponse, error) {
	rows, meta, err := s.view(ctx, filter, "products")
	if err != nil {
		return api.ProductsResponse{}, err
	}
	return api.ProductsResponse{
		Categories: analytics.TopCategories(rows, topCategoriesLimit),
		Countries:  analytics.TopCountries(rows, topCountriesLimit),
		Meta:       meta,
	}, nil
}

// TimeOfDay returns the weekday chart and the weekday by hour heatmap.
func (s *DashboardService) TimeOfDay(ctx context.Context, filter analytics.Filter) (api.TimeResponse, error) {
	rows, meta, err := s.view(ctx, filter, "time")
	if err != nil {
		return api.TimeResponse{}, err
	}
	return api.TimeResponse{
		Weekdays: analytics.WeekdayRevenues(rows),
		Heatmap:  analytics.HourlyHeatmap(rows),
		Meta:     meta,
	}, nil
}

// Payments returns the payment method stats and the top banks chart.
func (s *DashboardService) Payments(ctx context.Context, filter analytics.Filter) (api.PaymentsResponse, error) {
	rows, meta, err := s.view(ctx, filter, "payments")
	if err != nil {
		return api.PaymentsResponse{}, err
	}
	return api.PaymentsResponse{
		Stats:    analytics.PaymentStats(rows),
		TopBanks: analytics.TopBanks(rows, topBanksLimit),
		Meta:     meta,
	}, nil
}

// Summary returns the executive summary panel.
func (s *DashboardService) Summary(ctx context.Context, filter analytics.Filter) (api.SummaryResponse, error) {
	rows, meta, err := s.view(ctx, filter, "summary")
	if err != nil {
		return api.SummaryResponse{}, err
	}
	return api.SummaryResponse{
		Executive: analytics.Executive(rows, analytics.CustomerMetrics(rows)),
		KPIs:      analytics.KPIs(rows),
		Meta:      meta,
	}, nil
}

// Export writes every summary table of the filtered view to a report file
// and returns its path. Format is "csv" or "xlsx"; empty defaults to csv.
func (s *DashboardService) Export(ctx context.Context, filter analytics.Filter, format string) (api.ExportResponse, error) {
	report, err := s.ExportReport(ctx, filter)
	if err != nil {
		return api.ExportResponse{}, err
	}
	meta := report.Meta

	if format == "" {
		format = "csv"
	}
	stamp := time.Now().Format("20060102_150405")

	var path string
	switch format {
	case "csv":
		path, err = s.csvWriter.WriteReport(report, fmt.Sprintf("dashboard_summary_%s.csv", stamp))
	case "xlsx":
		path, err = s.excelWriter.WriteReport(report, fmt.Sprintf("dashboard_summary_%s.xlsx", stamp))
	default:
		return api.ExportResponse{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return api.ExportResponse{}, fmt.Errorf("write %s report: %w", format, err)
	}

	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
	}
	s.logger.InfoContext(ctx, "report exported",
		slog.String("format", format),
		slog.String("file", path),
		slog.Int("rows", meta.RowsMatched))

	return api.ExportResponse{File: path, Format: format, Meta: meta}, nil
}

// ExportReport builds the full report for the filtered view without writing
// it, for callers that manage their own output files.
func (s *DashboardService) ExportReport(ctx context.Context, filter analytics.Filter) (exporter.Report, error) {
	rows, meta, err := s.view(ctx, filter, "export")
	if err != nil {
		return exporter.Report{}, err
	}
	metrics := analytics.CustomerMetrics(rows)
	return exporter.BuildReport(exporter.Summaries{
		KPIs:       analytics.KPIs(rows),
		Monthly:    analytics.MonthlyTrends(rows),
		Quarterly:  analytics.QuarterlyShares(rows),
		Divisions:  analytics.DivisionStats(rows),
		Districts:  analytics.DistrictRevenues(rows),
		Categories: analytics.TopCategories(rows, topCategoriesLimit),
		Countries:  analytics.TopCountries(rows, topCountriesLimit),
		Weekdays:   analytics.WeekdayRevenues(rows),
		Payments:   analytics.PaymentStats(rows),
		Banks:      analytics.TopBanks(rows, topBanksLimit),
		Segments:   analytics.SegmentCounts(metrics),
		Executive:  analytics.Executive(rows, metrics),
	}, meta), nil
}

// view applies the filter against the current snapshot and records query
// instrumentation for the endpoint.
func (s *DashboardService) view(ctx context.Context, filter analytics.Filter, endpoint string) ([]domain.DenormalizedRow, domain.DatasetMeta, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, domain.DatasetMeta{}, ErrDatasetNotLoaded
	}

	start := time.Now()
	rows := analytics.Apply(snap.rows, filter)

	meta := s.snapshotMeta(snap)
	meta.RowsMatched = len(rows)
	meta.NoData = len(rows) == 0

	if s.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("endpoint", endpoint))
		s.metrics.QueriesTotal.Add(ctx, 1, attrs)
		s.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	return rows, meta, nil
}

func (s *DashboardService) snapshotMeta(snap *snapshot) domain.DatasetMeta {
	meta := domain.DatasetMeta{
		RowsTotal:    len(snap.rows),
		RowsExcluded: snap.excluded,
		LoadedAt:     snap.loadedAt.Format(time.RFC3339),
	}
	if !snap.dateMin.IsZero() {
		meta.DateMin = snap.dateMin.Format("2006-01-02")
		meta.DateMax = snap.dateMax.Format("2006-01-02")
	}
	return meta
}

// topSpenders returns the highest-spending customers, descending with key
// tiebreak, capped at limit.
func topSpenders(metrics []domain.CustomerMetric, limit int) []domain.CustomerMetric {
	top := append([]domain.CustomerMetric(nil), metrics...)
	sort.Slice(top, func(i, j int) bool {
		if top[i].TotalSpent != top[j].TotalSpent {
			return top[i].TotalSpent > top[j].TotalSpent
		}
		return top[i].CustomerKey < top[j].CustomerKey
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}
