package http

import (
	"context"

	"retailpulse/internal/analytics"
	api "retailpulse/pkg/contracts/api/v1"
)

// DashboardServiceInterface is the service contract the dashboard handler
// depends on. *services.DashboardService implements it; tests substitute
// mocks.
type DashboardServiceInterface interface {
	KPIs(ctx context.Context, filter analytics.Filter) (api.KPIResponse, error)
	Trends(ctx context.Context, filter analytics.Filter) (api.TrendsResponse, error)
	Geography(ctx context.Context, filter analytics.Filter) (api.GeographyResponse, error)
	Customers(ctx context.Context, filter analytics.Filter) (api.CustomersResponse, error)
	Products(ctx context.Context, filter analytics.Filter) (api.ProductsResponse, error)
	TimeOfDay(ctx context.Context, filter analytics.Filter) (api.TimeResponse, error)
	Payments(ctx context.Context, filter analytics.Filter) (api.PaymentsResponse, error)
	Summary(ctx context.Context, filter analytics.Filter) (api.SummaryResponse, error)
	Export(ctx context.Context, filter analytics.Filter, format string) (api.ExportResponse, error)
	Refresh(ctx context.Context, source string) (api.RefreshResponse, error)
}
