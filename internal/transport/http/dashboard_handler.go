package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"retailpulse/internal/analytics"
	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/services"
	"retailpulse/internal/warehouse"
	api "retailpulse/pkg/contracts/api/v1"
)

const filterDateLayout = "2006-01-02"

// DashboardHandler serves the chart payload endpoints of the dashboard API.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes mounted under /api/dashboard.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/kpis", h.GetKPIs)
	r.Get("/trends", h.GetTrends)
	r.Get("/geography", h.GetGeography)
	r.Get("/customers", h.GetCustomers)
	r.Get("/products", h.GetProducts)
	r.Get("/time", h.GetTimeOfDay)
	r.Get("/payments", h.GetPayments)
	r.Get("/summary", h.GetSummary)
	r.Post("/export", h.Export)
	r.Post("/refresh", h.Refresh)

	return r
}

// parseFilter builds the analytics filter from the query string. Dates use
// YYYY-MM-DD; divisions and payment_methods accept repeated parameters or
// comma-separated lists.
func (h *DashboardHandler) parseFilter(values url.Values) (analytics.Filter, error) {
	req := api.FilterRequest{
		From:           values.Get("from"),
		To:             values.Get("to"),
		Divisions:      multiValue(values, "divisions"),
		PaymentMethods: multiValue(values, "payment_methods"),
	}
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return analytics.Filter{}, apierrors.ErrValidation(
				strings.ToLower(fieldErrs[0].Field()), "invalid filter value")
		}
		return analytics.Filter{}, apierrors.InvalidRequestWithError(err)
	}

	filter := analytics.Filter{
		Divisions:      req.Divisions,
		PaymentMethods: req.PaymentMethods,
	}
	if req.From != "" {
		from, err := time.Parse(filterDateLayout, req.From)
		if err != nil {
			return analytics.Filter{}, apierrors.ErrValidation("from", "expected YYYY-MM-DD")
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := time.Parse(filterDateLayout, req.To)
		if err != nil {
			return analytics.Filter{}, apierrors.ErrValidation("to", "expected YYYY-MM-DD")
		}
		filter.To = to
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return analytics.Filter{}, apierrors.ErrValidation("to", "end date before start date")
	}
	return filter, nil
}

// multiValue collects repeated query parameters and splits comma-separated
// values, dropping empties.
func multiValue(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// serve runs one summary endpoint: parse filter, call the service, render.
func (h *DashboardHandler) serve(w http.ResponseWriter, r *http.Request, endpoint string,
	query func(filter analytics.Filter) (interface{}, error)) {

	filter, err := h.parseFilter(r.URL.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := query(filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dashboard query failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, resp)
}

func (h *DashboardHandler) mapServiceError(err error) error {
	if errors.Is(err, services.ErrDatasetNotLoaded) {
		return apierrors.ErrDatasetNotLoaded
	}
	if errors.Is(err, services.ErrUnsupportedFormat) {
		return apierrors.ErrValidation("format", "supported formats are csv and xlsx")
	}

	var missing *warehouse.MissingFileError
	if errors.As(err, &missing) {
		return apierrors.New(http.StatusServiceUnavailable, "DATASET_MISSING_FILE", missing.Error())
	}
	var parse *warehouse.ParseError
	if errors.As(err, &parse) {
		return apierrors.New(http.StatusInternalServerError, "DATASET_MALFORMED", parse.Error())
	}
	return err
}

// GetKPIs handles GET /api/dashboard/kpis.
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "kpis", func(f analytics.Filter) (interface{}, error) {
		return h.service.KPIs(r.Context(), f)
	})
}

// GetTrends handles GET /api/dashboard/trends.
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "trends", func(f analytics.Filter) (interface{}, error) {
		return h.service.Trends(r.Context(), f)
	})
}

// GetGeography handles GET /api/dashboard/geography.
func (h *DashboardHandler) GetGeography(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "geography", func(f analytics.Filter) (interface{}, error) {
		return h.service.Geography(r.Context(), f)
	})
}

// GetCustomers handles GET /api/dashboard/customers.
func (h *DashboardHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "customers", func(f analytics.Filter) (interface{}, error) {
		return h.service.Customers(r.Context(), f)
	})
}

// GetProducts handles GET /api/dashboard/products.
func (h *DashboardHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "products", func(f analytics.Filter) (interface{}, error) {
		return h.service.Products(r.Context(), f)
	})
}

// GetTimeOfDay handles GET /api/dashboard/time.
func (h *DashboardHandler) GetTimeOfDay(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "time", func(f analytics.Filter) (interface{}, error) {
		return h.service.TimeOfDay(r.Context(), f)
	})
}

// GetPayments handles GET /api/dashboard/payments.
func (h *DashboardHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "payments", func(f analytics.Filter) (interface{}, error) {
		return h.service.Payments(r.Context(), f)
	})
}

// GetSummary handles GET /api/dashboard/summary.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "summary", func(f analytics.Filter) (interface{}, error) {
		return h.service.Summary(r.Context(), f)
	})
}

// Export handles POST /api/dashboard/export. Format comes from the query
// string and defaults to csv.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r,
			apierrors.ErrValidation("format", "supported formats are csv and xlsx"))
		return
	}
	h.serve(w, r, "export", func(f analytics.Filter) (interface{}, error) {
		return h.service.Export(r.Context(), f, format)
	})
}

// Refresh handles POST /api/dashboard/refresh. It reloads the CSVs and
// notifies connected clients over the websocket.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset refresh requested",
		slog.String("request_id", middleware.GetReqID(r.Context())))

	resp, err := h.service.Refresh(r.Context(), "api")
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset refresh failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, resp)
}
