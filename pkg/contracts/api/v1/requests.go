// Package api contains API contract definitions for the RetailPulse
// dashboard. Version v1 represents the current stable API version.
package api

// FilterRequest carries the dashboard filter set. All fields are optional;
// an empty filter selects every row. Dimensions are AND-combined and values
// within a dimension are OR-combined.
type FilterRequest struct {
	From           string   `json:"from" query:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string   `json:"to" query:"to" validate:"omitempty,datetime=2006-01-02"`
	Divisions      []string `json:"divisions" query:"divisions" validate:"omitempty,dive,min=1"`
	PaymentMethods []string `json:"payment_methods" query:"payment_methods" validate:"omitempty,dive,min=1"`
}

// ExportRequest selects an export format for the summary tables.
type ExportRequest struct {
	FilterRequest
	Format string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}
