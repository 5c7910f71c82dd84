package domain

import (
	"time"
)

// FactRow is one transaction event from fact_table.csv. Key fields reference
// the five dimension tables by their surrogate keys.
type FactRow struct {
	PaymentKey  string  `json:"payment_key"`
	CustomerKey string  `json:"customer_key"`
	TimeKey     string  `json:"time_key"`
	ItemKey     string  `json:"item_key"`
	StoreKey    string  `json:"store_key"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Customer is a row of customer_dim.csv. The source data spells the key
// column "coustomer_key"; the loader maps it here.
type Customer struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	ContactNo string `json:"contact_no"`
	NID       string `json:"nid"`
}

// Item is a row of item_dim.csv. MainCategory is derived at load time from
// the text before the first " - " separator in Desc.
type Item struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Desc         string  `json:"desc"`
	MainCategory string  `json:"main_category"`
	UnitPrice    float64 `json:"unit_price"`
	ManCountry   string  `json:"man_country"`
	Supplier     string  `json:"supplier"`
	Unit         string  `json:"unit"`
}

// Store is a row of store_dim.csv describing the sale location hierarchy.
type Store struct {
	Key      string `json:"key"`
	Division string `json:"division"`
	District string `json:"district"`
	Upazila  string `json:"upazila"`
}

// TimePoint is a row of time_dim.csv. Date carries a zero value when the
// source timestamp could not be parsed; such rows never match a date-range
// filter.
type TimePoint struct {
	Key     string    `json:"key"`
	Date    time.Time `json:"date"`
	Hour    int       `json:"hour"`
	Day     int       `json:"day"`
	Week    int       `json:"week"`
	Month   int       `json:"month"`
	Quarter string    `json:"quarter"`
	Year    int       `json:"year"`
}

// Weekday returns the English day name for the time point, or "" when the
// date is unknown.
func (t TimePoint) Weekday() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Weekday().String()
}

// MonthName returns the English month name, or "" when the date is unknown.
func (t TimePoint) MonthName() string {
	if t.Date.IsZero() {
		return ""
	}
	return t.Date.Month().String()
}

// Transaction is a row of Trans_dim.csv describing a payment method.
// BankName is empty for non-card payments (the source uses the literal
// string "None").
type Transaction struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	BankName string `json:"bank_name"`
}

// DenormalizedRow is a fact row joined with every referenced dimension row.
// It is the unit of filtering and aggregation.
type DenormalizedRow struct {
	FactRow

	CustomerName string `json:"customer_name"`

	ItemName     string `json:"item_name"`
	MainCategory string `json:"main_category"`
	ManCountry   string `json:"man_country"`
	Supplier     string `json:"supplier"`

	Division string `json:"division"`
	District string `json:"district"`
	Upazila  string `json:"upazila"`

	Date    time.Time `json:"date"`
	Hour    int       `json:"hour"`
	Month   int       `json:"month"`
	Quarter string    `json:"quarter"`
	Year    int       `json:"year"`
	Weekday string    `json:"weekday"`

	TransType string `json:"trans_type"`
	BankName  string `json:"bank_name,omitempty"`

	// ProfitMargin is (total - 0.7*unit_price) / total * 100, the gross
	// margin assumption carried over from the source dataset. Zero when
	// the total is zero.
	ProfitMargin float64 `json:"profit_margin"`
}

// MonthKey returns the row's month bucket as "YYYY-MM", or "" when the date
// is unknown.
func (r DenormalizedRow) MonthKey() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01")
}
