package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"retailpulse/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func sampleRows() []domain.DenormalizedRow {
	return []domain.DenormalizedRow{
		row("C1", "I1", "Snacks", "Dhaka", "Dhaka", "card", "City Bank", date(2021, 1, 15), 2, 21),
		row("C2", "I2", "Beverages", "Chattogram", "Cumilla", "cash", "", date(2021, 2, 20), 1, 25),
		row("C1", "I3", "Stationery", "Dhaka", "Gazipur", "card", "BRAC Bank", date(2021, 7, 5), 4, 220),
		row("C3", "I1", "Snacks", "Khulna", "Khulna", "mobile", "", date(2021, 7, 6), 3, 31.5),
	}
}

func row(customer, item, category, division, district, transType, bank string, d time.Time, qty int, total float64) domain.DenormalizedRow {
	r := domain.DenormalizedRow{
		FactRow: domain.FactRow{
			CustomerKey: customer,
			ItemKey:     item,
			Quantity:    qty,
			TotalPrice:  total,
		},
		MainCategory: category,
		Division:     division,
		District:     district,
		TransType:    transType,
		BankName:     bank,
		Date:         d,
	}
	if !d.IsZero() {
		r.Weekday = d.Weekday().String()
		r.Hour = d.Hour()
		r.Month = int(d.Month())
		r.Year = d.Year()
	}
	return r
}

func totalRevenue(rows []domain.DenormalizedRow) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.TotalPrice
	}
	return sum
}

func TestApplyEmptyFilterEqualsNoFilter(t *testing.T) {
	rows := sampleRows()

	filtered := Apply(rows, Filter{})

	assert.Len(t, filtered, len(rows))
	assert.Equal(t, totalRevenue(rows), totalRevenue(filtered))
	assert.Equal(t, KPIs(rows), KPIs(filtered))
}

func TestApplyDateRange(t *testing.T) {
	rows := sampleRows()

	filtered := Apply(rows, Filter{
		From: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2021, 7, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.Len(t, filtered, 2)
	assert.Equal(t, "I2", filtered[0].ItemKey)
	assert.Equal(t, "I3", filtered[1].ItemKey)
}

func TestApplyDateRangeInclusiveBounds(t *testing.T) {
	rows := sampleRows()

	filtered := Apply(rows, Filter{
		From: time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.Len(t, filtered, 1)
	assert.Equal(t, "I1", filtered[0].ItemKey)
}

func TestApplyExcludesUnknownDatesFromBoundedRange(t *testing.T) {
	rows := sampleRows()
	rows = append(rows, row("C4", "I4", "Misc", "Dhaka", "Dhaka", "cash", "", time.Time{}, 1, 10))

	unbounded := Apply(rows, Filter{Divisions: []string{"Dhaka"}})
	assert.Len(t, unbounded, 3)

	bounded := Apply(rows, Filter{From: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)})
	for _, r := range bounded {
		assert.False(t, r.Date.IsZero())
	}
}

func TestApplyDivisionsCaseInsensitive(t *testing.T) {
	filtered := Apply(sampleRows(), Filter{Divisions: []string{"dhaka", "KHULNA"}})

	assert.Len(t, filtered, 3)
}

func TestApplyDimensionsAreANDCombined(t *testing.T) {
	filtered := Apply(sampleRows(), Filter{
		Divisions:      []string{"Dhaka"},
		PaymentMethods: []string{"card"},
	})

	assert.Len(t, filtered, 2)

	filtered = Apply(sampleRows(), Filter{
		Divisions:      []string{"Khulna"},
		PaymentMethods: []string{"card"},
	})
	assert.Empty(t, filtered)
}

func TestApplyPreservesInputOrder(t *testing.T) {
	filtered := Apply(sampleRows(), Filter{Divisions: []string{"Dhaka", "Khulna"}})

	items := make([]string, len(filtered))
	for i, r := range filtered {
		items[i] = r.ItemKey
	}
	assert.Equal(t, []string{"I1", "I3", "I1"}, items)
}
