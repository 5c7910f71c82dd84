package warehouse

import (
	"log/slog"

	"retailpulse/pkg/contracts/domain"
)

// JoinResult is the denormalized row set together with the number of fact
// rows excluded because a foreign key did not resolve.
type JoinResult struct {
	Rows     []domain.DenormalizedRow
	Excluded int
}

// Join merges each fact row with its five dimension rows via key lookup.
// Rows with any unresolvable key are dropped and counted, never silently
// included. Resolved rows keep the fact table's input order.
func Join(tables *Tables, logger *slog.Logger) JoinResult {
	if logger == nil {
		logger = slog.Default()
	}

	rows := make([]domain.DenormalizedRow, 0, len(tables.Facts))
	excluded := 0

	for _, fact := range tables.Facts {
		customer, ok := tables.Customers[fact.CustomerKey]
		if !ok {
			excluded++
			continue
		}
		item, ok := tables.Items[fact.ItemKey]
		if !ok {
			excluded++
			continue
		}
		store, ok := tables.Stores[fact.StoreKey]
		if !ok {
			excluded++
			continue
		}
		timePoint, ok := tables.Times[fact.TimeKey]
		if !ok {
			excluded++
			continue
		}
		trans, ok := tables.Transactions[fact.PaymentKey]
		if !ok {
			excluded++
			continue
		}

		rows = append(rows, domain.DenormalizedRow{
			FactRow:      fact,
			CustomerName: customer.Name,
			ItemName:     item.Name,
			MainCategory: item.MainCategory,
			ManCountry:   item.ManCountry,
			Supplier:     item.Supplier,
			Division:     store.Division,
			District:     store.District,
			Upazila:      store.Upazila,
			Date:         timePoint.Date,
			Hour:         timePoint.Hour,
			Month:        timePoint.Month,
			Quarter:      timePoint.Quarter,
			Year:         timePoint.Year,
			Weekday:      timePoint.Weekday(),
			TransType:    trans.Type,
			BankName:     trans.BankName,
			ProfitMargin: profitMargin(fact.TotalPrice, fact.UnitPrice),
		})
	}

	if excluded > 0 {
		logger.Warn("fact rows excluded during join",
			slog.Int("excluded", excluded),
			slog.Int("resolved", len(rows)))
	}

	return JoinResult{Rows: rows, Excluded: excluded}
}

// profitMargin assumes a 70% cost basis on the unit price, as the source
// dataset does.
func profitMargin(total, unitPrice float64) float64 {
	if total == 0 {
		return 0
	}
	return (total - unitPrice*0.7) / total * 100
}
