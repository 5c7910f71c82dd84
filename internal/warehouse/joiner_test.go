package warehouse

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/config"
)

func TestJoinResolvesAllRows(t *testing.T) {
	tables := loadDataset(t, nil)

	result := Join(tables, slog.Default())

	require.Len(t, result.Rows, 4)
	assert.Zero(t, result.Excluded)

	first := result.Rows[0]
	assert.Equal(t, "Alice Rahman", first.CustomerName)
	assert.Equal(t, "Mini Biscuit", first.ItemName)
	assert.Equal(t, "Snacks", first.MainCategory)
	assert.Equal(t, "Dhaka", first.Division)
	assert.Equal(t, "card", first.TransType)
	assert.Equal(t, "City Bank", first.BankName)
	assert.Equal(t, 2021, first.Year)
	assert.Equal(t, "Friday", first.Weekday)
	assert.Equal(t, "2021-01", first.MonthKey())
}

func TestJoinPreservesFactOrder(t *testing.T) {
	tables := loadDataset(t, nil)

	result := Join(tables, slog.Default())

	keys := make([]string, len(result.Rows))
	for i, row := range result.Rows {
		keys[i] = row.ItemKey
	}
	assert.Equal(t, []string{"I001", "I002", "I003", "I001"}, keys)
}

func TestJoinExcludesUnresolvableCustomer(t *testing.T) {
	tables := loadDataset(t, map[string]string{
		config.FactTableFile: `payment_key,coustomer_key,time_key,item_key,store_key,quantity,unit,unit_price,total_price
P001,C001,T001,I001,S001,2,ct,10.5,21
P002,NOPE,T002,I002,S002,1,ct,25,25
`,
	})

	result := Join(tables, slog.Default())

	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Excluded)
}

func TestJoinExcludesEveryDanglingKeyKind(t *testing.T) {
	tables := loadDataset(t, map[string]string{
		config.FactTableFile: `payment_key,coustomer_key,time_key,item_key,store_key,quantity,unit,unit_price,total_price
NOPE,C001,T001,I001,S001,1,ct,1,1
P001,NOPE,T001,I001,S001,1,ct,1,1
P001,C001,NOPE,I001,S001,1,ct,1,1
P001,C001,T001,NOPE,S001,1,ct,1,1
P001,C001,T001,I001,NOPE,1,ct,1,1
P001,C001,T001,I001,S001,1,ct,1,1
`,
	})

	result := Join(tables, slog.Default())

	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 5, result.Excluded)
}

func TestJoinProfitMargin(t *testing.T) {
	tables := loadDataset(t, nil)

	result := Join(tables, slog.Default())

	// (21 - 10.5*0.7) / 21 * 100 = 65
	assert.InDelta(t, 65.0, result.Rows[0].ProfitMargin, 1e-9)
}

func TestProfitMarginZeroTotal(t *testing.T) {
	assert.Zero(t, profitMargin(0, 10))
}
