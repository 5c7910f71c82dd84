package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"retailpulse/internal/config"
	"retailpulse/pkg/contracts/domain"
)

func sampleSummaries() Summaries {
	return Summaries{
		KPIs: domain.KPISet{
			TotalRevenue:    297.5,
			TotalOrders:     4,
			AvgOrderValue:   74.375,
			UniqueCustomers: 3,
			UniqueProducts:  3,
		},
		Monthly: []domain.TrendPoint{
			{Month: "2021-01", Division: "Dhaka", Revenue: 21},
			{Month: "2021-07", Division: "Khulna", Revenue: 31.5},
		},
		Divisions: []domain.DivisionStat{
			{Division: "Dhaka", TotalRevenue: 241, AvgOrderValue: 120.5, TotalQuantity: 6, UniqueCustomers: 1},
		},
		Categories: []domain.CategoryRevenue{
			{Category: "Stationery", Revenue: 220},
		},
		Banks: []domain.Share{
			{Name: "BRAC Bank", Value: 220},
		},
		Segments: []domain.SegmentCount{
			{Segment: domain.SegmentVIP, Count: 1},
		},
		Executive: domain.ExecutiveSummary{
			TotalRevenue: 297.5,
			TopDivision:  "Dhaka",
		},
	}
}

func TestBuildReportTableOrderAndFormatting(t *testing.T) {
	report := BuildReport(sampleSummaries(), domain.DatasetMeta{RowsMatched: 4, RowsExcluded: 1})

	require.Len(t, report.Tables, 12)
	assert.Equal(t, "KPIs", report.Tables[0].Name)
	assert.Equal(t, "Executive Summary", report.Tables[11].Name)

	kpis := report.Tables[0]
	assert.Equal(t, []string{"total_revenue", "297.50"}, kpis.Rows[0])
	assert.Equal(t, []string{"rows_excluded", "1"}, kpis.Rows[5])
}

func TestCSVWriterWritesBOMAndSections(t *testing.T) {
	paths := &config.Paths{ReportsDir: t.TempDir()}
	report := BuildReport(sampleSummaries(), domain.DatasetMeta{RowsMatched: 4})

	path, err := NewCSVWriter(paths).WriteReport(report, "summary.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "summary.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.True(t, len(data) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	content := string(data[3:])
	assert.True(t, strings.HasPrefix(content, "KPIs\n"))
	assert.Contains(t, content, "metric,value\n")
	assert.Contains(t, content, "Monthly Trends\nmonth,division,revenue\n2021-01,Dhaka,21.00\n")
	assert.Contains(t, content, "Executive Summary\n")
}

func TestExcelWriterWritesOneSheetPerTable(t *testing.T) {
	paths := &config.Paths{ReportsDir: t.TempDir()}
	report := BuildReport(sampleSummaries(), domain.DatasetMeta{RowsMatched: 4})

	path, err := NewExcelWriter(paths).WriteReport(report, "summary.xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 12)
	assert.Equal(t, "KPIs", sheets[0])
	assert.NotContains(t, sheets, "Sheet1")

	value, err := f.GetCellValue("KPIs", "A1")
	require.NoError(t, err)
	assert.Equal(t, "metric", value)

	value, err = f.GetCellValue("KPIs", "B2")
	require.NoError(t, err)
	assert.Equal(t, "297.50", value)
}

func TestSheetNameTruncation(t *testing.T) {
	long := strings.Repeat("x", 40)
	assert.Len(t, sheetName(long), 31)
	assert.Equal(t, "KPIs", sheetName("KPIs"))
}
