package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpulse/internal/analytics"
	"retailpulse/internal/config"
)

var fixtureFiles = map[string]string{
	"customer_dim.csv": "coustomer_key,name,contact_no,nid\n" +
		"C1,Alice,01700000001,100\n" +
		"C2,Bilal,01700000002,200\n",
	"item_dim.csv": "item_key,item_name,desc,unit_price,man_country,supplier,unit\n" +
		"I1,Chips,Snacks - Potato Chips,10.5,Bangladesh,Acme,ct\n" +
		"I2,Pen,Stationery - Ball Pen,5,India,Scribe,pc\n",
	"store_dim.csv": "store_key,division,district,upazila\n" +
		"S1,Dhaka,Dhaka,Dhanmondi\n" +
		"S2,Khulna,Khulna,Sonadanga\n",
	"time_dim.csv": "time_key,date,hour,day,week,month,quarter,year\n" +
		"T1,15-01-2021 12:30,12,15,3,1,Q1,2021\n" +
		"T2,05-07-2021 18:00,18,5,27,7,Q3,2021\n",
	"Trans_dim.csv": "payment_key,trans_type,bank_name\n" +
		"P1,card,City Bank\n" +
		"P2,cash,None\n",
	// The third fact row references customer C9, which has no dimension row.
	"fact_table.csv": "payment_key,coustomer_key,time_key,item_key,store_key,quantity,unit,unit_price,total_price\n" +
		"P1,C1,T1,I1,S1,2,ct,10.5,21\n" +
		"P2,C2,T2,I2,S2,4,pc,5,20\n" +
		"P1,C9,T1,I1,S1,1,ct,10.5,10.5\n",
}

func fixturePaths(t *testing.T) *config.Paths {
	t.Helper()
	dataDir := t.TempDir()
	for name, content := range fixtureFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}
	return &config.Paths{
		DataDir:    dataDir,
		ReportsDir: t.TempDir(),
	}
}

func loadedService(t *testing.T) *DashboardService {
	t.Helper()
	svc := NewDashboardService(fixturePaths(t), nil, nil, nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

type recordingBroadcaster struct {
	sources []string
	metas   []interface{}
}

func (r *recordingBroadcaster) BroadcastRefresh(source string, meta interface{}) {
	r.sources = append(r.sources, source)
	r.metas = append(r.metas, meta)
}

func TestLoadBuildsSnapshot(t *testing.T) {
	svc := loadedService(t)

	meta, loaded := svc.Meta()
	require.True(t, loaded)
	assert.Equal(t, 2, meta.RowsTotal)
	assert.Equal(t, 1, meta.RowsExcluded)
	assert.Equal(t, "2021-01-15", meta.DateMin)
	assert.Equal(t, "2021-07-05", meta.DateMax)
	assert.False(t, meta.NoData)
}

func TestQueriesBeforeLoadFail(t *testing.T) {
	svc := NewDashboardService(fixturePaths(t), nil, nil, nil)

	_, err := svc.KPIs(context.Background(), analytics.Filter{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	_, loaded := svc.Meta()
	assert.False(t, loaded)
}

func TestKPIs(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.KPIs(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	assert.InDelta(t, 41, resp.KPIs.TotalRevenue, 1e-9)
	assert.Equal(t, 2, resp.KPIs.TotalOrders)
	assert.Equal(t, 2, resp.Meta.RowsMatched)
	assert.Equal(t, 1, resp.Meta.RowsExcluded)
}

func TestKPIsWithDivisionFilter(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.KPIs(context.Background(), analytics.Filter{Divisions: []string{"Dhaka"}})
	require.NoError(t, err)

	assert.InDelta(t, 21, resp.KPIs.TotalRevenue, 1e-9)
	assert.Equal(t, 1, resp.Meta.RowsMatched)
	assert.False(t, resp.Meta.NoData)
}

func TestEmptyFilteredViewReportsNoData(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.KPIs(context.Background(), analytics.Filter{Divisions: []string{"Sylhet"}})
	require.NoError(t, err)

	assert.True(t, resp.Meta.NoData)
	assert.Zero(t, resp.Meta.RowsMatched)
	assert.Zero(t, resp.KPIs.TotalRevenue)
}

func TestTrends(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Trends(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, resp.Monthly, 2)
	assert.Equal(t, "2021-01", resp.Monthly[0].Month)
	assert.Equal(t, "Dhaka", resp.Monthly[0].Division)

	require.Len(t, resp.Quarterly, 2)
	assert.Equal(t, "Q1", resp.Quarterly[0].Name)
	assert.InDelta(t, 21, resp.Quarterly[0].Value, 1e-9)
}

func TestPaymentsBanksAreCardOnly(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Payments(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, resp.Stats, 2)
	require.Len(t, resp.TopBanks, 1)
	assert.Equal(t, "City Bank", resp.TopBanks[0].Name)
	assert.InDelta(t, 21, resp.TopBanks[0].Value, 1e-9)
}

func TestCustomersTopSpendersDescending(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Customers(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	require.Len(t, resp.Top, 2)
	assert.Equal(t, "C1", resp.Top[0].CustomerKey)
	assert.InDelta(t, 21, resp.Top[0].TotalSpent, 1e-9)
	assert.Equal(t, "C2", resp.Top[1].CustomerKey)
}

func TestSummary(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Summary(context.Background(), analytics.Filter{})
	require.NoError(t, err)

	assert.Equal(t, "Dhaka", resp.Executive.TopDivision)
	assert.InDelta(t, 41, resp.Executive.TotalRevenue, 1e-9)
	assert.InDelta(t, 41, resp.KPIs.TotalRevenue, 1e-9)
}

func TestRefreshBroadcasts(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	svc := NewDashboardService(fixturePaths(t), broadcaster, nil, nil)

	resp, err := svc.Refresh(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Meta.RowsTotal)
	require.Len(t, broadcaster.sources, 1)
	assert.Equal(t, "manual", broadcaster.sources[0])
}

func TestRefreshFailureKeepsOldSnapshot(t *testing.T) {
	paths := fixturePaths(t)
	svc := NewDashboardService(paths, nil, nil, nil)
	require.NoError(t, svc.Load(context.Background()))

	require.NoError(t, os.Remove(paths.FactTable()))

	_, err := svc.Refresh(context.Background(), "manual")
	require.Error(t, err)

	// Queries keep serving the last good snapshot.
	resp, err := svc.KPIs(context.Background(), analytics.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Meta.RowsMatched)
}

func TestExportCSV(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Export(context.Background(), analytics.Filter{}, "csv")
	require.NoError(t, err)

	assert.Equal(t, "csv", resp.Format)
	assert.True(t, strings.HasSuffix(resp.File, ".csv"))

	data, err := os.ReadFile(resp.File)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Contains(t, string(data), "total_revenue,41.00")
}

func TestExportXLSX(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Export(context.Background(), analytics.Filter{}, "xlsx")
	require.NoError(t, err)

	assert.Equal(t, "xlsx", resp.Format)
	_, err = os.Stat(resp.File)
	assert.NoError(t, err)
}

func TestExportDefaultsToCSV(t *testing.T) {
	svc := loadedService(t)

	resp, err := svc.Export(context.Background(), analytics.Filter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "csv", resp.Format)
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := loadedService(t)

	_, err := svc.Export(context.Background(), analytics.Filter{}, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
