package app

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "retailpulse/pkg/contracts/api/v1"
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
	"fact_table.csv": "payment_key,coustomer_key,time_key,item_key,store_key,quantity,unit,unit_price,total_price\n" +
		"P1,C1,T1,I1,S1,2,ct,10.5,21\n" +
		"P2,C2,T2,I2,S2,4,pc,5,20\n",
}

// newTestApplication builds a full application against a temp data
// directory, configured purely through environment variables.
func newTestApplication(t *testing.T) *Application {
	t.Helper()

	dataDir := t.TempDir()
	for name, content := range fixtureFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}

	t.Setenv("RETAILPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RETAILPULSE_PATHS_DATA_DIR", dataDir)
	t.Setenv("RETAILPULSE_PATHS_REPORTS_DIR", t.TempDir())
	t.Setenv("RETAILPULSE_PATHS_LOGS_DIR", t.TempDir())
	t.Setenv("RETAILPULSE_LOGGING_OUTPUT", "console")

	app, err := NewApplication()
	require.NoError(t, err)
	t.Cleanup(func() { app.Hub.Stop() })

	require.NoError(t, app.Dashboard.Load(context.Background()))
	return app
}

func TestApplicationServesDashboard(t *testing.T) {
	app := newTestApplication(t)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

		require.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status"`)
	})

	t.Run("kpis", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/dashboard/kpis", nil))

		require.Equal(t, 200, rec.Code)
		var resp api.KPIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, 41, resp.KPIs.TotalRevenue, 1e-9)
		assert.Equal(t, 2, resp.Meta.RowsTotal)
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/version", nil))

		require.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "version")
	})

	t.Run("request id header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestWithPortOverride(t *testing.T) {
	dataDir := t.TempDir()
	for name, content := range fixtureFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}
	t.Setenv("RETAILPULSE_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("RETAILPULSE_PATHS_DATA_DIR", dataDir)
	t.Setenv("RETAILPULSE_PATHS_REPORTS_DIR", t.TempDir())
	t.Setenv("RETAILPULSE_PATHS_LOGS_DIR", t.TempDir())
	t.Setenv("RETAILPULSE_LOGGING_OUTPUT", "console")

	app, err := NewApplication(WithPort(9100))
	require.NoError(t, err)
	defer app.Hub.Stop()

	assert.Equal(t, 9100, app.Config.Server.Port)
	assert.Equal(t, ":9100", app.Server.Addr)
}
