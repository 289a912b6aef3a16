package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/epeers/holdings-dashboard/internal/cache"
	"github.com/epeers/holdings-dashboard/internal/engine"
	"github.com/epeers/holdings-dashboard/internal/models"
	"github.com/epeers/holdings-dashboard/internal/repository"
	"github.com/epeers/holdings-dashboard/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	tables map[string][]models.Record
	err    error
}

func (s *stubSource) ReadTable(_ context.Context, name string) ([]models.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tables[name], nil
}

func sampleTables() map[string][]models.Record {
	return map[string][]models.Record{
		"portfolios": {
			{"date": "2025-03-31", "account": "401k", "balance": "50000", "asset_class": "equity", "beta": "1.1"},
			{"date": "2025-03-31", "account": "Savings", "balance": "10000", "asset_class": "cash", "beta": ""},
			{"date": "2025-02-28", "account": "401k", "balance": "48000", "asset_class": "equity", "beta": "1.1"},
		},
		"assets": {
			{"date": "2025-03-31", "category": "US", "value": "30000"},
			{"date": "2025-03-31", "category": "International", "value": "20000"},
		},
		"indexes": {
			{"date": "2025-03-31", "index": "sp500", "return_pct_ytd": "-0.046"},
		},
	}
}

func setupRouter(t *testing.T, src repository.TableSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewSnapshotRepository(src, cache.NewMemoryCache(), nil)
	svc := services.NewDashboardService(repo, services.DashboardConfig{
		Tables:      services.Tables{Accounts: "portfolios", Equity: "assets", Indexes: "indexes"},
		Freshness:   time.Minute,
		EquityClass: "equity",
		Benchmark:   "sp500",
		Engine:      engine.DefaultOptions(),
	})
	h := NewDashboardHandler(svc, engine.DefaultFormatter())

	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.GET("/", h.Page)
	api := router.Group("/api")
	api.GET("/dates", h.Dates)
	api.GET("/dashboard", h.Dashboard)
	api.GET("/history", h.History)
	api.POST("/refresh", h.Refresh)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDashboard_OK(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/dashboard?date=2025-03-31")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, models.StatusOK, resp.Status)
	assert.Equal(t, "2025-03-31", resp.Date.Format(models.DateLayout))
	assert.Equal(t, "$60,000.00", resp.TotalValue.Display)
	assert.Equal(t, "1.10", resp.WeightedBeta.Display)
	assert.Equal(t, "16.7%", resp.CashPercentage.Display)
	assert.Equal(t, "-4.6%", resp.BenchmarkReturn.Display)

	require.Len(t, resp.AllocationByClass, 2)
	assert.Equal(t, "equity", resp.AllocationByClass[0].Label)
	assert.Equal(t, "83.3%", resp.AllocationByClass[0].PercentageDisplay)
	assert.Equal(t, "$50,000.00", resp.AllocationByClass[0].ValueDisplay)
	assert.Equal(t, "cash", resp.AllocationByClass[1].Label)

	require.Len(t, resp.EquityBreakdown, 2)
	assert.Equal(t, "60.0%", resp.EquityBreakdown[0].PercentageDisplay)

	require.Len(t, resp.Accounts, 2)
	assert.Equal(t, "--", resp.Accounts[1].BetaText)
	assert.Len(t, resp.AvailableDates, 2)
}

func TestDashboard_OutOfRangeBalanceOnlyDropsRow(t *testing.T) {
	tables := sampleTables()
	tables["portfolios"] = append(tables["portfolios"],
		models.Record{"date": "2025-03-31", "account": "Typo", "balance": "1e400", "asset_class": "equity", "beta": "1"})
	router := setupRouter(t, &stubSource{tables: tables})

	w := get(router, "/api/dashboard?date=2025-03-31")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "$60,000.00", resp.TotalValue.Display)
	require.NotEmpty(t, resp.Warnings)
	assert.Equal(t, models.WarnRowExcluded, resp.Warnings[0].Code)

	w = get(router, "/api/history")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDashboard_DefaultsToNewest(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-03-31", resp.Date.Format(models.DateLayout))
}

func TestDashboard_NoData(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/dashboard?date=2024-01-01")
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, "no_data", raw["status"])
	assert.Equal(t, "No data for 2024-01-01", raw["message"])

	total := raw["total_value"].(map[string]interface{})
	assert.Nil(t, total["value"], "total is absent, not zero")
	assert.Equal(t, "--", total["display"])
}

func TestDashboard_BadDate(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/dashboard?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Error)
}

func TestDashboard_Unavailable(t *testing.T) {
	router := setupRouter(t, &stubSource{err: errors.New("spreadsheet returned status 403")})

	w := get(router, "/api/dashboard")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "repository_unavailable", resp.Error)
	assert.Contains(t, resp.Message, "403")
}

func TestDashboard_MissingColumn(t *testing.T) {
	tables := sampleTables()
	tables["portfolios"] = []models.Record{{"account": "401k", "balance": "1"}}
	router := setupRouter(t, &stubSource{tables: tables})

	w := get(router, "/api/dashboard")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "missing_column", resp.Error)
}

func TestDates(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/dates")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Table string   `json:"table"`
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "portfolios", resp.Table)
	assert.Equal(t, []string{"2025-03-31", "2025-02-28"}, resp.Dates)
}

func TestHistory(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := get(router, "/api/history")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Points, 2)
	assert.True(t, resp.Points[0].Date.Before(resp.Points[1].Date))
}

func TestRefresh(t *testing.T) {
	router := setupRouter(t, &stubSource{tables: sampleTables()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"refreshed"}`, w.Body.String())
}

func TestPage_States(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		router := setupRouter(t, &stubSource{tables: sampleTables()})
		w := get(router, "/?date=2025-03-31")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `id="total-value">$60,000.00`)
		assert.Contains(t, body, `<option value="2025-02-28"`)
		assert.NotContains(t, body, "state-no-data")
		assert.NotContains(t, body, "state-error")
	})

	t.Run("no data", func(t *testing.T) {
		router := setupRouter(t, &stubSource{tables: sampleTables()})
		w := get(router, "/?date=2024-01-01")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "state-no-data")
		assert.NotContains(t, w.Body.String(), "state-error")
	})

	t.Run("fetch failed", func(t *testing.T) {
		router := setupRouter(t, &stubSource{err: errors.New("connection refused")})
		w := get(router, "/")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "state-error")
		assert.Contains(t, w.Body.String(), "connection refused")
		assert.NotContains(t, w.Body.String(), "state-no-data")
	})
}
