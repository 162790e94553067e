package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/services"
)

func TestHandleGetSummary(t *testing.T) {
	db := setupTestDB(t)
	handler := NewSummaryHandler(services.NewLedgerService(nil))

	trips := int64(20)
	require.NoError(t, model.CreateEarning(db, &model.Earning{
		UserID: 1, App: models.PlatformUber, Amount: 50000, Date: "2024-01-10", TripsCount: &trips,
	}))
	require.NoError(t, model.CreateEarning(db, &model.Earning{
		UserID: 1, App: models.PlatformIfood, Amount: 30000, Date: "2024-01-15",
	}))
	require.NoError(t, model.CreateExpense(db, &model.Expense{
		UserID: 1, Category: models.CategoryFuel, Amount: 20000, Date: "2024-01-12",
	}))

	t.Run("returns totals grouped by app and category", func(t *testing.T) {
		target := "/api/summary?start_date=2024-01-01&end_date=2024-01-31"
		rec := httptest.NewRecorder()
		handler.HandleGetSummary(rec, authedRequest(http.MethodGet, target, "", 1))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Period struct {
				StartDate string `json:"start_date"`
				EndDate   string `json:"end_date"`
			} `json:"period"`
			Totals struct {
				Earnings     json.Number `json:"earnings"`
				Expenses     json.Number `json:"expenses"`
				Profit       json.Number `json:"profit"`
				ProfitMargin json.Number `json:"profit_margin"`
			} `json:"totals"`
			EarningsByApp      map[string]json.Number `json:"earnings_by_app"`
			ExpensesByCategory map[string]json.Number `json:"expenses_by_category"`
		}
		dec := json.NewDecoder(rec.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&body))

		assert.Equal(t, "2024-01-01", body.Period.StartDate)
		assert.Equal(t, "2024-01-31", body.Period.EndDate)
		assert.Equal(t, "800.00", body.Totals.Earnings.String())
		assert.Equal(t, "200.00", body.Totals.Expenses.String())
		assert.Equal(t, "600.00", body.Totals.Profit.String())
		assert.Equal(t, "75", body.Totals.ProfitMargin.String())
		assert.Equal(t, "500.00", body.EarningsByApp["uber"].String())
		assert.Equal(t, "300.00", body.EarningsByApp["ifood"].String())
		assert.Equal(t, "200.00", body.ExpensesByCategory["fuel"].String())
	})

	t.Run("matching If-None-Match is a 304", func(t *testing.T) {
		target := "/api/summary?start_date=2024-01-01&end_date=2024-01-31"
		first := httptest.NewRecorder()
		handler.HandleGetSummary(first, authedRequest(http.MethodGet, target, "", 1))
		require.Equal(t, http.StatusOK, first.Code)
		etag := first.Header().Get("ETag")
		require.NotEmpty(t, etag)

		req := authedRequest(http.MethodGet, target, "", 1)
		req.Header.Set("If-None-Match", etag)
		second := httptest.NewRecorder()
		handler.HandleGetSummary(second, req)
		assert.Equal(t, http.StatusNotModified, second.Code)
	})

	t.Run("malformed dates are a 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleGetSummary(rec, authedRequest(http.MethodGet, "/api/summary?start_date=01-01-2024", "", 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted window is a 400", func(t *testing.T) {
		target := "/api/summary?start_date=2024-02-01&end_date=2024-01-01"
		rec := httptest.NewRecorder()
		handler.HandleGetSummary(rec, authedRequest(http.MethodGet, target, "", 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated context is a 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleGetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
