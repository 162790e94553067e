package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/tax"
)

// authedRequest skips the middleware and injects the user id directly.
func authedRequest(method, target, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), userIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestHandleCalculateTax(t *testing.T) {
	db := setupTestDB(t)
	handler := NewTaxHandler(services.NewTaxService(tax.DefaultRuleSet(), services.NewLedgerService(nil)))

	require.NoError(t, model.CreateEarning(db, &model.Earning{
		UserID: 1, App: models.PlatformUber, Amount: 50000, Date: "2024-01-10",
	}))
	require.NoError(t, model.CreateExpense(db, &model.Expense{
		UserID: 1, Category: models.CategoryFuel, Amount: 10000, Date: "2024-01-11",
	}))

	t.Run("returns the full report payload", func(t *testing.T) {
		body := `{"regime": "mei", "period": {"start": "2024-01-01", "end": "2024-01-31"}}`
		rec := httptest.NewRecorder()
		handler.HandleCalculateTax(rec, authedRequest(http.MethodPost, "/api/tax/calculate", body, 1))

		require.Equal(t, http.StatusOK, rec.Code)
		var report struct {
			Regime             string                 `json:"regime"`
			GrossIncome        json.Number            `json:"gross_income"`
			DeductibleExpenses json.Number            `json:"deductible_expenses"`
			NetIncome          json.Number            `json:"net_income"`
			Taxes              map[string]json.Number `json:"taxes"`
			Recommendations    []string               `json:"recommendations"`
			Alerts             []string               `json:"alerts"`
		}
		dec := json.NewDecoder(rec.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&report))

		assert.Equal(t, "mei", report.Regime)
		assert.Equal(t, "500.00", report.GrossIncome.String())
		assert.Equal(t, "100.00", report.DeductibleExpenses.String())
		assert.Equal(t, "400.00", report.NetIncome.String())
		assert.Equal(t, "75.90", report.Taxes["das"].String())
		assert.Equal(t, "75.90", report.Taxes["total"].String())
		assert.NotEmpty(t, report.Recommendations)
	})

	t.Run("unknown regime is a 400", func(t *testing.T) {
		body := `{"regime": "lucro_presumido", "period": {"start": "2024-01-01", "end": "2024-01-31"}}`
		rec := httptest.NewRecorder()
		handler.HandleCalculateTax(rec, authedRequest(http.MethodPost, "/api/tax/calculate", body, 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted period is a 400", func(t *testing.T) {
		body := `{"regime": "mei", "period": {"start": "2024-06-01", "end": "2024-01-01"}}`
		rec := httptest.NewRecorder()
		handler.HandleCalculateTax(rec, authedRequest(http.MethodPost, "/api/tax/calculate", body, 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.HandleCalculateTax(rec, authedRequest(http.MethodPost, "/api/tax/calculate", "{not json", 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated context is a 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/tax/calculate", strings.NewReader(`{"regime": "mei"}`))
		rec := httptest.NewRecorder()
		handler.HandleCalculateTax(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
