package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/tax"
	"github.com/username/drivefinance/backend/src/utils"
)

// ExternalHandler serves the versioned integration API under /api/v1,
// authenticated by API key. Payloads follow the data/pagination envelope so
// external consumers can page through results.
type ExternalHandler struct {
	ledgerService services.LedgerService
}

func NewExternalHandler(ledgerService services.LedgerService) *ExternalHandler {
	return &ExternalHandler{ledgerService: ledgerService}
}

type paginationMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func (h *ExternalHandler) HandleListEarnings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	filter := model.EarningFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		App:       models.Platform(r.URL.Query().Get("app")),
	}
	filter.Limit, filter.Offset = parsePagination(r)

	earnings, err := model.ListEarnings(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("External API: failed to list earnings", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list earnings", http.StatusInternalServerError)
		return
	}
	if earnings == nil {
		earnings = []model.Earning{}
	}

	total, err := model.CountEarnings(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("External API: failed to count earnings", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list earnings", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"data":       earnings,
		"pagination": paginationMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	}, http.StatusOK)
}

func (h *ExternalHandler) HandleCreateEarning(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var earning model.Earning
	if err := json.NewDecoder(r.Body).Decode(&earning); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	earning.UserID = userID
	if earning.Date == "" {
		earning.Date = utils.FormatISODate(time.Now())
	}

	if err := earning.Validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateEarning(database.DB, &earning); err != nil {
		logger.L.Error("External API: failed to create earning", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create earning", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	utils.SendJSON(w, map[string]interface{}{
		"data":    earning,
		"message": "Earning created successfully",
	}, http.StatusCreated)
}

func (h *ExternalHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	filter := model.ExpenseFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
		Category:  models.ExpenseCategory(r.URL.Query().Get("category")),
	}
	filter.Limit, filter.Offset = parsePagination(r)

	expenses, err := model.ListExpenses(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("External API: failed to list expenses", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}

	total, err := model.CountExpenses(database.DB, userID, filter)
	if err != nil {
		logger.L.Error("External API: failed to count expenses", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"data":       expenses,
		"pagination": paginationMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	}, http.StatusOK)
}

func (h *ExternalHandler) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var expense model.Expense
	if err := json.NewDecoder(r.Body).Decode(&expense); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	expense.UserID = userID
	if expense.Date == "" {
		expense.Date = utils.FormatISODate(time.Now())
	}

	if err := expense.Validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateExpense(database.DB, &expense); err != nil {
		logger.L.Error("External API: failed to create expense", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create expense", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	utils.SendJSON(w, map[string]interface{}{
		"data":    expense,
		"message": "Expense created successfully",
	}, http.StatusCreated)
}

func (h *ExternalHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	period, err := tax.ResolvePeriod("month", r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now())
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.ledgerService.Summary(userID, period)
	if err != nil {
		logger.L.Error("External API: failed to build summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, summary, http.StatusOK)
}

func (h *ExternalHandler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	goals, err := model.ListGoals(database.DB, userID)
	if err != nil {
		logger.L.Error("External API: failed to list goals", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list goals", http.StatusInternalServerError)
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}

	utils.SendJSON(w, map[string]interface{}{"data": goals}, http.StatusOK)
}

// HandleGetDocs describes the integration API for external consumers.
func (h *ExternalHandler) HandleGetDocs(w http.ResponseWriter, r *http.Request) {
	docs := map[string]interface{}{
		"name":        "DriveFinance API",
		"version":     "1.0.0",
		"description": "Integrate your financial data with external systems",
		"authentication": map[string]interface{}{
			"methods": []string{"x-api-key header"},
			"example": "curl -H 'x-api-key: YOUR_API_KEY' https://api.drivefinance.com.br/api/v1/earnings",
		},
		"endpoints": map[string]interface{}{
			"GET /api/v1/earnings": map[string]interface{}{
				"description": "List earnings",
				"params":      []string{"start_date", "end_date", "app", "limit", "offset"},
			},
			"POST /api/v1/earnings": map[string]interface{}{
				"description": "Create an earning",
				"body":        map[string]interface{}{"app": "uber", "amount": 150.00, "date": "2024-01-15", "trips_count": 10},
			},
			"GET /api/v1/expenses": map[string]interface{}{
				"description": "List expenses",
				"params":      []string{"start_date", "end_date", "category", "limit", "offset"},
			},
			"POST /api/v1/expenses": map[string]interface{}{
				"description": "Create an expense",
				"body":        map[string]interface{}{"category": "fuel", "amount": 50.00, "date": "2024-01-15", "description": "Gas station"},
			},
			"GET /api/v1/summary": map[string]interface{}{
				"description": "Financial summary for a period",
				"params":      []string{"start_date", "end_date"},
			},
			"GET /api/v1/goals": map[string]interface{}{
				"description": "List financial goals",
			},
		},
		"apps":       models.Platforms,
		"categories": models.ExpenseCategories,
	}

	utils.SendJSON(w, docs, http.StatusOK)
}
