package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/security/validation"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/utils"
)

type ExpenseHandler struct {
	ledgerService services.LedgerService
}

func NewExpenseHandler(ledgerService services.LedgerService) *ExpenseHandler {
	return &ExpenseHandler{ledgerService: ledgerService}
}

func (h *ExpenseHandler) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
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
	expense.Description = validation.StripUnprintable(expense.Description)

	if err := expense.Validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateExpense(database.DB, &expense); err != nil {
		logger.L.Error("Failed to create expense", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create expense", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	utils.SendJSON(w, expense, http.StatusCreated)
}

func (h *ExpenseHandler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
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
		logger.L.Error("Failed to list expenses", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}

	utils.SendJSON(w, expenses, http.StatusOK)
}

func (h *ExpenseHandler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid expense ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteExpense(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Expense not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete expense", "userID", userID, "expenseID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete expense", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}
