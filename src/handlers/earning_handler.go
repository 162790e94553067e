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

type EarningHandler struct {
	ledgerService services.LedgerService
}

func NewEarningHandler(ledgerService services.LedgerService) *EarningHandler {
	return &EarningHandler{ledgerService: ledgerService}
}

func (h *EarningHandler) HandleCreateEarning(w http.ResponseWriter, r *http.Request) {
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
	earning.Notes = validation.StripUnprintable(earning.Notes)

	if err := earning.Validate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := model.CreateEarning(database.DB, &earning); err != nil {
		logger.L.Error("Failed to create earning", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create earning", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	utils.SendJSON(w, earning, http.StatusCreated)
}

func (h *EarningHandler) HandleListEarnings(w http.ResponseWriter, r *http.Request) {
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
		logger.L.Error("Failed to list earnings", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list earnings", http.StatusInternalServerError)
		return
	}
	if earnings == nil {
		earnings = []model.Earning{}
	}

	utils.SendJSON(w, earnings, http.StatusOK)
}

func (h *EarningHandler) HandleDeleteEarning(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid earning ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteEarning(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Earning not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete earning", "userID", userID, "earningID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete earning", http.StatusInternalServerError)
		return
	}

	h.ledgerService.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}

// parsePagination reads limit/offset query params with sane defaults. Shared
// by the list handlers.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = utils.MinInt(n, 500)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
