package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/utils"
)

type GoalHandler struct{}

func NewGoalHandler() *GoalHandler {
	return &GoalHandler{}
}

var goalPeriods = map[string]bool{
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
	"custom":  true,
}

func (h *GoalHandler) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var goal model.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	goal.UserID = userID
	goal.Title = strings.TrimSpace(goal.Title)

	if goal.Title == "" {
		utils.SendJSONError(w, "Goal title is required", http.StatusBadRequest)
		return
	}
	if goal.TargetAmount <= 0 {
		utils.SendJSONError(w, "Target amount must be positive", http.StatusBadRequest)
		return
	}
	if !goalPeriods[goal.Period] {
		utils.SendJSONError(w, "Period must be one of: weekly, monthly, yearly, custom", http.StatusBadRequest)
		return
	}

	if err := model.CreateGoal(database.DB, &goal); err != nil {
		logger.L.Error("Failed to create goal", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create goal", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, goal, http.StatusCreated)
}

func (h *GoalHandler) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	goals, err := model.ListGoals(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list goals", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list goals", http.StatusInternalServerError)
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}

	utils.SendJSON(w, goals, http.StatusOK)
}

func (h *GoalHandler) HandleUpdateGoalProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	var requestBody struct {
		CurrentAmount models.Money `json:"current_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.CurrentAmount < 0 {
		utils.SendJSONError(w, "Current amount cannot be negative", http.StatusBadRequest)
		return
	}

	if err := model.UpdateGoalProgress(database.DB, userID, id, requestBody.CurrentAmount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Goal not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update goal progress", "userID", userID, "goalID", id, "error", err)
		utils.SendJSONError(w, "Failed to update goal", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]string{"message": "Goal updated"}, http.StatusOK)
}

func (h *GoalHandler) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid goal ID", http.StatusBadRequest)
		return
	}

	if err := model.DeleteGoal(database.DB, userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Goal not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete goal", "userID", userID, "goalID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete goal", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
