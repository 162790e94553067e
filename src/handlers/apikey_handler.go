package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/security"
	"github.com/username/drivefinance/backend/src/utils"
)

type APIKeyHandler struct {
	authService *security.AuthService
}

func NewAPIKeyHandler(authService *security.AuthService) *APIKeyHandler {
	return &APIKeyHandler{authService: authService}
}

// HandleCreateAPIKey mints a new external API key. The plain key appears in
// this response only; afterwards just the prefix is recoverable.
func (h *APIKeyHandler) HandleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	requestBody.Name = strings.TrimSpace(requestBody.Name)
	if requestBody.Name == "" {
		utils.SendJSONError(w, "Key name is required", http.StatusBadRequest)
		return
	}

	generated, err := h.authService.GenerateAPIKey()
	if err != nil {
		logger.L.Error("Failed to generate API key", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to generate API key", http.StatusInternalServerError)
		return
	}

	key := &model.APIKey{
		ID:        generated.ID,
		UserID:    userID,
		Name:      requestBody.Name,
		KeyPrefix: generated.Prefix,
		KeyHash:   generated.Hash,
	}
	if err := model.CreateAPIKey(database.DB, key); err != nil {
		logger.L.Error("Failed to store API key", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to store API key", http.StatusInternalServerError)
		return
	}

	logger.L.Info("API key created", "userID", userID, "keyID", key.ID, "name", key.Name)
	utils.SendJSON(w, map[string]interface{}{
		"id":         key.ID,
		"name":       key.Name,
		"key_prefix": key.KeyPrefix,
		"api_key":    generated.PlainKey,
		"message":    "Store this key securely. It will not be shown again.",
	}, http.StatusCreated)
}

func (h *APIKeyHandler) HandleListAPIKeys(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	keys, err := model.ListAPIKeysByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list API keys", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list API keys", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []model.APIKey{}
	}

	utils.SendJSON(w, keys, http.StatusOK)
}

func (h *APIKeyHandler) HandleRevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	keyID := r.PathValue("id")
	if keyID == "" {
		utils.SendJSONError(w, "Key ID is required", http.StatusBadRequest)
		return
	}

	if err := model.RevokeAPIKey(database.DB, userID, keyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "API key not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to revoke API key", "userID", userID, "keyID", keyID, "error", err)
		utils.SendJSONError(w, "Failed to revoke API key", http.StatusInternalServerError)
		return
	}

	logger.L.Info("API key revoked", "userID", userID, "keyID", keyID)
	w.WriteHeader(http.StatusNoContent)
}
