package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/drivefinance/backend/src/config"
	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/security"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/utils"
)

// Custom context key type so values set here cannot collide with other packages.
type contextKey string

const userIDContextKey contextKey = "userID"

// GetUserIDFromContext retrieves the authenticated userID from the context.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func (h *UserHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			tokenString = authHeader
		}

		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		userIDStr, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		userIDInt, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			logger.L.Error("AuthMiddleware: Invalid user ID format in token", "userIDStr", userIDStr, "error", err)
			utils.SendJSONError(w, "Invalid user ID in token", http.StatusInternalServerError)
			return
		}

		if _, err := model.GetSessionByToken(database.DB, tokenString); err != nil {
			// Google logins carry our JWT but no server-side session row.
			user, userErr := model.GetUserByID(database.DB, userIDInt)
			if userErr != nil {
				logger.L.Warn("AuthMiddleware: User not found for token after session check failed", "userID", userIDStr, "error", userErr)
				utils.SendJSONError(w, "Invalid session or user", http.StatusUnauthorized)
				return
			}
			if user.AuthProvider == "local" {
				logger.L.Warn("AuthMiddleware: Session validation failed for local user's access token", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userIDInt)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePremium gates premium routes. It must run after AuthMiddleware so the
// userID is already in the context. Non-premium users get a 403 with an
// upgrade URL in the payload.
func RequirePremium(entitlement services.EntitlementService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
				return
			}

			premium, err := entitlement.IsPremium(userID)
			if err != nil {
				logger.L.Error("RequirePremium: Entitlement check failed", "userID", userID, "error", err)
				utils.SendJSONError(w, "Failed to verify subscription", http.StatusInternalServerError)
				return
			}
			if !premium {
				logger.L.Info("RequirePremium: Access denied for non-premium user", "userID", userID, "path", r.URL.Path)
				utils.SendJSON(w, map[string]string{
					"error":       "This feature requires a premium subscription",
					"upgrade_url": config.Cfg.UpgradeURL,
				}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// APIKeyMiddleware authenticates external API requests via the x-api-key
// header. The key owner's userID is placed in the context under the same key
// AuthMiddleware uses, so downstream handlers are shared.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plainKey := r.Header.Get("x-api-key")
		if plainKey == "" {
			utils.SendJSONError(w, "x-api-key header required", http.StatusUnauthorized)
			return
		}

		if err := security.ValidateAPIKeyFormat(plainKey); err != nil {
			logger.L.Debug("APIKeyMiddleware: Malformed API key", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		key, err := model.GetAPIKeyByHash(database.DB, security.HashAPIKey(plainKey))
		if err != nil {
			logger.L.Warn("APIKeyMiddleware: API key lookup failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		if err := model.TouchAPIKey(database.DB, key.ID); err != nil {
			logger.L.Warn("APIKeyMiddleware: Failed to update key last_used_at", "keyID", key.ID, "error", err)
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, key.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
