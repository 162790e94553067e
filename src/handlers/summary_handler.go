package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/tax"
	"github.com/username/drivefinance/backend/src/utils"
)

type SummaryHandler struct {
	ledgerService services.LedgerService
}

func NewSummaryHandler(ledgerService services.LedgerService) *SummaryHandler {
	return &SummaryHandler{ledgerService: ledgerService}
}

// HandleGetSummary returns the financial summary for the requested window.
// Without explicit bounds the window defaults to month-to-date.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	period, err := tax.ResolvePeriod("month", startDate, endDate, time.Now())
	if err != nil {
		if errors.Is(err, tax.ErrInvalidPeriod) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, "Invalid period", http.StatusBadRequest)
		return
	}

	summary, err := h.ledgerService.Summary(userID, period)
	if err != nil {
		logger.L.Error("Failed to build financial summary", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to build summary", http.StatusInternalServerError)
		return
	}

	if etag, err := utils.GenerateETag(summary); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	utils.SendJSON(w, summary, http.StatusOK)
}
