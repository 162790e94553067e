package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/services"
	"github.com/username/drivefinance/backend/src/utils"
)

type TaxHandler struct {
	taxService services.TaxService
}

func NewTaxHandler(taxService services.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// HandleCalculateTax computes the tax report for the requested regime and
// period. Premium gating happens in middleware before this runs.
func (h *TaxHandler) HandleCalculateTax(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Regime string `json:"regime"`
		Period struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.taxService.CalculateReport(userID, requestBody.Regime, requestBody.Period.Start, requestBody.Period.End)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Tax calculation failed", "userID", userID, "regime", requestBody.Regime, "error", err)
		utils.SendJSONError(w, "Failed to calculate taxes", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, report, http.StatusOK)
}
