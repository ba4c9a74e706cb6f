package handlers

import (
	"errors"
	"net/http"
	"time"

	"fleetdesk/internal/services"
	"fleetdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

type ComplianceHandler struct {
	sweepService services.ComplianceSweepService
}

func NewComplianceHandler(sweepService services.ComplianceSweepService) *ComplianceHandler {
	return &ComplianceHandler{
		sweepService: sweepService,
	}
}

// TriggerSweep runs a compliance sweep immediately. The optional
// reference_date query parameter (YYYY-MM-DD) overrides the evaluation date,
// which is useful for verifying upcoming expiries.
func (h *ComplianceHandler) TriggerSweep(c *gin.Context) {
	referenceDate := time.Now()
	if raw := c.Query("reference_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid reference_date, expected YYYY-MM-DD")
			return
		}
		referenceDate = parsed
	}

	summary, err := h.sweepService.RunSweep(c.Request.Context(), referenceDate)
	if err != nil {
		if errors.Is(err, services.ErrSweepAlreadyRunning) {
			utils.ConflictResponse(c, "A compliance sweep is already running")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "SWEEP_FAILED", "Compliance sweep failed: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Compliance sweep completed", summary)
}
