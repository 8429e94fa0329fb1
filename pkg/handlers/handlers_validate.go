package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-roster-go/pkg/diagnosis"
	"github.com/arnavshah/shift-roster-go/pkg/models"
)

// ValidateInput parses and validates a roster request without solving it.
// Malformed input is reported with valid=false and HTTP 200, as a form
// pre-check.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusOK, models.ValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	req, err := input.ToRequest()
	if err != nil {
		c.JSON(http.StatusOK, models.ValidateResponse{Valid: false, Error: err.Error()})
		return
	}

	snap := diagnosis.Summarize(req)
	c.JSON(http.StatusOK, models.ValidateResponse{
		Valid:         true,
		NumStaff:      snap.TotalStaff,
		NumDays:       req.NumDays(),
		TargetOffDays: snap.TargetOffDays,
		TotalRequests: snap.TotalRequests,
	})
}
