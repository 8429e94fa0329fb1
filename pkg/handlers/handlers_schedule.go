package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arnavshah/shift-roster-go/pkg/database"
	"github.com/arnavshah/shift-roster-go/pkg/export"
	"github.com/arnavshah/shift-roster-go/pkg/models"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: err.Error()})
}

// bindRequest decodes and validates a roster request. It writes the 400
// response itself and returns nil on failure.
func (h *Handler) bindRequest(c *gin.Context) *roster.Request {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return nil
	}
	req, err := input.ToRequest()
	if err != nil {
		badRequest(c, err)
		return nil
	}
	if input.BalanceTolerance == nil && h.BalanceTolerance > 0 {
		req.Balance.Tolerance = h.BalanceTolerance
	}
	return req
}

// Generate runs the relaxation ladder for a roster request
func (h *Handler) Generate(c *gin.Context) {
	req := h.bindRequest(c)
	if req == nil {
		return
	}

	runID := uuid.NewString()
	log := h.Logger.WithField("run_id", runID)
	sch := *h.Scheduler
	sch.Logger = log

	out, err := sch.Run(c.Request.Context(), req)
	if err != nil {
		if roster.IsValidationError(err) {
			badRequest(c, err)
			return
		}
		log.WithError(err).Warn("Roster run aborted")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Success: false, Message: "roster run aborted"})
		return
	}

	h.saveRun(c, runID, req, out)
	h.RecordUsage(c, database.UsageDelta{Solved: out.Success, Staff: len(req.Staff), Attempts: len(out.Attempts)})

	c.JSON(http.StatusOK, models.NewScheduleResponse(out, runID))
}

func (h *Handler) saveRun(c *gin.Context, runID string, req *roster.Request, out *scheduler.Outcome) {
	run := &database.RosterRun{
		RunID:        runID,
		Year:         req.Calendar.Year,
		Month:        req.Calendar.Month,
		NumStaff:     len(req.Staff),
		Success:      out.Success,
		ProfileIndex: out.ProfileIndex + 1,
		Attempts:     len(out.Attempts),
		ElapsedMS:    out.Elapsed.Milliseconds(),
	}
	if out.Success {
		run.Description = out.Profile.Description
		run.Fairness = out.Fairness.Score
	} else {
		run.ProfileIndex = 0
		if body, err := json.Marshal(out.Findings); err == nil {
			run.Findings = string(body)
		}
	}
	if k, ok := apiKeyFrom(c); ok {
		run.KeyID = &k.ID
	}
	if err := database.SaveRun(h.DB, run); err != nil {
		h.Logger.WithError(err).WithField("run_id", runID).Error("Could not save roster run")
	}
}

// Export renders a roster as an xlsx attachment
func (h *Handler) Export(c *gin.Context) {
	var input models.ExportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	f, err := export.Workbook(input.Year.Int(), input.Month.Int(), input.NumDays.Int(), input.Schedule)
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		h.Logger.WithError(err).Error("Could not write workbook")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "could not write workbook"})
		return
	}

	name := export.Filename(input.Year.Int(), input.Month.Int())
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
