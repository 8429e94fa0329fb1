package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shift-roster-go/pkg/database"
)

func apiKeyFrom(c *gin.Context) (*database.APIKey, bool) {
	raw, exists := c.Get("apiKey")
	if !exists {
		return nil, false
	}
	k, ok := raw.(*database.APIKey)
	return k, ok
}

// RecordUsage adds the request to the caller's daily usage row. Requests
// without an API key are not counted.
func (h *Handler) RecordUsage(c *gin.Context, d database.UsageDelta) {
	apiKey, ok := apiKeyFrom(c)
	if !ok {
		return
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, h.now(), d); err != nil {
		h.Logger.WithError(err).WithField("key_id", apiKey.ID).Error("Could not record usage")
	}
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey, ok := apiKeyFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}

	usage, err := database.UsageHistory(h.DB, apiKey.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	// Calculate totals
	var totalRequests, totalSolved, totalStaff, totalAttempts int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalSolved += int64(u.SolvedCount)
		totalStaff += int64(u.TotalStaff)
		totalAttempts += int64(u.TotalAttempts)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"solved":   totalSolved,
			"staff":    totalStaff,
			"attempts": totalAttempts,
		},
	})
}
