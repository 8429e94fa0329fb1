package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arnavshah/shift-roster-go/pkg/logger"
	"github.com/arnavshah/shift-roster-go/pkg/metrics"
	"github.com/arnavshah/shift-roster-go/pkg/models"
)

// Version is reported by the index route.
const Version = "3.0.0"

// RequestID tags each request with an X-Request-ID, reusing the caller's.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs one line per request through log.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString("requestID"),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request served")
		}
	}
}

// NewRouter configures all the routes for the application. A nil gatherer
// serves the default Prometheus registry on /metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := models.RegisterValidations(v); err != nil {
			h.Logger.WithError(err).Warn("Could not register request validations")
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(h.Logger))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift Roster API",
			"version": Version,
		})
	})
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler(gatherer))

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
		admin.GET("/runs", h.ListRuns)
	}

	// Roster Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule", h.Generate)
		api.POST("/validate", h.ValidateInput)
		api.POST("/export", h.Export)
		api.GET("/usage", h.GetMyUsage)
	}

	// Form client routes
	r.POST("/generate", h.APIKeyMiddleware(), h.Generate)
	r.POST("/export", h.APIKeyMiddleware(), h.Export)

	return r
}
