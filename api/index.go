package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arnavshah/shift-roster-go/pkg/config"
	"github.com/arnavshah/shift-roster-go/pkg/handlers"
	"github.com/arnavshah/shift-roster-go/pkg/logger"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	logger.Setup(cfg.LogLevel)

	// The connection lives as long as the function instance.
	r, _, err = handlers.Setup(cfg, logger.New())
	if err != nil {
		logrus.Fatal("Failed to initialize: ", err)
	}
}

// Handler is the entry point for the Vercel Go runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
