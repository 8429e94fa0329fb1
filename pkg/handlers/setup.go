package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/arnavshah/shift-roster-go/pkg/auth"
	"github.com/arnavshah/shift-roster-go/pkg/config"
	"github.com/arnavshah/shift-roster-go/pkg/database"
	"github.com/arnavshah/shift-roster-go/pkg/logger"
	"github.com/arnavshah/shift-roster-go/pkg/metrics"
	"github.com/arnavshah/shift-roster-go/pkg/scheduler"
)

// Setup opens the database, seeds the admin user and wires the router from
// cfg. The caller owns the returned database.
func Setup(cfg *config.Config, log *logger.Logger) (*gin.Engine, *gorm.DB, error) {
	gin.SetMode(strings.ToLower(cfg.GinMode))

	db, err := database.InitDB(database.Options{
		DatabaseURL: cfg.DatabaseURL,
		DataPath:    cfg.DataPath,
		Debug:       cfg.LogLevel == "debug",
	})
	if err != nil {
		return nil, nil, err
	}

	created, err := auth.EnsureAdminExists(db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("seed admin user: %w", err)
	}
	if created {
		log.WithField("username", cfg.AdminUsername).Info("Default admin user created")
	}

	a, err := auth.New(cfg.JWTSecret, cfg.APIMasterSecret)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}

	rec, err := metrics.NewPromRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}

	engine, err := cfg.Engine()
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	sch := scheduler.New(engine, cfg.SolverTimeLimit, log)
	sch.Recorder = rec

	h := &Handler{
		DB:               db,
		Auth:             a,
		Scheduler:        sch,
		Logger:           log,
		BalanceTolerance: cfg.BalanceTolerance,
	}
	return NewRouter(h, prometheus.DefaultGatherer), db, nil
}
