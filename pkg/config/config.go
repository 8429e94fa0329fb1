// Package config loads service settings from .env, config.yaml and the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/arnavshah/shift-roster-go/internal/solver"
	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

const insecureSecret = "change-me"

// Config holds all configuration for the application
type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	GinMode  string `mapstructure:"GIN_MODE"`

	// Database configuration. An empty DatabaseURL selects sqlite at DataPath.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DataPath    string `mapstructure:"DATA_PATH"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	APIMasterSecret string `mapstructure:"API_MASTER_SECRET"`
	AdminUsername   string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword   string `mapstructure:"ADMIN_PASSWORD"`

	// Solver configuration
	SolverEngine            string        `mapstructure:"SOLVER_ENGINE"`
	SolverImproveTime       time.Duration `mapstructure:"SOLVER_IMPROVE_TIME"`
	SolverTimeLimit         time.Duration `mapstructure:"SOLVER_TIME_LIMIT"`
	SolverMaxIterations     int           `mapstructure:"SOLVER_MAX_ITERATIONS"`
	SolverImproveIterations int           `mapstructure:"SOLVER_IMPROVE_ITERATIONS"`
	SolverSeed              int64         `mapstructure:"SOLVER_SEED"`
	BalanceTolerance        int           `mapstructure:"BALANCE_TOLERANCE"`

	Environment string `mapstructure:"ENVIRONMENT"`
}

// LoadEnv loads the first .env found in the working directory or its
// parents. A missing file is not an error.
func LoadEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	LoadEnv()
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	def := solver.DefaultOptions()

	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ENVIRONMENT", "development")

	// Database defaults
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATA_PATH", "roster.db")

	// Auth defaults
	v.SetDefault("JWT_SECRET", insecureSecret)
	v.SetDefault("API_MASTER_SECRET", insecureSecret)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	// Solver defaults
	v.SetDefault("SOLVER_ENGINE", solver.EngineSAT)
	v.SetDefault("SOLVER_IMPROVE_TIME", def.ImproveTime.String())
	v.SetDefault("SOLVER_TIME_LIMIT", "30s")
	v.SetDefault("SOLVER_MAX_ITERATIONS", def.MaxIterations)
	v.SetDefault("SOLVER_IMPROVE_ITERATIONS", def.ImproveIterations)
	v.SetDefault("SOLVER_SEED", def.Seed)
	v.SetDefault("BALANCE_TOLERANCE", roster.DefaultBalanceTolerance)
}

func validate(config *Config) error {
	if config.IsProduction() {
		if config.JWTSecret == insecureSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if config.APIMasterSecret == insecureSecret {
			return fmt.Errorf("API_MASTER_SECRET must be set in production")
		}
	}
	if config.SolverTimeLimit <= 0 {
		return fmt.Errorf("SOLVER_TIME_LIMIT must be positive, got %s", config.SolverTimeLimit)
	}
	switch strings.ToLower(config.SolverEngine) {
	case solver.EngineSAT, solver.EngineLocal:
	default:
		return fmt.Errorf("SOLVER_ENGINE must be %s or %s, got %q", solver.EngineSAT, solver.EngineLocal, config.SolverEngine)
	}
	if config.SolverImproveTime < 0 {
		return fmt.Errorf("SOLVER_IMPROVE_TIME must not be negative, got %s", config.SolverImproveTime)
	}
	if config.SolverMaxIterations <= 0 {
		return fmt.Errorf("SOLVER_MAX_ITERATIONS must be positive, got %d", config.SolverMaxIterations)
	}
	if config.BalanceTolerance < 0 {
		return fmt.Errorf("BALANCE_TOLERANCE must not be negative, got %d", config.BalanceTolerance)
	}
	switch strings.ToLower(config.GinMode) {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", config.GinMode)
	}
	return nil
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDefaultMasterSecret reports whether API keys would be signed with the
// development secret.
func (c *Config) UsesDefaultMasterSecret() bool {
	return c.APIMasterSecret == insecureSecret
}

// UsesPostgres reports whether DatabaseURL selects postgres over sqlite.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// SolverOptions returns the engine settings.
func (c *Config) SolverOptions() solver.Options {
	opts := solver.DefaultOptions()
	opts.MaxIterations = c.SolverMaxIterations
	if c.SolverImproveIterations > 0 {
		opts.ImproveIterations = c.SolverImproveIterations
	}
	opts.Seed = c.SolverSeed
	opts.ImproveTime = c.SolverImproveTime
	return opts
}

// Engine builds the configured solver engine.
func (c *Config) Engine() (solver.Engine, error) {
	return solver.NewEngine(c.SolverEngine, c.SolverOptions())
}
