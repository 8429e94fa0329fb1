package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shift-roster-go/internal/solver"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	}
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "roster.db", cfg.DataPath)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 30*time.Second, cfg.SolverTimeLimit)
	assert.Equal(t, 2, cfg.BalanceTolerance)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.True(t, cfg.UsesDefaultMasterSecret())

	opts := cfg.SolverOptions()
	assert.Equal(t, cfg.SolverMaxIterations, opts.MaxIterations)
	assert.Equal(t, int64(1), opts.Seed)
	assert.Equal(t, 3*time.Second, opts.ImproveTime)

	assert.Equal(t, solver.EngineSAT, cfg.SolverEngine)
	engine, err := cfg.Engine()
	require.NoError(t, err)
	assert.IsType(t, &solver.SAT{}, engine)
}

func TestLocalEngine(t *testing.T) {
	t.Setenv("SOLVER_ENGINE", "local")
	t.Setenv("SOLVER_MAX_ITERATIONS", "1000")

	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)
	engine, err := cfg.Engine()
	require.NoError(t, err)
	require.IsType(t, &solver.LocalSearch{}, engine)
	assert.Equal(t, 1000, engine.(*solver.LocalSearch).Options().MaxIterations)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SOLVER_TIME_LIMIT", "45s")
	t.Setenv("SOLVER_SEED", "7")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/roster")

	cfg, err := load(newViper(t, "LOG_LEVEL: debug\nBALANCE_TOLERANCE: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.BalanceTolerance)
	assert.Equal(t, 45*time.Second, cfg.SolverTimeLimit)
	assert.Equal(t, int64(7), cfg.SolverOptions().Seed)
	assert.True(t, cfg.UsesPostgres())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production default secret", map[string]string{"ENVIRONMENT": "production", "API_MASTER_SECRET": "x"}},
		{"production default master secret", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "x"}},
		{"zero time limit", map[string]string{"SOLVER_TIME_LIMIT": "0s"}},
		{"negative tolerance", map[string]string{"BALANCE_TOLERANCE": "-1"}},
		{"unknown gin mode", map[string]string{"GIN_MODE": "loud"}},
		{"unknown engine", map[string]string{"SOLVER_ENGINE": "cp-sat"}},
		{"negative improve time", map[string]string{"SOLVER_IMPROVE_TIME": "-1s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(newViper(t, ""))
			assert.Error(t, err)
		})
	}
}

func TestProductionWithSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("API_MASTER_SECRET", "master")
	cfg, err := load(newViper(t, ""))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
