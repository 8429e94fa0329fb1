package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultRateLimit is the daily request allowance of a new key.
const DefaultRateLimit = 10000

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"not null" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// BeforeCreate gives keys created without a limit the default one.
func (k *APIKey) BeforeCreate(*gorm.DB) error {
	if k.RateLimit <= 0 {
		k.RateLimit = DefaultRateLimit
	}
	return nil
}

// APIUsage represents the api_usage table. One row per key and day.
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	SolvedCount   int    `gorm:"default:0" json:"solved_count"`
	TotalStaff    int    `gorm:"default:0" json:"total_staff"`
	TotalAttempts int    `gorm:"default:0" json:"total_attempts"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RosterRun represents the roster_runs table: one row per generate call.
type RosterRun struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        string    `gorm:"uniqueIndex;size:36;not null" json:"run_id"`
	KeyID        *uint     `gorm:"index" json:"key_id,omitempty"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	NumStaff     int       `json:"num_staff"`
	Success      bool      `gorm:"index" json:"success"`
	ProfileIndex int       `json:"profile_index"`
	Description  string    `json:"description,omitempty"`
	Attempts     int       `json:"attempts"`
	ElapsedMS    int64     `json:"elapsed_ms"`
	Fairness     float64   `json:"fairness"`
	Findings     string    `gorm:"type:text" json:"findings,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// Options selects the database. An empty DatabaseURL opens sqlite at
// DataPath.
type Options struct {
	DatabaseURL string
	DataPath    string
	Debug       bool
}

// InitDB opens the database connection and migrates the schema
func InitDB(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if opts.Debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	if opts.DatabaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DatabaseURL,
			PreferSimpleProtocol: true,
		})
		cfg.PrepareStmt = false
	} else {
		path := opts.DataPath
		if path == "" {
			path = "roster.db"
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}, &RosterRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Ping checks the underlying connection.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
