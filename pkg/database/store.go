package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageDelta is what one request adds to a key's daily usage row.
type UsageDelta struct {
	Solved   bool
	Staff    int
	Attempts int
}

// RecordUsage adds one request to today's usage row for keyID, using a
// single-query upsert supported by both Postgres and SQLite.
func RecordUsage(db *gorm.DB, keyID uint, day time.Time, d UsageDelta) error {
	solved := 0
	if d.Solved {
		solved = 1
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":  gorm.Expr("request_count + ?", 1),
			"solved_count":   gorm.Expr("solved_count + ?", solved),
			"total_staff":    gorm.Expr("total_staff + ?", d.Staff),
			"total_attempts": gorm.Expr("total_attempts + ?", d.Attempts),
		}),
	}).Create(&APIUsage{
		KeyID:         keyID,
		Date:          day.Format("2006-01-02"),
		RequestCount:  1,
		SolvedCount:   solved,
		TotalStaff:    d.Staff,
		TotalAttempts: d.Attempts,
	}).Error
}

// UsageHistory returns the latest 30 daily rows for keyID, newest first.
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}

// CreateKey stores a freshly signed key. A zero rateLimit selects
// DefaultRateLimit.
func CreateKey(db *gorm.DB, key, name string, rateLimit int) (*APIKey, error) {
	apiKey := APIKey{
		Key:        key,
		Name:       name,
		KeyPreview: Preview(key),
		RateLimit:  rateLimit,
	}
	if err := db.Create(&apiKey).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// TouchKey fetches the record of an HMAC-verified key and stamps LastUsed.
// Keys are only created by CreateKey, so a revoked key yields
// gorm.ErrRecordNotFound.
func TouchKey(db *gorm.DB, key string, now time.Time) (*APIKey, error) {
	var apiKey APIKey
	if err := db.Where(&APIKey{Key: key}).First(&apiKey).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&apiKey).Update("last_used", now).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// Preview masks a key for listings, e.g. "ops...9f2c".
func Preview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// SaveRun stores a finished roster run.
func SaveRun(db *gorm.DB, run *RosterRun) error {
	return db.Create(run).Error
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Success *bool
	Limit   int
}

// ListRuns returns the newest runs first. Limit defaults to 50.
func ListRuns(db *gorm.DB, f RunFilter) ([]RosterRun, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	q := db.Order("created_at desc").Order("id desc").Limit(limit)
	if f.Success != nil {
		q = q.Where("success = ?", *f.Success)
	}
	var runs []RosterRun
	err := q.Find(&runs).Error
	return runs, err
}
