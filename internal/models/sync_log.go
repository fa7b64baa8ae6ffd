package models

import "time"

// Sync run statuses. A run is created as 'processing' and updated exactly
// once to a terminal state.
const (
	SyncStatusProcessing = "processing"
	SyncStatusSuccess    = "success"
	SyncStatusError      = "error"
)

// SyncTypeFull is the only sync type the catalog engine records today.
const SyncTypeFull = "full_sync"

// SyncLog records one catalog synchronization attempt. Rows are never
// deleted.
type SyncLog struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	SyncType         string     `gorm:"column:sync_type;not null;index" json:"sync_type"`
	Status           string     `gorm:"not null;index" json:"status"`
	StartedAt        time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	RecordsProcessed int        `gorm:"default:0" json:"records_processed"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message"`
	DurationSeconds  int        `gorm:"column:duration_seconds;default:0" json:"duration_seconds"`
}

func (SyncLog) TableName() string { return "sync_log" }
