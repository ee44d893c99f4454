package models

import "time"

// ProcessedEvent records an inbound webhook message id that was handled.
type ProcessedEvent struct {
	ID          string    `gorm:"primaryKey;size:128"`
	ProcessedAt time.Time `gorm:"index"`
}
