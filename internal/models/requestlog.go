package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Represents one handled HTTP request. Submission content is never stored.
type RequestLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RequestID      string    `gorm:"index" json:"request_id"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
	Method         string    `json:"method"`
	Path           string    `gorm:"index" json:"path"`
	StatusCode     int       `gorm:"index" json:"status_code"`
	ResponseTimeMs int       `json:"response_time_ms"`
	CallerID       string    `json:"caller_id"`
	UserAgent      string    `json:"user_agent"`
}

func (r *RequestLog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (RequestLog) TableName() string {
	return "request_logs"
}
