package models

import "time"

// ActivityLog is one row per handled API request. Rows are never updated.
type ActivityLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	Method         string    `gorm:"size:10;not null" json:"method"`
	Path           string    `gorm:"size:500;not null;index" json:"path"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMs int       `json:"response_time_ms"`
	IPAddress      string    `gorm:"size:45" json:"ip_address"`
	UserAgent      string    `gorm:"size:500" json:"user_agent"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	// Filled by the read-side join on users; never persisted.
	UserName  *string `gorm:"->;-:migration" json:"user_name"`
	UserEmail *string `gorm:"->;-:migration" json:"user_email"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
