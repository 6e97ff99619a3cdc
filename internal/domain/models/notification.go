package models

import "time"

// Notification is a per-user message about a petition, created when staff
// notify the reporters of a feedback record.
type Notification struct {
	BaseModel
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	FeedbackID uint       `gorm:"not null;index" json:"feedback_id"`
	Title      string     `gorm:"type:varchar(255)" json:"title"`
	Message    string     `gorm:"type:text" json:"message"`
	IsRead     bool       `gorm:"default:false" json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`

	Feedback *Feedback `gorm:"foreignKey:FeedbackID" json:"feedback,omitempty"`
}
