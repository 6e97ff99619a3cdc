package models

import "time"

// Temporary residency record types.
const (
	ResidencyTempResidence = "temporary_residence" // tạm trú
	ResidencyTempAbsence   = "temporary_absence"   // tạm vắng
)

// Temporary residency statuses. A record created from an approved request
// starts at pending_review and needs its own approval before it counts as
// active.
const (
	ResidencyStatusPendingReview = "pending_review"
	ResidencyStatusApproved      = "approved"
	ResidencyStatusInProgress    = "in_progress"
	ResidencyStatusCompleted     = "completed"
)

// TemporaryResidency is a dated tạm trú / tạm vắng record tied to a person.
type TemporaryResidency struct {
	BaseModel
	PersonID    uint       `gorm:"not null;index" json:"person_id"`
	Type        string     `gorm:"type:varchar(30);not null;index" json:"type"`
	FromDate    time.Time  `gorm:"not null" json:"from_date"`
	ToDate      *time.Time `json:"to_date,omitempty"` // nil = open-ended
	DestAddress string     `gorm:"type:varchar(255)" json:"dest_address"`
	Reason      string     `gorm:"type:text" json:"reason"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending_review';index" json:"status"`
	RequestID   *uint      `json:"request_id,omitempty"`

	Person      *Person      `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:ResidencyID" json:"attachments,omitempty"`
}

// ActiveOn reports whether the record covers the given day with approved
// status.
func (t *TemporaryResidency) ActiveOn(day time.Time) bool {
	if t.Status != ResidencyStatusApproved {
		return false
	}
	if day.Before(t.FromDate) {
		return false
	}
	return t.ToDate == nil || !day.After(*t.ToDate)
}

// Attachment is an uploaded file descriptor. It is created with the change
// request it was submitted with; ResidencyID is filled in when approval
// creates the residency record. StoredName is the randomized on-disk name
// served under /uploads.
type Attachment struct {
	BaseModel
	RequestID   uint   `gorm:"not null;index" json:"request_id"`
	ResidencyID *uint  `gorm:"index" json:"residency_id,omitempty"`
	FileName    string `gorm:"type:varchar(255);not null" json:"file_name"`
	StoredName  string `gorm:"type:varchar(100);not null" json:"stored_name"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"type:varchar(100)" json:"content_type"`
}
