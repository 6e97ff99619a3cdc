package models

// Feedback (petition) statuses. A merged secondary record is parked at
// in_progress and mirrors its primary from then on; resolved is terminal.
const (
	FeedbackStatusPending    = "pending"
	FeedbackStatusInProgress = "in_progress"
	FeedbackStatusResolved   = "resolved"
)

// ValidFeedbackStatuses lists every accepted status value.
var ValidFeedbackStatuses = []string{
	FeedbackStatusPending, FeedbackStatusInProgress, FeedbackStatusResolved,
}

// Feedback categories.
const (
	FeedbackCategoryInfrastructure = "infrastructure"
	FeedbackCategorySecurity       = "security"
	FeedbackCategorySanitation     = "sanitation"
	FeedbackCategoryAdministrative = "administrative"
	FeedbackCategoryOther          = "other"
)

// ValidFeedbackCategories lists every accepted category value.
var ValidFeedbackCategories = []string{
	FeedbackCategoryInfrastructure, FeedbackCategorySecurity,
	FeedbackCategorySanitation, FeedbackCategoryAdministrative, FeedbackCategoryOther,
}

// Feedback is a citizen petition. Duplicate petitions are merged into a
// primary record: reporters are unioned onto the primary and each secondary
// keeps MergedIntoID plus a human-readable resolution note. Secondary rows
// are never deleted.
type Feedback struct {
	BaseModel
	Title         string `gorm:"type:varchar(255);not null" json:"title"`
	Content       string `gorm:"type:text;not null" json:"content"`
	Category      string `gorm:"type:varchar(30);not null;default:'other';index" json:"category"`
	Status        string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Resolution    string `gorm:"type:text" json:"resolution,omitempty"`
	ReporterCount int    `gorm:"default:0" json:"reporter_count"`
	MergedIntoID  *uint  `gorm:"index" json:"merged_into_id,omitempty"`

	Reporters []User `gorm:"many2many:feedback_reporters;" json:"reporters,omitempty"`
}

// IsMerged reports whether this record was merged away into a primary.
func (f *Feedback) IsMerged() bool {
	return f.MergedIntoID != nil
}
