package models

// Audit log entity types.
const (
	AuditEntityPerson    = "person"
	AuditEntityHousehold = "household"
	AuditEntityRequest   = "request"
	AuditEntityResidency = "residency"
	AuditEntityFeedback  = "feedback"
	AuditEntityUser      = "user"
)

// AuditLog attributes every protected mutation to an acting user. It also
// feeds the dashboard activity feed.
type AuditLog struct {
	BaseModel
	ActorID    uint   `gorm:"not null;index" json:"actor_id"`
	EntityType string `gorm:"type:varchar(20);not null;index" json:"entity_type"`
	EntityID   uint   `gorm:"not null;index" json:"entity_id"`
	Action     string `gorm:"type:varchar(30);not null" json:"action"`
	Detail     string `gorm:"type:text" json:"detail"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}
