package models

import "time"

// Relationship of a person to the head of their household.
const (
	RelationshipHead        = "head" // chủ hộ
	RelationshipSpouse      = "spouse"
	RelationshipChild       = "child"
	RelationshipParent      = "parent"
	RelationshipGrandparent = "grandparent"
	RelationshipGrandchild  = "grandchild"
	RelationshipSibling     = "sibling"
	RelationshipOther       = "other"
)

// Residency status of a person.
const (
	StatusPermanent     = "permanent"           // thường trú
	StatusTempResidence = "temporary_residence" // tạm trú
	StatusTempAbsence   = "temporary_absence"   // tạm vắng
	StatusDeceased      = "deceased"
	StatusMovedOut      = "moved_out"
)

// ValidRelationships lists every accepted relationship-to-head value.
var ValidRelationships = []string{
	RelationshipHead, RelationshipSpouse, RelationshipChild, RelationshipParent,
	RelationshipGrandparent, RelationshipGrandchild, RelationshipSibling, RelationshipOther,
}

// ValidPersonStatuses lists every accepted residency status value.
var ValidPersonStatuses = []string{
	StatusPermanent, StatusTempResidence, StatusTempAbsence, StatusDeceased, StatusMovedOut,
}

// Person (nhân khẩu) belongs to exactly one household. CCCD is stored
// normalized (digits only); an empty CCCD is allowed for minors.
type Person struct {
	BaseModel
	HouseholdID        uint       `gorm:"not null;index" json:"household_id"`
	FullName           string     `gorm:"type:varchar(100);not null" json:"full_name"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	Gender             string     `gorm:"type:varchar(10)" json:"gender"`
	CCCD               string     `gorm:"type:varchar(12);index" json:"cccd"`
	RelationshipToHead string     `gorm:"type:varchar(20);not null;default:'other'" json:"relationship_to_head"`
	Status             string     `gorm:"type:varchar(30);not null;default:'permanent'" json:"status"`
	Occupation         string     `gorm:"type:varchar(100)" json:"occupation"`
	PlaceOfBirth       string     `gorm:"type:varchar(255)" json:"place_of_birth"`
	Ethnicity          string     `gorm:"type:varchar(50)" json:"ethnicity"`
	UserID             *uint      `json:"user_id,omitempty"`

	Household   *Household           `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
	Residencies []TemporaryResidency `gorm:"foreignKey:PersonID" json:"residencies,omitempty"`
}

// IsHead reports whether the person is registered as chủ hộ.
func (p *Person) IsHead() bool {
	return p.RelationshipToHead == RelationshipHead
}
