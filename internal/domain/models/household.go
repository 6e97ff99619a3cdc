package models

// Household (hộ khẩu) is a registry unit. HeadID references the chủ hộ; a
// household has at most one head, and the constraint is enforced in the
// services before any `head` relationship is accepted.
type Household struct {
	BaseModel
	Code     string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"` // số hộ khẩu
	Address  string `gorm:"type:varchar(255);not null" json:"address"`
	Ward     string `gorm:"type:varchar(100)" json:"ward"`
	District string `gorm:"type:varchar(100)" json:"district"`
	HeadID   *uint  `json:"head_id,omitempty"`

	Head    *Person  `gorm:"foreignKey:HeadID" json:"head,omitempty"`
	Persons []Person `gorm:"foreignKey:HouseholdID" json:"persons,omitempty"`
}
