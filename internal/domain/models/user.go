package models

import (
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

// User roles.
const (
	RoleCitizen    = "citizen"
	RoleStaff      = "staff"
	RoleTeamLead   = "team_lead"   // tổ trưởng
	RoleDeputyLead = "deputy_lead" // tổ phó
	RoleAdmin      = "admin"
)

// Staff task assignments. A task is meaningful only for RoleStaff; leads and
// admin carry full authority and citizens never have one.
const (
	TaskHouseholdRegistry = "household_registry"
	TaskTempResidency     = "temp_residency"
	TaskStatistics        = "statistics"
	TaskPetitions         = "petitions"
)

// ValidRoles lists every accepted role value.
var ValidRoles = []string{RoleCitizen, RoleStaff, RoleTeamLead, RoleDeputyLead, RoleAdmin}

// ValidTasks lists every accepted staff task value.
var ValidTasks = []string{TaskHouseholdRegistry, TaskTempResidency, TaskStatistics, TaskPetitions}

// User is an account. Citizen accounts use the normalized CCCD as username
// and may be linked to a Person record.
type User struct {
	BaseModel
	Username string  `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password string  `gorm:"type:varchar(100);not null" json:"-"`
	FullName string  `gorm:"type:varchar(100)" json:"full_name"`
	Role     string  `gorm:"type:varchar(20);not null;default:'citizen'" json:"role"`
	Task     *string `gorm:"type:varchar(30)" json:"task,omitempty"`
	PersonID *uint   `json:"person_id,omitempty"`
	Active   bool    `gorm:"default:true" json:"active"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

// IsLead reports whether the user carries full reviewing authority.
func (u *User) IsLead() bool {
	return u.Role == RoleTeamLead || u.Role == RoleDeputyLead || u.Role == RoleAdmin
}

// HasTask reports whether a staff user is assigned the given task.
func (u *User) HasTask(task string) bool {
	return u.Role == RoleStaff && u.Task != nil && *u.Task == task
}

// BeforeCreate hashes the password before the row is inserted.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Password != "" && len(u.Password) < 60 {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}

// BeforeSave hashes the password when it is replaced with a new plaintext
// value. bcrypt hashes are 60 bytes, so anything shorter is plaintext.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password != "" && len(u.Password) < 60 {
		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return err
		}
		u.Password = hashed
	}
	return nil
}
