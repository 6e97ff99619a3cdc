package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

// PersonFilter is the typed filter object for person search. Every field
// maps to a parameterized clause; user input is never interpolated into SQL.
type PersonFilter struct {
	Keyword     string // matches full name (substring) or exact CCCD
	CCCD        string
	HouseholdID uint
	Status      string
	Relation    string
	Page        int
	PageSize    int
}

// InterfacePersonService defines the person service interface
type InterfacePersonService interface {
	SearchPersons(filter PersonFilter) ([]models.Person, int64, error)
	GetPersonByID(id uint) (*models.Person, error)
	CreatePerson(actor *models.User, person *models.Person) error
	UpdatePerson(actor *models.User, id uint, updates map[string]interface{}) (*models.Person, error)
	GetPersonHistory(id uint) ([]models.AuditLog, error)
}

// PersonService manages nhân khẩu records.
type PersonService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewPersonService creates a new person service.
func NewPersonService(db *gorm.DB, cfg *config.Config) InterfacePersonService {
	return &PersonService{DB: db, Config: cfg}
}

// SearchPersons lists persons matching the filter.
func (s *PersonService) SearchPersons(filter PersonFilter) ([]models.Person, int64, error) {
	query := s.DB.Model(&models.Person{})

	if filter.Keyword != "" {
		normalized := utils.NormalizeCCCD(filter.Keyword)
		if utils.IsValidCCCD(normalized) {
			query = query.Where("full_name LIKE ? OR cccd = ?", "%"+filter.Keyword+"%", normalized)
		} else {
			query = query.Where("full_name LIKE ?", "%"+filter.Keyword+"%")
		}
	}
	if filter.CCCD != "" {
		query = query.Where("cccd = ?", utils.NormalizeCCCD(filter.CCCD))
	}
	if filter.HouseholdID != 0 {
		query = query.Where("household_id = ?", filter.HouseholdID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Relation != "" {
		query = query.Where("relationship_to_head = ?", filter.Relation)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var persons []models.Person
	if err := query.Preload("Household").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("id").Find(&persons).Error; err != nil {
		return nil, 0, err
	}
	return persons, total, nil
}

// GetPersonByID loads a person with their household.
func (s *PersonService) GetPersonByID(id uint) (*models.Person, error) {
	var person models.Person
	if err := s.DB.Preload("Household").First(&person, id).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// CreatePerson registers a nhân khẩu into a household. Enforces the CCCD
// uniqueness and single-head invariants; a citizen actor can never assign
// chủ hộ.
func (s *PersonService) CreatePerson(actor *models.User, person *models.Person) error {
	if err := s.validatePerson(actor, person.HouseholdID, person.CCCD, person.RelationshipToHead, person.Status, 0); err != nil {
		return err
	}
	person.CCCD = utils.NormalizeCCCD(person.CCCD)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return err
		}
		if person.IsHead() {
			if err := tx.Model(&models.Household{}).Where("id = ?", person.HouseholdID).
				Update("head_id", person.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityPerson,
			EntityID:   person.ID,
			Action:     "create",
			Detail:     "person " + person.FullName,
		}).Error
	})
}

// UpdatePerson applies a partial update with the same invariant checks as
// creation. Every accepted change is audit-logged with the touched fields.
func (s *PersonService) UpdatePerson(actor *models.User, id uint, updates map[string]interface{}) (*models.Person, error) {
	var person models.Person
	if err := s.DB.First(&person, id).Error; err != nil {
		return nil, err
	}

	householdID := person.HouseholdID
	if v, ok := updates["household_id"]; ok {
		if hid, ok := toUint(v); ok {
			householdID = hid
		}
	}
	cccd := person.CCCD
	if v, ok := updates["cccd"].(string); ok {
		cccd = v
		updates["cccd"] = utils.NormalizeCCCD(v)
	}
	relationship := person.RelationshipToHead
	if v, ok := updates["relationship_to_head"].(string); ok {
		relationship = v
	}
	status := person.Status
	if v, ok := updates["status"].(string); ok {
		status = v
	}

	if err := s.validatePerson(actor, householdID, cccd, relationship, status, person.ID); err != nil {
		return nil, err
	}

	becomesHead := relationship == models.RelationshipHead && !person.IsHead()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&person).Updates(updates).Error; err != nil {
			return err
		}
		if becomesHead {
			if err := tx.Model(&models.Household{}).Where("id = ?", householdID).
				Update("head_id", person.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityPerson,
			EntityID:   person.ID,
			Action:     "update",
			Detail:     fmt.Sprintf("updated fields: %v", fieldNames(updates)),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetPersonByID(id)
}

// GetPersonHistory returns the audit trail of one person, newest first.
func (s *PersonService) GetPersonHistory(id uint) ([]models.AuditLog, error) {
	if err := s.DB.First(&models.Person{}, id).Error; err != nil {
		return nil, err
	}
	var logs []models.AuditLog
	if err := s.DB.Where("entity_type = ? AND entity_id = ?", models.AuditEntityPerson, id).
		Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// validatePerson checks the shared invariants of create and update.
// excludeID ignores the person's own row when checking duplicates.
func (s *PersonService) validatePerson(actor *models.User, householdID uint, cccd, relationship, status string, excludeID uint) error {
	if householdID == 0 {
		return code.NewWithMessage(code.ValidationError, "Nhân khẩu phải thuộc một hộ khẩu")
	}
	if err := s.DB.First(&models.Household{}, householdID).Error; err != nil {
		return code.NewWithMessage(code.ValidationError, "Hộ khẩu không tồn tại")
	}
	if !contains(models.ValidRelationships, relationship) {
		return code.NewWithMessage(code.ValidationError, "Quan hệ với chủ hộ không hợp lệ")
	}
	if !contains(models.ValidPersonStatuses, status) {
		return code.NewWithMessage(code.ValidationError, "Trạng thái cư trú không hợp lệ")
	}

	if cccd != "" {
		normalized := utils.NormalizeCCCD(cccd)
		if !utils.IsValidCCCD(normalized) {
			return code.NewWithMessage(code.ValidationError, "Số CCCD/CMND phải gồm 9-12 chữ số")
		}
		var count int64
		if err := s.DB.Model(&models.Person{}).
			Where("cccd = ? AND id != ?", normalized, excludeID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return code.New(code.DuplicateCCCD)
		}
	}

	if relationship == models.RelationshipHead {
		// Citizens can never assign chủ hộ, regardless of target.
		if actor.Role == models.RoleCitizen {
			return code.New(code.Forbidden)
		}
		var heads int64
		if err := s.DB.Model(&models.Person{}).
			Where("household_id = ? AND relationship_to_head = ? AND id != ?",
				householdID, models.RelationshipHead, excludeID).
			Count(&heads).Error; err != nil {
			return err
		}
		if heads > 0 {
			return code.New(code.DuplicateChuHo)
		}
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case uint:
		return n, true
	case int:
		if n >= 0 {
			return uint(n), true
		}
	case float64:
		if n >= 0 {
			return uint(n), true
		}
	}
	return 0, false
}

// ParseDate parses the YYYY-MM-DD format used in request payloads.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
