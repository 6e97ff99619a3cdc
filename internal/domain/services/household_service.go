package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// InterfaceHouseholdService defines the household service interface
type InterfaceHouseholdService interface {
	GetAllHouseholds(page, pageSize int, keyword string) ([]models.Household, int64, error)
	GetHouseholdByID(id uint) (*models.Household, error)
	GetHouseholdPersons(id uint) ([]models.Person, error)
	CreateHousehold(actor *models.User, household *models.Household) error
	UpdateHousehold(actor *models.User, id uint, updates map[string]interface{}) (*models.Household, error)
	DeleteHousehold(actor *models.User, id uint) error
	GetHouseholdOfPerson(personID uint) (*models.Household, error)
}

// HouseholdService manages hộ khẩu records.
type HouseholdService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewHouseholdService creates a new household service.
func NewHouseholdService(db *gorm.DB, cfg *config.Config) InterfaceHouseholdService {
	return &HouseholdService{DB: db, Config: cfg}
}

// GetAllHouseholds lists households with optional keyword filter on code and
// address.
func (s *HouseholdService) GetAllHouseholds(page, pageSize int, keyword string) ([]models.Household, int64, error) {
	query := s.DB.Model(&models.Household{})
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("code LIKE ? OR address LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var households []models.Household
	if err := query.Preload("Head").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("id").Find(&households).Error; err != nil {
		return nil, 0, err
	}
	return households, total, nil
}

// GetHouseholdByID loads a household with its head and members.
func (s *HouseholdService) GetHouseholdByID(id uint) (*models.Household, error) {
	var household models.Household
	if err := s.DB.Preload("Head").Preload("Persons").First(&household, id).Error; err != nil {
		return nil, err
	}
	return &household, nil
}

// GetHouseholdPersons lists the members of a household.
func (s *HouseholdService) GetHouseholdPersons(id uint) ([]models.Person, error) {
	if err := s.DB.First(&models.Household{}, id).Error; err != nil {
		return nil, err
	}
	var persons []models.Person
	if err := s.DB.Where("household_id = ?", id).Order("id").Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

// CreateHousehold registers a new hộ khẩu.
func (s *HouseholdService) CreateHousehold(actor *models.User, household *models.Household) error {
	if household.Code == "" || household.Address == "" {
		return code.NewWithMessage(code.ValidationError, "Số hộ khẩu và địa chỉ là bắt buộc")
	}

	var count int64
	if err := s.DB.Model(&models.Household{}).Where("code = ?", household.Code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return code.NewWithMessage(code.ValidationError, "Số hộ khẩu đã tồn tại")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(household).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityHousehold,
			EntityID:   household.ID,
			Action:     "create",
			Detail:     "household " + household.Code,
		}).Error
	})
}

// UpdateHousehold updates address fields. The head reference is changed
// through person management, never directly here.
func (s *HouseholdService) UpdateHousehold(actor *models.User, id uint, updates map[string]interface{}) (*models.Household, error) {
	var household models.Household
	if err := s.DB.First(&household, id).Error; err != nil {
		return nil, err
	}

	allowed := map[string]bool{"address": true, "ward": true, "district": true}
	for field := range updates {
		if !allowed[field] {
			return nil, code.NewWithMessage(code.ValidationError, fmt.Sprintf("Không thể cập nhật trường %q", field))
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&household).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityHousehold,
			EntityID:   household.ID,
			Action:     "update",
			Detail:     fmt.Sprintf("updated fields: %v", fieldNames(updates)),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetHouseholdByID(id)
}

// DeleteHousehold removes an empty household.
func (s *HouseholdService) DeleteHousehold(actor *models.User, id uint) error {
	var household models.Household
	if err := s.DB.First(&household, id).Error; err != nil {
		return err
	}

	var members int64
	if err := s.DB.Model(&models.Person{}).Where("household_id = ?", id).Count(&members).Error; err != nil {
		return err
	}
	if members > 0 {
		return code.NewWithMessage(code.ValidationError, "Không thể xóa hộ khẩu còn nhân khẩu")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&household).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityHousehold,
			EntityID:   id,
			Action:     "delete",
			Detail:     "household " + household.Code,
		}).Error
	})
}

// GetHouseholdOfPerson resolves the household a person belongs to. Used by
// citizen self-service lookups.
func (s *HouseholdService) GetHouseholdOfPerson(personID uint) (*models.Household, error) {
	var person models.Person
	if err := s.DB.First(&person, personID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.New(code.NotFound)
		}
		return nil, err
	}
	return s.GetHouseholdByID(person.HouseholdID)
}

func fieldNames(updates map[string]interface{}) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	return names
}
