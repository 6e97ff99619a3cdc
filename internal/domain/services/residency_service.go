package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// ResidencyFilter is the typed filter object for residency listing.
type ResidencyFilter struct {
	Type       string
	Status     string
	PersonID   uint
	ActiveOnly bool // records covering today with approved status
	Page       int
	PageSize   int
}

// InterfaceResidencyService defines the temporary residency service interface
type InterfaceResidencyService interface {
	ListResidencies(filter ResidencyFilter) ([]models.TemporaryResidency, int64, error)
	GetResidencyByID(id uint) (*models.TemporaryResidency, error)
	ApproveResidency(reviewer *models.User, id uint) (*models.TemporaryResidency, error)
	UpdateResidencyStatus(reviewer *models.User, id uint, status string) (*models.TemporaryResidency, error)
}

// ResidencyService manages tạm trú / tạm vắng records after the owning
// request was approved.
type ResidencyService struct {
	DB     *gorm.DB
	Config *config.Config
}

// Allowed residency status transitions.
var residencyTransitions = map[string][]string{
	models.ResidencyStatusPendingReview: {models.ResidencyStatusApproved},
	models.ResidencyStatusApproved:      {models.ResidencyStatusInProgress, models.ResidencyStatusCompleted},
	models.ResidencyStatusInProgress:    {models.ResidencyStatusCompleted},
}

// NewResidencyService creates a new residency service.
func NewResidencyService(db *gorm.DB, cfg *config.Config) InterfaceResidencyService {
	return &ResidencyService{DB: db, Config: cfg}
}

// ListResidencies lists residency records matching the filter.
func (s *ResidencyService) ListResidencies(filter ResidencyFilter) ([]models.TemporaryResidency, int64, error) {
	query := s.DB.Model(&models.TemporaryResidency{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PersonID != 0 {
		query = query.Where("person_id = ?", filter.PersonID)
	}
	if filter.ActiveOnly {
		today := time.Now().Format("2006-01-02")
		query = query.Where("status = ?", models.ResidencyStatusApproved).
			Where("from_date <= ?", today).
			Where("to_date IS NULL OR to_date >= ?", today)
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

	var residencies []models.TemporaryResidency
	if err := query.Preload("Person").Preload("Attachments").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&residencies).Error; err != nil {
		return nil, 0, err
	}
	return residencies, total, nil
}

// GetResidencyByID loads one record with person and attachments.
func (s *ResidencyService) GetResidencyByID(id uint) (*models.TemporaryResidency, error) {
	var residency models.TemporaryResidency
	if err := s.DB.Preload("Person").Preload("Attachments").First(&residency, id).Error; err != nil {
		return nil, err
	}
	return &residency, nil
}

// ApproveResidency moves a pending_review record to approved and updates
// the person's residency status accordingly, in one transaction.
func (s *ResidencyService) ApproveResidency(reviewer *models.User, id uint) (*models.TemporaryResidency, error) {
	return s.UpdateResidencyStatus(reviewer, id, models.ResidencyStatusApproved)
}

// UpdateResidencyStatus applies an allowed status transition.
func (s *ResidencyService) UpdateResidencyStatus(reviewer *models.User, id uint, status string) (*models.TemporaryResidency, error) {
	var residency models.TemporaryResidency
	if err := s.DB.First(&residency, id).Error; err != nil {
		return nil, err
	}

	if !contains(residencyTransitions[residency.Status], status) {
		return nil, code.NewWithMessage(code.ValidationError,
			"Không thể chuyển trạng thái từ "+residency.Status+" sang "+status)
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&residency).Update("status", status).Error; err != nil {
			return err
		}

		if status == models.ResidencyStatusApproved {
			personStatus := models.StatusTempResidence
			if residency.Type == models.ResidencyTempAbsence {
				personStatus = models.StatusTempAbsence
			}
			if err := tx.Model(&models.Person{}).Where("id = ?", residency.PersonID).
				Update("status", personStatus).Error; err != nil {
				return err
			}
		}
		if status == models.ResidencyStatusCompleted {
			// The stay ended; the person is a regular resident again.
			if err := tx.Model(&models.Person{}).Where("id = ?", residency.PersonID).
				Update("status", models.StatusPermanent).Error; err != nil {
				return err
			}
		}

		return tx.Create(&models.AuditLog{
			ActorID:    reviewer.ID,
			EntityType: models.AuditEntityResidency,
			EntityID:   residency.ID,
			Action:     status,
			Detail:     "residency type " + residency.Type,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetResidencyByID(id)
}
