package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// InterfaceNotificationService defines the notification service interface
type InterfaceNotificationService interface {
	ListNotifications(userID uint, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error)
	MarkRead(userID, notificationID uint) (*models.Notification, error)
}

// NotificationService serves per-user petition notifications.
type NotificationService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewNotificationService creates a new notification service.
func NewNotificationService(db *gorm.DB, cfg *config.Config) InterfaceNotificationService {
	return &NotificationService{DB: db, Config: cfg}
}

// ListNotifications lists a user's notifications, newest first.
func (s *NotificationService) ListNotifications(userID uint, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	query := s.DB.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var notifications []models.Notification
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead marks one notification read. Users may only touch their own.
func (s *NotificationService) MarkRead(userID, notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.DB.First(&notification, notificationID).Error; err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, code.New(code.Forbidden)
	}

	if !notification.IsRead {
		now := time.Now()
		if err := s.DB.Model(&notification).Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
			return nil, err
		}
	}
	return &notification, nil
}
