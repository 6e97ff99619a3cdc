package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// FeedbackFilter is the typed filter object for petition listing. Merged-away
// secondary records are hidden unless IncludeMerged is set, so the default
// list never shows duplicates.
type FeedbackFilter struct {
	Status        string
	Category      string
	Keyword       string
	ReporterID    uint
	IncludeMerged bool
	Page          int
	PageSize      int
}

// FeedbackStats is the per-status count summary.
type FeedbackStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

// InterfaceFeedbackService defines the feedback/petition service interface
type InterfaceFeedbackService interface {
	CreateFeedback(reporter *models.User, title, content, category string) (*models.Feedback, error)
	GetFeedbackByID(id uint) (*models.Feedback, error)
	GetFeedbackForActor(actor *models.User, id uint) (*models.Feedback, error)
	ListFeedbacks(filter FeedbackFilter) ([]models.Feedback, int64, error)
	GetStats(from, to *time.Time, includeMerged bool) (*FeedbackStats, error)
	UpdateStatus(actor *models.User, id uint, status string) (*models.Feedback, error)
	MergeFeedbacks(actor *models.User, ids []uint) (*models.Feedback, error)
	RespondFeedback(actor *models.User, id uint, unit, content string) (*models.Feedback, error)
	NotifyReporters(actor *models.User, id uint, message string) (int, error)
}

// FeedbackService manages the petition lifecycle, including merging
// duplicates into a primary record and propagating responses across the
// merge group.
type FeedbackService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(db *gorm.DB, cfg *config.Config) InterfaceFeedbackService {
	return &FeedbackService{DB: db, Config: cfg}
}

// CreateFeedback files a petition with the filer as first reporter.
func (s *FeedbackService) CreateFeedback(reporter *models.User, title, content, category string) (*models.Feedback, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, code.NewWithMessage(code.ValidationError, "Phản ánh cần tiêu đề và nội dung")
	}
	if category == "" {
		category = models.FeedbackCategoryOther
	}
	if !contains(models.ValidFeedbackCategories, category) {
		return nil, code.NewWithMessage(code.ValidationError, "Phân loại phản ánh không hợp lệ")
	}

	feedback := &models.Feedback{
		Title:         strings.TrimSpace(title),
		Content:       content,
		Category:      category,
		Status:        models.FeedbackStatusPending,
		ReporterCount: 1,
		Reporters:     []models.User{{BaseModel: models.BaseModel{ID: reporter.ID}}},
	}
	if err := s.DB.Create(feedback).Error; err != nil {
		return nil, err
	}
	return s.GetFeedbackByID(feedback.ID)
}

// GetFeedbackByID loads one petition with its reporters.
func (s *FeedbackService) GetFeedbackByID(id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.DB.Preload("Reporters").First(&feedback, id).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

// GetFeedbackForActor loads one petition on behalf of a reader. Citizens
// may only read petitions they are a reporter of; reporters of a merged
// secondary keep access to the primary because merging unions reporters.
func (s *FeedbackService) GetFeedbackForActor(actor *models.User, id uint) (*models.Feedback, error) {
	feedback, err := s.GetFeedbackByID(id)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.Role == models.RoleCitizen {
		reported := false
		for i := range feedback.Reporters {
			if feedback.Reporters[i].ID == actor.ID {
				reported = true
				break
			}
		}
		if !reported {
			return nil, code.New(code.Forbidden)
		}
	}
	return feedback, nil
}

// ListFeedbacks lists petitions matching the filter. The keyword matches
// title and content case-insensitively.
func (s *FeedbackService) ListFeedbacks(filter FeedbackFilter) ([]models.Feedback, int64, error) {
	query := s.DB.Model(&models.Feedback{})

	if !filter.IncludeMerged {
		query = query.Where("merged_into_id IS NULL")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Keyword != "" {
		pattern := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern)
	}
	if filter.ReporterID != 0 {
		query = query.Joins("JOIN feedback_reporters fr ON fr.feedback_id = feedbacks.id").
			Where("fr.user_id = ?", filter.ReporterID)
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

	var feedbacks []models.Feedback
	if err := query.Preload("Reporters").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&feedbacks).Error; err != nil {
		return nil, 0, err
	}
	return feedbacks, total, nil
}

// GetStats counts petitions grouped by status over an optional date range.
// Merged-away records are excluded unless requested, matching the list
// default.
func (s *FeedbackService) GetStats(from, to *time.Time, includeMerged bool) (*FeedbackStats, error) {
	query := s.DB.Model(&models.Feedback{})
	if !includeMerged {
		query = query.Where("merged_into_id IS NULL")
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := query.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &FeedbackStats{ByStatus: map[string]int64{
		models.FeedbackStatusPending:    0,
		models.FeedbackStatusInProgress: 0,
		models.FeedbackStatusResolved:   0,
	}}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}

// UpdateStatus moves a petition between workflow statuses. Resolving goes
// through RespondFeedback so a resolution text always accompanies the
// resolved status; merged-away records are frozen and resolved is terminal.
func (s *FeedbackService) UpdateStatus(actor *models.User, id uint, status string) (*models.Feedback, error) {
	if !contains(models.ValidFeedbackStatuses, status) {
		return nil, code.NewWithMessage(code.ValidationError, "Trạng thái phản ánh không hợp lệ")
	}

	var feedback models.Feedback
	if err := s.DB.First(&feedback, id).Error; err != nil {
		return nil, err
	}
	if feedback.IsMerged() {
		return nil, code.NewWithMessage(code.ValidationError,
			fmt.Sprintf("Phản ánh đã bị gộp vào phản ánh #%d", *feedback.MergedIntoID))
	}
	// Reopening would also desynchronize any merge group that mirrored the
	// resolution from this record.
	if feedback.Status == models.FeedbackStatusResolved && status != models.FeedbackStatusResolved {
		return nil, code.NewWithMessage(code.ValidationError,
			"Phản ánh đã giải quyết không thể mở lại")
	}
	if status == models.FeedbackStatusResolved && feedback.Resolution == "" {
		return nil, code.NewWithMessage(code.ValidationError,
			"Phản ánh chỉ được đánh dấu đã giải quyết khi có nội dung phản hồi")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&feedback).Update("status", status).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityFeedback,
			EntityID:   feedback.ID,
			Action:     "status_change",
			Detail:     "status set to " + status,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetFeedbackByID(id)
}

// MergeFeedbacks merges duplicate petitions. The first ID is the primary:
// reporters from the whole set are unioned onto it and its reporter count
// recalculated; every other record is parked at in_progress with a
// resolution note pointing at the primary. Nothing is deleted, so the audit
// trail survives. The whole merge is one transaction.
func (s *FeedbackService) MergeFeedbacks(actor *models.User, ids []uint) (*models.Feedback, error) {
	if len(ids) < 2 {
		return nil, code.NewWithMessage(code.ValidationError, "Cần ít nhất hai phản ánh để gộp")
	}
	primaryID := ids[0]

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var primary models.Feedback
		if err := tx.First(&primary, primaryID).Error; err != nil {
			return err
		}
		if primary.IsMerged() {
			return code.NewWithMessage(code.ValidationError, "Phản ánh chính đã bị gộp vào phản ánh khác")
		}

		for _, id := range ids[1:] {
			if id == primaryID {
				return code.NewWithMessage(code.ValidationError, "Danh sách gộp chứa phản ánh trùng lặp")
			}

			var secondary models.Feedback
			if err := tx.Preload("Reporters").First(&secondary, id).Error; err != nil {
				return err
			}
			if secondary.IsMerged() {
				return code.NewWithMessage(code.ValidationError,
					fmt.Sprintf("Phản ánh #%d đã bị gộp trước đó", id))
			}

			// Union the secondary's reporters onto the primary.
			// Append is duplicate-safe on a many2many association.
			for i := range secondary.Reporters {
				if err := tx.Model(&primary).Association("Reporters").
					Append(&models.User{BaseModel: models.BaseModel{ID: secondary.Reporters[i].ID}}); err != nil {
					return err
				}
			}

			if err := tx.Model(&secondary).Updates(map[string]interface{}{
				"status":         models.FeedbackStatusInProgress,
				"merged_into_id": primary.ID,
				"resolution":     fmt.Sprintf("Đã gộp vào phản ánh #%d", primary.ID),
			}).Error; err != nil {
				return err
			}
		}

		count := tx.Model(&primary).Association("Reporters").Count()
		if err := tx.Model(&primary).Update("reporter_count", count).Error; err != nil {
			return err
		}

		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityFeedback,
			EntityID:   primary.ID,
			Action:     "merge",
			Detail:     fmt.Sprintf("merged %d petitions into #%d", len(ids)-1, primary.ID),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetFeedbackByID(primaryID)
}

// RespondFeedback resolves a petition with a formatted resolution and
// propagates the identical resolution and status to every record merged
// into it, keeping the merge group consistent.
func (s *FeedbackService) RespondFeedback(actor *models.User, id uint, unit, content string) (*models.Feedback, error) {
	if strings.TrimSpace(unit) == "" || strings.TrimSpace(content) == "" {
		return nil, code.NewWithMessage(code.ValidationError, "Phản hồi cần đơn vị trả lời và nội dung")
	}

	var feedback models.Feedback
	if err := s.DB.First(&feedback, id).Error; err != nil {
		return nil, err
	}
	if feedback.IsMerged() {
		return nil, code.NewWithMessage(code.ValidationError,
			fmt.Sprintf("Phản ánh đã bị gộp, vui lòng phản hồi phản ánh #%d", *feedback.MergedIntoID))
	}

	resolution := fmt.Sprintf("[%s]: %s", strings.TrimSpace(unit), strings.TrimSpace(content))

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&feedback).Updates(map[string]interface{}{
			"status":     models.FeedbackStatusResolved,
			"resolution": resolution,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Feedback{}).Where("merged_into_id = ?", feedback.ID).
			Updates(map[string]interface{}{
				"status":     models.FeedbackStatusResolved,
				"resolution": resolution,
			}).Error; err != nil {
			return err
		}

		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityFeedback,
			EntityID:   feedback.ID,
			Action:     "respond",
			Detail:     "responded by " + unit,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetFeedbackByID(id)
}

// NotifyReporters inserts one unread notification per current reporter of a
// petition and returns how many were created.
func (s *FeedbackService) NotifyReporters(actor *models.User, id uint, message string) (int, error) {
	feedback, err := s.GetFeedbackByID(id)
	if err != nil {
		return 0, err
	}
	if message == "" {
		message = "Phản ánh của bạn đã được cập nhật: " + feedback.Title
	}

	created := 0
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range feedback.Reporters {
			notification := &models.Notification{
				UserID:     feedback.Reporters[i].ID,
				FeedbackID: feedback.ID,
				Title:      feedback.Title,
				Message:    message,
			}
			if err := tx.Create(notification).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
