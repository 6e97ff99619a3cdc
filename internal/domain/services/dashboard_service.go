package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 60 * time.Second
	activityFeedLimit = 20
)

// DashboardTotals holds the entity counts.
type DashboardTotals struct {
	Households int64 `json:"households"`
	Persons    int64 `json:"persons"`
	Users      int64 `json:"users"`
	Requests   int64 `json:"requests"`
	Feedbacks  int64 `json:"feedbacks"`
}

// DashboardPending holds the pending-approval counts across all workflows.
type DashboardPending struct {
	Requests    int64 `json:"requests"`
	Residencies int64 `json:"residencies"`
	Feedbacks   int64 `json:"feedbacks"`
}

// ActivityItem is one entry of the unified recent-activity feed.
type ActivityItem struct {
	Kind        string    `json:"kind"`
	EntityID    uint      `json:"entity_id"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// DashboardSummary is the aggregate the dashboard endpoint returns.
type DashboardSummary struct {
	Totals              DashboardTotals  `json:"totals"`
	PersonsThisMonth    int64            `json:"persons_this_month"`
	PersonsLastMonth    int64            `json:"persons_last_month"`
	ActiveTempResidence int64            `json:"active_temp_residence"`
	ActiveTempAbsence   int64            `json:"active_temp_absence"`
	Pending             DashboardPending `json:"pending"`
	RecentActivity      []ActivityItem   `json:"recent_activity"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// InterfaceDashboardService defines the dashboard service interface
type InterfaceDashboardService interface {
	GetSummary(ctx context.Context) (*DashboardSummary, error)
}

// DashboardService computes read-only aggregates. Any query failure
// surfaces as a single aggregate error; there are no partial results.
// When a Redis client is configured the summary is cached briefly.
type DashboardService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  *redis.Client // optional
}

// NewDashboardService creates a new dashboard service. redisClient may be
// nil; the service then always reads from the database.
func NewDashboardService(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) InterfaceDashboardService {
	return &DashboardService{DB: db, Config: cfg, Redis: redisClient}
}

// GetSummary returns the dashboard aggregate, from cache when fresh.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, dashboardCacheKey).Bytes(); err == nil {
			var summary DashboardSummary
			if json.Unmarshal(cached, &summary) == nil {
				return &summary, nil
			}
		}
	}

	summary, err := s.compute()
	if err != nil {
		return nil, fmt.Errorf("dashboard aggregation failed: %w", err)
	}

	if s.Redis != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			// Cache failures are invisible to the caller; the next
			// request just recomputes.
			s.Redis.Set(ctx, dashboardCacheKey, encoded, dashboardCacheTTL)
		}
	}
	return summary, nil
}

func (s *DashboardService) compute() (*DashboardSummary, error) {
	summary := &DashboardSummary{GeneratedAt: time.Now()}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Household{}, &summary.Totals.Households},
		{&models.Person{}, &summary.Totals.Persons},
		{&models.User{}, &summary.Totals.Users},
		{&models.ChangeRequest{}, &summary.Totals.Requests},
		{&models.Feedback{}, &summary.Totals.Feedbacks},
	}
	for _, c := range counts {
		if err := s.DB.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	now := time.Now()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	if err := s.DB.Model(&models.Person{}).
		Where("created_at >= ?", thisMonth).
		Count(&summary.PersonsThisMonth).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Person{}).
		Where("created_at >= ? AND created_at < ?", lastMonth, thisMonth).
		Count(&summary.PersonsLastMonth).Error; err != nil {
		return nil, err
	}

	today := now.Format("2006-01-02")
	for _, entry := range []struct {
		residencyType string
		dest          *int64
	}{
		{models.ResidencyTempResidence, &summary.ActiveTempResidence},
		{models.ResidencyTempAbsence, &summary.ActiveTempAbsence},
	} {
		if err := s.DB.Model(&models.TemporaryResidency{}).
			Where("type = ? AND status = ?", entry.residencyType, models.ResidencyStatusApproved).
			Where("from_date <= ?", today).
			Where("to_date IS NULL OR to_date >= ?", today).
			Count(entry.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := s.DB.Model(&models.ChangeRequest{}).
		Where("status = ?", models.RequestStatusPending).
		Count(&summary.Pending.Requests).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.TemporaryResidency{}).
		Where("status = ?", models.ResidencyStatusPendingReview).
		Count(&summary.Pending.Residencies).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Feedback{}).
		Where("status = ? AND merged_into_id IS NULL", models.FeedbackStatusPending).
		Count(&summary.Pending.Feedbacks).Error; err != nil {
		return nil, err
	}

	activity, err := s.recentActivity()
	if err != nil {
		return nil, err
	}
	summary.RecentActivity = activity

	return summary, nil
}

// recentActivity merges person edits, residency changes and approvals (all
// audit-logged) with newly filed petitions into one time-sorted feed.
func (s *DashboardService) recentActivity() ([]ActivityItem, error) {
	var logs []models.AuditLog
	if err := s.DB.Order("created_at DESC").Limit(activityFeedLimit).Find(&logs).Error; err != nil {
		return nil, err
	}

	var feedbacks []models.Feedback
	if err := s.DB.Order("created_at DESC").Limit(activityFeedLimit).
		Where("merged_into_id IS NULL").Find(&feedbacks).Error; err != nil {
		return nil, err
	}

	items := make([]ActivityItem, 0, len(logs)+len(feedbacks))
	for _, log := range logs {
		items = append(items, ActivityItem{
			Kind:        log.EntityType + ":" + log.Action,
			EntityID:    log.EntityID,
			Description: log.Detail,
			Time:        log.CreatedAt,
		})
	}
	for _, feedback := range feedbacks {
		items = append(items, ActivityItem{
			Kind:        "feedback:created",
			EntityID:    feedback.ID,
			Description: feedback.Title,
			Time:        feedback.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	if len(items) > activityFeedLimit {
		items = items[:activityFeedLimit]
	}
	return items, nil
}
