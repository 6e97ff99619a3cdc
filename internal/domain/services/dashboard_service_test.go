package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
)

func TestGetSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, testConfig(), nil)

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	head := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	seedPerson(t, db, household.ID, "Trần Thị Bình", "012345678913", models.RelationshipSpouse)
	citizen := seedUser(t, db, "012345678912", models.RoleCitizen, nil)

	require.NoError(t, db.Create(&models.ChangeRequest{
		RequesterID: citizen.ID,
		Type:        models.RequestTypeAddPerson,
		HouseholdID: &household.ID,
		Payload:     `{}`,
		Status:      models.RequestStatusPending,
	}).Error)

	seedResidency(t, db, head.ID, models.ResidencyTempAbsence,
		models.ResidencyStatusApproved, time.Now().AddDate(0, -1, 0), nil)
	seedResidency(t, db, head.ID, models.ResidencyTempResidence,
		models.ResidencyStatusPendingReview, time.Now(), nil)

	require.NoError(t, db.Create(&models.Feedback{
		Title:         "Đèn đường hỏng",
		Content:       "Ngã tư Trần Phú",
		Category:      models.FeedbackCategoryInfrastructure,
		Status:        models.FeedbackStatusPending,
		ReporterCount: 1,
	}).Error)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, summary.Totals.Households)
	assert.EqualValues(t, 2, summary.Totals.Persons)
	assert.EqualValues(t, 1, summary.Totals.Users)
	assert.EqualValues(t, 1, summary.Totals.Requests)
	assert.EqualValues(t, 1, summary.Totals.Feedbacks)

	assert.EqualValues(t, 2, summary.PersonsThisMonth)
	assert.EqualValues(t, 1, summary.ActiveTempAbsence)
	assert.EqualValues(t, 0, summary.ActiveTempResidence) // still pending review

	assert.EqualValues(t, 1, summary.Pending.Requests)
	assert.EqualValues(t, 1, summary.Pending.Residencies)
	assert.EqualValues(t, 1, summary.Pending.Feedbacks)

	assert.False(t, summary.GeneratedAt.IsZero())

	// Newly filed petitions show up in the activity feed.
	found := false
	for _, item := range summary.RecentActivity {
		if item.Kind == "feedback:created" && item.Description == "Đèn đường hỏng" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGetSummaryEmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db, testConfig(), nil)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.Totals.Households)
	assert.Empty(t, summary.RecentActivity)
}
