package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
)

type feedbackFixture struct {
	db    *gorm.DB
	svc   InterfaceFeedbackService
	staff *models.User
	u1    *models.User
	u2    *models.User
}

func newFeedbackFixture(t *testing.T) *feedbackFixture {
	t.Helper()
	db := setupTestDB(t)
	return &feedbackFixture{
		db:    db,
		svc:   NewFeedbackService(db, testConfig()),
		staff: seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskPetitions)),
		u1:    seedUser(t, db, "012345678912", models.RoleCitizen, nil),
		u2:    seedUser(t, db, "012345678913", models.RoleCitizen, nil),
	}
}

func TestCreateFeedback(t *testing.T) {
	f := newFeedbackFixture(t)

	feedback, err := f.svc.CreateFeedback(f.u1, "  Đèn đường hỏng  ", "Đèn trước số nhà 12 không sáng", "")
	require.NoError(t, err)
	assert.Equal(t, "Đèn đường hỏng", feedback.Title)
	assert.Equal(t, models.FeedbackCategoryOther, feedback.Category)
	assert.Equal(t, models.FeedbackStatusPending, feedback.Status)
	assert.Equal(t, 1, feedback.ReporterCount)
	require.Len(t, feedback.Reporters, 1)
	assert.Equal(t, f.u1.ID, feedback.Reporters[0].ID)

	_, err = f.svc.CreateFeedback(f.u1, "", "nội dung", "")
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	_, err = f.svc.CreateFeedback(f.u1, "Tiêu đề", "nội dung", "weather")
	assert.Equal(t, code.ValidationError, apiCode(t, err))
}

func TestMergeFeedbacks(t *testing.T) {
	f := newFeedbackFixture(t)

	primary, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", models.FeedbackCategoryInfrastructure)
	require.NoError(t, err)
	secondary, err := f.svc.CreateFeedback(f.u2, "Đèn không sáng", "Cùng ngã tư", models.FeedbackCategoryInfrastructure)
	require.NoError(t, err)

	merged, err := f.svc.MergeFeedbacks(f.staff, []uint{primary.ID, secondary.ID})
	require.NoError(t, err)

	// Reporters are unioned onto the primary.
	assert.Equal(t, 2, merged.ReporterCount)
	assert.Len(t, merged.Reporters, 2)

	var storedSecondary models.Feedback
	require.NoError(t, f.db.First(&storedSecondary, secondary.ID).Error)
	assert.Equal(t, models.FeedbackStatusInProgress, storedSecondary.Status)
	require.NotNil(t, storedSecondary.MergedIntoID)
	assert.Equal(t, primary.ID, *storedSecondary.MergedIntoID)
	assert.NotEmpty(t, storedSecondary.Resolution)

	// The default list hides merged-away records.
	feedbacks, total, err := f.svc.ListFeedbacks(FeedbackFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, feedbacks, 1)
	assert.Equal(t, primary.ID, feedbacks[0].ID)

	_, total, err = f.svc.ListFeedbacks(FeedbackFilter{IncludeMerged: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestMergeFeedbacksValidation(t *testing.T) {
	f := newFeedbackFixture(t)

	fb1, err := f.svc.CreateFeedback(f.u1, "Một", "nội dung", "")
	require.NoError(t, err)
	fb2, err := f.svc.CreateFeedback(f.u2, "Hai", "nội dung", "")
	require.NoError(t, err)
	fb3, err := f.svc.CreateFeedback(f.u1, "Ba", "nội dung", "")
	require.NoError(t, err)

	_, err = f.svc.MergeFeedbacks(f.staff, []uint{fb1.ID})
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	_, err = f.svc.MergeFeedbacks(f.staff, []uint{fb1.ID, fb1.ID})
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	_, err = f.svc.MergeFeedbacks(f.staff, []uint{fb1.ID, fb2.ID})
	require.NoError(t, err)

	// An already-merged record cannot be a secondary again.
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{fb3.ID, fb2.ID})
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	// Nor can it anchor a new merge as primary.
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{fb2.ID, fb3.ID})
	assert.Equal(t, code.ValidationError, apiCode(t, err))
}

func TestRespondFeedbackPropagatesAcrossMergeGroup(t *testing.T) {
	f := newFeedbackFixture(t)

	primary, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)
	secondary, err := f.svc.CreateFeedback(f.u2, "Đèn không sáng", "Cùng ngã tư", "")
	require.NoError(t, err)
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{primary.ID, secondary.ID})
	require.NoError(t, err)

	responded, err := f.svc.RespondFeedback(f.staff, primary.ID, "Phòng Quản lý đô thị", "Đã thay bóng đèn ngày 28/08")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusResolved, responded.Status)
	assert.Equal(t, "[Phòng Quản lý đô thị]: Đã thay bóng đèn ngày 28/08", responded.Resolution)

	// The merged secondary mirrors the primary's outcome.
	var storedSecondary models.Feedback
	require.NoError(t, f.db.First(&storedSecondary, secondary.ID).Error)
	assert.Equal(t, models.FeedbackStatusResolved, storedSecondary.Status)
	assert.Equal(t, responded.Resolution, storedSecondary.Resolution)

	// Responding to the merged secondary directly is refused.
	_, err = f.svc.RespondFeedback(f.staff, secondary.ID, "Đơn vị", "Nội dung")
	assert.Equal(t, code.ValidationError, apiCode(t, err))
}

func TestUpdateFeedbackStatus(t *testing.T) {
	f := newFeedbackFixture(t)

	feedback, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusInProgress, updated.Status)

	_, err = f.svc.UpdateStatus(f.staff, feedback.ID, "archived")
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	// Resolved requires a recorded resolution first.
	_, err = f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusResolved)
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	_, err = f.svc.RespondFeedback(f.staff, feedback.ID, "UBND Phường", "Đã xử lý")
	require.NoError(t, err)
	resolved, err := f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusResolved, resolved.Status)
}

func TestUpdateStatusFrozenWhenMerged(t *testing.T) {
	f := newFeedbackFixture(t)

	primary, err := f.svc.CreateFeedback(f.u1, "Một", "nội dung", "")
	require.NoError(t, err)
	secondary, err := f.svc.CreateFeedback(f.u2, "Hai", "nội dung", "")
	require.NoError(t, err)
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{primary.ID, secondary.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.staff, secondary.ID, models.FeedbackStatusPending)
	assert.Equal(t, code.ValidationError, apiCode(t, err))
}

func TestUpdateStatusResolvedIsTerminal(t *testing.T) {
	f := newFeedbackFixture(t)

	feedback, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)
	_, err = f.svc.RespondFeedback(f.staff, feedback.ID, "UBND Phường", "Đã xử lý")
	require.NoError(t, err)

	// A resolved petition cannot be reopened.
	_, err = f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusPending)
	assert.Equal(t, code.ValidationError, apiCode(t, err))
	_, err = f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusInProgress)
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	var stored models.Feedback
	require.NoError(t, f.db.First(&stored, feedback.ID).Error)
	assert.Equal(t, models.FeedbackStatusResolved, stored.Status)

	// Restating resolved stays a no-op.
	resolved, err := f.svc.UpdateStatus(f.staff, feedback.ID, models.FeedbackStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackStatusResolved, resolved.Status)
}

func TestGetFeedbackForActorReporterScope(t *testing.T) {
	f := newFeedbackFixture(t)

	feedback, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)

	// The reporter and staff can read it; another citizen cannot.
	got, err := f.svc.GetFeedbackForActor(f.u1, feedback.ID)
	require.NoError(t, err)
	assert.Equal(t, feedback.ID, got.ID)

	_, err = f.svc.GetFeedbackForActor(f.staff, feedback.ID)
	require.NoError(t, err)

	_, err = f.svc.GetFeedbackForActor(f.u2, feedback.ID)
	assert.Equal(t, code.Forbidden, apiCode(t, err))

	// Merging unions reporters, so a secondary's reporter keeps access to
	// the primary.
	secondary, err := f.svc.CreateFeedback(f.u2, "Đèn không sáng", "Cùng ngã tư", "")
	require.NoError(t, err)
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{feedback.ID, secondary.ID})
	require.NoError(t, err)

	_, err = f.svc.GetFeedbackForActor(f.u2, feedback.ID)
	require.NoError(t, err)
}

func TestNotifyReporters(t *testing.T) {
	f := newFeedbackFixture(t)

	primary, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)
	secondary, err := f.svc.CreateFeedback(f.u2, "Đèn không sáng", "Cùng ngã tư", "")
	require.NoError(t, err)
	_, err = f.svc.MergeFeedbacks(f.staff, []uint{primary.ID, secondary.ID})
	require.NoError(t, err)

	// After the merge both reporters hang off the primary.
	created, err := f.svc.NotifyReporters(f.staff, primary.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var notifications []models.Notification
	require.NoError(t, f.db.Where("feedback_id = ?", primary.ID).Find(&notifications).Error)
	require.Len(t, notifications, 2)
	for _, n := range notifications {
		assert.False(t, n.IsRead)
		assert.Contains(t, n.Message, primary.Title) // default message names the petition
	}
}

func TestFeedbackStats(t *testing.T) {
	f := newFeedbackFixture(t)

	fb1, err := f.svc.CreateFeedback(f.u1, "Một", "nội dung", models.FeedbackCategorySanitation)
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(f.u2, "Hai", "nội dung", models.FeedbackCategorySecurity)
	require.NoError(t, err)
	_, err = f.svc.RespondFeedback(f.staff, fb1.ID, "UBND Phường", "Đã xử lý")
	require.NoError(t, err)

	stats, err := f.svc.GetStats(nil, nil, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[models.FeedbackStatusPending])
	assert.EqualValues(t, 0, stats.ByStatus[models.FeedbackStatusInProgress])
	assert.EqualValues(t, 1, stats.ByStatus[models.FeedbackStatusResolved])

	// A window in the past matches nothing.
	from := time.Now().AddDate(0, 0, -14)
	to := time.Now().AddDate(0, 0, -7)
	stats, err = f.svc.GetStats(&from, &to, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.Total)
}

func TestListFeedbacksReporterScope(t *testing.T) {
	f := newFeedbackFixture(t)

	_, err := f.svc.CreateFeedback(f.u1, "Của người một", "nội dung", "")
	require.NoError(t, err)
	_, err = f.svc.CreateFeedback(f.u2, "Của người hai", "nội dung", "")
	require.NoError(t, err)

	feedbacks, total, err := f.svc.ListFeedbacks(FeedbackFilter{ReporterID: f.u1.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, feedbacks, 1)
	assert.Equal(t, "Của người một", feedbacks[0].Title)
}

func TestNotificationMarkRead(t *testing.T) {
	f := newFeedbackFixture(t)
	notifications := NewNotificationService(f.db, testConfig())

	feedback, err := f.svc.CreateFeedback(f.u1, "Đèn đường hỏng", "Ngã tư Trần Phú", "")
	require.NoError(t, err)
	_, err = f.svc.NotifyReporters(f.staff, feedback.ID, "Đang xử lý")
	require.NoError(t, err)

	list, total, err := notifications.ListNotifications(f.u1.ID, true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	// Only the owner may mark it read.
	_, err = notifications.MarkRead(f.u2.ID, list[0].ID)
	assert.Equal(t, code.Forbidden, apiCode(t, err))

	read, err := notifications.MarkRead(f.u1.ID, list[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, total, err = notifications.ListNotifications(f.u1.ID, true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
