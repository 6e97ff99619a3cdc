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

func seedResidency(t *testing.T, db *gorm.DB, personID uint, residencyType, status string, from time.Time, to *time.Time) *models.TemporaryResidency {
	t.Helper()
	residency := &models.TemporaryResidency{
		PersonID:    personID,
		Type:        residencyType,
		FromDate:    from,
		ToDate:      to,
		DestAddress: "TP. Hồ Chí Minh",
		Reason:      "Công tác",
		Status:      status,
	}
	require.NoError(t, db.Create(residency).Error)
	return residency
}

func TestApproveResidencySyncsPersonStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewResidencyService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	person := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	reviewer := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskTempResidency))

	residency := seedResidency(t, db, person.ID, models.ResidencyTempAbsence,
		models.ResidencyStatusPendingReview, time.Now(), nil)

	approved, err := svc.ApproveResidency(reviewer, residency.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResidencyStatusApproved, approved.Status)

	var stored models.Person
	require.NoError(t, db.First(&stored, person.ID).Error)
	assert.Equal(t, models.StatusTempAbsence, stored.Status)

	var logs []models.AuditLog
	require.NoError(t, db.Where("entity_type = ?", models.AuditEntityResidency).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ResidencyStatusApproved, logs[0].Action)
}

func TestCompleteResidencyRestoresPermanent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewResidencyService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	person := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	require.NoError(t, db.Model(person).Update("status", models.StatusTempResidence).Error)
	reviewer := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskTempResidency))

	residency := seedResidency(t, db, person.ID, models.ResidencyTempResidence,
		models.ResidencyStatusApproved, time.Now().AddDate(0, -1, 0), nil)

	completed, err := svc.UpdateResidencyStatus(reviewer, residency.ID, models.ResidencyStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ResidencyStatusCompleted, completed.Status)

	var stored models.Person
	require.NoError(t, db.First(&stored, person.ID).Error)
	assert.Equal(t, models.StatusPermanent, stored.Status)
}

func TestResidencyTransitionRules(t *testing.T) {
	db := setupTestDB(t)
	svc := NewResidencyService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	person := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	reviewer := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskTempResidency))

	cases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to approved", models.ResidencyStatusPendingReview, models.ResidencyStatusApproved, true},
		{"pending straight to completed", models.ResidencyStatusPendingReview, models.ResidencyStatusCompleted, false},
		{"approved to in_progress", models.ResidencyStatusApproved, models.ResidencyStatusInProgress, true},
		{"approved to completed", models.ResidencyStatusApproved, models.ResidencyStatusCompleted, true},
		{"in_progress to completed", models.ResidencyStatusInProgress, models.ResidencyStatusCompleted, true},
		{"completed is terminal", models.ResidencyStatusCompleted, models.ResidencyStatusApproved, false},
		{"no going back", models.ResidencyStatusApproved, models.ResidencyStatusPendingReview, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			residency := seedResidency(t, db, person.ID, models.ResidencyTempResidence,
				tc.from, time.Now(), nil)
			_, err := svc.UpdateResidencyStatus(reviewer, residency.ID, tc.to)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, code.ValidationError, apiCode(t, err))
			}
		})
	}
}

func TestListResidenciesActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewResidencyService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	p1 := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	p2 := seedPerson(t, db, household.ID, "Trần Thị Bình", "012345678913", models.RelationshipSpouse)
	p3 := seedPerson(t, db, household.ID, "Nguyễn Văn Cường", "012345678914", models.RelationshipChild)

	// Covers today, approved: active.
	active := seedResidency(t, db, p1.ID, models.ResidencyTempAbsence,
		models.ResidencyStatusApproved, time.Now().AddDate(0, -1, 0), nil)
	// Approved but already over.
	ended := time.Now().AddDate(0, -1, 0)
	seedResidency(t, db, p2.ID, models.ResidencyTempAbsence,
		models.ResidencyStatusApproved, time.Now().AddDate(0, -2, 0), &ended)
	// Covers today but not yet approved.
	seedResidency(t, db, p3.ID, models.ResidencyTempAbsence,
		models.ResidencyStatusPendingReview, time.Now().AddDate(0, -1, 0), nil)

	residencies, total, err := svc.ListResidencies(ResidencyFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, residencies, 1)
	assert.Equal(t, active.ID, residencies[0].ID)
}

func TestResidencyActiveOn(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	residency := &models.TemporaryResidency{
		Type:     models.ResidencyTempAbsence,
		FromDate: from,
		ToDate:   &to,
		Status:   models.ResidencyStatusApproved,
	}

	assert.False(t, residency.ActiveOn(from.AddDate(0, 0, -1)))
	assert.True(t, residency.ActiveOn(from))
	assert.True(t, residency.ActiveOn(to))
	assert.False(t, residency.ActiveOn(to.AddDate(0, 0, 1)))

	residency.Status = models.ResidencyStatusPendingReview
	assert.False(t, residency.ActiveOn(from))

	residency.Status = models.ResidencyStatusApproved
	residency.ToDate = nil
	assert.True(t, residency.ActiveOn(to.AddDate(10, 0, 0)))
}
