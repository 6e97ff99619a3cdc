package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
)

func TestCreatePersonHeadUpdatesHousehold(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))

	person := &models.Person{
		HouseholdID:        household.ID,
		FullName:           "Nguyễn Văn An",
		Gender:             "male",
		CCCD:               "012-345-678-912",
		RelationshipToHead: models.RelationshipHead,
		Status:             models.StatusPermanent,
	}
	require.NoError(t, svc.CreatePerson(staff, person))

	// CCCD is stored normalized.
	assert.Equal(t, "012345678912", person.CCCD)

	var storedHousehold models.Household
	require.NoError(t, db.First(&storedHousehold, household.ID).Error)
	require.NotNil(t, storedHousehold.HeadID)
	assert.Equal(t, person.ID, *storedHousehold.HeadID)

	history, err := svc.GetPersonHistory(person.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "create", history[0].Action)
}

func TestCreatePersonRejectsDuplicateCCCD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))

	err := svc.CreatePerson(staff, &models.Person{
		HouseholdID:        household.ID,
		FullName:           "Trần Thị Bình",
		Gender:             "female",
		CCCD:               "012 345 678 912", // same number, different format
		RelationshipToHead: models.RelationshipSpouse,
		Status:             models.StatusPermanent,
	})
	assert.Equal(t, code.DuplicateCCCD, apiCode(t, err))
}

func TestCreatePersonRejectsSecondHead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))

	err := svc.CreatePerson(staff, &models.Person{
		HouseholdID:        household.ID,
		FullName:           "Trần Thị Bình",
		Gender:             "female",
		CCCD:               "012345678913",
		RelationshipToHead: models.RelationshipHead,
		Status:             models.StatusPermanent,
	})
	assert.Equal(t, code.DuplicateChuHo, apiCode(t, err))
}

func TestCreatePersonCitizenCannotAssignHead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	citizen := seedUser(t, db, "012345678912", models.RoleCitizen, nil)

	err := svc.CreatePerson(citizen, &models.Person{
		HouseholdID:        household.ID,
		FullName:           "Nguyễn Văn An",
		Gender:             "male",
		RelationshipToHead: models.RelationshipHead,
		Status:             models.StatusPermanent,
	})
	assert.Equal(t, code.Forbidden, apiCode(t, err))
}

func TestCreatePersonValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))
	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")

	cases := []struct {
		name   string
		person models.Person
	}{
		{"no household", models.Person{FullName: "A", RelationshipToHead: models.RelationshipOther, Status: models.StatusPermanent}},
		{"unknown household", models.Person{HouseholdID: 999, FullName: "A", RelationshipToHead: models.RelationshipOther, Status: models.StatusPermanent}},
		{"invalid relationship", models.Person{HouseholdID: household.ID, FullName: "A", RelationshipToHead: "cousin", Status: models.StatusPermanent}},
		{"invalid status", models.Person{HouseholdID: household.ID, FullName: "A", RelationshipToHead: models.RelationshipOther, Status: "gone"}},
		{"short CCCD", models.Person{HouseholdID: household.ID, FullName: "A", CCCD: "123", RelationshipToHead: models.RelationshipOther, Status: models.StatusPermanent}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			person := tc.person
			err := svc.CreatePerson(staff, &person)
			assert.Equal(t, code.ValidationError, apiCode(t, err))
		})
	}
}

func TestUpdatePersonBecomesHead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	person := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipOther)
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))

	updated, err := svc.UpdatePerson(staff, person.ID, map[string]interface{}{
		"relationship_to_head": models.RelationshipHead,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsHead())

	var storedHousehold models.Household
	require.NoError(t, db.First(&storedHousehold, household.ID).Error)
	require.NotNil(t, storedHousehold.HeadID)
	assert.Equal(t, person.ID, *storedHousehold.HeadID)
}

func TestUpdatePersonKeepsOwnCCCD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	household := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	person := seedPerson(t, db, household.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	staff := seedUser(t, db, "canbo01", models.RoleStaff, taskPtr(models.TaskHouseholdRegistry))

	// Re-submitting the person's own CCCD is not a duplicate.
	updated, err := svc.UpdatePerson(staff, person.ID, map[string]interface{}{
		"cccd":       "012-345-678-912",
		"occupation": "Giáo viên",
	})
	require.NoError(t, err)
	assert.Equal(t, "012345678912", updated.CCCD)
	assert.Equal(t, "Giáo viên", updated.Occupation)
}

func TestSearchPersons(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPersonService(db, testConfig())

	h1 := seedHousehold(t, db, "HK-001", "12 Trần Phú")
	h2 := seedHousehold(t, db, "HK-002", "34 Lê Lợi")
	seedPerson(t, db, h1.ID, "Nguyễn Văn An", "012345678912", models.RelationshipHead)
	seedPerson(t, db, h1.ID, "Trần Thị Bình", "012345678913", models.RelationshipSpouse)
	seedPerson(t, db, h2.ID, "Nguyễn Văn Cường", "012345678914", models.RelationshipHead)

	t.Run("by name substring", func(t *testing.T) {
		persons, total, err := svc.SearchPersons(PersonFilter{Keyword: "Nguyễn"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, persons, 2)
	})

	t.Run("keyword matches formatted CCCD", func(t *testing.T) {
		_, total, err := svc.SearchPersons(PersonFilter{Keyword: "012-345-678-913"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("by household", func(t *testing.T) {
		_, total, err := svc.SearchPersons(PersonFilter{HouseholdID: h1.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("by relationship", func(t *testing.T) {
		_, total, err := svc.SearchPersons(PersonFilter{Relation: models.RelationshipHead})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("pagination", func(t *testing.T) {
		persons, total, err := svc.SearchPersons(PersonFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, persons, 1)
	})
}
