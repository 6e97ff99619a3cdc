package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// setupTestDB opens a private in-memory database with the full schema.
// MaxOpenConns(1) keeps gorm on the single connection that owns the
// in-memory data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Household{},
		&models.Person{},
		&models.ChangeRequest{},
		&models.TemporaryResidency{},
		&models.Attachment{},
		&models.Feedback{},
		&models.Notification{},
		&models.AuditLog{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey: "unit-test-secret-key-0123456789",
		ServerPort:   "8080",
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, role string, task *string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Password: "secret123",
		FullName: "Người dùng " + username,
		Role:     role,
		Task:     task,
		Active:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedHousehold(t *testing.T, db *gorm.DB, codeValue, address string) *models.Household {
	t.Helper()
	household := &models.Household{Code: codeValue, Address: address, Ward: "Phường 1", District: "Quận 1"}
	require.NoError(t, db.Create(household).Error)
	return household
}

// seedPerson inserts a person row directly. A head relationship also sets
// the household's head_id, mirroring what the service layer maintains.
func seedPerson(t *testing.T, db *gorm.DB, householdID uint, name, cccd, relationship string) *models.Person {
	t.Helper()
	person := &models.Person{
		HouseholdID:        householdID,
		FullName:           name,
		Gender:             "male",
		CCCD:               cccd,
		RelationshipToHead: relationship,
		Status:             models.StatusPermanent,
	}
	require.NoError(t, db.Create(person).Error)
	if relationship == models.RelationshipHead {
		require.NoError(t, db.Model(&models.Household{}).Where("id = ?", householdID).
			Update("head_id", person.ID).Error)
	}
	return person
}

// linkCitizen ties a citizen account to a person on both sides.
func linkCitizen(t *testing.T, db *gorm.DB, user *models.User, person *models.Person) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("person_id", person.ID).Error)
	require.NoError(t, db.Model(person).Update("user_id", user.ID).Error)
	user.PersonID = &person.ID
	person.UserID = &user.ID
}

// apiCode asserts that err is a domain error and returns its code.
func apiCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *code.Error
	require.ErrorAs(t, err, &apiErr)
	return apiErr.Code
}

func taskPtr(task string) *string { return &task }
