package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

func TestRegisterNormalizesCCCDIntoUsername(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	user, err := svc.Register("012-345-678-912", "matkhau123", "Nguyễn Văn An")
	require.NoError(t, err)

	assert.Equal(t, "012345678912", user.Username)
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.True(t, user.Active)
	// The model hook hashed the password on insert.
	assert.NotEqual(t, "matkhau123", user.Password)
	assert.True(t, utils.CheckPasswordHash("matkhau123", user.Password))
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	_, err := svc.Register("12345", "matkhau123", "Quá ngắn")
	assert.Equal(t, code.ValidationError, apiCode(t, err))

	_, err = svc.Register("012345678912", "abc", "Mật khẩu ngắn")
	assert.Equal(t, code.ValidationError, apiCode(t, err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	_, err := svc.Register("012345678912", "matkhau123", "Người thứ nhất")
	require.NoError(t, err)

	// The same identity number in a different format is still a duplicate.
	_, err = svc.Register("012 345 678 912", "matkhau456", "Người thứ hai")
	assert.Equal(t, code.UsernameExists, apiCode(t, err))
}

func TestLoginAcceptsFormattedCCCD(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	_, err := svc.Register("012345678912", "matkhau123", "Nguyễn Văn An")
	require.NoError(t, err)

	user, token, err := svc.Login("012-345-678-912", "matkhau123")
	require.NoError(t, err)
	assert.Equal(t, "012345678912", user.Username)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	_, err := svc.Register("012345678912", "matkhau123", "Nguyễn Văn An")
	require.NoError(t, err)

	_, _, err = svc.Login("012345678912", "saimatkhau")
	assert.Equal(t, code.InvalidCredentials, apiCode(t, err))

	_, _, err = svc.Login("khongtontai", "matkhau123")
	assert.Equal(t, code.InvalidCredentials, apiCode(t, err))
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg, NewJWTService(cfg))

	user, err := svc.Register("012345678912", "matkhau123", "Nguyễn Văn An")
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("active", false).Error)

	_, _, err = svc.Login("012345678912", "matkhau123")
	assert.Equal(t, code.InvalidCredentials, apiCode(t, err))
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testConfig()
	jwtService := NewJWTService(cfg)

	task := models.TaskPetitions
	user := &models.User{
		BaseModel: models.BaseModel{ID: 42},
		Role:      models.RoleStaff,
		Task:      &task,
	}
	token, err := jwtService.GenerateToken(user)
	require.NoError(t, err)

	claims, err := jwtService.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	require.NotNil(t, claims.Task)
	assert.Equal(t, models.TaskPetitions, *claims.Task)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	cfg := testConfig()
	jwtService := NewJWTService(cfg)

	other := testConfig()
	other.JWTSecretKey = "another-secret-key-9876543210"
	foreign := NewJWTService(other)

	token, err := foreign.GenerateToken(&models.User{BaseModel: models.BaseModel{ID: 1}, Role: models.RoleCitizen})
	require.NoError(t, err)

	_, err = jwtService.ExtractClaims(token)
	assert.Error(t, err)
}
