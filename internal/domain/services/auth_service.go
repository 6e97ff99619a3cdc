package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

// InterfaceAuthService defines the authentication service interface
type InterfaceAuthService interface {
	Register(cccd, password, fullName string) (*models.User, error)
	Login(username, password string) (*models.User, string, error)
	GetUserByID(id uint) (*models.User, error)
}

// AuthService handles registration and credential exchange.
type AuthService struct {
	DB     *gorm.DB
	Config *config.Config
	jwt    InterfaceJWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(db *gorm.DB, cfg *config.Config, jwtService InterfaceJWTService) InterfaceAuthService {
	return &AuthService{DB: db, Config: cfg, jwt: jwtService}
}

// Register creates a citizen account. The identity number becomes the
// username, stored normalized; the bcrypt hook on the model hashes the
// password.
func (s *AuthService) Register(cccd, password, fullName string) (*models.User, error) {
	normalized := utils.NormalizeCCCD(cccd)
	if !utils.IsValidCCCD(normalized) {
		return nil, code.NewWithMessage(code.ValidationError, "Số CCCD/CMND phải gồm 9-12 chữ số")
	}
	if len(password) < 6 {
		return nil, code.NewWithMessage(code.ValidationError, "Mật khẩu phải có ít nhất 6 ký tự")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", normalized).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, code.New(code.UsernameExists)
	}

	user := &models.User{
		Username: normalized,
		Password: password,
		FullName: fullName,
		Role:     models.RoleCitizen,
	}
	if err := s.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Login exchanges credentials for a bearer token. Citizens may type their
// identity number with spaces or dashes; the normalized form is tried when
// the literal username does not match.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && utils.IsValidCCCD(username) {
		err = s.DB.Where("username = ?", utils.NormalizeCCCD(username)).First(&user).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", code.New(code.InvalidCredentials)
	}
	if err != nil {
		return nil, "", err
	}

	if !user.Active || !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", code.New(code.InvalidCredentials)
	}

	token, err := s.jwt.GenerateToken(&user)
	if err != nil {
		return nil, "", code.New(code.ConfigError)
	}
	return &user, token, nil
}

// GetUserByID loads an active user.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, code.New(code.Unauthorized)
	}
	return &user, nil
}
