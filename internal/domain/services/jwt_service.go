package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
)

// InterfaceJWTService defines the JWT service interface
type InterfaceJWTService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
}

// JWTService signs and validates bearer tokens.
type JWTService struct {
	secretKey string
	issuer    string
}

// JWTClaims is the token payload: identity plus the role/task needed by the
// authorization policy without a DB round trip.
type JWTClaims struct {
	UserID   uint    `json:"user_id"`
	Role     string  `json:"role"`
	Task     *string `json:"task,omitempty"`
	PersonID *uint   `json:"person_id,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "resident-management-system",
	}
}

// GenerateToken issues a token for a user. Tokens expire after 24 hours.
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	if s.secretKey == "" {
		return "", errors.New("JWT secret key is not configured")
	}

	now := time.Now()
	claims := &JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Task:     user.Task,
		PersonID: user.PersonID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken parses and validates a token string.
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims validates a token and returns its claims.
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
