package service

import (
	"complyflow/internal/model"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles officer and respondent authentication
type AuthService struct {
	officerUsername string
	officerPassword string
	jwtSecret       []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	username := os.Getenv("OFFICER_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("OFFICER_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		officerUsername: username,
		officerPassword: password,
		jwtSecret:       []byte(secret),
	}
}

// Login validates credentials and returns an officer token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.officerUsername || password != s.officerPassword {
		return nil, ErrInvalidCredentials
	}

	officerID := "o_" + uuid.New().String()[:8]

	claims := &model.OfficerClaims{
		OfficerID: officerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			// No expiry for single-officer deployments
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		OfficerID: officerID,
	}, nil
}

// ValidateOfficerToken validates an officer JWT and returns claims
func (s *AuthService) ValidateOfficerToken(tokenString string) (*model.OfficerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.OfficerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.OfficerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateRespondentToken creates a session-scoped token for a respondent
func (s *AuthService) GenerateRespondentToken(sessionID, userID, standardID string) (string, error) {
	claims := &model.RespondentClaims{
		SessionID:  sessionID,
		UserID:     userID,
		StandardID: standardID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 24h per assessment session
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateRespondentToken validates a respondent JWT and returns claims
func (s *AuthService) ValidateRespondentToken(tokenString string) (*model.RespondentClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.RespondentClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.RespondentClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
