package model

import "github.com/golang-jwt/jwt/v5"

// OfficerClaims are JWT claims for compliance-officer authentication
type OfficerClaims struct {
	OfficerID string `json:"officerId"`
	jwt.RegisteredClaims
}

// RespondentClaims are JWT claims for session-scoped respondent tokens
type RespondentClaims struct {
	SessionID  string `json:"sessionId"`
	UserID     string `json:"userId"`
	StandardID string `json:"standardId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for officer login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token     string `json:"token"`
	OfficerID string `json:"officerId"`
}
