package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators embedded in claims so a refresh token can never be
// presented as an access token and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// RegisterRequest holds the self-service registration payload.
type RegisterRequest struct {
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	DepartmentID *string `json:"department_id"`
	Year         *int    `json:"year"`
	Semester     *int    `json:"semester"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// GoogleAuthRequest carries the Google-signed identity token.
type GoogleAuthRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GitHubAuthRequest carries the GitHub authorization code.
type GitHubAuthRequest struct {
	Code string `json:"code" validate:"required"`
}

// TokenPair is the session credential pair. The refresh token is delivered via
// an HttpOnly cookie and never serialized into a response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResponse returns the issued access token and user info.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RefreshResponse returns a fresh access token.
type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UpdateProfileRequest is the self-service profile patch; privileged fields
// (role, flags, staff/student ids) are deliberately absent.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	DepartmentID *string `json:"department_id"`
	Year         *int    `json:"year"`
	Semester     *int    `json:"semester"`
}

// AdminUpdateUserRequest is the unrestricted admin patch.
type AdminUpdateUserRequest struct {
	FirstName    *string   `json:"first_name"`
	LastName     *string   `json:"last_name"`
	Email        *string   `json:"email" validate:"omitempty,email"`
	Role         *UserRole `json:"role"`
	IsActive     *bool     `json:"is_active"`
	IsVerified   *bool     `json:"is_verified"`
	DepartmentID *string   `json:"department_id"`
	Year         *int      `json:"year"`
	Semester     *int      `json:"semester"`
	StudentID    *string   `json:"student_id"`
	StaffID      *string   `json:"staff_id"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for issued tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// Info builds the response view of a user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
