package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult contains a signed token and the authenticated user
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	TokenType string
	User      UserInfo
}

// UserInfo contains basic user information
type UserInfo struct {
	ID       uuid.UUID
	Email    string
	FullName string
	Role     string
}
