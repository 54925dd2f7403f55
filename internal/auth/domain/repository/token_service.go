package repository

import (
	"context"

	"backoffice/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, profile model.UserProfile) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// CredentialProvider matches an email/password pair against known accounts.
type CredentialProvider interface {
	Authenticate(ctx context.Context, email, password string) (*model.Account, error)
}
