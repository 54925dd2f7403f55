package utils

import (
	"context"
	"errors"

	"backoffice/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserEmailNotFound  = errors.New("userEmail not found in context")
	ErrUserEmailNotString = errors.New("userEmail in context is not a string")
	ErrUserRoleNotFound   = errors.New("userRole not found in context")
	ErrUserRoleNotString  = errors.New("userRole in context is not a string")
	ErrRequestIDNotFound  = errors.New("requestID not found in context")
	ErrRequestIDNotString = errors.New("requestID in context is not a string")
	ErrLanguageNotFound   = errors.New("language not found in context")
	ErrLanguageNotString  = errors.New("language in context is not a string")
)

func stringValue(ctx context.Context, key interface{}, missing, wrongType error) (string, error) {
	val := ctx.Value(key)
	if val == nil {
		return "", missing
	}
	s, ok := val.(string)
	if !ok {
		return "", wrongType
	}
	return s, nil
}

// GetUserEmailFromContext retrieves the email of the authorized operator.
func GetUserEmailFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.UserEmailKey, ErrUserEmailNotFound, ErrUserEmailNotString)
}

// GetUserRoleFromContext retrieves the role of the authorized operator.
func GetUserRoleFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.UserRoleKey, ErrUserRoleNotFound, ErrUserRoleNotString)
}

// GetRequestIDFromContext retrieves the request ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.RequestIDKey, ErrRequestIDNotFound, ErrRequestIDNotString)
}

// GetLanguageFromContext retrieves the resolved display language.
func GetLanguageFromContext(ctx context.Context) (string, error) {
	return stringValue(ctx, contextkeys.LanguageKey, ErrLanguageNotFound, ErrLanguageNotString)
}

// WithUserEmail returns a new context with the operator email set.
func WithUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextkeys.UserEmailKey, email)
}

// WithUserRole returns a new context with the operator role set.
func WithUserRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, contextkeys.UserRoleKey, role)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextkeys.RequestIDKey, requestID)
}

// WithLanguage returns a new context with the display language set.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextkeys.LanguageKey, lang)
}

// WithEntity returns a new context naming the entity a request operates on.
func WithEntity(ctx context.Context, entity string) context.Context {
	return context.WithValue(ctx, contextkeys.EntityKey, entity)
}
