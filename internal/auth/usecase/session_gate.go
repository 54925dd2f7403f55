package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/auth/domain/model"
	"backoffice/internal/auth/domain/repository"
	"backoffice/internal/shared/eventbus"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"
)

// Keys of the two session markers.
const (
	ProfileKey = "aromefloral_currentUser"
	TokenKey   = "aromefloral_authToken"
)

// SessionGateInterface is what the HTTP layer needs from the gate.
type SessionGateInterface interface {
	IsAuthenticated(ctx context.Context) (bool, error)
	Current(ctx context.Context) (*model.UserProfile, error)
	Login(ctx context.Context, email, password string) (*model.UserProfile, string, error)
	Logout(ctx context.Context) error
	Authorize(ctx context.Context, token string) (*repository.Claims, error)
}

// SessionGate holds the single operator session of the panel. The session
// exists exactly when both markers are persisted.
type SessionGate struct {
	store  store.Store
	creds  repository.CredentialProvider
	tokens repository.TokenService
	bus    eventbus.Bus
	log    logger.Logger
	now    func() time.Time
}

// NewSessionGate wires the gate; bus may be nil.
func NewSessionGate(s store.Store, creds repository.CredentialProvider, tokens repository.TokenService, bus eventbus.Bus, log logger.Logger) *SessionGate {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionGate{
		store:  s,
		creds:  creds,
		tokens: tokens,
		bus:    bus,
		log:    log.WithComponent("session"),
		now:    time.Now,
	}
}

// IsAuthenticated reports whether both markers are present.
func (g *SessionGate) IsAuthenticated(ctx context.Context) (bool, error) {
	for _, key := range []string{ProfileKey, TokenKey} {
		if _, err := g.store.Get(ctx, key); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, apperrors.NewInfrastructureError("failed to read session").WithCause(err)
		}
	}
	return true, nil
}

// Current returns the logged-in profile, or nil when there is no session.
func (g *SessionGate) Current(ctx context.Context) (*model.UserProfile, error) {
	ok, err := g.IsAuthenticated(ctx)
	if err != nil || !ok {
		return nil, err
	}
	var profile model.UserProfile
	if err := store.GetJSON(ctx, g.store, ProfileKey, &profile); err != nil {
		return nil, apperrors.NewInfrastructureError("failed to read session").WithCause(err)
	}
	return &profile, nil
}

// Login checks the credentials and persists both markers.
func (g *SessionGate) Login(ctx context.Context, email, password string) (*model.UserProfile, string, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	verrs := apperrors.NewValidationErrors()
	if email == "" {
		verrs.Add("email", "email is required", nil)
	}
	if password == "" {
		verrs.Add("password", "password is required", nil)
	}
	if verrs.HasErrors() {
		return nil, "", verrs.ToAppError()
	}

	account, err := g.creds.Authenticate(ctx, email, password)
	if err != nil {
		g.log.WithFields(map[string]interface{}{"email": email}).Warn("Login rejected")
		return nil, "", err
	}

	profile := account.Profile(g.now())
	token, err := g.tokens.GenerateToken(ctx, profile)
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to issue session token").WithCause(err)
	}

	if err := store.SetJSON(ctx, g.store, ProfileKey, profile); err != nil {
		return nil, "", apperrors.NewPersistenceError(ProfileKey, err)
	}
	if err := g.store.Set(ctx, TokenKey, []byte(token)); err != nil {
		_ = g.store.Delete(ctx, ProfileKey)
		return nil, "", apperrors.NewPersistenceError(TokenKey, err)
	}

	g.log.WithFields(map[string]interface{}{"email": profile.Email, "role": profile.Role}).Info("Operator logged in")
	g.publish(ctx, eventbus.EventTypeUserLoggedIn, profile)
	return &profile, token, nil
}

// Logout removes both markers. Logging out without a session is not an error.
func (g *SessionGate) Logout(ctx context.Context) error {
	profile, _ := g.Current(ctx)

	var errs []error
	for _, key := range []string{ProfileKey, TokenKey} {
		if err := g.store.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return apperrors.NewInfrastructureError("failed to clear session").WithCause(err)
	}

	if profile != nil {
		g.publish(ctx, eventbus.EventTypeUserLoggedOut, *profile)
	}
	return nil
}

// Authorize admits token when a session exists, the token is the one the
// session stored, and it verifies.
func (g *SessionGate) Authorize(ctx context.Context, token string) (*repository.Claims, error) {
	if token == "" {
		return nil, unauthorized("authentication required")
	}

	stored, err := g.store.Get(ctx, TokenKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, unauthorized("no active session")
	}
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to read session").WithCause(err)
	}
	if _, err := g.store.Get(ctx, ProfileKey); err != nil {
		return nil, unauthorized("no active session")
	}
	if string(stored) != token {
		return nil, unauthorized("token does not match the active session")
	}

	claims, err := g.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, unauthorized("invalid token").WithCause(errors.Join(apperrors.ErrUnauthorized, apperrors.ErrInvalidToken, err))
	}
	return claims, nil
}

func unauthorized(msg string) *apperrors.AppError {
	return apperrors.NewAuthenticationError(msg).WithCause(apperrors.ErrUnauthorized)
}

func (g *SessionGate) publish(ctx context.Context, eventType string, profile model.UserProfile) {
	if g.bus == nil {
		return
	}
	g.bus.PublishAndForget(ctx, eventbus.NewEvent(eventType, profile, "session"))
}

var _ SessionGateInterface = (*SessionGate)(nil)
