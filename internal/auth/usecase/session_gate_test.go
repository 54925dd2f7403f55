package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/auth/adapter/security"
	"backoffice/internal/auth/domain/model"
	"backoffice/internal/auth/usecase"
	"backoffice/internal/config"
	"backoffice/internal/shared/eventbus"
	apperrors "backoffice/internal/shared/errors"
	"backoffice/internal/shared/logger"
	"backoffice/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type SessionGateSuite struct {
	suite.Suite
	store  store.Store
	bus    *eventbus.EventBus
	tokens *security.JWTokenService
	gate   *usecase.SessionGate
}

func (s *SessionGateSuite) SetupTest() {
	s.store = store.NewMemoryStore()
	s.bus = eventbus.NewEventBus(logger.NewNop())

	tokens, err := security.NewJWTokenService(config.AuthConfig{
		JWTSecretKey:   "test-secret-key-32-characters-long-12345",
		JWTIssuer:      "backoffice",
		AccessTokenTTL: time.Hour,
	})
	s.Require().NoError(err)
	s.tokens = tokens

	creds, err := security.NewDemoCredentialProvider(security.DemoAccounts, bcrypt.MinCost)
	s.Require().NoError(err)

	s.gate = usecase.NewSessionGate(s.store, creds, tokens, s.bus, nil)
}

func (s *SessionGateSuite) authenticated() bool {
	ok, err := s.gate.IsAuthenticated(context.Background())
	s.Require().NoError(err)
	return ok
}

func (s *SessionGateSuite) TestStartsLoggedOut() {
	s.False(s.authenticated())
	profile, err := s.gate.Current(context.Background())
	s.NoError(err)
	s.Nil(profile)
}

func (s *SessionGateSuite) TestLogin_PersistsBothMarkers() {
	ctx := context.Background()
	profile, token, err := s.gate.Login(ctx, "  mina@aromefloral.ma ", " arome2025 ")
	s.Require().NoError(err)

	s.Equal("Mina", profile.Name)
	s.Equal(model.RoleAdmin, profile.Role)
	s.False(profile.LoginTime.IsZero())
	s.NotEmpty(token)
	s.True(s.authenticated())

	var stored model.UserProfile
	s.Require().NoError(store.GetJSON(ctx, s.store, usecase.ProfileKey, &stored))
	s.Equal(profile.Email, stored.Email)

	raw, err := s.store.Get(ctx, usecase.TokenKey)
	s.Require().NoError(err)
	s.Equal(token, string(raw))
}

func (s *SessionGateSuite) TestLogin_BlankFields() {
	_, _, err := s.gate.Login(context.Background(), "   ", "")
	s.True(apperrors.IsValidation(err))

	var appErr *apperrors.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Contains(appErr.Details, "validation_errors")
	s.False(s.authenticated())
}

func (s *SessionGateSuite) TestLogin_InvalidCredentials() {
	_, _, err := s.gate.Login(context.Background(), "mina@aromefloral.ma", "wrong")
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
	s.Equal(401, apperrors.HTTPStatus(err))
	s.False(s.authenticated())
}

func (s *SessionGateSuite) TestLogout_RemovesMarkers() {
	ctx := context.Background()
	_, _, err := s.gate.Login(ctx, "client@aromefloral.ma", "client123")
	s.Require().NoError(err)

	s.Require().NoError(s.gate.Logout(ctx))
	s.False(s.authenticated())

	_, err = s.store.Get(ctx, usecase.TokenKey)
	s.ErrorIs(err, store.ErrNotFound)

	s.NoError(s.gate.Logout(ctx))
}

func (s *SessionGateSuite) TestAuthenticatedRequiresBothMarkers() {
	ctx := context.Background()
	_, _, err := s.gate.Login(ctx, "mina@aromefloral.ma", "arome2025")
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, usecase.ProfileKey))
	s.False(s.authenticated())
}

func (s *SessionGateSuite) TestAuthorize() {
	ctx := context.Background()
	_, token, err := s.gate.Login(ctx, "mina@aromefloral.ma", "arome2025")
	s.Require().NoError(err)

	claims, err := s.gate.Authorize(ctx, token)
	s.Require().NoError(err)
	s.Equal("mina@aromefloral.ma", claims.Email)

	// A valid token that is not the stored marker is refused.
	other, err := s.tokens.GenerateToken(ctx, model.UserProfile{Email: "mina@aromefloral.ma"})
	s.Require().NoError(err)
	if other != token {
		_, err = s.gate.Authorize(ctx, other)
		s.ErrorIs(err, apperrors.ErrUnauthorized)
	}

	_, err = s.gate.Authorize(ctx, "")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	s.Require().NoError(s.gate.Logout(ctx))
	_, err = s.gate.Authorize(ctx, token)
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *SessionGateSuite) TestAuthorize_TamperedMarker() {
	ctx := context.Background()
	_, _, err := s.gate.Login(ctx, "mina@aromefloral.ma", "arome2025")
	s.Require().NoError(err)

	s.Require().NoError(s.store.Set(ctx, usecase.TokenKey, []byte("forged")))
	_, err = s.gate.Authorize(ctx, "forged")
	s.ErrorIs(err, apperrors.ErrInvalidToken)
}

func (s *SessionGateSuite) TestLogin_PublishesEvent() {
	got := make(chan eventbus.Event, 1)
	unsubscribe := s.bus.Subscribe(eventbus.EventTypeUserLoggedIn, func(_ context.Context, e eventbus.Event) error {
		got <- e
		return nil
	})
	defer unsubscribe()

	_, _, err := s.gate.Login(context.Background(), "mina@aromefloral.ma", "arome2025")
	s.Require().NoError(err)

	select {
	case e := <-got:
		profile, ok := e.Data().(model.UserProfile)
		s.Require().True(ok)
		s.Equal("mina@aromefloral.ma", profile.Email)
	case <-time.After(time.Second):
		s.Fail("login event not published")
	}
}

func TestSessionGateSuite(t *testing.T) {
	suite.Run(t, new(SessionGateSuite))
}

func TestLogin_PersistenceFailure(t *testing.T) {
	creds, err := security.NewDemoCredentialProvider(security.DemoAccounts, bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := security.NewJWTokenService(config.AuthConfig{JWTSecretKey: "k", JWTIssuer: "i", AccessTokenTTL: time.Hour})
	require.NoError(t, err)

	gate := usecase.NewSessionGate(failingStore{store.NewMemoryStore()}, creds, tokens, nil, nil)
	_, _, err = gate.Login(context.Background(), "mina@aromefloral.ma", "arome2025")
	assert.True(t, apperrors.IsPersistence(err))
}

type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("disk full") }
