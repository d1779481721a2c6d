package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	"github.com/Darlington720/library-module/internal/repository"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

type stubProfiles struct {
	profile *models.Profile
	err     error
	calls   int
	tokens  []string
}

func (s *stubProfiles) FetchMyProfile(_ context.Context, token string) (*models.Profile, error) {
	s.calls++
	s.tokens = append(s.tokens, token)
	return s.profile, s.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin-1", "exp": exp.Unix()})
	raw, err := token.SignedString([]byte("not-verified"))
	require.NoError(t, err)
	return raw
}

var sessionNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func newSessionFixture(profiles *stubProfiles, opts ...SessionServiceOption) (*SessionService, *repository.MemoryAuditRepository) {
	audit := repository.NewMemoryAuditRepository()
	opts = append([]SessionServiceOption{WithSessionClock(func() time.Time { return sessionNow })}, opts...)
	return NewSessionService(profiles, audit, nil, nil, opts...), audit
}

func TestResolveRequiresToken(t *testing.T) {
	profiles := &stubProfiles{}
	svc, _ := newSessionFixture(profiles)

	_, err := svc.Resolve(context.Background(), "  ", "", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
	assert.Zero(t, profiles.calls)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{ID: "p-1"}}
	svc, _ := newSessionFixture(profiles)

	_, err := svc.Resolve(context.Background(), signedToken(t, sessionNow.Add(-time.Minute)), "", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrAuthFailed))
	assert.Zero(t, profiles.calls)
}

func TestResolveLoadsProfile(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{ID: "p-1", UserID: "admin-1", Email: "admin@nkumba.ac.ug"}}
	svc, _ := newSessionFixture(profiles)
	exp := sessionNow.Add(time.Hour)
	token := signedToken(t, exp)

	session, err := svc.Resolve(context.Background(), "Bearer "+token, "10.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, token, session.Token)
	assert.Equal(t, "admin-1", session.Actor())
	require.NotNil(t, session.ExpiresAt)
	assert.Equal(t, exp.Unix(), session.ExpiresAt.Unix())
	assert.Equal(t, []string{token}, profiles.tokens)
}

func TestResolveAcceptsOpaqueToken(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{ID: "p-1"}}
	svc, _ := newSessionFixture(profiles)

	session, err := svc.Resolve(context.Background(), "opaque-token", "", "")
	require.NoError(t, err)
	assert.Nil(t, session.ExpiresAt)
}

func TestResolveEmptyProfileIsAuthFailure(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{}}
	svc, _ := newSessionFixture(profiles)

	_, err := svc.Resolve(context.Background(), "opaque-token", "", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrAuthFailed))
}

func TestResolveUsesProfileCache(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{ID: "p-1", Email: "admin@nkumba.ac.ug"}}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc, _ := newSessionFixture(profiles, WithProfileCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		session, err := svc.Resolve(context.Background(), "opaque-token", "", "")
		require.NoError(t, err)
		assert.Equal(t, "admin@nkumba.ac.ug", session.Profile.Email)
	}
	assert.Equal(t, 1, profiles.calls)

	svc.End(context.Background(), "opaque-token")
	_, err := svc.Resolve(context.Background(), "opaque-token", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, profiles.calls)
}

func TestStartRecordsAudit(t *testing.T) {
	profiles := &stubProfiles{profile: &models.Profile{ID: "p-1", UserID: "admin-1", Email: "admin@nkumba.ac.ug"}}
	svc, audit := newSessionFixture(profiles)

	_, err := svc.Start(context.Background(), dto.StartSessionRequest{}, "", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	session, err := svc.Start(context.Background(), dto.StartSessionRequest{Token: "opaque-token"}, "10.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, "p-1", session.Profile.ID)

	logs, err := audit.ListAuditLogs(context.Background(), models.AuditFilter{Resource: "session"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionSessionStart, logs[0].Action)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
}

func TestTokenExpiry(t *testing.T) {
	exp := sessionNow.Add(time.Hour)
	got := TokenExpiry(signedToken(t, exp))
	require.NotNil(t, got)
	assert.Equal(t, exp.Unix(), got.Unix())
	assert.Nil(t, TokenExpiry("not-a-jwt"))
}
