package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/internal/dto"
	"github.com/Darlington720/library-module/internal/models"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
)

const sessionResource = "session"

type profileFetcher interface {
	FetchMyProfile(ctx context.Context, token string) (*models.Profile, error)
}

// SessionService turns a bearer token issued by the auth provider into a
// session carrying the administrator profile.
type SessionService struct {
	profiles   profileFetcher
	cache      *CacheService
	audit      auditLogger
	validator  *validator.Validate
	logger     *zap.Logger
	profileTTL time.Duration
	now        func() time.Time
}

// SessionServiceOption configures the session service.
type SessionServiceOption func(*SessionService)

// WithProfileCache caches resolved profiles for ttl, keyed by a token digest.
func WithProfileCache(cache *CacheService, ttl time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.cache = cache
		s.profileTTL = ttl
	}
}

// WithSessionClock replaces the time source.
func WithSessionClock(now func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSessionService constructs a SessionService.
func NewSessionService(profiles profileFetcher, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...SessionServiceOption) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	svc := &SessionService{
		profiles:   profiles,
		audit:      audit,
		validator:  validate,
		logger:     logger,
		profileTTL: time.Minute,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Resolve validates token and loads the profile it belongs to.
func (s *SessionService) Resolve(ctx context.Context, token, clientIP, userAgent string) (*models.Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing session token")
	}

	expiresAt := TokenExpiry(token)
	if expiresAt != nil && !s.now().Before(*expiresAt) {
		return nil, appErrors.Clone(appErrors.ErrAuthFailed, "session expired")
	}

	profile, err := s.profile(ctx, token, expiresAt)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		Token:     token,
		Profile:   *profile,
		ExpiresAt: expiresAt,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	}, nil
}

// Start resolves the token of a fresh sign-in and records it in the audit trail.
func (s *SessionService) Start(ctx context.Context, req dto.StartSessionRequest, clientIP, userAgent string) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "token is required")
	}
	session, err := s.Resolve(ctx, req.Token, clientIP, userAgent)
	if err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, session, &models.AuditLog{
		Action:     models.AuditActionSessionStart,
		Resource:   sessionResource,
		ResourceID: stringPtr(session.Profile.ID),
		NewValues:  auditValues(map[string]interface{}{"email": session.Profile.Email}),
	})
	s.logger.Info("session started", zap.String("actor", session.Actor()))
	return session, nil
}

// End drops any cached profile for token.
func (s *SessionService) End(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" || !s.cache.Enabled() {
		return
	}
	_ = s.cache.Invalidate(ctx, sessionCacheKey(token))
}

func (s *SessionService) profile(ctx context.Context, token string, expiresAt *time.Time) (*models.Profile, error) {
	key := sessionCacheKey(token)
	if s.cache.Enabled() {
		var cached models.Profile
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached.ID != "" {
			return &cached, nil
		}
	}

	profile, err := s.profiles.FetchMyProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrAuthFailed, "profile not found for session")
	}

	if s.cache.Enabled() {
		ttl := s.profileTTL
		if expiresAt != nil {
			if remaining := expiresAt.Sub(s.now()); remaining < ttl {
				ttl = remaining
			}
		}
		if ttl > 0 {
			_ = s.cache.Set(ctx, key, profile, ttl)
		}
	}
	return profile, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens and tokens without exp yield nil.
func TokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}

func sessionCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return CacheKey("session", hex.EncodeToString(sum[:]))
}
