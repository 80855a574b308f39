// Package session issues and resolves login sessions: signed JWTs whose jti is
// bound server-side to a user ID, so logout and account deletion take effect
// immediately.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "warbler-api"
	Audience = "warbler-client"
)

// UserLoader loads a user by ID, returning a NOT_FOUND AppError when absent.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Manager implements login, caller resolution and logout.
type Manager struct {
	store  Store
	users  UserLoader
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager signing tokens with secret and expiring sessions after ttl.
func NewManager(store Store, users UserLoader, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL is how long a session stays valid after login.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login starts a session for user and returns its token.
func (m *Manager) Login(ctx context.Context, user *models.User) (string, error) {
	if user == nil {
		return "", models.NewUnauthorizedError("Authentication required")
	}

	now := m.now()
	jti := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        jti,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if err := m.store.Bind(ctx, jti, user.ID, m.ttl); err != nil {
		return "", models.NewInternalError(err)
	}

	observability.SessionEvents.WithLabelValues("login").Inc()
	middleware.Logger.InfoContext(ctx, "session started", slog.Uint64("session_user_id", uint64(user.ID)))
	return token, nil
}

func (m *Manager) keyFunc(*jwt.Token) (interface{}, error) {
	return m.secret, nil
}

func (m *Manager) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, m.keyFunc, opts...); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no jti")
	}
	return claims, nil
}

// ResolveCaller maps a token to its user. Any invalid, expired, revoked or
// orphaned token yields nil, nil; errors are reserved for storage failures.
func (m *Manager) ResolveCaller(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := m.parse(token,
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		observability.SessionEvents.WithLabelValues("rejected").Inc()
		return nil, nil
	}

	sub, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, nil
	}

	bound, ok, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok || bound != uint(sub) {
		observability.SessionEvents.WithLabelValues("rejected").Inc()
		return nil, nil
	}

	user, err := m.users.GetByID(ctx, bound)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Logout ends the session named by token. Unknown or already-ended sessions are ignored.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// Expired tokens may still be logged out; only the signature must hold.
	claims, err := m.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := m.store.Revoke(ctx, claims.ID); err != nil {
		return models.NewInternalError(err)
	}

	observability.SessionEvents.WithLabelValues("logout").Inc()
	return nil
}
