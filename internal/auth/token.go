package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/attendly/attendly/internal/model"
)

// DefaultTokenTTL is the session lifetime the configuration falls back
// to when TOKEN_TTL is unset.
const DefaultTokenTTL = time.Hour

// Token validation errors. The middleware maps these to 401 responses
// without exposing which check failed beyond the coarse category.
var (
	// ErrMissingToken indicates no token was presented.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken indicates a signature or shape failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked indicates the jti is in the revocation store.
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims is the payload embedded in session tokens.
type Claims struct {
	IsOrganiser bool `json:"is_organiser"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id carried in the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject: %w", ErrInvalidToken)
	}
	return id, nil
}

// TokenManager issues and validates signed session tokens. A token moves
// from Active to Expired when its exp passes, or to Revoked when its jti
// enters the revocation store; both states are terminal.
type TokenManager struct {
	secret      []byte
	ttl         time.Duration
	issuer      string
	revocations RevocationStore
}

// NewTokenManager creates a TokenManager. An empty secret is a
// deployment bug and fails here rather than per request.
func NewTokenManager(secret string, ttl time.Duration, issuer string, revocations RevocationStore) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenManager{
		secret:      []byte(secret),
		ttl:         ttl,
		issuer:      issuer,
		revocations: revocations,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for the user with a fresh jti and
// expiry = now + TTL.
func (m *TokenManager) Issue(user *model.User) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		IsOrganiser: user.IsOrganiser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ulid.Make().String(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Validate checks signature, expiry and revocation, in that order.
// On success it returns the embedded claims.
func (m *TokenManager) Validate(ctx context.Context, raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}

	claims, err := m.parse(raw, true)
	if err != nil {
		return nil, err
	}

	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke adds the token's jti to the revocation store for the remainder
// of its lifetime and reports whether a new revocation was recorded.
// Revoking an already-revoked or expired token is a no-op returning
// false.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) (bool, error) {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return false, nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	added, err := m.revocations.Add(ctx, claims.ID, ttl)
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return added, nil
}

// ExtractClaims verifies the signature but skips expiry validation.
// Logout uses it so presenting an expired token still succeeds
// idempotently.
func (m *TokenManager) ExtractClaims(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMissingToken
	}
	return m.parse(raw, false)
}

func (m *TokenManager) parse(raw string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromHeader extracts a bearer token from an Authorization header
// value.
func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
