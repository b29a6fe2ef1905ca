package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
)

// Kind distinguishes access from refresh credentials.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Identity is the structured result of verifying a credential. It is the
// only representation of "current user" threaded through the system.
type Identity struct {
	Subject uuid.UUID
	Email   string
	Role    string
	Expiry  time.Time
	Kind    Kind
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return strings.EqualFold(i.Role, "admin")
}

// Claims is the wire shape of an issued credential.
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Manager encapsulates issuing and verifying signed bearer credentials.
// It is pure computation over the shared secret; nothing is persisted.
type Manager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager builds a manager with the configured secret, algorithm and
// independent access/refresh lifetimes.
func NewManager(secret, algorithm string, accessTTL, refreshTTL time.Duration) *Manager {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &Manager{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue encodes an identity into a signed credential of the requested kind.
func (m *Manager) Issue(identity Identity, kind Kind) (string, error) {
	now := time.Now().UTC()

	ttl := m.accessTTL
	if kind == KindRefresh {
		ttl = m.refreshTTL
	}

	claims := Claims{
		Email:     identity.Email,
		Role:      identity.Role,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "TOKEN_SIGN", "could not sign credential", err)
	}
	return signed, nil
}

// TTL returns the configured lifetime for a credential kind.
func (m *Manager) TTL(kind Kind) time.Duration {
	if kind == KindRefresh {
		return m.refreshTTL
	}
	return m.accessTTL
}

// Verify decodes and validates a credential against signature, expiry and
// the expected kind. A credential of the wrong kind is never partially
// trusted: an access token cannot pass as refresh and vice versa.
func (m *Manager) Verify(token string, expected Kind) (Identity, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{m.method.Alg()}))

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.KindUnauthenticated, "AUTH", "could not validate credentials", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Identity{}, apperr.Unauthenticated("could not validate credentials")
	}

	if claims.TokenType != string(expected) {
		return Identity{}, apperr.Unauthenticated("invalid token type")
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, apperr.Unauthenticated("invalid subject claim")
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	return Identity{
		Subject: subject,
		Email:   claims.Email,
		Role:    claims.Role,
		Expiry:  expiry,
		Kind:    Kind(claims.TokenType),
	}, nil
}

// Refresh derives a fresh access credential from a valid refresh credential,
// carrying over subject, email and role. The refresh credential presented is
// NOT invalidated: it stays usable until its own expiry. Logout only clears
// client cookies.
func (m *Manager) Refresh(refreshToken string) (string, error) {
	identity, err := m.Verify(refreshToken, KindRefresh)
	if err != nil {
		return "", err
	}
	return m.Issue(identity, KindAccess)
}
