// Package auth issues and verifies bearer tokens.
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zeebo/errs"
)

// Roles carried in tokens.
const (
	RoleAdmin  = "admin"
	RoleArtist = "artist"
	RoleUser   = "user"
)

var (
	// ErrUnauthorized means the request carried no valid principal.
	ErrUnauthorized = errs.Class("unauthorized")
	// ErrForbidden means the principal lacks the role or ownership required.
	ErrForbidden = errs.Class("forbidden")
)

// ValidRole reports whether role is known.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleArtist, RoleUser:
		return true
	}
	return false
}

// Claims are the JWT claims of a principal.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin reports whether p may act on any resource.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// HasRole reports whether p holds one of roles.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanModify reports whether p may mutate a resource owned by ownerID.
func (p Principal) CanModify(ownerID string) bool {
	return p.IsAdmin() || (p.UserID != "" && p.UserID == ownerID)
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A zero ttl means 24h.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errs.New("JWT secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateToken 生成JWT token
func (i *Issuer) GenerateToken(userID, role string) (string, error) {
	if userID == "" {
		return "", errs.New("user id is empty")
	}
	if !ValidRole(role) {
		return "", errs.New("unknown role %q", role)
	}

	now := i.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errs.Wrap(err)
	}
	return signed, nil
}

// ParseToken 解析并验证JWT token
func (i *Issuer) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, ErrUnauthorized.Wrap(err)
	}
	if !token.Valid || claims.UserID == "" || !ValidRole(claims.Role) {
		return nil, ErrUnauthorized.New("invalid token claims")
	}
	return claims, nil
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
