package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token is malformed, expired, or signed
// with the wrong secret.
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the JWT claims shared by access and refresh tokens: the user id
// (sub), the role set at issuance time, and the role version at issuance time.
// Embedded roles go stale when the user's roles change; RoleVersion lets the
// auth service detect that without a user lookup on every request.
type Claims struct {
	jwt.RegisteredClaims
	Roles       []string `json:"roles"`
	RoleVersion int64    `json:"role_version"`
}

// TokenProvider issues and validates the HS256 access/refresh token pair.
// Access and refresh tokens are signed with separate secrets so a leaked
// access secret cannot mint refresh tokens.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given secrets.
func NewTokenProvider(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess issues a short-lived access JWT embedding the user's id, roles,
// and role version.
func (p *TokenProvider) IssueAccess(userID string, roles []string, roleVersion int64) (string, error) {
	return p.sign(p.accessSecret, userID, roles, roleVersion, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh JWT with the same claims shape.
func (p *TokenProvider) IssueRefresh(userID string, roles []string, roleVersion int64) (string, error) {
	return p.sign(p.refreshSecret, userID, roles, roleVersion, p.refreshTTL)
}

func (p *TokenProvider) sign(secret []byte, userID string, roles []string, roleVersion int64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// The unique id keeps two tokens minted within the same second
			// from colliding, since sessions are looked up by token value.
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles:       roles,
		RoleVersion: roleVersion,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ValidateAccess parses and validates an access token (signature, exp, iss).
func (p *TokenProvider) ValidateAccess(tokenString string) (*Claims, error) {
	return p.validate(p.accessSecret, tokenString)
}

// ValidateRefresh parses and validates a refresh token (signature, exp, iss).
func (p *TokenProvider) ValidateRefresh(tokenString string) (*Claims, error) {
	return p.validate(p.refreshSecret, tokenString)
}

func (p *TokenProvider) validate(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
