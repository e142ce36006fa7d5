package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dsicola/dsicola-sub019/internal/shared"
)

// Token scopes. A pending token is only good for completing the 2FA handshake.
const (
	ScopeFull       = "full"
	Scope2FAPending = "2fa_pending"
)

const pendingTokenTTL = 5 * time.Minute

// Claims carried inside the signed bearer token.
type Claims struct {
	Role          string  `json:"role"`
	InstitutionID *string `json:"institution_id,omitempty"`
	Scope         string  `json:"scope"`
	jwt.RegisteredClaims
}

// ErrTokenInvalid covers malformed, expired, or mis-signed tokens.
var ErrTokenInvalid = errors.New("auth: invalid token")

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Issue signs a full-access token for the user.
func (t *TokenIssuer) Issue(user User) (string, error) {
	return t.sign(user, ScopeFull, t.expiry)
}

// IssuePending signs a short-lived token usable only to complete 2FA.
func (t *TokenIssuer) IssuePending(user User) (string, error) {
	return t.sign(user, Scope2FAPending, pendingTokenTTL)
}

func (t *TokenIssuer) sign(user User, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:  string(user.Role),
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    "dsicola",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if user.InstitutionID != nil {
		id := user.InstitutionID.String()
		claims.InstitutionID = &id
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token string.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Principal converts verified claims into the request principal.
func (c *Claims) Principal() (shared.Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return shared.Principal{}, ErrTokenInvalid
	}
	role, err := shared.ParseRole(c.Role)
	if err != nil {
		return shared.Principal{}, ErrTokenInvalid
	}
	principal := shared.Principal{UserID: userID, Role: role}
	if c.InstitutionID != nil {
		instID, err := uuid.Parse(*c.InstitutionID)
		if err != nil {
			return shared.Principal{}, ErrTokenInvalid
		}
		principal.InstitutionID = &instID
	}
	return principal, nil
}
