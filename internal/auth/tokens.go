package auth

import (
	"strconv"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// IssuedToken is a signed login token and the identifiers needed to revoke it
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// TokenIssuer signs login tokens for users authenticating with email and password
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(user *models.User) (IssuedToken, error) {
	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	issuedAt := i.now()
	claims := newClaims(strconv.FormatUint(uint64(user.ID), 10), role, issuedAt, i.ttl)
	signed, err := jwt.NewWithClaims(SigningMethod, claims).SignedString(i.key)
	if err != nil {
		return IssuedToken{}, err
	}

	return IssuedToken{
		Token:     signed,
		JTI:       claims["jti"].(string),
		ExpiresAt: issuedAt.Add(i.ttl),
	}, nil
}
