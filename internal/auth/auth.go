package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/pkg/apperr"
)

type ctxKey string

// ClaimsKey is the request context key the Authentication middleware stores Claims under.
const ClaimsKey ctxKey = "claims"

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the payload of a session token.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"nome"`
	jwt.RegisteredClaims
}

// Keys signs and validates session tokens with a shared HMAC secret.
type Keys struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewKeys returns Keys for secret. A zero ttl selects DefaultTokenTTL.
func NewKeys(secret []byte, ttl time.Duration) (*Keys, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Keys{secret: secret, ttl: ttl, now: time.Now}, nil
}

// IssueToken signs a token for the given customer identity.
func (k *Keys) IssueToken(id int64, email, name string) (string, error) {
	now := k.now()
	claims := Claims{
		ID:    id,
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(k.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(k.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenStr and checks signature, algorithm and expiry.
func (k *Keys) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return k.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(k.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperr.Newf(apperr.ErrInvalidToken, "Invalid token: %v", err)
	}
	if !token.Valid {
		return Claims{}, apperr.New(apperr.ErrInvalidToken, "Invalid token")
	}
	return claims, nil
}
