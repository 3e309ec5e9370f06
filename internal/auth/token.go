package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the validity window of issued tokens.
const DefaultTokenTTL = 15 * time.Minute

// ErrInvalidToken is returned when a token is malformed, forged or expired.
var ErrInvalidToken = errors.New("invalid token")

// Claims identify the holder of a token.
type Claims struct {
	UserID    int64
	FirstName string
	LastName  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies credential tokens.
type Issuer interface {
	Sign(c Claims) (string, error)
	Verify(token string) (Claims, error)
}

type jwtClaims struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	jwt.RegisteredClaims
}

// JWTIssuer is an Issuer producing HS256-signed JWTs.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer returns an issuer signing with secret. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for c. IssuedAt and ExpiresAt are set by the issuer.
func (i *JWTIssuer) Sign(c Claims) (string, error) {
	now := i.now()
	claims := &jwtClaims{
		UserID:    c.UserID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return t, nil
}

// Verify checks the signature and expiry of token and returns its claims.
func (i *JWTIssuer) Verify(token string) (Claims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}

	out := Claims{
		UserID:    claims.UserID,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
