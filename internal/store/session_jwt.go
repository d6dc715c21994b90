package store

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"vecare/pkg/domain"
)

const jwtIssuer = "vecare"

// JWTSessionStore issues and validates stateless HS256 session tokens.
// Logout cannot revoke a stateless token; deployments that need that
// use the Redis session store instead.
type JWTSessionStore struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// NewJWTSessionStore builds a stateless JWT session store.
func NewJWTSessionStore(secret string, ttl time.Duration) *JWTSessionStore {
	return &JWTSessionStore{secret: []byte(secret), ttl: ttl}
}

// NewSession signs a token carrying the principal's role and name.
func (s *JWTSessionStore) NewSession(p domain.Principal) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: string(p.Role),
		Name: p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   string(p.Role),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// PrincipalByToken validates a token and returns the principal it carries.
// An invalid or expired token yields ok=false with a nil error; the
// caller treats it the same as a missing session.
func (s *JWTSessionStore) PrincipalByToken(token string) (domain.Principal, bool, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unsupported signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return domain.Principal{}, false, nil
	}
	if claims.Role == "" {
		return domain.Principal{}, false, nil
	}
	return domain.Principal{Role: domain.Role(claims.Role), Name: claims.Name}, true, nil
}

// DeleteSession is a no-op for stateless JWT; provided for interface parity.
func (s *JWTSessionStore) DeleteSession(_ string) error {
	return nil
}
