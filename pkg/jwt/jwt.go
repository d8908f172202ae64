package jwt

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type standardClaims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

// Engine signs tokens whose subject is the user id. The object is optional
// data attached to the token.
type Engine[T any] struct {
	Expiration time.Duration

	secret  string
	issuer  string
	counter atomic.Int64
}

func NewEngine[T any](secret, issuer string, expiration time.Duration) *Engine[T] {
	return &Engine[T]{
		secret:     secret,
		issuer:     issuer,
		Expiration: expiration,
	}
}

func (e *Engine[T]) Generate(sub string, obj T) (string, error) {
	now := time.Now()
	claims := standardClaims[T]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(e.Expiration)),
			ID:        fmt.Sprintf("%d-%s", e.counter.Add(1), uuid.NewString()[:8]),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    e.issuer,
			NotBefore: jwt.NewNumericDate(now),
			Subject:   sub,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(e.secret))
}

type Verifier[T any] struct {
	secret string
	issuer string
}

// NewVerifier creates a verifier of HMAC tokens. An empty issuer accepts
// tokens of any issuer.
func NewVerifier[T any](secret, issuer string) *Verifier[T] {
	return &Verifier[T]{secret: secret, issuer: issuer}
}

// Verify returns the subject and the object of a valid token.
func (v *Verifier[T]) Verify(token string) (string, T, error) {
	var claims standardClaims[T]
	_, err := jwt.ParseWithClaims(
		token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(v.secret), nil
		},
	)
	if err != nil {
		return "", claims.Object, err
	}

	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return "", claims.Object, fmt.Errorf("unexpected issuer %s", claims.Issuer)
	}

	if claims.Subject == "" {
		return "", claims.Object, fmt.Errorf("token has no subject")
	}

	return claims.Subject, claims.Object, nil
}
