package admin

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NonceAction names the settings form action and its form field.
const NonceAction = "wprobo-ccp"

var ErrInvalidNonce = errors.New("invalid nonce")

type nonceClaims struct {
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// Nonces issues and checks short-lived form tokens bound to an action and a user.
type Nonces struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewNonces(secret string, ttl time.Duration) *Nonces {
	return &Nonces{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (n *Nonces) Create(action, user string) (string, error) {
	now := n.now()
	claims := nonceClaims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(n.secret)
}

func (n *Nonces) Verify(token, action, user string) error {
	if token == "" {
		return ErrInvalidNonce
	}

	parsed, err := jwt.ParseWithClaims(token, &nonceClaims{}, func(t *jwt.Token) (interface{}, error) {
		return n.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(n.now),
	)
	if err != nil {
		return ErrInvalidNonce
	}

	claims, ok := parsed.Claims.(*nonceClaims)
	if !ok || !parsed.Valid || claims.Action != action || claims.Subject != user {
		return ErrInvalidNonce
	}
	return nil
}
