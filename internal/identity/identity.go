// Package identity resolves who is booking.  A guest carries no token; a
// signed-in user carries an access token (JWT) that is forwarded to the
// booking authority and that switches reservation attempts from guest
// fields to the account.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an access token cannot be parsed,
// fails signature checks or carries no subject.
var ErrInvalidToken = errors.New("invalid access token")

// User is an authenticated account.  Token is the raw JWT so it can be
// forwarded upstream unchanged.
type User struct {
	Subject string
	Role    string
	Token   string
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user stored in ctx.  The second result is false
// for guests.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok && u.Subject != ""
}

// Bearer extracts the token from an Authorization header value.
func Bearer(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return raw, raw != ""
}

// Parse reads the subject and role claims of an access token.  When secret
// is non-empty the token must be an HMAC-signed JWT valid under that
// secret.  With an empty secret the token is read without verification;
// the authority re-validates it on every call anyway.
func Parse(raw, secret string) (User, error) {
	var (
		tok *jwt.Token
		err error
	)
	if secret == "" {
		tok, _, err = jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	} else {
		tok, err = jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(secret), nil
		})
		if err == nil && !tok.Valid {
			err = ErrInvalidToken
		}
	}
	if err != nil {
		return User{}, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, ErrInvalidToken
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return User{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return User{Subject: sub, Role: role, Token: raw}, nil
}
