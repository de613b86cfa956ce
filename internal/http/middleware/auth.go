// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer authentication. A valid HS256 token's "sub"
// claim (plus the optional "email" claim) is resolved to a stored user,
// which is created on first sight. In development, when no token secret is
// configured, the X-User-ID header can stand in for the subject.
//
// On success the internal user id is stored under "userID" and the user
// under "user", and the request-scoped logger gains a user_id field.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-habit-backend/internal/domain"
)

// HeaderDevUser carries the subject when dev-header identity is enabled.
const HeaderDevUser = "X-User-ID"

const ctxKeyUser = "user"

// UserResolver maps an authenticated subject to a stored user.
type UserResolver interface {
	Resolve(ctx context.Context, subject, email string) (*domain.User, error)
}

// AuthOptions configures Auth.
type AuthOptions struct {
	// Secret is the HS256 signing key. Empty disables token auth.
	Secret string
	// Issuer, when set, must match the token's "iss" claim.
	Issuer string
	// AllowDevHeader accepts X-User-ID when no bearer token is presented.
	AllowDevHeader bool
}

type authClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth authenticates the request and resolves the caller. Requests without
// a usable identity are rejected with 401; resolver failures with 500.
func Auth(opts AuthOptions, users UserResolver) gin.HandlerFunc {
	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		popts = append(popts, jwt.WithIssuer(opts.Issuer))
	}
	parser := jwt.NewParser(popts...)
	secret := []byte(opts.Secret)
	keyFn := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *gin.Context) {
		var subject, email string
		raw, hasToken := bearerToken(c)
		switch {
		case hasToken && len(secret) > 0:
			claims := &authClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFn); err != nil || strings.TrimSpace(claims.Subject) == "" {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			subject, email = claims.Subject, claims.Email
		case opts.AllowDevHeader:
			subject = strings.TrimSpace(c.GetHeader(HeaderDevUser))
		}
		if subject == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}

		u, err := users.Resolve(c.Request.Context(), subject, email)
		if err != nil || u == nil {
			LoggerFrom(c).Error().Err(err).Msg("resolve user")
			abortJSON(c, http.StatusInternalServerError, "internal_error", "could not resolve user")
			return
		}

		c.Set("userID", u.ID)
		c.Set(ctxKeyUser, u)
		lg := LoggerFrom(c).With().Str("user_id", u.ID).Logger()
		c.Set("logger", &lg)
		c.Request = c.Request.WithContext(lg.WithContext(c.Request.Context()))

		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func bearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}
