// Package auth provides JWT authentication for the HTTP API: the token
// endpoint, the authorization middleware and the request-context identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"seoforge/internal/handler/http/respond"
)

type ctxKey string

const ctxUser ctxKey = "user"

// UserID returns the authenticated user's ID stored by Authz, or uuid.Nil
// when the request was not authenticated.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxUser).(uuid.UUID)
	return id
}

// WithUserID returns a context carrying the given user ID. Exported for
// handler tests that bypass the middleware.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUser, id)
}

// Authz is an authorization middleware that requires JWT authentication
// for all HTTP methods on protected endpoints.
//
// Public endpoints (health checks, metrics, swagger, the token endpoint)
// pass through without validation. Everything else requires a valid HS256
// bearer token whose subject is the user's UUID; the UUID is stored in the
// request context and read back with UserID.
//
// Every article and setting is scoped to the user in the token subject, so
// a valid token for one user can never read or mutate another user's data.
func Authz(next http.Handler) http.Handler {
	secret := []byte(os.Getenv("JWT_SECRET"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicEndpoint(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := validateJWT(r.Header.Get("Authorization"), secret)
		if err != nil {
			RecordTokenRejection(rejectionReason(err))
			respond.SafeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized: %w", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

var (
	errMissingToken = errors.New("missing bearer token")
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token expired")
	errInvalidSub   = errors.New("invalid sub claim")
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return "missing"
	case errors.Is(err, errExpiredToken):
		return "expired"
	case errors.Is(err, errInvalidSub):
		return "bad_subject"
	default:
		return "invalid"
	}
}

func validateJWT(authz string, secret []byte) (uuid.UUID, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return uuid.Nil, errMissingToken
	}
	tokenString := strings.TrimPrefix(authz, prefix)
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errInvalidToken
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
		return uuid.Nil, errExpiredToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errInvalidSub
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errInvalidSub
	}
	return userID, nil
}
