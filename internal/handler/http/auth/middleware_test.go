package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/handler/http/auth"
)

const testSecret = "unit-test-jwt-secret-value"

var testUserID = uuid.MustParse("7a3e9f10-1b2c-4d5e-8f90-a1b2c3d4e5f6")

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": testUserID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

// echoUser writes the user ID the middleware stored in the context.
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(auth.UserID(r.Context()).String()))
	})
}

func TestAuthz_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), testSecret))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID.String(), rec.Body.String())
}

func TestAuthz_MissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), "other-secret"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_ExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_SubjectMustBeUUID(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	claims := validClaims()
	claims["sub"] = "writer@example.com"

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_RejectsUnexpectedAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(echoUser())

	// alg=none token with a valid-looking payload
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_PublicEndpointBypassesAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	handler := auth.Authz(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/metrics", "/auth/token", "/swagger/index.html"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestUserID_AbsentFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, uuid.Nil, auth.UserID(req.Context()))
}

func TestIsPublicEndpoint(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/health?format=json", true},
		{"/health/detail", false},
		{"/healthcheck", false},
		{"/swagger/index.html", true},
		{"/auth/token", true},
		{"/auth/token/", true},
		{"/articles", false},
		{"/settings", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, auth.IsPublicEndpoint(tc.path), "path %s", tc.path)
	}
}
