package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/service/auth"
)

var testUserID = uuid.MustParse("7a3e9f10-1b2c-4d5e-8f90-a1b2c3d4e5f6")

func newService() *auth.Service {
	users := []auth.User{
		auth.NewUser(testUserID, "writer@example.com", "correct-horse-battery"),
		auth.NewUser(uuid.New(), "editor@example.com", "another-long-password"),
	}
	return auth.New(users, auth.DefaultRequirements())
}

/* ─── authentication ─── */

func TestAuthenticate_Success(t *testing.T) {
	svc := newService()

	user, err := svc.Authenticate(context.Background(), auth.Credentials{
		Email:    "writer@example.com",
		Password: "correct-horse-battery",
	})

	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
	assert.Equal(t, "writer@example.com", user.Email)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc := newService()

	_, err := svc.Authenticate(context.Background(), auth.Credentials{
		Email:    "writer@example.com",
		Password: "wrong-but-long-enough",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := newService()

	_, err := svc.Authenticate(context.Background(), auth.Credentials{
		Email:    "nobody@example.com",
		Password: "correct-horse-battery",
	})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_EmptyCredentials(t *testing.T) {
	svc := newService()

	_, err := svc.Authenticate(context.Background(), auth.Credentials{})

	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthenticate_PolicyViolations(t *testing.T) {
	svc := newService()

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "short"},
		{"weak password", "password"},
		{"weak prefix", "password12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), auth.Credentials{
				Email:    "writer@example.com",
				Password: tc.password,
			})
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

/* ─── environment parsing ─── */

func TestFromEnv_UserList(t *testing.T) {
	t.Setenv("SEOFORGE_USERS",
		testUserID.String()+":writer@example.com:correct-horse-battery")

	svc, err := auth.FromEnv(auth.DefaultRequirements())
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), auth.Credentials{
		Email:    "writer@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
}

func TestFromEnv_AdminFallback(t *testing.T) {
	t.Setenv("SEOFORGE_USERS", "")
	t.Setenv("ADMIN_USER_ID", testUserID.String())
	t.Setenv("ADMIN_USER", "admin@example.com")
	t.Setenv("ADMIN_USER_PASSWORD", "correct-horse-battery")

	svc, err := auth.FromEnv(auth.DefaultRequirements())
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), auth.Credentials{
		Email:    "admin@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
}

func TestFromEnv_MalformedEntry(t *testing.T) {
	t.Setenv("SEOFORGE_USERS", "not-a-uuid:writer@example.com:pw")

	_, err := auth.FromEnv(auth.DefaultRequirements())
	assert.Error(t, err)
}

func TestFromEnv_MissingAdminID(t *testing.T) {
	t.Setenv("SEOFORGE_USERS", "")
	t.Setenv("ADMIN_USER_ID", "")

	_, err := auth.FromEnv(auth.DefaultRequirements())
	require.Error(t, err)
	assert.False(t, errors.Is(err, auth.ErrInvalidCredentials))
}
