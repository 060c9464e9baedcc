// Package auth implements credential validation for the API's users.
// Users are configured through the environment; every user owns an ID that
// scopes all article and settings data.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for any authentication failure. The
// reason (unknown user vs. wrong password) is deliberately not exposed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is one configured API user.
type User struct {
	ID       uuid.UUID
	Email    string
	password string
}

// Credentials represents authentication credentials.
type Credentials struct {
	Email    string
	Password string
}

// Requirements defines the password policy applied at login.
type Requirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// DefaultRequirements returns the password policy used in production.
func DefaultRequirements() Requirements {
	return Requirements{
		MinPasswordLength: 12,
		WeakPasswords:     []string{"password", "123456", "admin", "test", "secret"},
	}
}

// Service validates credentials against the configured user set.
type Service struct {
	users []User
	req   Requirements
}

// New creates a Service over a fixed user set.
func New(users []User, req Requirements) *Service {
	return &Service{users: users, req: req}
}

// FromEnv builds the user set from the environment.
//
// SEOFORGE_USERS holds comma-separated "id:email:password" entries, where
// id is the user's UUID. When SEOFORGE_USERS is unset, a single user is
// read from ADMIN_USER_ID, ADMIN_USER and ADMIN_USER_PASSWORD.
func FromEnv(req Requirements) (*Service, error) {
	if raw := os.Getenv("SEOFORGE_USERS"); raw != "" {
		users, err := parseUsers(raw)
		if err != nil {
			return nil, err
		}
		return New(users, req), nil
	}

	id, err := uuid.Parse(os.Getenv("ADMIN_USER_ID"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_USER_ID must be a UUID: %w", err)
	}
	email := os.Getenv("ADMIN_USER")
	password := os.Getenv("ADMIN_USER_PASSWORD")
	if email == "" || password == "" {
		return nil, errors.New("ADMIN_USER and ADMIN_USER_PASSWORD must be set")
	}
	return New([]User{{ID: id, Email: email, password: password}}, req), nil
}

func parseUsers(raw string) ([]User, error) {
	var users []User
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed user entry (want id:email:password)")
		}
		id, err := uuid.Parse(fields[0])
		if err != nil {
			return nil, fmt.Errorf("user entry has invalid UUID: %w", err)
		}
		if fields[1] == "" || fields[2] == "" {
			return nil, errors.New("user entry has empty email or password")
		}
		users = append(users, User{ID: id, Email: fields[1], password: fields[2]})
	}
	if len(users) == 0 {
		return nil, errors.New("no users configured")
	}
	return users, nil
}

// Authenticate validates the credentials and returns the matching user.
// Comparisons are constant-time so response timing does not leak which
// part of the credentials was wrong.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*User, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if len(creds.Password) < s.req.MinPasswordLength {
		return nil, ErrInvalidCredentials
	}
	for _, weak := range s.req.WeakPasswords {
		if creds.Password == weak || strings.HasPrefix(creds.Password, weak) {
			return nil, ErrInvalidCredentials
		}
	}

	// Compare against every configured user so the scan time does not
	// depend on where (or whether) the email matches.
	var matched *User
	for i := range s.users {
		u := &s.users[i]
		emailOK := subtle.ConstantTimeCompare([]byte(creds.Email), []byte(u.Email)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(u.password)) == 1
		if emailOK && passOK {
			matched = u
		}
	}
	if matched == nil {
		return nil, ErrInvalidCredentials
	}
	return matched, nil
}

// Requirements returns the active password policy.
func (s *Service) Requirements() Requirements {
	return s.req
}

// NewUser constructs a User with the given password. Intended for tests
// and for wiring code that sources credentials outside the environment.
func NewUser(id uuid.UUID, email, password string) User {
	return User{ID: id, Email: email, password: password}
}
