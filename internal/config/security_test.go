package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSecurityConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		validate    func(*testing.T, *SecurityConfig)
	}{
		{
			name: "valid config",
			configYAML: `security:
  auth:
    min_password_length: 12
    weak_passwords:
      - "admin"
      - "password"
  jwt:
    expiry_hours: 24
`,
			validate: func(t *testing.T, config *SecurityConfig) {
				if got := config.GetMinPasswordLength(); got != 12 {
					t.Errorf("expected min_password_length 12, got %d", got)
				}
				if got := len(config.GetWeakPasswords()); got != 2 {
					t.Errorf("expected 2 weak passwords, got %d", got)
				}
				if got := config.GetJWTExpiryHours(); got != 24 {
					t.Errorf("expected expiry_hours 24, got %d", got)
				}
			},
		},
		{
			name: "missing password length",
			configYAML: `security:
  jwt:
    expiry_hours: 24
`,
			expectError: true,
		},
		{
			name: "password length below minimum",
			configYAML: `security:
  auth:
    min_password_length: 4
  jwt:
    expiry_hours: 24
`,
			expectError: true,
		},
		{
			name: "missing jwt expiry",
			configYAML: `security:
  auth:
    min_password_length: 12
`,
			expectError: true,
		},
		{
			name:        "malformed yaml",
			configYAML:  "security: [not a mapping",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.configYAML)

			config, err := LoadSecurityConfig(path)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}

func TestLoadSecurityConfig_MissingFile(t *testing.T) {
	if _, err := LoadSecurityConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
