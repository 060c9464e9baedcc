package pathutil_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"seoforge/internal/handler/http/pathutil"
)

func TestParseUUID_Valid(t *testing.T) {
	want := uuid.MustParse("3f1c9a1e-8d4f-4f8e-9b2a-0c6d5e4f3a2b")

	got, err := pathutil.ParseUUID("3f1c9a1e-8d4f-4f8e-9b2a-0c6d5e4f3a2b")
	if err != nil {
		t.Fatalf("ParseUUID() error = %v", err)
	}
	if got != want {
		t.Errorf("ParseUUID() = %v, want %v", got, want)
	}
}

func TestParseUUID_TrimsWhitespace(t *testing.T) {
	got, err := pathutil.ParseUUID("  3f1c9a1e-8d4f-4f8e-9b2a-0c6d5e4f3a2b  ")
	if err != nil {
		t.Fatalf("ParseUUID() error = %v", err)
	}
	if got == uuid.Nil {
		t.Error("ParseUUID() returned nil UUID")
	}
}

func TestParseUUID_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"numeric", "123"},
		{"garbage", "not-a-uuid"},
		{"truncated", "3f1c9a1e-8d4f-4f8e-9b2a"},
		{"nil uuid", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pathutil.ParseUUID(tc.input)
			if !errors.Is(err, pathutil.ErrInvalidID) {
				t.Errorf("ParseUUID(%q) error = %v, want ErrInvalidID", tc.input, err)
			}
		})
	}
}
