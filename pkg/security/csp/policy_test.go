package csp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_InsertionOrder(t *testing.T) {
	p := New().
		Set("default-src", "'self'").
		Set("script-src", "'self'", "https://cdn.example.com")

	assert.Equal(t, "default-src 'self'; script-src 'self' https://cdn.example.com", p.Build())
}

func TestBuild_EmptyPolicy(t *testing.T) {
	assert.Empty(t, New().Build())
}

func TestSet_ReplacesDirective(t *testing.T) {
	p := New().
		Set("default-src", "'self'").
		Set("default-src", "'none'")

	assert.Equal(t, "default-src 'none'", p.Build())
}

func TestSet_EmptySourcesSkipped(t *testing.T) {
	p := New().
		Set("default-src", "'self'").
		Set("script-src")

	assert.Equal(t, "default-src 'self'", p.Build())
}

func TestHeaderName(t *testing.T) {
	assert.Equal(t, "Content-Security-Policy", New().HeaderName())
	assert.Equal(t, "Content-Security-Policy-Report-Only", New().ReportOnly().HeaderName())
}

func TestStrictPolicy(t *testing.T) {
	v := StrictPolicy().Build()

	assert.True(t, strings.HasPrefix(v, "default-src 'none'"), "everything blocked by default, got %q", v)
	assert.Contains(t, v, "frame-ancestors 'none'")
	assert.NotContains(t, v, "unsafe-inline")
}

func TestSwaggerUIPolicy(t *testing.T) {
	v := SwaggerUIPolicy().Build()

	assert.Contains(t, v, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, v, "img-src 'self' data: https:")
	assert.Contains(t, v, "connect-src 'self' blob:")
	assert.Contains(t, v, "object-src 'none'")
}
