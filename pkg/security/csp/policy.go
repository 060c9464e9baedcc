// Package csp builds Content-Security-Policy header values. The API
// serves JSON plus the Swagger UI, so two canned policies cover it: a
// strict one that blocks everything an API response never needs, and a
// looser one for the UI's inline scripts and styles.
package csp

import "strings"

// Directives are emitted in insertion order so the header value is
// stable across restarts.
type Policy struct {
	order      []string
	sources    map[string][]string
	reportOnly bool
}

// New returns an empty policy.
func New() *Policy {
	return &Policy{sources: make(map[string][]string)}
}

// Set adds or replaces one directive.
func (p *Policy) Set(directive string, sources ...string) *Policy {
	if _, seen := p.sources[directive]; !seen {
		p.order = append(p.order, directive)
	}
	p.sources[directive] = sources
	return p
}

// ReportOnly switches the policy to report-without-blocking mode, which
// changes the header name Build's value is sent under.
func (p *Policy) ReportOnly() *Policy {
	p.reportOnly = true
	return p
}

// Build renders the header value, directives joined by "; ".
func (p *Policy) Build() string {
	parts := make([]string, 0, len(p.order))
	for _, directive := range p.order {
		sources := p.sources[directive]
		if len(sources) == 0 {
			continue
		}
		parts = append(parts, directive+" "+strings.Join(sources, " "))
	}
	return strings.Join(parts, "; ")
}

// HeaderName picks the enforcing or report-only header.
func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// StrictPolicy locks down JSON endpoints: no content loads at all,
// framing blocked, forms and base URIs pinned to the origin.
func StrictPolicy() *Policy {
	return New().
		Set("default-src", "'none'").
		Set("connect-src", "'self'").
		Set("frame-ancestors", "'none'").
		Set("base-uri", "'self'").
		Set("form-action", "'self'")
}

// SwaggerUIPolicy allows what the bundled Swagger UI needs to render:
// inline scripts and styles, data: images and blob: spec loading.
func SwaggerUIPolicy() *Policy {
	return New().
		Set("default-src", "'self'").
		Set("script-src", "'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net").
		Set("style-src", "'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net").
		Set("img-src", "'self'", "data:", "https:").
		Set("font-src", "'self'", "data:").
		Set("connect-src", "'self'", "blob:").
		Set("frame-ancestors", "'none'").
		Set("base-uri", "'self'").
		Set("form-action", "'self'").
		Set("object-src", "'none'")
}
