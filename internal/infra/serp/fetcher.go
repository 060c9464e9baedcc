package serp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"seoforge/internal/resilience/circuitbreaker"
)

const maxRedirects = 5

// PageFetcher downloads a competitor page and extracts its title, heading
// outline and readable text length. Safe for concurrent use.
type PageFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
}

// NewPageFetcher creates a PageFetcher with redirect validation and the
// serp-fetch circuit breaker.
func NewPageFetcher(config Config) *PageFetcher {
	f := &PageFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.SerpFetchConfig()),
		config:         config,
	}
	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: too many redirects", ErrInvalidURL)
			}
			return validateURL(req.URL.String(), config.DenyPrivateIPs)
		},
	}
	return f
}

// Fetch downloads the page and extracts its structure.
func (f *PageFetcher) Fetch(ctx context.Context, urlStr string) (*CompetitorPage, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return nil, err
	}
	return result.(*CompetitorPage), nil
}

func (f *PageFetcher) doFetch(ctx context.Context, urlStr string) (*CompetitorPage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", "SEOForgeBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch competitor page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch competitor page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read competitor page: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	page := &CompetitorPage{URL: urlStr}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse competitor page: %w", err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if h := strings.TrimSpace(sel.Text()); h != "" {
			page.Headings = append(page.Headings, h)
		}
	})

	// Readable text length feeds the generator's target-length heuristic.
	// Extraction failures are tolerable; the heading outline is the
	// important part.
	finalURL := resp.Request.URL
	if article, err := readability.FromReader(bytes.NewReader(body), finalURL); err == nil {
		page.TextLength = len([]rune(article.TextContent))
	}

	return page, nil
}

// validateURL rejects non-HTTP schemes and, when enabled, hosts resolving
// to loopback, private or link-local addresses.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: %s resolves to blocked address %s", ErrInvalidURL, hostname, ip)
		}
	}
	return nil
}
