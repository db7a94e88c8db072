// Package scrape turns a URL into page content, via Firecrawl or a
// deterministic offline fetcher.
package scrape

import (
	"net"
	"net/url"
	"strings"

	"github.com/leadforge/leadforge/internal/domain"
)

// NormalizeURL validates a raw URL and returns a canonical absolute form.
// A missing scheme defaults to https. Anything that is not plain http(s)
// to a public host is rejected.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidURL
	}

	lower := strings.ToLower(raw)
	for _, bad := range []string{"javascript:", "data:", "<script", "<iframe"} {
		if strings.Contains(lower, bad) {
			return "", domain.ErrInvalidURL
		}
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", domain.ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", domain.ErrInvalidURL
	}

	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") {
		return "", domain.ErrInvalidURL
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return "", domain.ErrInvalidURL
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
			return "", domain.ErrInvalidURL
		}
	}

	return u.String(), nil
}
