package jobs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cuongbtq/video-downloader/internal/domain"
)

// DefaultAllowedHosts are accepted when no hosts are configured
var DefaultAllowedHosts = []string{"youtube.com", "youtu.be"}

// AllowList accepts URLs whose host is one of the configured hosts or a subdomain of one
type AllowList struct {
	hosts []string
}

// NewAllowList creates an allow-list for the given hosts
func NewAllowList(hosts []string) *AllowList {
	if len(hosts) == 0 {
		hosts = DefaultAllowedHosts
	}

	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			normalized = append(normalized, h)
		}
	}

	return &AllowList{hosts: normalized}
}

// Normalize validates raw and returns the URL handed to the downloader
func (a *AllowList) Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: malformed url", domain.ErrInvalidInput)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidInput, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: url has no host", domain.ErrInvalidInput)
	}

	if !a.allowed(host) {
		return "", fmt.Errorf("%w: host %q is not supported", domain.ErrInvalidInput, host)
	}

	return u.String(), nil
}

func (a *AllowList) allowed(host string) bool {
	for _, h := range a.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
