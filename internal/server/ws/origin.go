package ws

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy is the browser origin allow-list shared by the WebSocket
// handshake and the CORS middleware. "*" allows every origin.
type OriginPolicy struct {
	allowed  map[string]struct{}
	allowAll bool
}

// NewOriginPolicy normalizes origins; invalid entries are returned so the
// caller can log them.
func NewOriginPolicy(origins []string) (*OriginPolicy, []string) {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(origins))}
	var invalid []string

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			p.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			invalid = append(invalid, origin)
			continue
		}
		p.allowed[normalized] = struct{}{}
	}

	return p, invalid
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// Allowed reports whether a non-empty Origin header value is on the list.
func (p *OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	if p.allowAll {
		return true
	}
	_, exists := p.allowed[normalized]
	return exists
}

// CheckRequest is the WebSocket handshake check. Requests without an Origin
// header come from non-browser clients and are let through.
func (p *OriginPolicy) CheckRequest(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return p.Allowed(origin)
}
