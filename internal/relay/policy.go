package relay

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errMissingTarget = errors.New("missing target url")

// ResolveTarget parses the relay's target parameter. The value may arrive
// already percent-decoded (the usual case once a router has parsed the
// query string) or still encoded; it is decoded at most once, and only when
// the raw form is not already an absolute URL.
func ResolveTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errMissingTarget
	}
	if u, ok := parseAbsolute(raw); ok {
		return u, nil
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		if u, ok := parseAbsolute(decoded); ok {
			return u, nil
		}
	}
	return nil, fmt.Errorf("invalid target url %q", truncate(raw, 80))
}

func parseAbsolute(s string) (*url.URL, bool) {
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// HostAllowed reports whether host is domain itself or one of its
// subdomains. Matching is on label boundaries, so "eviltarget.com" does not
// pass for domain "target.com".
func HostAllowed(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// checkTarget resolves target and applies the allow-list.
func checkTarget(target, domain string) (*url.URL, Response, bool) {
	u, err := ResolveTarget(target)
	if err != nil {
		return nil, Rejected(err.Error()), false
	}
	if !HostAllowed(u.Hostname(), domain) {
		return nil, Rejected(fmt.Sprintf("host %s is not allowed", u.Hostname())), false
	}
	return u, Response{}, true
}
