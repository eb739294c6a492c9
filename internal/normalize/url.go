package normalize

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeSourceURL canonicalizes a listing URL so that re-observations of
// the same listing carry an identical source_url: lowercased scheme and host,
// "www." stripped, internationalized hosts mapped to ASCII, fragment dropped.
func NormalizeSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	u.Host = host
	if u.Host != "" && u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	return u.String(), nil
}
