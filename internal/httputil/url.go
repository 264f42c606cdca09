// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a URL for deduplication and cache keying:
// lowercase host, fragment dropped, trailing slash trimmed. The empty
// string marks an unusable URL.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
