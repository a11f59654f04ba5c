package quickenrich

import "strings"

// NormalizeURL strips the scheme, a leading "www." and one trailing slash, in that order.
func NormalizeURL(raw string) string {
	s := raw
	switch {
	case strings.HasPrefix(s, "https://"):
		s = strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		s = strings.TrimPrefix(s, "http://")
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
