package envelope

import (
	"net/url"
	"strings"
)

// NormalizeBase64 repairs the envelope encoding as delivered by redirect
// transports: percent-escapes are decoded when present, whitespace is
// stripped, the URL-safe alphabet is converted to standard, and padding is
// restored to a multiple of four.
func NormalizeBase64(s string) string {
	if strings.Contains(s, "%") {
		if unescaped, err := url.QueryUnescape(s); err == nil {
			s = unescaped
		}
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)

	s = strings.ReplaceAll(s, "-", "+")
	s = strings.ReplaceAll(s, "_", "/")

	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	return s
}
