package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParseLimitOffset parses common pagination params and clamps to sane bounds.
// - defLimit: default limit when not specified
// - maxLimit: maximum allowed limit (values > maxLimit are clamped to maxLimit).
func ParseLimitOffset(r *http.Request, defLimit, maxLimit int) (int, int) {
	if maxLimit < 1 {
		maxLimit = 1
	}

	lim := parseIntQuery(r, "limit", defLimit)
	off := parseIntQuery(r, "offset", 0)
	if lim < 1 {
		lim = 1
	}
	if lim > maxLimit {
		lim = maxLimit
	}
	if off < 0 {
		off = 0
	}
	return lim, off
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// attachmentDisposition builds a Content-Disposition value for a download.
// Names outside ASCII get an underscored ASCII fallback plus an RFC 5987
// filename* parameter carrying the UTF-8 name.
func attachmentDisposition(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		switch {
		case r >= utf8.RuneSelf:
			return '_'
		case r < 0x20, r == 0x7f, r == '"', r == '\\':
			return -1
		default:
			return r
		}
	}, filename)
	v := `attachment; filename="` + ascii + `"`
	if ascii == filename {
		return v
	}
	return v + "; filename*=UTF-8''" + encodeExtValue(filename)
}

// encodeExtValue percent-encodes everything but RFC 5987 attr-chars.
func encodeExtValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
