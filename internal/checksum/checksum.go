// Package checksum computes content digests for library files and the
// HTTP entity tags derived from them.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns sum as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// ParseETag returns the digest carried by an If-Match style header value.
// Weak tags and surrounding quotes are accepted; "*" and "" yield "".
func ParseETag(header string) string {
	v := strings.TrimSpace(header)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	if v == "*" {
		return ""
	}
	return v
}

// Matches reports whether data has the digest sum.
func Matches(data []byte, sum string) bool {
	return Sum(data) == sum
}
