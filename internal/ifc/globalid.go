package ifc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/ifcstep/internal/apperr"
	"github.com/starford/ifcstep/internal/step"
)

// globalIDChars is the IFC base-64 alphabet. It differs from RFC 4648.
const globalIDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// GlobalIDLen is the length of a compressed GlobalId.
const GlobalIDLen = 22

// NewGlobalID returns a fresh random GlobalId.
func NewGlobalID() string {
	return CompressGUID(uuid.New())
}

// CompressGUID encodes a 128-bit GUID as 22 characters. The first character
// carries the top 2 bits, the others 6 bits each.
func CompressGUID(u uuid.UUID) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
		lo = lo<<8 | uint64(u[i+8])
	}
	var out [GlobalIDLen]byte
	for i := GlobalIDLen - 1; i >= 0; i-- {
		out[i] = globalIDChars[lo&63]
		lo = lo>>6 | hi<<58
		hi >>= 6
	}
	return string(out[:])
}

// ExpandGlobalID decodes a 22-character GlobalId back into its GUID.
func ExpandGlobalID(s string) (uuid.UUID, error) {
	if len(s) != GlobalIDLen {
		return uuid.Nil, fmt.Errorf("ifc: global id %q: length %d: %w", s, len(s), apperr.ErrInvalid)
	}
	var hi, lo uint64
	for i := 0; i < GlobalIDLen; i++ {
		d := strings.IndexByte(globalIDChars, s[i])
		if d < 0 || i == 0 && d > 3 {
			return uuid.Nil, fmt.Errorf("ifc: global id %q: character %q: %w", s, s[i], apperr.ErrInvalid)
		}
		hi = hi<<6 | lo>>58
		lo = lo<<6 | uint64(d)
	}
	var u uuid.UUID
	for i := 7; i >= 0; i-- {
		u[i] = byte(hi)
		u[i+8] = byte(lo)
		hi >>= 8
		lo >>= 8
	}
	return u, nil
}

// newGlobalIDLabel is the GlobalId attribute of a freshly built entity.
func newGlobalIDLabel() step.Label { return step.NewLabel(NewGlobalID()) }
