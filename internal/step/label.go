package step

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Label is a quoted string. It keeps the on-disk spelling between the quotes
// (doubled quotes and backslash directives included) so printing never
// re-encodes what was read. Use [NewLabel] to build one from plain text and
// Text to decode it.
type Label struct {
	raw string
}

// NewLabel encodes text for use as a string literal.
func NewLabel(text string) Label {
	return Label{raw: encodeLabel(text)}
}

// Raw returns the encoded content between the quotes.
func (l Label) Raw() string { return l.raw }

// Text returns the decoded string.
func (l Label) Text() string { return decodeLabel(l.raw) }

func (l Label) String() string { return "'" + l.raw + "'" }

func (l *Label) Scan(s *Scanner) error {
	start := s.pos
	s.skip()
	at := s.pos
	if s.pos >= len(s.src) || s.src[s.pos] != '\'' {
		s.pos = start
		return s.errorf(at, "string")
	}
	if err := s.skipQuoted('\''); err != nil {
		s.pos = start
		return err
	}
	l.raw = s.src[at+1 : s.pos-1]
	return nil
}

func encodeLabel(text string) string {
	var b strings.Builder
	var wide []rune
	flush := func() {
		if len(wide) == 0 {
			return
		}
		astral := false
		for _, r := range wide {
			if r > 0xFFFF {
				astral = true
				break
			}
		}
		if astral {
			b.WriteString(`\X4\`)
			for _, r := range wide {
				fmt.Fprintf(&b, "%08X", r)
			}
		} else {
			b.WriteString(`\X2\`)
			for _, r := range wide {
				fmt.Fprintf(&b, "%04X", r)
			}
		}
		b.WriteString(`\X0\`)
		wide = wide[:0]
	}
	for _, r := range text {
		if r >= 0x20 && r <= 0x7E {
			flush()
			switch r {
			case '\'':
				b.WriteString("''")
			case '\\':
				b.WriteString(`\\`)
			default:
				b.WriteRune(r)
			}
			continue
		}
		wide = append(wide, r)
	}
	flush()
	return b.String()
}

func decodeLabel(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); {
		rest := raw[i:]
		switch {
		case strings.HasPrefix(rest, "''"):
			b.WriteByte('\'')
			i += 2
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		case strings.HasPrefix(rest, `\S\`) && len(rest) > 3:
			b.WriteRune(rune(rest[3]) + 0x80)
			i += 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			if v, err := strconv.ParseUint(rest[3:5], 16, 8); err == nil {
				b.WriteRune(rune(v))
				i += 5
				continue
			}
			b.WriteByte(raw[i])
			i++
		case strings.HasPrefix(rest, `\X2\`), strings.HasPrefix(rest, `\X4\`):
			width := 4
			if rest[2] == '4' {
				width = 8
			}
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 || end%width != 0 {
				b.WriteByte(raw[i])
				i++
				continue
			}
			b.WriteString(decodeHexRunes(rest[4:4+end], width))
			i += 4 + end + 4
		case len(rest) >= 4 && strings.HasPrefix(rest, `\P`) && rest[3] == '\\':
			// Code page switches only affect \S\ in legacy files.
			i += 4
		default:
			b.WriteByte(raw[i])
			i++
		}
	}
	return b.String()
}

func decodeHexRunes(hex string, width int) string {
	if width == 8 {
		var out []rune
		for i := 0; i+8 <= len(hex); i += 8 {
			v, err := strconv.ParseUint(hex[i:i+8], 16, 32)
			if err != nil {
				return hex
			}
			out = append(out, rune(v))
		}
		return string(out)
	}
	units := make([]uint16, 0, len(hex)/4)
	for i := 0; i+4 <= len(hex); i += 4 {
		v, err := strconv.ParseUint(hex[i:i+4], 16, 16)
		if err != nil {
			return hex
		}
		units = append(units, uint16(v))
	}
	return string(utf16.Decode(units))
}
