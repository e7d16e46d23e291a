package step

import (
	"fmt"
	"strings"
)

// ParseError reports where the input stopped matching the grammar.
// Offset, Line and Column are relative to the text handed to the scanner.
type ParseError struct {
	Offset   int
	Line     int
	Column   int
	Expected string
	Found    string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("step: expected %s at line %d, column %d, found %s", e.Expected, e.Line, e.Column, e.Found)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Scanner is a cursor over STEP text. Every Scan method either consumes a
// complete token or leaves the cursor where it was, so callers may try
// alternatives in sequence.
type Scanner struct {
	src    string
	pos    int
	strict bool
}

// NewScanner returns a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Strict disables the best-effort capture of attributes that do not match
// their declared type. See [Optional.Scan].
func (s *Scanner) Strict(on bool) *Scanner {
	s.strict = on
	return s
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int { return s.pos }

// Rest returns the unconsumed input.
func (s *Scanner) Rest() string { return s.src[s.pos:] }

// AtEnd reports whether only whitespace and comments remain.
func (s *Scanner) AtEnd() bool {
	start := s.pos
	s.skip()
	end := s.pos >= len(s.src)
	s.pos = start
	return end
}

// Trivia consumes whitespace and comments and returns them verbatim.
func (s *Scanner) Trivia() string {
	start := s.pos
	s.skip()
	return s.src[start:s.pos]
}

// skip moves past whitespace and complete /* */ comments. An unterminated
// comment is left in place so the next match fails on it.
func (s *Scanner) skip() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && strings.HasPrefix(s.src[s.pos:], "/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return
			}
			s.pos += end + 4
		default:
			return
		}
	}
}

// peek returns the next significant byte without consuming anything.
func (s *Scanner) peek() byte {
	start := s.pos
	s.skip()
	var c byte
	if s.pos < len(s.src) {
		c = s.src[s.pos]
	}
	s.pos = start
	return c
}

// Accept consumes c if it is the next significant byte.
func (s *Scanner) Accept(c byte) bool {
	start := s.pos
	s.skip()
	if s.pos < len(s.src) && s.src[s.pos] == c {
		s.pos++
		return true
	}
	s.pos = start
	return false
}

// Expect consumes lit or fails without moving.
func (s *Scanner) Expect(lit string) error {
	start := s.pos
	s.skip()
	if strings.HasPrefix(s.src[s.pos:], lit) {
		s.pos += len(lit)
		return nil
	}
	err := s.errorf(s.pos, "%q", lit)
	s.pos = start
	return err
}

// keyword scans an entity or type name. User-defined names start with '!'.
func (s *Scanner) keyword() (string, error) {
	start := s.pos
	s.skip()
	at := s.pos
	if s.pos < len(s.src) && s.src[s.pos] == '!' {
		s.pos++
	}
	if s.pos >= len(s.src) || !isLetter(s.src[s.pos]) {
		s.pos = start
		return "", s.errorf(at, "keyword")
	}
	for s.pos < len(s.src) && (isLetter(s.src[s.pos]) || isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
	return s.src[at:s.pos], nil
}

// number scans [+-]digits[.digits][E[+-]digits] and returns the literal.
func (s *Scanner) number() (string, error) {
	start := s.pos
	s.skip()
	at := s.pos
	i := s.pos
	if i < len(s.src) && (s.src[i] == '+' || s.src[i] == '-') {
		i++
	}
	digits := i
	for i < len(s.src) && isDigit(s.src[i]) {
		i++
	}
	if i == digits {
		s.pos = start
		return "", s.errorf(at, "number")
	}
	if i < len(s.src) && s.src[i] == '.' {
		i++
		for i < len(s.src) && isDigit(s.src[i]) {
			i++
		}
	}
	if i < len(s.src) && (s.src[i] == 'E' || s.src[i] == 'e') {
		j := i + 1
		if j < len(s.src) && (s.src[j] == '+' || s.src[j] == '-') {
			j++
		}
		exp := j
		for j < len(s.src) && isDigit(s.src[j]) {
			j++
		}
		if j > exp {
			i = j
		}
	}
	s.pos = i
	return s.src[at:i], nil
}

// closeParen moves to just past the ')' matching an already consumed '('
// and returns the text in between. Quoted strings and comments may contain
// parentheses.
func (s *Scanner) closeParen() (string, error) {
	start := s.pos
	depth := 1
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; c {
		case '(':
			depth++
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		case '\'', '"':
			if err := s.skipQuoted(c); err != nil {
				s.pos = start
				return "", err
			}
		case '/':
			if strings.HasPrefix(s.src[s.pos:], "/*") {
				end := strings.Index(s.src[s.pos+2:], "*/")
				if end < 0 {
					err := s.errorf(s.pos, "end of comment")
					s.pos = start
					return "", err
				}
				s.pos += end + 4
				continue
			}
			s.pos++
		default:
			s.pos++
		}
	}
	err := s.errorf(s.pos, "')'")
	s.pos = start
	return "", err
}

// skipQuoted moves past a string opened by q at the cursor. Doubled quotes
// are escapes.
func (s *Scanner) skipQuoted(q byte) error {
	at := s.pos
	i := s.pos + 1
	for i < len(s.src) {
		if s.src[i] == q {
			if i+1 < len(s.src) && s.src[i+1] == q {
				i += 2
				continue
			}
			s.pos = i + 1
			return nil
		}
		i++
	}
	return s.errorf(at, "closing %c", q)
}

// capture consumes one attribute of unknown shape: everything up to the next
// ',' or ')' at nesting depth zero. Used as the fallback for attributes that
// do not match their declared type.
func (s *Scanner) capture() (string, error) {
	start := s.pos
	s.skip()
	at := s.pos
	depth := 0
loop:
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; c {
		case '(':
			depth++
			s.pos++
		case ')':
			if depth == 0 {
				break loop
			}
			depth--
			s.pos++
		case ',':
			if depth == 0 {
				break loop
			}
			s.pos++
		case '\'', '"':
			if err := s.skipQuoted(c); err != nil {
				s.pos = start
				return "", err
			}
		default:
			s.pos++
		}
	}
	raw := strings.TrimRight(s.src[at:s.pos], " \t\r\n")
	if raw == "" || depth != 0 {
		err := s.errorf(at, "attribute")
		s.pos = start
		return "", err
	}
	s.pos = at + len(raw)
	return raw, nil
}

func (s *Scanner) errorf(at int, format string, args ...any) *ParseError {
	line, col := 1, 1
	for i := 0; i < at && i < len(s.src); i++ {
		if s.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	found := "end of input"
	if at < len(s.src) {
		found = s.src[at:]
		if len(found) > 16 {
			found = found[:16] + "..."
		}
		found = fmt.Sprintf("%q", found)
	}
	return &ParseError{
		Offset:   at,
		Line:     line,
		Column:   col,
		Expected: fmt.Sprintf(format, args...),
		Found:    found,
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }
