package step

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Integer is a STEP integer literal.
type Integer int64

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// Scan reads an integer. Literals with a fraction or exponent are rejected.
func (i *Integer) Scan(s *Scanner) error {
	start := s.pos
	lit, err := s.number()
	if err != nil {
		return err
	}
	at := s.pos - len(lit)
	if strings.ContainsAny(lit, ".Ee") {
		s.pos = start
		return s.errorf(at, "integer")
	}
	v, perr := strconv.ParseInt(lit, 10, 64)
	if perr != nil {
		s.pos = start
		e := s.errorf(at, "integer")
		e.Err = perr
		return e
	}
	*i = Integer(v)
	return nil
}

// Real is a STEP real literal. It remembers the literal it was read from so
// that printing reproduces the source exactly ("2." stays "2.", "1.E-05"
// stays "1.E-05").
type Real struct {
	v   float64
	lit string
}

// NewReal returns v with its canonical literal. It panics if v is NaN or
// infinite, which have no literal in the exchange format.
func NewReal(v float64) Real {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic(fmt.Sprintf("step: NewReal(%v): not a finite number", v))
	}
	return Real{v: v, lit: formatReal(v)}
}

// Float returns the numeric value.
func (r Real) Float() float64 { return r.v }

func (r Real) String() string {
	if r.lit == "" {
		return formatReal(r.v)
	}
	return r.lit
}

// Scan reads a real. Plain integer literals are accepted as well, since
// several exporters write whole-numbered reals without a point.
func (r *Real) Scan(s *Scanner) error {
	start := s.pos
	lit, err := s.number()
	if err != nil {
		return err
	}
	v, perr := strconv.ParseFloat(lit, 64)
	if perr != nil {
		e := s.errorf(s.pos-len(lit), "real")
		e.Err = perr
		s.pos = start
		return e
	}
	*r = Real{v: v, lit: lit}
	return nil
}

// formatReal writes v the way STEP requires: always with a decimal point,
// switching to exponent form for very large or very small magnitudes.
func formatReal(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e15) {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'E', -1, 64), "E")
		if !strings.Contains(mant, ".") {
			mant += "."
		}
		return mant + "E" + exp
	}
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(out, ".") {
		out += "."
	}
	return out
}

// Enum is an enumeration token, stored without the surrounding dots.
type Enum string

func (e Enum) String() string { return "." + string(e) + "." }

// Scan reads .TOKEN.
func (e *Enum) Scan(s *Scanner) error {
	start := s.pos
	s.skip()
	at := s.pos
	if s.pos >= len(s.src) || s.src[s.pos] != '.' {
		s.pos = start
		return s.errorf(at, "enumeration")
	}
	i := s.pos + 1
	for i < len(s.src) && (isLetter(s.src[i]) || isDigit(s.src[i]) || s.src[i] == '_') {
		i++
	}
	if i == s.pos+1 || i >= len(s.src) || s.src[i] != '.' {
		s.pos = start
		return s.errorf(at, "enumeration")
	}
	*e = Enum(s.src[s.pos+1 : i])
	s.pos = i + 1
	return nil
}

// Boolean is the two-valued enumeration .T. / .F.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return ".T."
	}
	return ".F."
}

func (b *Boolean) Scan(s *Scanner) error {
	start := s.pos
	var e Enum
	if err := e.Scan(s); err != nil {
		return err
	}
	switch e {
	case "T":
		*b = true
	case "F":
		*b = false
	default:
		s.pos = start
		return s.errorf(start, "boolean")
	}
	return nil
}

// Logical is the three-valued enumeration .T. / .F. / .U.
type Logical int8

const (
	False Logical = iota
	True
	Unknown
)

func (l Logical) String() string {
	switch l {
	case True:
		return ".T."
	case Unknown:
		return ".U."
	}
	return ".F."
}

func (l *Logical) Scan(s *Scanner) error {
	start := s.pos
	var e Enum
	if err := e.Scan(s); err != nil {
		return err
	}
	switch e {
	case "T":
		*l = True
	case "F":
		*l = False
	case "U":
		*l = Unknown
	default:
		s.pos = start
		return s.errorf(start, "logical")
	}
	return nil
}

// Binary is a "..." literal: a leading digit giving the unused bit count
// followed by hexadecimal digits. It is kept as written.
type Binary string

func (b Binary) String() string { return `"` + string(b) + `"` }

func (b *Binary) Scan(s *Scanner) error {
	start := s.pos
	s.skip()
	at := s.pos
	if s.pos >= len(s.src) || s.src[s.pos] != '"' {
		s.pos = start
		return s.errorf(at, "binary")
	}
	if err := s.skipQuoted('"'); err != nil {
		s.pos = start
		return err
	}
	*b = Binary(s.src[at+1 : s.pos-1])
	return nil
}

// Omitted is the $ marker: the attribute has no value.
type Omitted struct{}

func (Omitted) String() string { return "$" }

// Inherited is the * marker: the value is derived from a supertype.
type Inherited struct{}

func (Inherited) String() string { return "*" }
