package step

import (
	"fmt"
	"strings"
)

// Value is an untyped argument as it appears in a record: one of Integer,
// Real, Label, Enum, Binary, ID, Omitted, Inherited, Values or TypedValue.
type Value interface {
	fmt.Stringer
	value()
}

func (Integer) value()    {}
func (Real) value()       {}
func (Label) value()      {}
func (Enum) value()       {}
func (Binary) value()     {}
func (ID) value()         {}
func (Omitted) value()    {}
func (Inherited) value()  {}
func (Values) value()     {}
func (TypedValue) value() {}

// Values is an untyped aggregate.
type Values []Value

func (vs Values) String() string {
	var b strings.Builder
	b.WriteByte('(')
	writeValues(&b, vs)
	b.WriteByte(')')
	return b.String()
}

func (vs *Values) Scan(s *Scanner) error {
	start := s.pos
	if err := s.Expect("("); err != nil {
		return err
	}
	var out Values
	if s.Accept(')') {
		*vs = out
		return nil
	}
	for {
		v, err := ScanValue(s)
		if err != nil {
			s.pos = start
			return err
		}
		out = append(out, v)
		if s.Accept(',') {
			continue
		}
		if s.Accept(')') {
			break
		}
		s.skip()
		err = s.errorf(s.pos, "',' or ')'")
		s.pos = start
		return err
	}
	*vs = out
	return nil
}

// TypedValue is a value wrapped in its defined type, such as IFCLABEL('x')
// inside a select attribute.
type TypedValue struct {
	Keyword string
	Args    Values
}

func (t TypedValue) String() string {
	var b strings.Builder
	b.WriteString(t.Keyword)
	b.WriteByte('(')
	writeValues(&b, t.Args)
	b.WriteByte(')')
	return b.String()
}

func (t *TypedValue) Scan(s *Scanner) error {
	start := s.pos
	kw, err := s.keyword()
	if err != nil {
		return err
	}
	var args Values
	if err := args.Scan(s); err != nil {
		s.pos = start
		return err
	}
	*t = TypedValue{Keyword: kw, Args: args}
	return nil
}

// ScanValue reads any single argument, choosing the form by its first byte.
func ScanValue(s *Scanner) (Value, error) {
	switch c := s.peek(); {
	case c == '$':
		s.Accept('$')
		return Omitted{}, nil
	case c == '*':
		s.Accept('*')
		return Inherited{}, nil
	case c == '#':
		var id ID
		if err := id.Scan(s); err != nil {
			return nil, err
		}
		return id, nil
	case c == '\'':
		var l Label
		if err := l.Scan(s); err != nil {
			return nil, err
		}
		return l, nil
	case c == '"':
		var b Binary
		if err := b.Scan(s); err != nil {
			return nil, err
		}
		return b, nil
	case c == '.':
		var e Enum
		if err := e.Scan(s); err != nil {
			return nil, err
		}
		return e, nil
	case c == '(':
		var vs Values
		if err := vs.Scan(s); err != nil {
			return nil, err
		}
		return vs, nil
	case c == '+' || c == '-' || isDigit(c):
		start := s.pos
		lit, err := s.number()
		if err != nil {
			return nil, err
		}
		s.pos = start
		if strings.ContainsAny(lit, ".Ee") {
			var r Real
			if err := r.Scan(s); err != nil {
				return nil, err
			}
			return r, nil
		}
		var i Integer
		if err := i.Scan(s); err != nil {
			return nil, err
		}
		return i, nil
	case c == '!' || isLetter(c):
		var t TypedValue
		if err := t.Scan(s); err != nil {
			return nil, err
		}
		return t, nil
	}
	start := s.pos
	s.skip()
	err := s.errorf(s.pos, "value")
	s.pos = start
	return nil, err
}

// ParseArgs decodes the text between a record's outer parentheses.
func ParseArgs(args string) (Values, error) {
	s := NewScanner(args)
	var out Values
	if s.AtEnd() {
		return out, nil
	}
	for {
		v, err := ScanValue(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if s.Accept(',') {
			continue
		}
		if s.AtEnd() {
			return out, nil
		}
		s.skip()
		return nil, s.errorf(s.pos, "',' or end of arguments")
	}
}

// Refs appends every reference inside v to dst, depth first.
func Refs(dst []ID, v Value) []ID {
	switch v := v.(type) {
	case ID:
		dst = append(dst, v)
	case Values:
		for _, e := range v {
			dst = Refs(dst, e)
		}
	case TypedValue:
		for _, e := range v.Args {
			dst = Refs(dst, e)
		}
	}
	return dst
}

func writeValues(b *strings.Builder, vs Values) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
}
