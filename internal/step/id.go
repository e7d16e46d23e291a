package step

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is an entity instance number, written #<n>.
type ID uint64

func (id ID) String() string { return "#" + strconv.FormatUint(uint64(id), 10) }

// Scan reads a #<n> reference.
func (id *ID) Scan(s *Scanner) error {
	start := s.pos
	s.skip()
	at := s.pos
	if s.pos >= len(s.src) || s.src[s.pos] != '#' {
		s.pos = start
		return s.errorf(at, "reference")
	}
	i := s.pos + 1
	for i < len(s.src) && isDigit(s.src[i]) {
		i++
	}
	v, err := strconv.ParseUint(s.src[s.pos+1:i], 10, 64)
	if err != nil {
		s.pos = start
		e := s.errorf(at, "reference")
		e.Err = err
		return e
	}
	*id = ID(v)
	s.pos = i
	return nil
}

// TypedID is an ID that is expected to name an entity of type T. The tag
// exists only at compile time; storage is a plain ID.
type TypedID[T any] struct {
	id ID
}

// Typed asserts that id names a T. Nothing is checked until the id is
// looked up with [Get] or [GetMut].
func Typed[T any](id ID) TypedID[T] { return TypedID[T]{id: id} }

// ID returns the untyped id.
func (t TypedID[T]) ID() ID { return t.id }

func (t TypedID[T]) String() string { return t.id.String() }

func (t *TypedID[T]) Scan(s *Scanner) error { return t.id.Scan(s) }

// List is a parenthesised, comma separated aggregate.
type List[T fmt.Stringer] []T

func (l List[T]) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Scan reads (v1,v2,...). An empty list scans as nil.
func (l *List[T]) Scan(s *Scanner) error {
	start := s.pos
	if err := s.Expect("("); err != nil {
		return err
	}
	var out List[T]
	if s.Accept(')') {
		*l = out
		return nil
	}
	for {
		var v T
		if err := scanInto(s, &v); err != nil {
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
		err := s.errorf(s.pos, "',' or ')'")
		s.pos = start
		return err
	}
	*l = out
	return nil
}
