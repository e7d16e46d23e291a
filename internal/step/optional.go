package step

import (
	"fmt"
)

type optionalKind uint8

const (
	kindOmitted optionalKind = iota
	kindInherited
	kindCustom
	kindRaw
)

// Optional is an attribute slot: omitted ($), inherited (*) or a value of T.
// The zero value is omitted.
//
// A slot whose text matches neither marker nor T is kept verbatim (see
// Scan). Such a slot reports IsRaw and prints its source text unchanged.
type Optional[T fmt.Stringer] struct {
	kind  optionalKind
	value T
	raw   string
}

// Omit returns an omitted slot.
func Omit[T fmt.Stringer]() Optional[T] { return Optional[T]{kind: kindOmitted} }

// Inherit returns an inherited slot.
func Inherit[T fmt.Stringer]() Optional[T] { return Optional[T]{kind: kindInherited} }

// Some returns a slot holding v.
func Some[T fmt.Stringer](v T) Optional[T] { return Optional[T]{kind: kindCustom, value: v} }

func (o Optional[T]) IsOmitted() bool   { return o.kind == kindOmitted }
func (o Optional[T]) IsInherited() bool { return o.kind == kindInherited }
func (o Optional[T]) IsCustom() bool    { return o.kind == kindCustom }

// IsRaw reports whether the slot holds text that could not be read as T.
func (o Optional[T]) IsRaw() bool { return o.kind == kindRaw }

// Raw returns the verbatim text of a raw slot.
func (o Optional[T]) Raw() string { return o.raw }

// Custom returns the value and whether the slot holds one.
func (o Optional[T]) Custom() (T, bool) {
	if o.kind != kindCustom {
		var zero T
		return zero, false
	}
	return o.value, true
}

// CustomPtr returns a pointer to the held value for in-place edits, or nil.
func (o *Optional[T]) CustomPtr() *T {
	if o.kind != kindCustom {
		return nil
	}
	return &o.value
}

// MustCustom returns the held value. It panics if the slot is not custom;
// call it only where the schema guarantees a value.
func (o Optional[T]) MustCustom() T {
	if o.kind != kindCustom {
		panic(fmt.Sprintf("step: MustCustom on %s slot", o.kindName()))
	}
	return o.value
}

func (o Optional[T]) String() string {
	switch o.kind {
	case kindInherited:
		return "*"
	case kindCustom:
		return o.value.String()
	case kindRaw:
		return o.raw
	}
	return "$"
}

// Scan tries $, then *, then T. If T does not match either, the attribute is
// captured verbatim so that attributes written by newer schema versions
// survive a round trip; a strict scanner returns T's error instead.
func (o *Optional[T]) Scan(s *Scanner) error {
	if s.Accept('$') {
		*o = Omit[T]()
		return nil
	}
	if s.Accept('*') {
		*o = Inherit[T]()
		return nil
	}
	var v T
	err := scanInto(s, &v)
	if err == nil {
		*o = Some(v)
		return nil
	}
	if s.strict {
		return err
	}
	raw, cerr := s.capture()
	if cerr != nil {
		return err
	}
	*o = Optional[T]{kind: kindRaw, raw: raw}
	return nil
}

func (o Optional[T]) kindName() string {
	switch o.kind {
	case kindInherited:
		return "inherited"
	case kindCustom:
		return "custom"
	case kindRaw:
		return "raw"
	}
	return "omitted"
}

type scannable interface {
	Scan(*Scanner) error
}

// scanInto scans into v, which must point at a type with a Scan method.
func scanInto(s *Scanner, v any) error {
	sc, ok := v.(scannable)
	if !ok {
		return fmt.Errorf("step: %T cannot be scanned", v)
	}
	return sc.Scan(s)
}
