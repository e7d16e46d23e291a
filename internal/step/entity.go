package step

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ifcstep/internal/apperr"
)

// Param is one attribute slot of an entity. Implementations print with
// String and read with Scan on a pointer receiver.
type Param interface {
	fmt.Stringer
	Scan(*Scanner) error
}

// Entity is a record type with a fixed attribute layout. Params returns
// pointers to the attributes in schema order; it is used both to print the
// entity and to decode a record into it.
type Entity interface {
	Keyword() string
	Params() []Param
}

// EntityPtr constrains P to be *T and an Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Format prints e as KEYWORD(arg,arg,...).
func Format(e Entity) string {
	var b strings.Builder
	b.WriteString(e.Keyword())
	b.WriteByte('(')
	for i, p := range e.Params() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

// DecodeError reports that a record could not be read as the requested type.
// It matches apperr.ErrTypeMismatch.
type DecodeError struct {
	ID      ID
	Keyword string
	Want    string
	Err     error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("step: %s does not decode as %s", e.Keyword, e.Want)
	if e.ID != 0 {
		msg = fmt.Sprintf("step: %s=%s does not decode as %s", e.ID, e.Keyword, e.Want)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{apperr.ErrTypeMismatch}
	}
	return []error{apperr.ErrTypeMismatch, e.Err}
}

// decodeRecord fills e from r. The keyword must match and the argument list
// must be consumed completely.
func decodeRecord(id ID, r *Record, e Entity, strict bool) error {
	if !strings.EqualFold(r.keyword, e.Keyword()) {
		return &DecodeError{ID: id, Keyword: r.keyword, Want: e.Keyword()}
	}
	s := NewScanner(r.args).Strict(strict)
	for i, p := range e.Params() {
		if i > 0 {
			if err := s.Expect(","); err != nil {
				return &DecodeError{ID: id, Keyword: r.keyword, Want: e.Keyword(), Err: err}
			}
		}
		if err := p.Scan(s); err != nil {
			return &DecodeError{ID: id, Keyword: r.keyword, Want: e.Keyword(), Err: err}
		}
	}
	if !s.AtEnd() {
		s.skip()
		err := s.errorf(s.pos, "end of arguments")
		return &DecodeError{ID: id, Keyword: r.keyword, Want: e.Keyword(), Err: err}
	}
	return nil
}

// Registry maps keywords to constructors of their entity types.
type Registry struct {
	ctors map[string]func() Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]func() Entity)}
}

// Register adds T under the keyword reported by its zero value.
func Register[T any, P EntityPtr[T]](r *Registry) {
	kw := strings.ToUpper(P(new(T)).Keyword())
	r.ctors[kw] = func() Entity { return P(new(T)) }
}

// New returns a fresh zero entity for keyword.
func (r *Registry) New(keyword string) (Entity, bool) {
	ctor, ok := r.ctors[strings.ToUpper(keyword)]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// Keywords returns the registered keywords in sorted order.
func (r *Registry) Keywords() []string {
	out := make([]string, 0, len(r.ctors))
	for kw := range r.ctors {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
