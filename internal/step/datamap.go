package step

import (
	"fmt"
	"iter"
	"strings"

	"github.com/starford/ifcstep/internal/apperr"
)

// entry is one body statement. raw is the statement as read; snap is the
// formatted entity at decode time, so an entity that was decoded but not
// changed still prints from raw.
type entry struct {
	lead string
	raw  string
	rec  *Record
	ent  Entity
	snap string
}

func (e *entry) text(id ID) string {
	if e.ent != nil {
		if f := Format(e.ent); e.raw == "" || f != e.snap {
			return id.String() + "=" + f + ";"
		}
	}
	if e.raw == "" {
		return id.String() + "=" + e.rec.String() + ";"
	}
	return e.raw
}

func (e *entry) record() *Record {
	if e.ent != nil && (e.raw == "" || Format(e.ent) != e.snap) {
		return RecordOf(e.ent)
	}
	return e.rec
}

// DataMap is the body of a file: entity instances keyed by id, kept in
// insertion order. Fresh ids are allocated above the highest id seen and are
// never handed out twice.
type DataMap struct {
	order   []ID
	entries map[ID]*entry
	next    ID
	strict  bool
}

// NewDataMap returns an empty arena whose first fresh id is 1.
func NewDataMap() *DataMap {
	return &DataMap{entries: make(map[ID]*entry), next: 1}
}

// Len returns the number of stored instances.
func (m *DataMap) Len() int { return len(m.order) }

// Contains reports whether id is stored.
func (m *DataMap) Contains(id ID) bool {
	_, ok := m.entries[id]
	return ok
}

// IDs returns the stored ids in insertion order.
func (m *DataMap) IDs() []ID {
	return append([]ID(nil), m.order...)
}

// NextID returns the id the next fresh insertion will use.
func (m *DataMap) NextID() ID { return m.next }

func (m *DataMap) put(id ID, e *entry) error {
	if _, ok := m.entries[id]; ok {
		return fmt.Errorf("step: insert %s: %w", id, apperr.ErrAlreadyExists)
	}
	if e.lead == "" && e.raw == "" {
		e.lead = "\n"
	}
	m.entries[id] = e
	m.order = append(m.order, id)
	if id >= m.next {
		m.next = id + 1
	}
	return nil
}

// Insert stores e at a caller-chosen id. It fails if the id is taken.
func (m *DataMap) Insert(id ID, e Entity) error {
	return m.put(id, &entry{ent: e})
}

// InsertRecord stores an opaque record at a caller-chosen id.
func (m *DataMap) InsertRecord(id ID, r *Record) error {
	return m.put(id, &entry{rec: r})
}

// InsertNewEntity stores e under a fresh id.
func (m *DataMap) InsertNewEntity(e Entity) ID {
	id := m.next
	// put cannot fail: next is above every stored id.
	_ = m.put(id, &entry{ent: e})
	return id
}

// InsertNew stores e under a fresh id and returns it tagged with e's type.
func InsertNew[T any, P EntityPtr[T]](m *DataMap, e P) TypedID[T] {
	return Typed[T](m.InsertNewEntity(e))
}

// Delete removes the instance at id. References to it are left dangling;
// [DataMap.Verify] reports them. The id is not handed out again.
func (m *DataMap) Delete(id ID) error {
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("step: delete %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.entries, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Record returns the opaque form of id. For entities changed since they were
// decoded or inserted, the record is rebuilt from the structure.
func (m *DataMap) Record(id ID) (*Record, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("step: %s: %w", id, apperr.ErrNotFound)
	}
	return e.record(), nil
}

// Decode reads the instance at id into e. Unlike [Record.Decode] it honours
// the strict mode the arena was parsed with.
func (m *DataMap) Decode(id ID, e Entity) error {
	ent, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("step: %s: %w", id, apperr.ErrNotFound)
	}
	return decodeRecord(id, ent.record(), e, m.strict)
}

// Keyword returns the keyword of the instance at id.
func (m *DataMap) Keyword(id ID) (string, error) {
	e, ok := m.entries[id]
	if !ok {
		return "", fmt.Errorf("step: %s: %w", id, apperr.ErrNotFound)
	}
	if e.ent != nil {
		return e.ent.Keyword(), nil
	}
	return e.rec.keyword, nil
}

// All yields (id, record) pairs in insertion order. It may be ranged over any
// number of times; the arena must not be modified during iteration.
func (m *DataMap) All() iter.Seq2[ID, *Record] {
	return func(yield func(ID, *Record) bool) {
		for _, id := range m.order {
			if !yield(id, m.entries[id].record()) {
				return
			}
		}
	}
}

// Get decodes the instance at id as T and returns a copy. Changes to the
// copy are not stored; use [GetMut] for that.
func Get[T any, P EntityPtr[T]](m *DataMap, id TypedID[T]) (T, error) {
	var zero T
	e, ok := m.entries[id.id]
	if !ok {
		return zero, fmt.Errorf("step: %s: %w", id.id, apperr.ErrNotFound)
	}
	if e.ent != nil {
		if _, ok := e.ent.(P); !ok {
			return zero, &DecodeError{ID: id.id, Keyword: e.ent.Keyword(), Want: P(new(T)).Keyword()}
		}
	}
	// Decoding from text gives a value that shares no lists with the arena.
	p := P(new(T))
	if err := decodeRecord(id.id, e.record(), p, m.strict); err != nil {
		return zero, err
	}
	return *p, nil
}

// GetMut decodes the instance at id as T and keeps the decoded structure in
// the arena, so edits through the returned pointer are printed with the file.
func GetMut[T any, P EntityPtr[T]](m *DataMap, id TypedID[T]) (P, error) {
	e, ok := m.entries[id.id]
	if !ok {
		return nil, fmt.Errorf("step: %s: %w", id.id, apperr.ErrNotFound)
	}
	if e.ent != nil {
		p, ok := e.ent.(P)
		if !ok {
			return nil, &DecodeError{ID: id.id, Keyword: e.ent.Keyword(), Want: P(new(T)).Keyword()}
		}
		return p, nil
	}
	p := P(new(T))
	if err := decodeRecord(id.id, e.rec, p, m.strict); err != nil {
		return nil, err
	}
	e.ent = p
	e.snap = Format(p)
	return p, nil
}

// Lookup checks that id is stored and decodes as T, returning the typed id.
func Lookup[T any, P EntityPtr[T]](m *DataMap, id ID) (TypedID[T], error) {
	tid := Typed[T](id)
	if _, err := Get[T, P](m, tid); err != nil {
		return TypedID[T]{}, err
	}
	return tid, nil
}

// parse reads body statements until something other than a record follows.
// Leading trivia of that statement is left for the caller.
func (m *DataMap) parse(s *Scanner) error {
	for {
		start := s.pos
		lead := s.Trivia()
		if s.pos >= len(s.src) || s.src[s.pos] != '#' {
			s.pos = start
			return nil
		}
		at := s.pos
		id, rec, raw, err := scanRecord(s)
		if err != nil {
			return err
		}
		if err := m.put(id, &entry{lead: lead, raw: raw, rec: rec}); err != nil {
			pe := s.errorf(at, "unique entity id")
			pe.Err = err
			return pe
		}
	}
}

func (m *DataMap) write(b *strings.Builder) {
	for _, id := range m.order {
		e := m.entries[id]
		b.WriteString(e.lead)
		b.WriteString(e.text(id))
	}
}
