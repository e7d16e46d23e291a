package step

import (
	"reflect"
	"strings"
)

// FileDescription is the FILE_DESCRIPTION header statement.
type FileDescription struct {
	Description         List[Label]
	ImplementationLevel Label
}

func (*FileDescription) Keyword() string { return "FILE_DESCRIPTION" }

func (d *FileDescription) Params() []Param {
	return []Param{&d.Description, &d.ImplementationLevel}
}

// FileName is the FILE_NAME header statement.
type FileName struct {
	Name                Label
	TimeStamp           Label
	Author              List[Label]
	Organization        List[Label]
	PreprocessorVersion Label
	OriginatingSystem   Label
	Authorization       Label
}

func (*FileName) Keyword() string { return "FILE_NAME" }

func (n *FileName) Params() []Param {
	return []Param{&n.Name, &n.TimeStamp, &n.Author, &n.Organization,
		&n.PreprocessorVersion, &n.OriginatingSystem, &n.Authorization}
}

// FileSchema is the FILE_SCHEMA header statement.
type FileSchema struct {
	Schemas List[Label]
}

func (*FileSchema) Keyword() string { return "FILE_SCHEMA" }

func (f *FileSchema) Params() []Param { return []Param{&f.Schemas} }

// Names returns the decoded schema identifiers.
func (f FileSchema) Names() []string {
	out := make([]string, len(f.Schemas))
	for i, l := range f.Schemas {
		out[i] = l.Text()
	}
	return out
}

// marker is a fixed statement such as HEADER; with its leading trivia.
type marker struct {
	lead string
	raw  string
}

func (mk *marker) scan(s *Scanner, words ...string) error {
	mk.lead = s.Trivia()
	start := s.pos
	for _, w := range words {
		if err := s.Expect(w); err != nil {
			return err
		}
	}
	mk.raw = s.src[start:s.pos]
	return nil
}

func (mk marker) write(b *strings.Builder) {
	b.WriteString(mk.lead)
	b.WriteString(mk.raw)
}

// Header is everything from ISO-10303-21; up to and including DATA;.
type Header struct {
	Description FileDescription
	Name        FileName
	Schema      FileSchema

	magic, open, close, data marker
	stmts                    [3]marker
	read                     *headerFields
}

// headerFields holds the statements as read, to tell whether a field was
// edited since.
type headerFields struct {
	description FileDescription
	name        FileName
	schema      FileSchema
}

// NewHeader returns a header for schema with canonical layout.
func NewHeader(schema string, name string) Header {
	return Header{
		Description: FileDescription{
			Description:         List[Label]{NewLabel("ViewDefinition [CoordinationView]")},
			ImplementationLevel: NewLabel("2;1"),
		},
		Name: FileName{
			Name:         NewLabel(name),
			Author:       List[Label]{NewLabel("")},
			Organization: List[Label]{NewLabel("")},
		},
		Schema: FileSchema{Schemas: List[Label]{NewLabel(schema)}},
		magic:  marker{raw: "ISO-10303-21;"},
		open:   marker{lead: "\n", raw: "HEADER;"},
		close:  marker{lead: "\n", raw: "ENDSEC;"},
		data:   marker{lead: "\n\n", raw: "DATA;"},
		stmts:  [3]marker{{lead: "\n"}, {lead: "\n"}, {lead: "\n"}},
	}
}

func (h *Header) fields() [3]Entity {
	return [3]Entity{&h.Description, &h.Name, &h.Schema}
}

func (h *Header) parse(s *Scanner) error {
	if err := h.magic.scan(s, "ISO-10303-21", ";"); err != nil {
		return err
	}
	if err := h.open.scan(s, "HEADER", ";"); err != nil {
		return err
	}
	for i, e := range h.fields() {
		mk := &h.stmts[i]
		mk.lead = s.Trivia()
		start := s.pos
		if err := s.Expect(e.Keyword()); err != nil {
			return err
		}
		if err := s.Expect("("); err != nil {
			return err
		}
		at := s.pos
		args, err := s.closeParen()
		if err != nil {
			return err
		}
		if err := s.Expect(";"); err != nil {
			return err
		}
		if err := decodeRecord(0, &Record{keyword: e.Keyword(), args: args}, e, true); err != nil {
			pe := s.errorf(at, "%s arguments", e.Keyword())
			pe.Err = err
			return pe
		}
		mk.raw = s.src[start:s.pos]
	}
	if err := h.close.scan(s, "ENDSEC", ";"); err != nil {
		return err
	}
	if err := h.data.scan(s, "DATA", ";"); err != nil {
		return err
	}
	h.read = &headerFields{description: h.Description, name: h.Name, schema: h.Schema}
	return nil
}

func (h *Header) unchanged(i int) bool {
	if h.read == nil {
		return false
	}
	switch i {
	case 0:
		return reflect.DeepEqual(h.Description, h.read.description)
	case 1:
		return reflect.DeepEqual(h.Name, h.read.name)
	}
	return reflect.DeepEqual(h.Schema, h.read.schema)
}

func (h *Header) write(b *strings.Builder) {
	h.magic.write(b)
	h.open.write(b)
	for i, e := range h.fields() {
		mk := h.stmts[i]
		b.WriteString(mk.lead)
		if mk.raw != "" && h.unchanged(i) {
			b.WriteString(mk.raw)
			continue
		}
		b.WriteString(Format(e))
		b.WriteByte(';')
	}
	h.close.write(b)
	h.data.write(b)
}

// Footer is ENDSEC; END-ISO-10303-21; and whatever trivia trails the file.
type Footer struct {
	close, end marker
	trail      string
}

// NewFooter returns a footer with canonical layout.
func NewFooter() Footer {
	return Footer{
		close: marker{lead: "\n", raw: "ENDSEC;"},
		end:   marker{lead: "\n", raw: "END-ISO-10303-21;"},
		trail: "\n",
	}
}

func (f *Footer) parse(s *Scanner) error {
	if err := f.close.scan(s, "ENDSEC", ";"); err != nil {
		return err
	}
	if err := f.end.scan(s, "END-ISO-10303-21", ";"); err != nil {
		return err
	}
	f.trail = s.Trivia()
	return nil
}

func (f Footer) write(b *strings.Builder) {
	f.close.write(b)
	f.end.write(b)
	b.WriteString(f.trail)
}
