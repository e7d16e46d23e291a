package step

import "strings"

// Record is the opaque form of an entity instance: its keyword and the text
// between the outer parentheses, exactly as read. Complex instances written
// as #n=(A(...)B(...)); have an empty keyword.
type Record struct {
	keyword string
	args    string
}

// NewRecord builds a record from a keyword and argument text.
func NewRecord(keyword, args string) *Record {
	return &Record{keyword: keyword, args: args}
}

// RecordOf captures the current state of e.
func RecordOf(e Entity) *Record {
	f := Format(e)
	kw := e.Keyword()
	return &Record{keyword: kw, args: f[len(kw)+1 : len(f)-1]}
}

// Keyword returns the entity keyword, or "" for a complex instance.
func (r *Record) Keyword() string { return r.keyword }

// ArgsText returns the verbatim argument text.
func (r *Record) ArgsText() string { return r.args }

// String returns KEYWORD(args).
func (r *Record) String() string { return r.keyword + "(" + r.args + ")" }

// Args decodes the argument text into untyped values. For a complex
// instance each part is returned as a TypedValue.
func (r *Record) Args() (Values, error) {
	if r.keyword == "" {
		return parseParts(r.args)
	}
	return ParseArgs(r.args)
}

// Parts returns the partial records of a complex instance, or r itself for
// a simple one.
func (r *Record) Parts() ([]*Record, error) {
	if r.keyword != "" {
		return []*Record{r}, nil
	}
	vs, err := parseParts(r.args)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, len(vs))
	for i, v := range vs {
		t := v.(TypedValue)
		var b strings.Builder
		writeValues(&b, t.Args)
		out[i] = &Record{keyword: t.Keyword, args: b.String()}
	}
	return out, nil
}

func parseParts(text string) (Values, error) {
	s := NewScanner(text)
	var out Values
	for !s.AtEnd() {
		var t TypedValue
		if err := t.Scan(s); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Decode reads the record into e, which must have the same keyword.
// Malformed optional slots are kept verbatim; see [DataMap.Decode] for
// strict decoding.
func (r *Record) Decode(e Entity) error { return decodeRecord(0, r, e, false) }

// scanRecord reads #<id>=KEYWORD(args); at the cursor.
func scanRecord(s *Scanner) (ID, *Record, string, error) {
	start := s.pos
	var id ID
	if err := id.Scan(s); err != nil {
		return 0, nil, "", err
	}
	if err := s.Expect("="); err != nil {
		s.pos = start
		return 0, nil, "", err
	}
	var kw string
	if s.peek() != '(' {
		var err error
		if kw, err = s.keyword(); err != nil {
			s.pos = start
			return 0, nil, "", err
		}
	}
	if err := s.Expect("("); err != nil {
		s.pos = start
		return 0, nil, "", err
	}
	args, err := s.closeParen()
	if err != nil {
		s.pos = start
		return 0, nil, "", err
	}
	if err := s.Expect(";"); err != nil {
		s.pos = start
		return 0, nil, "", err
	}
	return id, &Record{keyword: kw, args: args}, s.src[start:s.pos], nil
}
