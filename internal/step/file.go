package step

import (
	"io"
	"strings"
)

// File is a complete exchange file.
type File struct {
	Header Header
	Data   *DataMap
	Footer Footer
}

// ParseOptions configures Parse.
type ParseOptions struct {
	// Strict makes decoding fail on attributes that do not match their
	// declared type instead of keeping them verbatim.
	Strict bool
}

// NewFile returns an empty file for schema, ready to be filled with
// InsertNew.
func NewFile(schema, name string) *File {
	return &File{
		Header: NewHeader(schema, name),
		Data:   NewDataMap(),
		Footer: NewFooter(),
	}
}

// Parse reads a complete file. Any error discards the whole file.
func Parse(text string) (*File, error) {
	return ParseWithOptions(text, ParseOptions{})
}

// ParseWithOptions reads a complete file with the given options.
func ParseWithOptions(text string, opts ParseOptions) (*File, error) {
	s := NewScanner(text).Strict(opts.Strict)
	f := &File{Data: NewDataMap()}
	f.Data.strict = opts.Strict
	if err := f.Header.parse(s); err != nil {
		return nil, err
	}
	if err := f.Data.parse(s); err != nil {
		return nil, err
	}
	if err := f.Footer.parse(s); err != nil {
		return nil, err
	}
	if s.pos < len(s.src) {
		return nil, s.errorf(s.pos, "end of input")
	}
	return f, nil
}

// String prints the file.
func (f *File) String() string {
	var b strings.Builder
	f.Header.write(&b)
	f.Data.write(&b)
	f.Footer.write(&b)
	return b.String()
}

// WriteTo writes the printed file to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, f.String())
	return int64(n), err
}
