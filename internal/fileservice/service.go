// Package fileservice coordinates the library storage, the exchange-file
// engine and the catalog for the HTTP and MCP transports.
package fileservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ifcstep/internal/apperr"
	"github.com/starford/ifcstep/internal/checksum"
	"github.com/starford/ifcstep/internal/ifc"
	"github.com/starford/ifcstep/internal/index"
	"github.com/starford/ifcstep/internal/models"
	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/step"
	"github.com/starford/ifcstep/internal/storage"
)

// FileSummary is the catalog view of one library file.
type FileSummary struct {
	Path        string    `json:"path"`
	Schema      string    `json:"schema"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Entities    int       `json:"entities"`
	Problems    []string  `json:"problems"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityDetail describes one record of a file as read from disk.
type EntityDetail struct {
	File     string `json:"file"`
	ID       uint64 `json:"id"`
	Keyword  string `json:"keyword"`
	GlobalID string `json:"global_id,omitempty"`
	Name     string `json:"name,omitempty"`
	// Text is the record as printed in the file, without the terminator.
	Text       string   `json:"text"`
	Args       []string `json:"args"`
	References []uint64 `json:"references"`
	Referrers  []uint64 `json:"referrers"`
	// DecodeError is set when the keyword is known but the record does not
	// match its declared attributes.
	DecodeError string `json:"decode_error,omitempty"`
}

// VerifyReport is the result of checking a file end to end.
type VerifyReport struct {
	Path      string   `json:"path"`
	Schema    string   `json:"schema"`
	Entities  int      `json:"entities"`
	Known     int      `json:"known"`
	Unknown   []string `json:"unknown"`
	Problems  []string `json:"problems"`
	RoundTrip bool     `json:"round_trip"`
	Checksum  string   `json:"checksum"`
}

// OK reports whether the file has no problems and prints back byte for byte.
func (r *VerifyReport) OK() bool { return r.RoundTrip && len(r.Problems) == 0 }

// Service coordinates storage, engine and catalog operations.
type Service struct {
	store storage.Provider
	db    index.Catalog
	opts  parser.Options
}

// NewService creates a new file service.
func NewService(store storage.Provider, db index.Catalog, opts parser.Options) *Service {
	return &Service{store: store, db: db, opts: opts}
}

// ListFiles returns one page of catalogued files, optionally for one schema.
func (s *Service) ListFiles(_ context.Context, limit, offset int, schema string) ([]FileSummary, int, error) {
	rows, total, err := s.db.ListFiles(limit, offset, schema)
	if err != nil {
		return nil, 0, err
	}
	items := make([]FileSummary, len(rows))
	for i, r := range rows {
		items[i] = summary(r)
	}
	return items, total, nil
}

// GetFile returns the catalog summary of path.
func (s *Service) GetFile(_ context.Context, path string) (*FileSummary, error) {
	row, err := s.db.GetFile(path)
	if err != nil {
		return nil, err
	}
	out := summary(*row)
	return &out, nil
}

// ReadFile returns the raw content of path.
func (s *Service) ReadFile(_ context.Context, path string) ([]byte, error) {
	return s.store.Read(path)
}

// GetEntity reads path from storage and describes the record at id.
func (s *Service) GetEntity(_ context.Context, path string, id uint64) (*EntityDetail, error) {
	f, err := s.load(path)
	if err != nil {
		return nil, err
	}
	sid := step.ID(id)
	rec, err := f.Data.Record(sid)
	if err != nil {
		return nil, err
	}

	d := &EntityDetail{
		File:      path,
		ID:        id,
		Keyword:   rec.Keyword(),
		Text:      sid.String() + "=" + rec.String(),
		Args:      []string{},
		Referrers: ids(f.Data.Referrers(sid)),
	}
	args, err := rec.Args()
	if err != nil {
		return nil, fmt.Errorf("fileservice: arguments of %s: %w", sid, err)
	}
	for _, a := range args {
		d.Args = append(d.Args, a.String())
	}
	refs, err := f.Data.References(sid)
	if err != nil {
		return nil, err
	}
	d.References = ids(refs)

	if ent, ok := ifc.Registry().New(rec.Keyword()); ok {
		if err := f.Data.Decode(sid, ent); err != nil {
			d.DecodeError = err.Error()
		} else {
			d.GlobalID, d.Name = ifc.Describe(ent)
		}
	}
	return d, nil
}

// Referrers returns the catalogued ids in path that reference id.
func (s *Service) Referrers(_ context.Context, path string, id uint64) ([]uint64, error) {
	if _, err := s.db.GetFile(path); err != nil {
		return nil, err
	}
	out, err := s.db.Referrers(path, id)
	return nonNilSlice(out), err
}

// FindEntities queries the catalog for records across the library.
func (s *Service) FindEntities(_ context.Context, q index.EntityQuery) ([]models.Entity, error) {
	out, err := s.db.FindEntities(q)
	return nonNilSlice(out), err
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	out, err := s.db.Search(query, limit)
	return nonNilSlice(out), err
}

// Verify parses path, resolves every reference, decodes every known record
// and checks that printing reproduces the input.
func (s *Service) Verify(ctx context.Context, path string) (*VerifyReport, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	return Check(ctx, path, data, s.opts)
}

// Check verifies data as if it were stored at path. A syntax error is
// reported as the only problem.
func Check(ctx context.Context, path string, data []byte, opts parser.Options) (*VerifyReport, error) {
	rep := &VerifyReport{Path: path, Checksum: checksum.Sum(data), Unknown: []string{}, Problems: []string{}}
	res, err := parser.Parse(ctx, data, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rep.Problems = append(rep.Problems, err.Error())
		return rep, nil
	}
	rep.Schema = res.Schema
	rep.Entities = len(res.Entities)
	rep.Problems = append(rep.Problems, res.Problems...)
	rep.RoundTrip = res.File.String() == string(data)

	reg := ifc.Registry()
	seen := make(map[string]struct{})
	for _, e := range res.Entities {
		if _, ok := reg.New(e.Keyword); ok {
			rep.Known++
			continue
		}
		kw := e.Keyword
		if kw == "" {
			kw = "(complex)"
		}
		if _, dup := seen[kw]; !dup {
			seen[kw] = struct{}{}
			rep.Unknown = append(rep.Unknown, kw)
		}
	}
	return rep, nil
}

// CreateFile stores a new exchange file and catalogues it. The content must
// parse and print back unchanged.
func (s *Service) CreateFile(ctx context.Context, path string, content []byte) (*FileSummary, error) {
	if err := s.accept(path, content); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	return s.write(ctx, path, content)
}

// UpdateFile replaces an exchange file with optimistic concurrency: a
// non-empty ifMatch must equal the checksum of the stored content.
func (s *Service) UpdateFile(ctx context.Context, path string, content []byte, ifMatch string) (*FileSummary, error) {
	if err := s.accept(path, content); err != nil {
		return nil, err
	}
	existing, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && !checksum.Matches(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	return s.write(ctx, path, content)
}

// DeleteFile removes a file from storage and catalog.
func (s *Service) DeleteFile(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteFile(path)
}

// MoveFile renames a library file and moves its catalog entry. The target
// must not exist.
func (s *Service) MoveFile(ctx context.Context, from, to string) (*FileSummary, error) {
	if !storage.IsExchangeFile(to) {
		return nil, fmt.Errorf("fileservice: %s is not an exchange file: %w", to, apperr.ErrInvalid)
	}
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	data, err := s.store.Read(to)
	if err != nil {
		return nil, err
	}
	if err := s.db.DeleteFile(from); err != nil {
		return nil, err
	}
	if err := index.IndexFile(ctx, s.db, to, data, s.opts); err != nil {
		return nil, err
	}
	return s.GetFile(ctx, to)
}

func (s *Service) write(ctx context.Context, path string, content []byte) (*FileSummary, error) {
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexFile(ctx, s.db, path, content, s.opts); err != nil {
		return nil, err
	}
	return s.GetFile(ctx, path)
}

// accept rejects content that is not a round-trippable exchange file.
func (s *Service) accept(path string, content []byte) error {
	if !storage.IsExchangeFile(path) {
		return fmt.Errorf("fileservice: %s is not an exchange file: %w", path, apperr.ErrInvalid)
	}
	f, err := step.ParseWithOptions(string(content), step.ParseOptions{Strict: s.opts.Strict})
	if err != nil {
		return fmt.Errorf("fileservice: %w: %w", apperr.ErrInvalid, err)
	}
	if f.String() != string(content) {
		return fmt.Errorf("fileservice: %s does not round trip: %w", path, apperr.ErrInvalid)
	}
	return nil
}

func (s *Service) load(path string) (*step.File, error) {
	f, err := storage.Load(s.store, path, step.ParseOptions{Strict: s.opts.Strict})
	if err != nil {
		var pe *step.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("fileservice: %w: %w", apperr.ErrInvalid, err)
		}
		return nil, err
	}
	return f, nil
}

func summary(r index.FileRow) FileSummary {
	return FileSummary{
		Path:        r.Path,
		Schema:      r.Schema,
		Name:        r.Name,
		Description: r.Description,
		Entities:    r.Entities,
		Problems:    nonNilSlice(r.Problems),
		Checksum:    r.Checksum,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ids(in []step.ID) []uint64 {
	out := make([]uint64, len(in))
	for i, id := range in {
		out[i] = uint64(id)
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
