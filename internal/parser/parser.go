// Package parser summarises exchange files for the catalog: header fields,
// one row per body record and the reference edges between records.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/ifcstep/internal/ifc"
	"github.com/starford/ifcstep/internal/step"
)

// Options controls how records are decoded.
type Options struct {
	Strict  bool
	Workers int
}

// Entity is one body record.
type Entity struct {
	ID       uint64
	Keyword  string
	GlobalID string
	Name     string
}

// Ref is an edge from Source to Target.
type Ref struct {
	Source uint64
	Target uint64
}

// Result holds the output of summarising a file.
type Result struct {
	File        *step.File
	Schema      string
	Name        string
	Description string
	Entities    []Entity
	Refs        []Ref
	// Problems lists dangling references and records of a known type that
	// failed to decode. They do not make the file unreadable.
	Problems []string
}

// Parse reads data as an exchange file and summarises it. Only syntax errors
// fail; see Result.Problems for the rest.
func Parse(ctx context.Context, data []byte, opts Options) (*Result, error) {
	f, err := step.ParseWithOptions(string(data), step.ParseOptions{Strict: opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	res := &Result{
		File:   f,
		Schema: strings.Join(f.Header.Schema.Names(), ","),
		Name:   f.Header.Name.Name.Text(),
	}
	if len(f.Header.Description.Description) > 0 {
		res.Description = f.Header.Description.Description[0].Text()
	}

	index := make(map[step.ID]int, f.Data.Len())
	for id, rec := range f.Data.All() {
		index[id] = len(res.Entities)
		res.Entities = append(res.Entities, Entity{ID: uint64(id), Keyword: rec.Keyword()})
		refs, err := f.Data.References(id)
		if err != nil {
			res.Problems = append(res.Problems, err.Error())
			continue
		}
		for _, r := range refs {
			res.Refs = append(res.Refs, Ref{Source: uint64(id), Target: uint64(r)})
		}
	}

	if err := f.Data.Verify(); err != nil {
		res.Problems = append(res.Problems, problems(err)...)
	}

	rep, err := step.DecodeAll(ctx, f.Data, ifc.Registry(), opts.Workers)
	switch {
	case err == nil:
		for _, d := range rep.Decoded {
			e := &res.Entities[index[d.ID]]
			e.GlobalID, e.Name = ifc.Describe(d.Entity)
		}
	case ctx.Err() != nil:
		return nil, fmt.Errorf("parser: %w", ctx.Err())
	default:
		// At least one record is broken: decode one by one to keep the rest.
		for id, rec := range f.Data.All() {
			ent, ok := ifc.Registry().New(rec.Keyword())
			if !ok {
				continue
			}
			if err := f.Data.Decode(id, ent); err != nil {
				res.Problems = append(res.Problems, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			e := &res.Entities[index[id]]
			e.GlobalID, e.Name = ifc.Describe(ent)
		}
	}
	return res, nil
}

// problems flattens a joined error into one message per cause.
func problems(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
