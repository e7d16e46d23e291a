package step

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ifcstep/internal/apperr"
)

// References returns the ids that the instance at id points to, in argument
// order without duplicates.
func (m *DataMap) References(id ID) ([]ID, error) {
	rec, err := m.Record(id)
	if err != nil {
		return nil, err
	}
	return recordRefs(id, rec)
}

func recordRefs(id ID, rec *Record) ([]ID, error) {
	args, err := rec.Args()
	if err != nil {
		return nil, fmt.Errorf("step: arguments of %s: %w", id, err)
	}
	var all []ID
	for _, v := range args {
		all = Refs(all, v)
	}
	seen := make(map[ID]struct{}, len(all))
	out := all[:0]
	for _, r := range all {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// Referrers returns the ids of instances that point to target, in insertion
// order. Records whose arguments cannot be read are skipped.
func (m *DataMap) Referrers(target ID) []ID {
	var out []ID
	for id, rec := range m.All() {
		refs, err := recordRefs(id, rec)
		if err != nil {
			continue
		}
		for _, r := range refs {
			if r == target {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Verify checks that every reference in the arena names a stored instance.
// It returns all problems joined; dangling references match
// apperr.ErrUnresolvedReference.
func (m *DataMap) Verify() error {
	var errs []error
	for id, rec := range m.All() {
		refs, err := recordRefs(id, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, r := range refs {
			if !m.Contains(r) {
				errs = append(errs, fmt.Errorf("step: %s references %s: %w", id, r, apperr.ErrUnresolvedReference))
			}
		}
	}
	return errors.Join(errs...)
}

// Decoded is one instance decoded by DecodeAll. Entity is nil when the
// keyword is not registered.
type Decoded struct {
	ID     ID
	Entity Entity
}

// DecodeReport is the result of DecodeAll, in insertion order.
type DecodeReport struct {
	Decoded []Decoded
	Unknown []ID
}

// DecodeAll decodes every instance whose keyword is in reg, using up to
// workers goroutines. Each record decodes from its own text only, so the
// result is the same for any worker count. The arena is not modified and
// must not be modified while DecodeAll runs.
func DecodeAll(ctx context.Context, m *DataMap, reg *Registry, workers int) (*DecodeReport, error) {
	if workers < 1 {
		workers = 1
	}
	ids := m.IDs()
	recs := make([]*Record, len(ids))
	for i, id := range ids {
		recs[i] = m.entries[id].record()
	}
	out := make([]Entity, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ids {
		e, ok := reg.New(recs[i].keyword)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := decodeRecord(ids[i], recs[i], e, m.strict); err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DecodeReport{Decoded: make([]Decoded, 0, len(ids))}
	for i, id := range ids {
		if out[i] == nil {
			report.Unknown = append(report.Unknown, id)
			continue
		}
		report.Decoded = append(report.Decoded, Decoded{ID: id, Entity: out[i]})
	}
	return report, nil
}
