package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/ifcstep/internal/checksum"
	"github.com/starford/ifcstep/internal/models"
	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/storage"
)

// Sync walks the library and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
func Sync(ctx context.Context, db *DB, store storage.Provider, opts parser.Options, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(ctx, db, m.Path, data, opts); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile summarises data and upserts it into the catalog. A file that does not
// parse is still catalogued, with the syntax error as its only problem.
func IndexFile(ctx context.Context, db Catalog, path string, data []byte, opts parser.Options) error {
	row := FileRow{
		Path:      path,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}

	res, err := parser.Parse(ctx, data, opts)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		row.Problems = []string{err.Error()}
		return db.UpsertFile(row, nil, nil)
	}

	row.Schema = res.Schema
	row.Name = res.Name
	row.Description = res.Description
	row.Entities = len(res.Entities)
	row.Problems = res.Problems

	entities := make([]models.Entity, len(res.Entities))
	for i, e := range res.Entities {
		entities[i] = models.Entity{File: path, ID: e.ID, Keyword: e.Keyword, GlobalID: e.GlobalID, Name: e.Name}
	}
	refs := make([]models.Ref, len(res.Refs))
	for i, r := range res.Refs {
		refs[i] = models.Ref{File: path, Source: r.Source, Target: r.Target}
	}
	return db.UpsertFile(row, entities, refs)
}
