package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/storage"
)

// ChangeKind names a catalog mutation.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one catalog mutation caused by the watcher. Schema,
// Entities and Problems are zero for deletions.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Path     string     `json:"path"`
	Schema   string     `json:"schema,omitempty"`
	Entities int        `json:"entities"`
	Problems int        `json:"problems"`
}

// EventCallback is called after a watcher-driven catalog change.
type EventCallback func(Change)

const (
	// settleDelay batches the bursts of writes editors and exporters
	// produce for one file into a single re-catalogue.
	settleDelay    = 150 * time.Millisecond
	reconcileDelay = 200 * time.Millisecond
)

type watcher struct {
	db     *DB
	store  storage.Provider
	root   string
	opts   parser.Options
	logger *slog.Logger
	cb     EventCallback

	// pending holds the coalesced change per path until it settles.
	pending map[string]ChangeKind
}

// Watch starts an fsnotify watcher on the library root and keeps the catalog
// in line with the exchange files on disk until ctx is cancelled. It calls cb
// (if non-nil) after each catalog mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// catalog entries whose files no longer exist on disk.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, opts parser.Options, logger *slog.Logger, cb EventCallback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}

	w := &watcher{
		db:      db,
		store:   store,
		root:    root,
		opts:    opts,
		logger:  logger,
		cb:      cb,
		pending: make(map[string]ChangeKind),
	}

	logger.Info("watcher: started", slog.String("root", root))

	settle := newDebounce(settleDelay)
	reconcile := newDebounce(reconcileDelay)
	defer settle.stop()
	defer reconcile.stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-settle.C():
			w.flush(ctx)

		case <-reconcile.C():
			w.reconcile(ctx)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					w.watchDir(ctx, fw, ev.Name)
					continue
				}
			}

			base := filepath.Base(ev.Name)
			if strings.HasPrefix(base, ".") || !storage.IsExchangeFile(base) {
				continue
			}
			rel, relErr := relPath(root, ev.Name)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				w.queue(rel, ChangeCreated)
			case ev.Op&fsnotify.Write != 0:
				w.queue(rel, ChangeUpdated)
			case ev.Op&fsnotify.Remove != 0:
				w.queue(rel, ChangeDeleted)
			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports only the old path; the new one arrives as
				// a Create if it stays inside a watched directory.
				w.queue(rel, ChangeDeleted)
				reconcile.reset()
			default:
				continue
			}
			settle.reset()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// queue records kind for rel, keeping "created" until the path settles.
func (w *watcher) queue(rel string, kind ChangeKind) {
	if prev, ok := w.pending[rel]; ok && prev == ChangeCreated && kind == ChangeUpdated {
		return
	}
	w.pending[rel] = kind
}

// flush applies every settled change to the catalog.
func (w *watcher) flush(ctx context.Context) {
	for rel, kind := range w.pending {
		delete(w.pending, rel)
		if kind == ChangeDeleted {
			w.remove(rel)
			continue
		}
		w.index(ctx, rel, kind)
	}
}

// index re-catalogues rel and reports the resulting summary.
func (w *watcher) index(ctx context.Context, rel string, kind ChangeKind) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(ctx, w.db, rel, data, w.opts); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", string(kind)))

	if w.cb == nil {
		return
	}
	change := Change{Kind: kind, Path: rel}
	if row, err := w.db.GetFile(rel); err == nil {
		change.Schema = row.Schema
		change.Entities = row.Entities
		change.Problems = len(row.Problems)
	}
	w.cb(change)
}

func (w *watcher) remove(rel string) {
	if cs, _ := w.db.GetChecksum(rel); cs == "" {
		// Never catalogued, or already gone.
		return
	}
	if err := w.db.DeleteFile(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	if w.cb != nil {
		w.cb(Change{Kind: ChangeDeleted, Path: rel})
	}
}

// reconcile removes catalog entries without a file on disk and catalogues
// on-disk files that are missing or changed.
func (w *watcher) reconcile(ctx context.Context) {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}

	for p, cs := range disk {
		old, known := checksums[p]
		if old == cs {
			continue
		}
		kind := ChangeUpdated
		if !known {
			kind = ChangeCreated
		}
		w.index(ctx, p, kind)
	}
}

// watchDir adds a directory created at runtime and catalogues any exchange
// files already inside it.
func (w *watcher) watchDir(ctx context.Context, fw *fsnotify.Watcher, dir string) {
	if err := addDirsRecursive(fw, dir); err != nil {
		w.logger.Warn("watcher: add new dir failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: watching new dir", slog.String("path", dir))

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsExchangeFile(d.Name()) {
			return nil
		}
		if rel, relErr := relPath(w.root, path); relErr == nil {
			w.index(ctx, rel, ChangeCreated)
		}
		return nil
	})
}

// debounce is a restartable one-shot timer whose channel is nil while idle.
type debounce struct {
	d     time.Duration
	timer *time.Timer
}

func newDebounce(d time.Duration) *debounce { return &debounce{d: d} }

func (b *debounce) reset() {
	if b.timer == nil {
		b.timer = time.NewTimer(b.d)
		return
	}
	b.timer.Reset(b.d)
}

func (b *debounce) C() <-chan time.Time {
	if b.timer == nil {
		return nil
	}
	return b.timer.C
}

func (b *debounce) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

// relPath returns abs relative to root in the slash form used by the catalog.
func relPath(root, abs string) (string, error) {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
