package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/storage"
)

// watcherTestEnv sets up a library dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	libDir := t.TempDir()
	store, err := storage.NewFS(libDir)
	if err != nil {
		t.Fatal(err)
	}
	return libDir, store, testDB(t)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	var changes []Change

	go Watch(ctx, db, store, libDir, parser.Options{}, quietLogger(), func(c Change) {
		mu.Lock()
		events = append(events, string(c.Kind)+":"+c.Path)
		changes = append(changes, c)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(libDir, "new.ifc"), []byte(sampleModel("new.ifc")), 0o644)
	_ = os.WriteFile(filepath.Join(libDir, "notes.txt"), []byte("ignored"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		f, err := db.GetFile("new.ifc")
		return err == nil && f.Entities == 4
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.ifc" {
				return true
			}
		}
		return false
	}, "expected created:new.ifc callback")

	mu.Lock()
	for _, c := range changes {
		if c.Path == "new.ifc" && (c.Schema != "IFC4" || c.Entities != 4 || c.Problems != 0) {
			t.Errorf("change = %+v", c)
		}
	}
	mu.Unlock()

	if cs, _ := db.GetChecksum("notes.txt"); cs != "" {
		t.Error("non-exchange file was indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, libDir, parser.Options{}, quietLogger(), nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(libDir, "site")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.stp"), []byte(sampleModel("deep.stp")), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("site/deep.stp")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.WriteFile(filepath.Join(libDir, "del.ifc"), []byte(sampleModel("del.ifc")), 0o644)
	if err := Sync(context.Background(), db, store, parser.Options{}, logger); err != nil {
		t.Fatal(err)
	}

	cs, _ := db.GetChecksum("del.ifc")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, libDir, parser.Options{}, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(libDir, "del.ifc"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.ifc")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.WriteFile(filepath.Join(libDir, "old.ifc"), []byte(sampleModel("old.ifc")), 0o644)
	if err := Sync(context.Background(), db, store, parser.Options{}, logger); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, libDir, parser.Options{}, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(libDir, "old.ifc"), filepath.Join(libDir, "renamed.ifc"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.ifc")
		newCS, _ := db.GetChecksum("renamed.ifc")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestWatcher_BurstCoalesced(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var changes []Change
	go Watch(ctx, db, store, libDir, parser.Options{}, quietLogger(), func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	// Write the file in pieces, as an exporter streaming a large model would.
	data := []byte(sampleModel("burst.ifc"))
	f, err := os.Create(filepath.Join(libDir, "burst.ifc"))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(data); i += 64 {
		_, _ = f.Write(data[i:min(i+64, len(data))])
	}
	_ = f.Close()

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		row, err := db.GetFile("burst.ifc")
		return err == nil && row.Entities == 4 && len(row.Problems) == 0
	}, "burst-written file not catalogued in full")

	time.Sleep(300 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(changes) == 0 || changes[0].Kind != ChangeCreated {
		t.Fatalf("changes = %+v, want a leading created", changes)
	}
	if last := changes[len(changes)-1]; last.Entities != 4 {
		t.Errorf("last change = %+v", last)
	}
}

func TestSync_AddsAndRemoves(t *testing.T) {
	libDir, store, db := watcherTestEnv(t)
	logger := quietLogger()
	ctx := context.Background()

	_ = os.WriteFile(filepath.Join(libDir, "a.ifc"), []byte(sampleModel("a.ifc")), 0o644)
	_ = os.WriteFile(filepath.Join(libDir, "b.ifc"), []byte(sampleModel("b.ifc")), 0o644)
	if err := Sync(ctx, db, store, parser.Options{}, logger); err != nil {
		t.Fatal(err)
	}
	paths, _ := db.AllPaths()
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}

	_ = os.Remove(filepath.Join(libDir, "a.ifc"))
	if err := Sync(ctx, db, store, parser.Options{}, logger); err != nil {
		t.Fatal(err)
	}
	paths, _ = db.AllPaths()
	if _, ok := paths["a.ifc"]; ok || len(paths) != 1 {
		t.Errorf("paths after removal = %v", paths)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_ = os.WriteFile(filepath.Join(libDir, "c.ifc"), []byte(sampleModel("c.ifc")), 0o644)
	if err := Sync(canceled, db, store, parser.Options{}, logger); err == nil {
		t.Error("expected context error")
	}
}
