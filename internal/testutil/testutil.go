// Package testutil provides shared test helpers for setting up libraries and
// catalogs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ifcstep/internal/index"
	"github.com/starford/ifcstep/internal/storage"
)

// Model is a small IFC4 file with a placement, a named wall and a material
// association that points back at the wall.
const Model = "ISO-10303-21;\n" +
	"HEADER;\n" +
	"FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');\n" +
	"FILE_NAME('house.ifc','2024-01-01T00:00:00',(''),(''),'','','');\n" +
	"FILE_SCHEMA(('IFC4'));\n" +
	"ENDSEC;\n" +
	"DATA;\n" +
	"/* site origin */\n" +
	"#1=IFCCARTESIANPOINT((0.,0.,0.));\n" +
	"#2=IFCLOCALPLACEMENT($,#1);\n" +
	"#3=IFCWALL('3vB2YO$MX4xv5uCqZZG05x',$,'North wall',$,$,#2,$,'W-01',.STANDARD.);\n" +
	"#4=IFCMATERIAL('Concrete',$,$);\n" +
	"#5=IFCRELASSOCIATESMATERIAL('1kTvXnbbzCWw8lcMd1dR4o',$,$,$,(#3),#4);\n" +
	"#6=IFCFUTURETHING(#3,.X.);\n" +
	"ENDSEC;\n" +
	"END-ISO-10303-21;\n"

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ifcstep-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.Provider.
func TestLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
