// Package storage defines the library file-system abstraction.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/ifcstep/internal/models"
)

// Provider is the interface for library file operations. Paths are relative
// to the library root.
type Provider interface {
	// List returns metadata for every exchange file under dir.
	List(dir string) ([]models.FileMetadata, error)
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	Delete(path string) error
	Move(oldPath, newPath string) error
}

// Extensions are the file name suffixes treated as exchange files.
var Extensions = []string{".ifc", ".stp", ".step"}

// IsExchangeFile reports whether name has one of Extensions, ignoring case.
func IsExchangeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
