package index

import "github.com/starford/ifcstep/internal/models"

// Catalog defines the catalog operations used by the services and
// transports. Consumers depend on this interface rather than *DB.
type Catalog interface {
	UpsertFile(f FileRow, entities []models.Entity, refs []models.Ref) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	GetFile(path string) (*FileRow, error)
	ListFiles(limit, offset int, schema string) ([]FileRow, int, error)
	FindEntities(q EntityQuery) ([]models.Entity, error)
	Referrers(path string, id uint64) ([]uint64, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ Catalog = (*DB)(nil)
