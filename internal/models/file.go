// Package models defines the catalog types shared by storage, index and the
// transports.
package models

import "time"

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entity is one body record of a catalogued file. GlobalID and Name are set
// for rooted IFC entities of a known type.
type Entity struct {
	File     string `json:"file"`
	ID       uint64 `json:"id"`
	Keyword  string `json:"keyword"`
	GlobalID string `json:"global_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

// Ref is a directed reference from one record to another in the same file.
type Ref struct {
	File   string `json:"file"`
	Source uint64 `json:"source"`
	Target uint64 `json:"target"`
}
