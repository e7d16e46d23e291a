package api

import (
	"github.com/starford/ifcstep/internal/fileservice"
	"github.com/starford/ifcstep/internal/models"
)

// CreateFileRequest is the request body for storing a new file.
type CreateFileRequest struct {
	Path    string `json:"path" example:"site/house.ifc" validate:"required"`
	Content string `json:"content" example:"ISO-10303-21;..." validate:"required"`
}

// UpdateFileRequest is the request body for replacing a file.
type UpdateFileRequest struct {
	Content string `json:"content" example:"ISO-10303-21;..." validate:"required"`
}

// MoveFileRequest is the request body for renaming a file.
type MoveFileRequest struct {
	From string `json:"from" example:"draft.ifc" validate:"required"`
	To   string `json:"to" example:"site/house.ifc" validate:"required"`
}

// FileSummary is the catalog view of a file (aliased from the domain layer).
type FileSummary = fileservice.FileSummary

// EntityDetail describes one record (aliased from the domain layer).
type EntityDetail = fileservice.EntityDetail

// VerifyReport is the result of a verify run (aliased from the domain layer).
type VerifyReport = fileservice.VerifyReport

// FileListResponse wraps paginated file listings.
type FileListResponse struct {
	Files []FileSummary `json:"files" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// EntityListResponse wraps catalog entity rows.
type EntityListResponse struct {
	Entities []models.Entity `json:"entities" validate:"required"`
}

// ReferrersResponse lists the ids that reference Target.
type ReferrersResponse struct {
	Target    uint64   `json:"target" example:"3" validate:"required"`
	Referrers []uint64 `json:"referrers" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"site/house.ifc" validate:"required"`
	Name    string `json:"name" example:"house.ifc" validate:"required"`
	Snippet string `json:"snippet" example:"...North wall..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
