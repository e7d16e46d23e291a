package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ifcstep/internal/checksum"
	"github.com/starford/ifcstep/internal/fileservice"
	"github.com/starford/ifcstep/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *fileservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *fileservice.Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the library path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. site%2Fhouse.ifc).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// entityRef extracts the file path and the instance id of /…/{id}/*.
func entityRef(w http.ResponseWriter, r *http.Request) (string, uint64, bool) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(chi.URLParam(r, "id"), "#"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("id must be a positive integer"))
		return "", 0, false
	}
	return path, id, true
}

// ListFiles handles GET /api/files.
//
//	@Summary		List catalogued files with optional pagination and schema filter
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			schema	query		string	false	"Filter by schema, e.g. IFC4"
//	@Success		200		{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListFiles(r.Context(), limit, offset, q.Get("schema"))
	if err != nil {
		writeError(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: items, Total: total})
}

// GetFile handles GET /api/files/*.
//
//	@Summary		Get the catalog summary of a file
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"Library path"
//	@Success		200		{object}	FileSummary
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	f, err := h.svc.GetFile(r.Context(), path)
	if err != nil {
		writeError(w, "get file", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(f.Checksum))
	writeJSON(w, http.StatusOK, f)
}

// Content handles GET /api/content/*.
//
//	@Summary		Download the raw exchange file
//	@Tags			files
//	@Produce		application/p21
//	@Param			path	path	string	true	"Library path"
//	@Success		200
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/content/{path} [get]
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.svc.ReadFile(r.Context(), path)
	if err != nil {
		writeError(w, "read file", err)
		return
	}
	w.Header().Set("Content-Type", "application/p21")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// CreateFile handles POST /api/files.
//
//	@Summary		Store a new exchange file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateFileRequest	true	"File to create"
//	@Success		201		{object}	FileSummary
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files [post]
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var req CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	f, err := h.svc.CreateFile(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, "create file", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// UpdateFile handles PUT /api/files/*.
//
//	@Summary		Replace a file with optimistic concurrency
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			path		path		string				true	"Library path"
//	@Param			If-Match	header		string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		UpdateFileRequest	true	"Updated content"
//	@Success		200			{object}	FileSummary
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [put]
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req UpdateFileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := checksum.ParseETag(r.Header.Get("If-Match"))

	f, err := h.svc.UpdateFile(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, "update file", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFile handles DELETE /api/files/*.
//
//	@Summary		Delete a file
//	@Tags			files
//	@Param			path	path	string	true	"Library path"
//	@Success		204		"File deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteFile(r.Context(), path); err != nil {
		writeError(w, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveFile handles POST /api/move.
//
//	@Summary		Rename a file within the library
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveFileRequest	true	"Source and target paths"
//	@Success		200		{object}	FileSummary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/move [post]
func (h *Handler) MoveFile(w http.ResponseWriter, r *http.Request) {
	var req MoveFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	f, err := h.svc.MoveFile(r.Context(), req.From, req.To)
	if err != nil {
		writeError(w, "move file", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Verify handles GET /api/verify/*.
//
//	@Summary		Parse, resolve and decode a file and check that it round trips
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"Library path"
//	@Success		200		{object}	VerifyReport
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verify/{path} [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	rep, err := h.svc.Verify(r.Context(), path)
	if err != nil {
		writeError(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// FindEntities handles GET /api/entities.
//
//	@Summary		Find records across the library
//	@Tags			entities
//	@Produce		json
//	@Param			file		query		string	false	"Library path"
//	@Param			keyword		query		string	false	"Entity keyword, e.g. IFCWALL"
//	@Param			global_id	query		string	false	"IFC GlobalId"
//	@Param			name		query		string	false	"Name substring"
//	@Param			limit		query		int		false	"Max results"
//	@Success		200			{object}	EntityListResponse
//	@Security		BearerAuth
//	@Router			/entities [get]
func (h *Handler) FindEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	ents, err := h.svc.FindEntities(r.Context(), index.EntityQuery{
		File:     q.Get("file"),
		Keyword:  q.Get("keyword"),
		GlobalID: q.Get("global_id"),
		Name:     q.Get("name"),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, "find entities", err)
		return
	}
	writeJSON(w, http.StatusOK, EntityListResponse{Entities: ents})
}

// GetEntity handles GET /api/entities/{id}/*.
//
//	@Summary		Read one record of a file
//	@Tags			entities
//	@Produce		json
//	@Param			id		path		int		true	"Instance id"
//	@Param			path	path		string	true	"Library path"
//	@Success		200		{object}	EntityDetail
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entities/{id}/{path} [get]
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	path, id, ok := entityRef(w, r)
	if !ok {
		return
	}
	ent, err := h.svc.GetEntity(r.Context(), path, id)
	if err != nil {
		writeError(w, "get entity", err)
		return
	}
	writeJSON(w, http.StatusOK, ent)
}

// Referrers handles GET /api/referrers/{id}/*.
//
//	@Summary		List the records that reference an instance
//	@Tags			entities
//	@Produce		json
//	@Param			id		path		int		true	"Instance id"
//	@Param			path	path		string	true	"Library path"
//	@Success		200		{object}	ReferrersResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/referrers/{id}/{path} [get]
func (h *Handler) Referrers(w http.ResponseWriter, r *http.Request) {
	path, id, ok := entityRef(w, r)
	if !ok {
		return
	}
	refs, err := h.svc.Referrers(r.Context(), path, id)
	if err != nil {
		writeError(w, "referrers", err)
		return
	}
	writeJSON(w, http.StatusOK, ReferrersResponse{Target: id, Referrers: refs})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over file and entity names
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	out := make([]SearchResult, len(results))
	for i, res := range results {
		out[i] = SearchResult{Path: res.Path, Name: res.Name, Snippet: res.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: out})
}
