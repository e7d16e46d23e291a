package api

import (
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Upload handles POST /api/upload (multipart/form-data, field "file").
// The optional form field "dir" places the file in a library subdirectory.
//
//	@Summary		Upload an exchange file
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Exchange file (.ifc, .stp, .step)"
//	@Param			dir		formData	string	false	"Target directory"
//	@Success		201		{object}	FileSummary
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, ok := plainName(header.Filename)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid filename: "+header.Filename))
		return
	}
	target := name
	if dir := strings.Trim(r.FormValue("dir"), "/"); dir != "" {
		target = path.Join(dir, name)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	f, err := h.svc.CreateFile(r.Context(), target, data)
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// plainName reports whether name is a bare file name without separators or
// traversal.
func plainName(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", false
	}
	return cleaned, true
}
