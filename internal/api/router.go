package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ifcstep/internal/fileservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *fileservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Library files.
	r.Get("/files", h.ListFiles)
	r.Post("/files", h.CreateFile)
	r.Post("/upload", h.Upload)
	r.Get("/files/*", h.GetFile)
	r.Put("/files/*", h.UpdateFile)
	r.Delete("/files/*", h.DeleteFile)
	r.Post("/move", h.MoveFile)
	r.Get("/content/*", h.Content)
	r.Get("/verify/*", h.Verify)

	// Records.
	r.Get("/entities", h.FindEntities)
	r.Get("/entities/{id}/*", h.GetEntity)
	r.Get("/referrers/{id}/*", h.Referrers)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
