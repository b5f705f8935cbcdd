package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Connector/internal/api/middleware"
	"Connector/internal/core/posts"
)

// DeleteHandler handles post deletion requests
type DeleteHandler struct {
	service posts.Service
}

// NewDeleteHandler creates a new handler for deleting posts
func NewDeleteHandler(service posts.Service) *DeleteHandler {
	return &DeleteHandler{
		service: service,
	}
}

// DeletePostOutput is intentionally empty
type DeletePostOutput struct{}

// HandleDelete handles DELETE /api/posts/{id}
// Only the post author can delete the post.
//
// Response: {}
func (h *DeleteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, DeletePostOutput{})
}
