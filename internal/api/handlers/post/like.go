package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Connector/internal/api/middleware"
	"Connector/internal/core/posts"
)

// LikeHandler handles like and unlike requests
type LikeHandler struct {
	service posts.Service
}

// NewLikeHandler creates a new like handler
func NewLikeHandler(service posts.Service) *LikeHandler {
	return &LikeHandler{
		service: service,
	}
}

// HandleLike handles PUT /api/posts/like/{id}
// Response: the post's likes, newest first
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	likes, err := h.service.LikePost(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, likes)
}

// HandleUnlike handles PUT /api/posts/unlike/{id}
// Response: the remaining likes
func (h *LikeHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	likes, err := h.service.UnlikePost(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, likes)
}
