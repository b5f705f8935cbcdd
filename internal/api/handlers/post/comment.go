package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Connector/internal/api/middleware"
	"Connector/internal/core/posts"
)

// CommentHandler handles comment creation and removal
type CommentHandler struct {
	service posts.Service
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service posts.Service) *CommentHandler {
	return &CommentHandler{
		service: service,
	}
}

// HandleAdd handles POST /api/posts/comment/{id}
//
// Request body: { "text": "..." }
// Response: the post's comments, newest first
func (h *CommentHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	input, ok := decodeTextInput(w, r)
	if !ok {
		return
	}

	comments, err := h.service.AddComment(r.Context(), posts.AddCommentRequest{
		PostID: chi.URLParam(r, "id"),
		Author: userID,
		Text:   input.Text,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, comments)
}

// HandleRemove handles DELETE /api/posts/comment/{id}/{commentId}
// Only the comment author can remove it.
func (h *CommentHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	comments, err := h.service.RemoveComment(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "commentId"), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, comments)
}
