package post

import (
	"net/http"

	"Connector/internal/api/middleware"
	"Connector/internal/core/posts"
)

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /api/posts
//
// Request body: { "text": "..." }
// Response: the created post
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// 1. Extract authenticated user id (injected by auth middleware)
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	// 2. Parse size-limited body
	input, ok := decodeTextInput(w, r)
	if !ok {
		return
	}

	// 3. Call service with the author set from the authenticated user
	post, err := h.service.CreatePost(r.Context(), posts.CreatePostRequest{
		Author: userID,
		Text:   input.Text,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, post)
}
