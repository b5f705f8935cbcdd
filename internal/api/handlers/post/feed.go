package post

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Connector/internal/core/feed"
)

// FeedHandler serves the read side: listing and single-post lookup
type FeedHandler struct {
	feed feed.Service
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(service feed.Service) *FeedHandler {
	return &FeedHandler{
		feed: service,
	}
}

// HandleList handles GET /api/posts?limit=&cursor=&author=
// Response: { "posts": [...], "cursor": "..." }
func (h *FeedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := feed.ListRequest{
		Cursor: query.Get("cursor"),
		Author: query.Get("author"),
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	page, err := h.feed.ListAll(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, page)
}

// HandleGet handles GET /api/posts/{id}
func (h *FeedHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, post)
}
