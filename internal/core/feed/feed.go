package feed

import (
	"context"

	"Connector/internal/core/posts"
)

const (
	// DefaultMaxLimit caps a single page when no maximum is configured
	DefaultMaxLimit = 100
)

// ListRequest is a feed query. Limit 0 returns every matching post.
type ListRequest struct {
	Cursor string
	Author string
	Limit  int
}

// Page is one slice of the feed. Cursor is set when more posts may follow.
type Page struct {
	Cursor *string       `json:"cursor,omitempty"`
	Posts  []*posts.Post `json:"posts"`
}

// Service is the read side of the post aggregate
type Service interface {
	// ListAll returns posts newest first
	ListAll(ctx context.Context, req ListRequest) (*Page, error)

	// GetByID returns a single post
	GetByID(ctx context.Context, id string) (*posts.Post, error)
}
