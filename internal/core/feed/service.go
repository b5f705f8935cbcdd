package feed

import (
	"context"
	"log/slog"

	"Connector/internal/core/posts"
)

type feedService struct {
	repo     posts.Repository
	posts    posts.Service
	logger   *slog.Logger
	maxLimit int
}

// NewService creates a feed service reading from repo.
// A non-positive maxLimit falls back to DefaultMaxLimit.
func NewService(repo posts.Repository, postService posts.Service, maxLimit int, logger *slog.Logger) Service {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &feedService{
		repo:     repo,
		posts:    postService,
		logger:   logger,
		maxLimit: maxLimit,
	}
}

// ListAll returns posts ordered by createdAt descending
func (s *feedService) ListAll(ctx context.Context, req ListRequest) (*Page, error) {
	// 1. Validate request
	if req.Limit < 0 {
		return nil, posts.NewValidationError("limit", "limit must not be negative")
	}
	if req.Limit > s.maxLimit {
		req.Limit = s.maxLimit
	}

	cursor, err := posts.DecodeCursor(req.Cursor)
	if err != nil {
		return nil, posts.NewValidationError("cursor", err.Error())
	}

	// 2. Fetch one extra row to learn whether another page exists
	opts := posts.ListOptions{Author: req.Author, Cursor: cursor}
	if req.Limit > 0 {
		opts.Limit = req.Limit + 1
	}

	list, err := s.repo.List(ctx, opts)
	if err != nil {
		if posts.IsValidationError(err) {
			return nil, err
		}
		s.logger.Error("feed query failed", "error", err, "author", req.Author)
		return nil, &posts.StorageError{Op: "list posts", Err: err}
	}

	// 3. Build next cursor from the last post of a full page
	page := &Page{Posts: list}
	if req.Limit > 0 && len(list) > req.Limit {
		page.Posts = list[:req.Limit]
		next := posts.EncodeCursor(page.Posts[len(page.Posts)-1])
		page.Cursor = &next
	}
	if page.Posts == nil {
		page.Posts = []*posts.Post{}
	}

	return page, nil
}

// GetByID delegates to the post engine
func (s *feedService) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	return s.posts.GetPost(ctx, id)
}
