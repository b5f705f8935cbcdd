// Package memory provides in-process implementations of the store
// contracts for development and tests. Each post is guarded by the store
// mutex, which gives the same per-document atomicity as the database
// adapters.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"Connector/internal/core/posts"
)

type memoryPostRepo struct {
	posts map[string]*posts.Post
	mu    sync.RWMutex
}

// NewPostRepository creates an empty in-memory post repository
func NewPostRepository() posts.Repository {
	return &memoryPostRepo{posts: make(map[string]*posts.Post)}
}

// Create stores a copy of post
func (r *memoryPostRepo) Create(ctx context.Context, post *posts.Post) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; exists {
		return fmt.Errorf("post already exists: %s", post.ID)
	}
	r.posts[post.ID] = post.Clone()
	return nil
}

// GetByID returns a copy of the stored post
func (r *memoryPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, posts.NewNotFoundError("post", id)
	}
	return post.Clone(), nil
}

// Delete removes the post with its likes and comments
func (r *memoryPostRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return posts.NewNotFoundError("post", id)
	}
	delete(r.posts, id)
	return nil
}

// List returns posts newest first
func (r *memoryPostRepo) List(ctx context.Context, opts posts.ListOptions) ([]*posts.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	r.mu.RLock()
	result := make([]*posts.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if opts.Author != "" && post.Author != opts.Author {
			continue
		}
		if !opts.Cursor.After(post) {
			continue
		}
		result = append(result, post.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// AddLike prepends like unless the user already liked the post
func (r *memoryPostRepo) AddLike(ctx context.Context, postID string, like posts.Like) ([]posts.Like, error) {
	var likes []posts.Like
	err := r.mutate(ctx, postID, func(post *posts.Post) error {
		if post.LikedBy(like.User) {
			return posts.ErrAlreadyLiked
		}
		post.Likes = posts.PrependLike(post.Likes, like)
		likes = posts.CloneLikes(post.Likes)
		return nil
	})
	return likes, err
}

// RemoveLike removes the first like by user
func (r *memoryPostRepo) RemoveLike(ctx context.Context, postID, user string) ([]posts.Like, error) {
	var likes []posts.Like
	err := r.mutate(ctx, postID, func(post *posts.Post) error {
		remaining, ok := posts.RemoveFirstLike(post.Likes, user)
		if !ok {
			return posts.ErrNotLiked
		}
		post.Likes = remaining
		likes = posts.CloneLikes(remaining)
		return nil
	})
	return likes, err
}

// AddComment prepends comment
func (r *memoryPostRepo) AddComment(ctx context.Context, postID string, comment posts.Comment) ([]posts.Comment, error) {
	var comments []posts.Comment
	err := r.mutate(ctx, postID, func(post *posts.Post) error {
		post.Comments = posts.PrependComment(post.Comments, comment)
		comments = posts.CloneComments(post.Comments)
		return nil
	})
	return comments, err
}

// RemoveComment removes commentID if actor wrote it
func (r *memoryPostRepo) RemoveComment(ctx context.Context, postID, commentID, actor string) ([]posts.Comment, error) {
	var comments []posts.Comment
	err := r.mutate(ctx, postID, func(post *posts.Post) error {
		if err := posts.CheckCommentRemoval(post, commentID, actor); err != nil {
			return err
		}
		remaining, _ := posts.RemoveComment(post.Comments, commentID)
		post.Comments = remaining
		comments = posts.CloneComments(remaining)
		return nil
	})
	return comments, err
}

// mutate applies fn to the stored post under the write lock.
// fn must leave the post untouched when it returns an error.
func (r *memoryPostRepo) mutate(ctx context.Context, postID string, fn func(post *posts.Post) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return posts.NewNotFoundError("post", postID)
	}
	return fn(post)
}
