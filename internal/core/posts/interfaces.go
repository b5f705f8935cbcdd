package posts

import "context"

// Service defines the business logic interface for the post aggregate.
// Every mutation loads the post, checks its invariants and ownership, then
// applies a single atomic sub-path update through the Repository.
type Service interface {
	// CreatePost creates a new post with empty likes and comments.
	// Author display fields are snapshotted from the AuthorDirectory.
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)

	// GetPost returns the full aggregate
	GetPost(ctx context.Context, postID string) (*Post, error)

	// DeletePost removes the post and everything it owns.
	// Only the post author may delete it.
	DeletePost(ctx context.Context, postID, actor string) error

	// LikePost prepends a like by actor. A second like is a ConflictError.
	LikePost(ctx context.Context, postID, actor string) ([]Like, error)

	// UnlikePost removes actor's like. Unliking without a like is a ConflictError.
	UnlikePost(ctx context.Context, postID, actor string) ([]Like, error)

	// AddComment prepends a new comment
	AddComment(ctx context.Context, req AddCommentRequest) ([]Comment, error)

	// RemoveComment removes a comment. Only the comment author may remove it.
	RemoveComment(ctx context.Context, postID, commentID, actor string) ([]Comment, error)
}

// Repository is the document store contract for post aggregates.
//
// Sub-collection mutations must be atomic, conditional updates on the
// specific sub-path (never a full-document overwrite) so that a concurrent
// like and comment on the same post cannot drop each other. When the
// condition fails the repository reports why with the post error kinds:
// NotFoundError, ErrAlreadyLiked, ErrNotLiked or AuthorizationError.
type Repository interface {
	// Create inserts a new post
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post by id, NotFoundError if absent
	GetByID(ctx context.Context, id string) (*Post, error)

	// Delete removes a post by id, NotFoundError if absent
	Delete(ctx context.Context, id string) error

	// List returns posts ordered by createdAt descending (id descending on ties)
	List(ctx context.Context, opts ListOptions) ([]*Post, error)

	// AddLike pushes like to the front of likes unless the user already liked the post
	AddLike(ctx context.Context, postID string, like Like) ([]Like, error)

	// RemoveLike pulls the first like by user
	RemoveLike(ctx context.Context, postID, user string) ([]Like, error)

	// AddComment pushes comment to the front of comments
	AddComment(ctx context.Context, postID string, comment Comment) ([]Comment, error)

	// RemoveComment pulls the comment with commentID if its author is actor
	RemoveComment(ctx context.Context, postID, commentID, actor string) ([]Comment, error)
}

// AuthorDirectory resolves the display snapshot for an author.
// Implementations return a NotFoundError when the user is unknown.
type AuthorDirectory interface {
	LookupAuthor(ctx context.Context, userID string) (*AuthorSnapshot, error)
}

// EventPublisher receives an event after each committed mutation.
// Publishing is best-effort; failures never fail the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
