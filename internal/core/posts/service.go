package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// maxTextLength caps post and comment text
	maxTextLength = 10000

	// defaultPublishTimeout bounds how long a committed mutation waits on the event stream
	defaultPublishTimeout = 2 * time.Second
)

type postService struct {
	repo      Repository
	authors   AuthorDirectory
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string

	publishTimeout time.Duration
}

// NewService creates a new post service.
// publisher may be nil when no event stream is configured.
func NewService(repo Repository, authors AuthorDirectory, publisher EventPublisher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:      repo,
		authors:   authors,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:     uuid.NewString,

		publishTimeout: defaultPublishTimeout,
	}
}

// CreatePost creates a new post
// Flow: Validate -> Snapshot author -> Persist -> Publish
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if req.Author == "" {
		return nil, NewValidationError("author", "author must be set from authenticated user")
	}
	text, err := validateText(req.Text)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.lookupAuthor(ctx, "create post", req.Author)
	if err != nil {
		return nil, err
	}

	post := &Post{
		ID:                s.newID(),
		Author:            req.Author,
		AuthorDisplayName: snapshot.DisplayName,
		AuthorAvatar:      snapshot.Avatar,
		Text:              text,
		CreatedAt:         s.now(),
		Likes:             []Like{},
		Comments:          []Comment{},
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, s.storageFailure("create post", err, "post_id", post.ID)
	}

	s.logger.Info("post created", "post_id", post.ID, "author", post.Author)
	s.publish(ctx, EventPostCreated, post.ID, post.Author, "")

	return post, nil
}

// GetPost returns a post by id
func (s *postService) GetPost(ctx context.Context, postID string) (*Post, error) {
	return s.load(ctx, "get post", postID)
}

// DeletePost deletes a post owned by actor
func (s *postService) DeletePost(ctx context.Context, postID, actor string) error {
	post, err := s.load(ctx, "delete post", postID)
	if err != nil {
		return err
	}

	if err := CheckPostDeletion(post, actor); err != nil {
		s.logger.Warn("post delete rejected", "post_id", postID, "actor", actor, "owner", post.Author)
		return err
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return s.storageFailure("delete post", err, "post_id", postID)
	}

	s.logger.Info("post deleted", "post_id", postID, "actor", actor)
	s.publish(ctx, EventPostDeleted, postID, actor, "")

	return nil
}

// LikePost adds actor's like to the front of the likes list
func (s *postService) LikePost(ctx context.Context, postID, actor string) ([]Like, error) {
	if actor == "" {
		return nil, NewValidationError("actor", "actor is required")
	}

	post, err := s.load(ctx, "like post", postID)
	if err != nil {
		return nil, err
	}

	if post.LikedBy(actor) {
		return nil, ErrAlreadyLiked
	}

	// The store re-checks the condition atomically; a racing like from the
	// same actor resolves to ErrAlreadyLiked here.
	likes, err := s.repo.AddLike(ctx, postID, Like{User: actor})
	if err != nil {
		return nil, s.storageFailure("like post", err, "post_id", postID, "actor", actor)
	}

	s.logger.Info("post liked", "post_id", postID, "actor", actor, "likes", len(likes))
	s.publish(ctx, EventPostLiked, postID, actor, "")

	return likes, nil
}

// UnlikePost removes actor's like from the likes list
func (s *postService) UnlikePost(ctx context.Context, postID, actor string) ([]Like, error) {
	if actor == "" {
		return nil, NewValidationError("actor", "actor is required")
	}

	post, err := s.load(ctx, "unlike post", postID)
	if err != nil {
		return nil, err
	}

	if !post.LikedBy(actor) {
		return nil, ErrNotLiked
	}

	likes, err := s.repo.RemoveLike(ctx, postID, actor)
	if err != nil {
		return nil, s.storageFailure("unlike post", err, "post_id", postID, "actor", actor)
	}

	s.logger.Info("post unliked", "post_id", postID, "actor", actor, "likes", len(likes))
	s.publish(ctx, EventPostUnliked, postID, actor, "")

	return likes, nil
}

// AddComment prepends a new comment by req.Author
func (s *postService) AddComment(ctx context.Context, req AddCommentRequest) ([]Comment, error) {
	if req.Author == "" {
		return nil, NewValidationError("author", "author must be set from authenticated user")
	}

	if _, err := s.load(ctx, "add comment", req.PostID); err != nil {
		return nil, err
	}

	text, err := validateText(req.Text)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.lookupAuthor(ctx, "add comment", req.Author)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		ID:                s.newID(),
		Author:            req.Author,
		AuthorDisplayName: snapshot.DisplayName,
		AuthorAvatar:      snapshot.Avatar,
		Text:              text,
		CreatedAt:         s.now(),
	}

	comments, err := s.repo.AddComment(ctx, req.PostID, comment)
	if err != nil {
		return nil, s.storageFailure("add comment", err, "post_id", req.PostID, "actor", req.Author)
	}

	s.logger.Info("comment added", "post_id", req.PostID, "comment_id", comment.ID, "actor", req.Author)
	s.publish(ctx, EventCommentAdded, req.PostID, req.Author, comment.ID)

	return comments, nil
}

// RemoveComment removes a comment authored by actor
func (s *postService) RemoveComment(ctx context.Context, postID, commentID, actor string) ([]Comment, error) {
	post, err := s.load(ctx, "remove comment", postID)
	if err != nil {
		return nil, err
	}

	if err := CheckCommentRemoval(post, commentID, actor); err != nil {
		if IsUnauthorized(err) {
			s.logger.Warn("comment removal rejected", "post_id", postID, "comment_id", commentID, "actor", actor)
		}
		return nil, err
	}

	comments, err := s.repo.RemoveComment(ctx, postID, commentID, actor)
	if err != nil {
		return nil, s.storageFailure("remove comment", err, "post_id", postID, "comment_id", commentID)
	}

	s.logger.Info("comment removed", "post_id", postID, "comment_id", commentID, "actor", actor)
	s.publish(ctx, EventCommentRemoved, postID, actor, commentID)

	return comments, nil
}

// load fetches a post, mapping store failures to StorageError
func (s *postService) load(ctx context.Context, op, postID string) (*Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewNotFoundError("post", postID)
	}
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, s.storageFailure(op, err, "post_id", postID)
	}
	return post, nil
}

func (s *postService) lookupAuthor(ctx context.Context, op, userID string) (*AuthorSnapshot, error) {
	if s.authors == nil {
		return &AuthorSnapshot{}, nil
	}
	snapshot, err := s.authors.LookupAuthor(ctx, userID)
	if err != nil {
		return nil, s.storageFailure(op, err, "author", userID)
	}
	return snapshot, nil
}

// storageFailure passes domain errors through unchanged and wraps anything
// else (driver errors, adapter timeouts) in a logged StorageError.
func (s *postService) storageFailure(op string, err error, attrs ...any) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error("post store failure", append([]any{"op", op, "error", err}, attrs...)...)
	return &StorageError{Op: op, Err: err}
}

func (s *postService) publish(ctx context.Context, typ EventType, postID, actor, commentID string) {
	if s.publisher == nil {
		return
	}
	event := Event{
		Type:       typ,
		PostID:     postID,
		Actor:      actor,
		CommentID:  commentID,
		OccurredAt: s.now(),
	}
	// The mutation is already committed: a caller that goes away must not
	// cancel the event, and a slow stream must not hold the response for long.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish post event", "type", typ, "post_id", postID, "error", err)
	}
}

// validateText enforces the non-empty and length rules; text is stored as given
func validateText(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", NewValidationError("text", "text is required")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return "", NewValidationError("text", fmt.Sprintf("text too long (max %d characters)", maxTextLength))
	}
	return text, nil
}
