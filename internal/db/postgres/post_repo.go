package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"Connector/internal/core/posts"
	"Connector/internal/db/dbctx"
)

// postColumns is the column list every post query selects, in scanPost order
const postColumns = `id, author_id, author_display_name, author_avatar, text, created_at, likes, comments`

type postgresPostRepo struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostRepository creates a new PostgreSQL post repository.
// Likes and comments are JSONB arrays on the post row; every sub-path
// mutation is a single conditional UPDATE so concurrent writers never
// overwrite each other.
func NewPostRepository(db *sql.DB, timeout time.Duration) posts.Repository {
	return &postgresPostRepo{db: db, timeout: timeout}
}

// Create inserts a new post into the posts table
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	likesJSON, err := json.Marshal(posts.CloneLikes(post.Likes))
	if err != nil {
		return fmt.Errorf("failed to encode likes: %w", err)
	}
	commentsJSON, err := json.Marshal(posts.CloneComments(post.Comments))
	if err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}

	query := `
		INSERT INTO posts (
			id, author_id, author_display_name, author_avatar, text,
			created_at, likes, comments
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		post.ID, post.Author, post.AuthorDisplayName, post.AuthorAvatar, post.Text,
		post.CreatedAt, string(likesJSON), string(commentsJSON),
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "posts_pkey") {
			return fmt.Errorf("post already exists: %s", post.ID)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post with its likes and comments
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.getByID(ctx, id)
}

func (r *postgresPostRepo) getByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Delete removes the post row, which carries its likes and comments with it
func (r *postgresPostRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return posts.NewNotFoundError("post", id)
	}

	return nil
}

// List returns posts ordered by created_at DESC, id DESC
func (r *postgresPostRepo) List(ctx context.Context, opts posts.ListOptions) ([]*posts.Post, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query, args := buildListQuery(opts)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("WARN: failed to close rows: %v", err)
		}
	}()

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return result, nil
}

// buildListQuery assembles the feed query and its positional arguments
func buildListQuery(opts posts.ListOptions) (string, []interface{}) {
	var whereConditions []string
	var args []interface{}
	paramIndex := 1

	if opts.Author != "" {
		whereConditions = append(whereConditions, fmt.Sprintf("author_id = $%d", paramIndex))
		args = append(args, opts.Author)
		paramIndex++
	}

	// (created_at, id) < (cursor_created_at, cursor_id)
	if opts.Cursor != nil {
		whereConditions = append(whereConditions, fmt.Sprintf(
			"(created_at < $%d OR (created_at = $%d AND id < $%d))",
			paramIndex, paramIndex, paramIndex+1))
		args = append(args, opts.Cursor.CreatedAt, opts.Cursor.ID)
		paramIndex += 2
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(whereConditions) > 0 {
		query += ` WHERE ` + strings.Join(whereConditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramIndex)
		args = append(args, opts.Limit)
	}

	return query, args
}

// AddLike prepends a like only when the user has none on the post
func (r *postgresPostRepo) AddLike(ctx context.Context, postID string, like posts.Like) ([]posts.Like, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE posts
		SET likes = jsonb_build_array(jsonb_build_object('user', $2::text)) || likes
		WHERE id = $1
		  AND NOT likes @> jsonb_build_array(jsonb_build_object('user', $2::text))
		RETURNING likes`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, postID, like.User).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, r.diagnose(ctx, postID, posts.ErrAlreadyLiked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add like: %w", err)
	}

	return decodeLikes(raw)
}

// RemoveLike removes the first like by user
func (r *postgresPostRepo) RemoveLike(ctx context.Context, postID, user string) ([]posts.Like, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE posts
		SET likes = likes - (
			SELECT (e.ord - 1)::int
			FROM jsonb_array_elements(likes) WITH ORDINALITY AS e(elem, ord)
			WHERE e.elem->>'user' = $2
			ORDER BY e.ord
			LIMIT 1
		)
		WHERE id = $1
		  AND likes @> jsonb_build_array(jsonb_build_object('user', $2::text))
		RETURNING likes`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, postID, user).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, r.diagnose(ctx, postID, posts.ErrNotLiked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove like: %w", err)
	}

	return decodeLikes(raw)
}

// AddComment prepends comment to the post's comments
func (r *postgresPostRepo) AddComment(ctx context.Context, postID string, comment posts.Comment) ([]posts.Comment, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	commentJSON, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}

	query := `
		UPDATE posts
		SET comments = jsonb_build_array($2::jsonb) || comments
		WHERE id = $1
		RETURNING comments`

	var raw []byte
	err = r.db.QueryRowContext(ctx, query, postID, string(commentJSON)).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, posts.NewNotFoundError("post", postID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return decodeComments(raw)
}

// RemoveComment removes commentID when its author is actor
func (r *postgresPostRepo) RemoveComment(ctx context.Context, postID, commentID, actor string) ([]posts.Comment, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE posts
		SET comments = comments - (
			SELECT (e.ord - 1)::int
			FROM jsonb_array_elements(comments) WITH ORDINALITY AS e(elem, ord)
			WHERE e.elem->>'id' = $2
			ORDER BY e.ord
			LIMIT 1
		)
		WHERE id = $1
		  AND comments @> jsonb_build_array(jsonb_build_object('id', $2::text, 'author', $3::text))
		RETURNING comments`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, postID, commentID, actor).Scan(&raw)
	if err == sql.ErrNoRows {
		post, getErr := r.getByID(ctx, postID)
		if getErr != nil {
			return nil, getErr
		}
		if checkErr := posts.CheckCommentRemoval(post, commentID, actor); checkErr != nil {
			return nil, checkErr
		}
		return nil, &posts.ConflictError{Reason: "comment changed concurrently"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove comment: %w", err)
	}

	return decodeComments(raw)
}

// diagnose explains a conditional update that matched no row: either the
// post is gone or the condition failed with conditionErr
func (r *postgresPostRepo) diagnose(ctx context.Context, postID string, conditionErr error) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if !exists {
		return posts.NewNotFoundError("post", postID)
	}
	return conditionErr
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPost scans a postColumns row into a Post
func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post          posts.Post
		likesJSON     []byte
		commentsJSON  []byte
		authorAvatar  sql.NullString
		authorDisplay sql.NullString
	)

	err := row.Scan(
		&post.ID, &post.Author, &authorDisplay, &authorAvatar, &post.Text,
		&post.CreatedAt, &likesJSON, &commentsJSON,
	)
	if err != nil {
		return nil, err
	}

	post.AuthorDisplayName = authorDisplay.String
	post.AuthorAvatar = authorAvatar.String
	post.CreatedAt = post.CreatedAt.UTC()

	if post.Likes, err = decodeLikes(likesJSON); err != nil {
		return nil, err
	}
	if post.Comments, err = decodeComments(commentsJSON); err != nil {
		return nil, err
	}

	return &post, nil
}

func decodeLikes(raw []byte) ([]posts.Like, error) {
	likes := []posts.Like{}
	if len(raw) == 0 {
		return likes, nil
	}
	if err := json.Unmarshal(raw, &likes); err != nil {
		return nil, fmt.Errorf("failed to decode likes: %w", err)
	}
	return posts.CloneLikes(likes), nil
}

func decodeComments(raw []byte) ([]posts.Comment, error) {
	comments := []posts.Comment{}
	if len(raw) == 0 {
		return comments, nil
	}
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return posts.CloneComments(comments), nil
}
