package posts

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// maxCursorSize bounds the encoded cursor to reject oversized input early
const maxCursorSize = 512

// Cursor is a keyset position in the feed: the last post returned.
// ID only breaks ties between posts created at the same instant.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor builds an opaque cursor pointing after post.
// Format: base64url(created_at|id)
func EncodeCursor(post *Post) string {
	raw := fmt.Sprintf("%s|%s", post.CreatedAt.UTC().Format(time.RFC3339Nano), post.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor produced by EncodeCursor.
// An empty string yields a nil cursor (first page).
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	if len(cursor) > maxCursorSize {
		return nil, fmt.Errorf("%w: cursor exceeds maximum length", ErrInvalidCursor)
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 encoding", ErrInvalidCursor)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("%w: malformed cursor format", ErrInvalidCursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp in cursor", ErrInvalidCursor)
	}

	return &Cursor{CreatedAt: createdAt, ID: parts[1]}, nil
}

// After reports whether post sorts strictly after the cursor position
// in createdAt DESC, id DESC order.
func (c *Cursor) After(post *Post) bool {
	if c == nil {
		return true
	}
	if post.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return post.CreatedAt.Equal(c.CreatedAt) && post.ID < c.ID
}
