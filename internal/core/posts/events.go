package posts

import "time"

// EventType names a committed post mutation
type EventType string

const (
	EventPostCreated    EventType = "post.created"
	EventPostDeleted    EventType = "post.deleted"
	EventPostLiked      EventType = "post.liked"
	EventPostUnliked    EventType = "post.unliked"
	EventCommentAdded   EventType = "comment.added"
	EventCommentRemoved EventType = "comment.removed"
)

// Event describes a mutation after it has been persisted
type Event struct {
	OccurredAt time.Time `json:"occurredAt"`
	Type       EventType `json:"type"`
	PostID     string    `json:"postId"`
	Actor      string    `json:"actor"`
	CommentID  string    `json:"commentId,omitempty"`
}
