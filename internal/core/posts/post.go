package posts

import (
	"time"
)

// Post is a single feed entry together with the likes and comments it owns.
// Likes and Comments are kept newest-first; they have no lifecycle outside
// the post and are discarded with it.
//
// AuthorDisplayName and AuthorAvatar are a snapshot of the author's profile
// taken at creation time. They are not re-synced when the profile changes.
type Post struct {
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	ID                string    `json:"id" bson:"_id"`
	Author            string    `json:"author" bson:"author"`
	AuthorDisplayName string    `json:"authorDisplayName" bson:"authorDisplayName"`
	AuthorAvatar      string    `json:"authorAvatar,omitempty" bson:"authorAvatar,omitempty"`
	Text              string    `json:"text" bson:"text"`
	Likes             []Like    `json:"likes" bson:"likes"`
	Comments          []Comment `json:"comments" bson:"comments"`
}

// Like is one user's endorsement of a post.
// At most one Like exists per (post, user) pair.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Comment is a reply attached to a post
type Comment struct {
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	ID                string    `json:"id" bson:"id"`
	Author            string    `json:"author" bson:"author"`
	AuthorDisplayName string    `json:"authorDisplayName" bson:"authorDisplayName"`
	AuthorAvatar      string    `json:"authorAvatar,omitempty" bson:"authorAvatar,omitempty"`
	Text              string    `json:"text" bson:"text"`
}

// CreatePostRequest represents input for creating a new post.
// Author is set from the verified identity, never from the request body.
type CreatePostRequest struct {
	Author string `json:"-"`
	Text   string `json:"text"`
}

// AddCommentRequest represents input for attaching a comment to a post
type AddCommentRequest struct {
	PostID string `json:"-"`
	Author string `json:"-"`
	Text   string `json:"text"`
}

// ListOptions controls feed listing at the repository level.
// A zero Limit means no limit.
type ListOptions struct {
	Cursor *Cursor
	Author string
	Limit  int
}

// AuthorSnapshot is the denormalized author metadata copied onto posts and comments
type AuthorSnapshot struct {
	DisplayName string
	Avatar      string
}

// LikedBy reports whether user has a like on the post
func (p *Post) LikedBy(user string) bool {
	return indexOfLike(p.Likes, user) >= 0
}

// FindComment returns the comment with the given id, or nil
func (p *Post) FindComment(commentID string) *Comment {
	if i := indexOfComment(p.Comments, commentID); i >= 0 {
		return &p.Comments[i]
	}
	return nil
}

// Clone returns a deep copy of the post so callers never share the
// nested slices with a store.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Likes = CloneLikes(p.Likes)
	c.Comments = CloneComments(p.Comments)
	return &c
}

// CloneLikes copies a likes slice, normalizing nil to empty
func CloneLikes(likes []Like) []Like {
	out := make([]Like, len(likes))
	copy(out, likes)
	return out
}

// CloneComments copies a comments slice, normalizing nil to empty
func CloneComments(comments []Comment) []Comment {
	out := make([]Comment, len(comments))
	copy(out, comments)
	return out
}

// PrependLike returns a new slice with like at the front
func PrependLike(likes []Like, like Like) []Like {
	out := make([]Like, 0, len(likes)+1)
	out = append(out, like)
	return append(out, likes...)
}

// RemoveFirstLike returns a new slice without the first like by user.
// ok is false when user has no like.
func RemoveFirstLike(likes []Like, user string) (out []Like, ok bool) {
	i := indexOfLike(likes, user)
	if i < 0 {
		return CloneLikes(likes), false
	}
	out = make([]Like, 0, len(likes)-1)
	out = append(out, likes[:i]...)
	return append(out, likes[i+1:]...), true
}

// PrependComment returns a new slice with comment at the front
func PrependComment(comments []Comment, comment Comment) []Comment {
	out := make([]Comment, 0, len(comments)+1)
	out = append(out, comment)
	return append(out, comments...)
}

// RemoveComment returns a new slice without the comment with the given id.
// ok is false when no such comment exists.
func RemoveComment(comments []Comment, commentID string) (out []Comment, ok bool) {
	i := indexOfComment(comments, commentID)
	if i < 0 {
		return CloneComments(comments), false
	}
	out = make([]Comment, 0, len(comments)-1)
	out = append(out, comments[:i]...)
	return append(out, comments[i+1:]...), true
}

func indexOfLike(likes []Like, user string) int {
	for i := range likes {
		if likes[i].User == user {
			return i
		}
	}
	return -1
}

func indexOfComment(comments []Comment, commentID string) int {
	for i := range comments {
		if comments[i].ID == commentID {
			return i
		}
	}
	return -1
}
