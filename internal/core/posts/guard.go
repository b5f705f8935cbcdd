package posts

// IsOwner reports whether actorID owns a resource owned by ownerID.
// An empty identity never owns anything.
func IsOwner(actorID, ownerID string) bool {
	return actorID != "" && ownerID != "" && actorID == ownerID
}

// CheckCommentRemoval verifies that comment commentID exists on post and
// that actor may remove it. It must pass before any mutation is applied.
func CheckCommentRemoval(post *Post, commentID, actor string) error {
	comment := post.FindComment(commentID)
	if comment == nil {
		return NewNotFoundError("comment", commentID)
	}
	if !IsOwner(actor, comment.Author) {
		return NewAuthorizationError(actor, "remove", "comment")
	}
	return nil
}

// CheckPostDeletion verifies that actor may delete post
func CheckPostDeletion(post *Post, actor string) error {
	if !IsOwner(actor, post.Author) {
		return NewAuthorizationError(actor, "delete", "post")
	}
	return nil
}
