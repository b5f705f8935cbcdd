package routes

import (
	"github.com/go-chi/chi/v5"

	"Connector/internal/api/handlers/post"
	"Connector/internal/api/middleware"
	"Connector/internal/core/feed"
	"Connector/internal/core/posts"
)

// RegisterPostRoutes registers the post endpoints under /api/posts.
// Every route requires a verified identity; limiter may be nil.
func RegisterPostRoutes(r chi.Router, postService posts.Service, feedService feed.Service, authMiddleware *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	// Initialize handlers
	createHandler := post.NewCreateHandler(postService)
	deleteHandler := post.NewDeleteHandler(postService)
	likeHandler := post.NewLikeHandler(postService)
	commentHandler := post.NewCommentHandler(postService)
	feedHandler := post.NewFeedHandler(feedService)

	r.Route("/api/posts", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		// Rate limit runs after auth so buckets are keyed by user
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Get("/", feedHandler.HandleList)
		r.Post("/", createHandler.HandleCreate)
		r.Get("/{id}", feedHandler.HandleGet)

		// Only post authors can delete their own posts
		r.Delete("/{id}", deleteHandler.HandleDelete)

		r.Put("/like/{id}", likeHandler.HandleLike)
		r.Put("/unlike/{id}", likeHandler.HandleUnlike)

		r.Post("/comment/{id}", commentHandler.HandleAdd)
		r.Delete("/comment/{id}/{commentId}", commentHandler.HandleRemove)
	})
}
