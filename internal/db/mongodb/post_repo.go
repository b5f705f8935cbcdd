package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"Connector/internal/core/posts"
	"Connector/internal/db/dbctx"
)

type mongoPostRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewPostRepository creates a MongoDB-backed post repository
func NewPostRepository(db *mongo.Database, timeout time.Duration) posts.Repository {
	return &mongoPostRepo{coll: db.Collection(postsCollection), timeout: timeout}
}

// Create inserts post as a single document
func (r *mongoPostRepo) Create(ctx context.Context, post *posts.Post) error {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, post.Clone()); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("post already exists: %s", post.ID)
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post document
func (r *mongoPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.getByID(ctx, id)
}

func (r *mongoPostRepo) getByID(ctx context.Context, id string) (*posts.Post, error) {
	var post posts.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.NewNotFoundError("post", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return normalize(&post), nil
}

// Delete removes the post document with everything embedded in it
func (r *mongoPostRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return posts.NewNotFoundError("post", id)
	}
	return nil
}

// List returns posts sorted by createdAt DESC, _id DESC
func (r *mongoPostRepo) List(ctx context.Context, opts posts.ListOptions) ([]*posts.Post, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := r.coll.Find(ctx, buildListFilter(opts), findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}

	var result []*posts.Post
	if err := cur.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	for i := range result {
		result[i] = normalize(result[i])
	}
	if result == nil {
		result = []*posts.Post{}
	}
	return result, nil
}

// buildListFilter translates list options into a query document
func buildListFilter(opts posts.ListOptions) bson.M {
	filter := bson.M{}
	if opts.Author != "" {
		filter["author"] = opts.Author
	}
	if opts.Cursor != nil {
		filter["$or"] = bson.A{
			bson.M{"createdAt": bson.M{"$lt": opts.Cursor.CreatedAt}},
			bson.M{"createdAt": opts.Cursor.CreatedAt, "_id": bson.M{"$lt": opts.Cursor.ID}},
		}
	}
	return filter
}

// AddLike pushes like to position 0 unless the user already liked the post
func (r *mongoPostRepo) AddLike(ctx context.Context, postID string, like posts.Like) ([]posts.Like, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": postID, "likes.user": bson.M{"$ne": like.User}}
	update := bson.M{"$push": bson.M{"likes": bson.M{"$each": []posts.Like{like}, "$position": 0}}}

	var doc likesProjection
	err := r.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate("likes")).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.diagnose(ctx, postID, posts.ErrAlreadyLiked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add like: %w", err)
	}
	return posts.CloneLikes(doc.Likes), nil
}

// RemoveLike drops the first like by user, leaving any later duplicates
func (r *mongoPostRepo) RemoveLike(ctx context.Context, postID, user string) ([]posts.Like, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": postID, "likes.user": user}
	update := removeFirstLikeUpdate(user)

	var doc likesProjection
	err := r.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate("likes")).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.diagnose(ctx, postID, posts.ErrNotLiked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove like: %w", err)
	}
	return posts.CloneLikes(doc.Likes), nil
}

// removeFirstLikeUpdate is a pipeline update that rebuilds likes without
// the element at the first index whose user matches. $pull would drop all.
func removeFirstLikeUpdate(user string) bson.A {
	return bson.A{
		bson.M{"$set": bson.M{"likes": bson.M{"$let": bson.M{
			"vars": bson.M{"first": bson.M{"$indexOfArray": bson.A{"$likes.user", user}}},
			"in": bson.M{"$map": bson.M{
				"input": bson.M{"$filter": bson.M{
					"input": bson.M{"$range": bson.A{0, bson.M{"$size": "$likes"}}},
					"as":    "i",
					"cond":  bson.M{"$ne": bson.A{"$$i", "$$first"}},
				}},
				"as": "i",
				"in": bson.M{"$arrayElemAt": bson.A{"$likes", "$$i"}},
			}},
		}}}},
	}
}

// AddComment pushes comment to position 0
func (r *mongoPostRepo) AddComment(ctx context.Context, postID string, comment posts.Comment) ([]posts.Comment, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": []posts.Comment{comment}, "$position": 0}}}

	var doc commentsProjection
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": postID}, update, afterUpdate("comments")).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, posts.NewNotFoundError("post", postID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return normalizeComments(doc.Comments), nil
}

// RemoveComment pulls commentID when its author is actor
func (r *mongoPostRepo) RemoveComment(ctx context.Context, postID, commentID, actor string) ([]posts.Comment, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"_id":      postID,
		"comments": bson.M{"$elemMatch": bson.M{"id": commentID, "author": actor}},
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"id": commentID}}}

	var doc commentsProjection
	err := r.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate("comments")).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
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
	return normalizeComments(doc.Comments), nil
}

// diagnose explains a conditional update that matched no document
func (r *mongoPostRepo) diagnose(ctx context.Context, postID string, conditionErr error) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": postID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if count == 0 {
		return posts.NewNotFoundError("post", postID)
	}
	return conditionErr
}

type likesProjection struct {
	Likes []posts.Like `bson:"likes"`
}

type commentsProjection struct {
	Comments []posts.Comment `bson:"comments"`
}

// afterUpdate returns the updated document projected to field
func afterUpdate(field string) *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})
}

// normalize converts decoded times to UTC and nil arrays to empty
func normalize(post *posts.Post) *posts.Post {
	post.CreatedAt = post.CreatedAt.UTC()
	post.Likes = posts.CloneLikes(post.Likes)
	post.Comments = normalizeComments(post.Comments)
	return post
}

func normalizeComments(comments []posts.Comment) []posts.Comment {
	out := posts.CloneComments(comments)
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out
}
