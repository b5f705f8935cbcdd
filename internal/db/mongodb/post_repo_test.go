package mongodb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"Connector/internal/core/posts"
	"Connector/internal/core/users"
)

// setupTestClient connects to TEST_MONGO_URI using a throwaway database.
// Tests are skipped when no server is configured.
func setupTestClient(t *testing.T) *Client {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB tests")
	}

	ctx := context.Background()
	dbName := fmt.Sprintf("connector_test_%d", time.Now().UnixNano())
	client, err := Connect(ctx, uri, dbName)
	require.NoError(t, err, "Failed to connect to test mongo")
	require.NoError(t, client.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	})
	return client
}

func TestBuildListFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildListFilter(posts.ListOptions{}))

	filter := buildListFilter(posts.ListOptions{Author: "u1"})
	assert.Equal(t, "u1", filter["author"])
	assert.NotContains(t, filter, "$or")

	cursorTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter = buildListFilter(posts.ListOptions{Cursor: &posts.Cursor{CreatedAt: cursorTime, ID: "p9"}})
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
}

func TestRemoveFirstLikeUpdate(t *testing.T) {
	update := removeFirstLikeUpdate("u2")
	require.Len(t, update, 1)

	stage, ok := update[0].(bson.M)
	require.True(t, ok)
	set, ok := stage["$set"].(bson.M)
	require.True(t, ok)
	assert.Contains(t, set, "likes")
	assert.NotContains(t, stage, "$pull")
}

func TestMongoPostRepo_RemoveLikeDropsFirstMatchOnly(t *testing.T) {
	client := setupTestClient(t)
	repo := NewPostRepository(client.Database(), 0)
	ctx := context.Background()

	// Seed a document that already violates uniqueness to observe first-match removal
	require.NoError(t, repo.Create(ctx, &posts.Post{
		ID:        "p1",
		Author:    "u1",
		Text:      "hello",
		CreatedAt: time.Now().UTC(),
		Likes:     []posts.Like{{User: "u3"}, {User: "u2"}, {User: "u4"}, {User: "u2"}},
	}))

	likes, err := repo.RemoveLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.Equal(t, []posts.Like{{User: "u3"}, {User: "u4"}, {User: "u2"}}, likes)
}

func TestMongoPostRepo_Lifecycle(t *testing.T) {
	client := setupTestClient(t)
	repo := NewPostRepository(client.Database(), 0)
	ctx := context.Background()
	createdAt := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, &posts.Post{ID: "p1", Author: "u1", Text: "hello", CreatedAt: createdAt}))
	assert.Error(t, repo.Create(ctx, &posts.Post{ID: "p1", Author: "u1", Text: "dup", CreatedAt: createdAt}))

	post, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)
	assert.True(t, post.CreatedAt.Equal(createdAt))
	assert.NotNil(t, post.Likes)
	assert.NotNil(t, post.Comments)

	likes, err := repo.AddLike(ctx, "p1", posts.Like{User: "u2"})
	require.NoError(t, err)
	assert.Equal(t, []posts.Like{{User: "u2"}}, likes)

	likes, err = repo.AddLike(ctx, "p1", posts.Like{User: "u3"})
	require.NoError(t, err)
	assert.Equal(t, []posts.Like{{User: "u3"}, {User: "u2"}}, likes)

	_, err = repo.AddLike(ctx, "p1", posts.Like{User: "u2"})
	assert.ErrorIs(t, err, posts.ErrAlreadyLiked)

	likes, err = repo.RemoveLike(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.Equal(t, []posts.Like{{User: "u3"}}, likes)

	_, err = repo.RemoveLike(ctx, "p1", "u2")
	assert.ErrorIs(t, err, posts.ErrNotLiked)

	_, err = repo.AddLike(ctx, "missing", posts.Like{User: "u2"})
	assert.True(t, posts.IsNotFound(err))

	comments, err := repo.AddComment(ctx, "p1", posts.Comment{ID: "c1", Author: "u3", Text: "nice!", CreatedAt: createdAt})
	require.NoError(t, err)
	require.Len(t, comments, 1)

	_, err = repo.RemoveComment(ctx, "p1", "c1", "u1")
	assert.True(t, posts.IsUnauthorized(err))

	_, err = repo.RemoveComment(ctx, "p1", "c404", "u3")
	assert.True(t, posts.IsNotFound(err))

	comments, err = repo.RemoveComment(ctx, "p1", "c1", "u3")
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.GetByID(ctx, "p1")
	assert.True(t, posts.IsNotFound(err))
	assert.True(t, posts.IsNotFound(repo.Delete(ctx, "p1")))
}

func TestMongoPostRepo_List(t *testing.T) {
	client := setupTestClient(t)
	repo := NewPostRepository(client.Database(), 0)
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, author := range []string{"u1", "u2", "u1"} {
		require.NoError(t, repo.Create(ctx, &posts.Post{
			ID:        fmt.Sprintf("p%d", i+1),
			Author:    author,
			Text:      "t",
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := repo.List(ctx, posts.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p3", all[0].ID)
	assert.Equal(t, "p1", all[2].ID)

	page, err := repo.List(ctx, posts.ListOptions{Limit: 1, Cursor: &posts.Cursor{CreatedAt: all[0].CreatedAt, ID: all[0].ID}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "p2", page[0].ID)

	mine, err := repo.List(ctx, posts.ListOptions{Author: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestMongoPostRepo_ConcurrentLikesAndComments(t *testing.T) {
	client := setupTestClient(t)
	repo := NewPostRepository(client.Database(), 0)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &posts.Post{ID: "p1", Author: "u1", Text: "hello", CreatedAt: time.Now().UTC()}))

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddLike(ctx, "p1", posts.Like{User: fmt.Sprintf("liker-%d", i)})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddComment(ctx, "p1", posts.Comment{ID: fmt.Sprintf("c%d", i), Author: "u2", Text: "x"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	post, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, post.Likes, n)
	assert.Len(t, post.Comments, n)
}

func TestMongoUserRepo(t *testing.T) {
	client := setupTestClient(t)
	repo := NewUserRepository(client.Database(), 0)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := repo.Create(ctx, &users.User{ID: "u1", Name: "Ada", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &users.User{ID: "u1", Name: "Dup", Email: "dup@example.com"})
	assert.ErrorIs(t, err, users.ErrUserAlreadyExists)

	_, err = repo.Create(ctx, &users.User{ID: "u2", Name: "Dup", Email: "ada@example.com"})
	assert.ErrorIs(t, err, users.ErrEmailAlreadyTaken)

	user, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}
