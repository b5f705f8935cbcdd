package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Connector/internal/core/posts"
	"Connector/internal/db/memory"
)

// failingRepository fails every List call
type failingRepository struct {
	posts.Repository
	err error
}

func (f failingRepository) List(ctx context.Context, opts posts.ListOptions) ([]*posts.Post, error) {
	return nil, f.err
}

func seedFeed(t *testing.T, repo posts.Repository, specs ...struct{ id, author string }) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, spec := range specs {
		require.NoError(t, repo.Create(context.Background(), &posts.Post{
			ID:        spec.id,
			Author:    spec.author,
			Text:      "text",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

type postSpec = struct{ id, author string }

func newTestFeed(t *testing.T, maxLimit int) (Service, posts.Repository) {
	t.Helper()
	repo := memory.NewPostRepository()
	engine := posts.NewService(repo, nil, nil, nil)
	return NewService(repo, engine, maxLimit, nil), repo
}

func pageIDs(page *Page) []string {
	ids := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestListAll_NewestFirst(t *testing.T) {
	svc, repo := newTestFeed(t, 0)
	seedFeed(t, repo, postSpec{"t1", "u1"}, postSpec{"t2", "u2"}, postSpec{"t3", "u1"})

	page, err := svc.ListAll(context.Background(), ListRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t2", "t1"}, pageIDs(page))
	assert.Nil(t, page.Cursor, "unbounded listing has no next page")
}

func TestListAll_Empty(t *testing.T) {
	svc, _ := newTestFeed(t, 0)

	page, err := svc.ListAll(context.Background(), ListRequest{Limit: 10})

	require.NoError(t, err)
	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)
	assert.Nil(t, page.Cursor)
}

func TestListAll_Pagination(t *testing.T) {
	svc, repo := newTestFeed(t, 0)
	ctx := context.Background()
	var specs []postSpec
	for i := 1; i <= 5; i++ {
		specs = append(specs, postSpec{fmt.Sprintf("p%d", i), "u1"})
	}
	seedFeed(t, repo, specs...)

	first, err := svc.ListAll(ctx, ListRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"p5", "p4"}, pageIDs(first))
	require.NotNil(t, first.Cursor)

	second, err := svc.ListAll(ctx, ListRequest{Limit: 2, Cursor: *first.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p2"}, pageIDs(second))
	require.NotNil(t, second.Cursor)

	last, err := svc.ListAll(ctx, ListRequest{Limit: 2, Cursor: *second.Cursor})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, pageIDs(last))
	assert.Nil(t, last.Cursor)
}

func TestListAll_AuthorFilter(t *testing.T) {
	svc, repo := newTestFeed(t, 0)
	seedFeed(t, repo, postSpec{"a", "u1"}, postSpec{"b", "u2"}, postSpec{"c", "u1"})

	page, err := svc.ListAll(context.Background(), ListRequest{Author: "u1"})

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, pageIDs(page))
}

func TestListAll_ClampsLimit(t *testing.T) {
	svc, repo := newTestFeed(t, 2)
	seedFeed(t, repo, postSpec{"a", "u1"}, postSpec{"b", "u1"}, postSpec{"c", "u1"})

	page, err := svc.ListAll(context.Background(), ListRequest{Limit: 50})

	require.NoError(t, err)
	assert.Len(t, page.Posts, 2)
	assert.NotNil(t, page.Cursor)
}

func TestListAll_Validation(t *testing.T) {
	svc, _ := newTestFeed(t, 0)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   ListRequest
		field string
	}{
		{name: "negative limit", req: ListRequest{Limit: -1}, field: "limit"},
		{name: "malformed cursor", req: ListRequest{Cursor: "%%%"}, field: "cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListAll(ctx, tt.req)

			var valErr *posts.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}

func TestListAll_StoreFailure(t *testing.T) {
	dbErr := errors.New("connection reset")
	svc := NewService(failingRepository{err: dbErr}, nil, 0, nil)

	_, err := svc.ListAll(context.Background(), ListRequest{})

	assert.True(t, posts.IsStorageError(err))
	assert.ErrorIs(t, err, dbErr)
}

func TestGetByID_Delegates(t *testing.T) {
	svc, repo := newTestFeed(t, 0)
	seedFeed(t, repo, postSpec{"p1", "u1"})

	post, err := svc.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "u1", post.Author)

	_, err = svc.GetByID(context.Background(), "nope")
	assert.True(t, posts.IsNotFound(err))
}
