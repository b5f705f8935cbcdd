package events

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Connector/internal/core/posts"
)

func TestEncode_WireShape(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	raw, err := Encode(posts.Event{
		OccurredAt: at,
		Type:       posts.EventPostLiked,
		PostID:     "p1",
		Actor:      "u2",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"occurredAt":"2024-01-01T12:00:00Z","type":"post.liked","postId":"p1","actor":"u2"}`, string(raw))

	raw, err = Encode(posts.Event{OccurredAt: at, Type: posts.EventCommentRemoved, PostID: "p1", Actor: "u3", CommentID: "c1"})
	require.NoError(t, err)
	event, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "c1", event.CommentID)
	assert.Equal(t, posts.EventCommentRemoved, event.Type)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestNewRedisPublisher_MissingAddr(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "  ", "", nil)
	assert.Error(t, err)
}

func TestRedisPublisher_NilIsSafeToClose(t *testing.T) {
	var p *RedisPublisher
	assert.NoError(t, p.Close())
	assert.Error(t, p.Publish(context.Background(), posts.Event{}))
}

func TestRedisPublisher_Publish(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis tests")
	}
	ctx := context.Background()

	publisher, err := NewRedisPublisher(ctx, addr, "connector.test", nil)
	require.NoError(t, err)
	defer func() { _ = publisher.Close() }()

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()
	sub := rdb.Subscribe(ctx, publisher.Channel())
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(ctx, posts.Event{
		OccurredAt: time.Now().UTC(),
		Type:       posts.EventPostCreated,
		PostID:     "p1",
		Actor:      "u1",
	}))

	select {
	case msg := <-sub.Channel():
		event, err := Decode([]byte(msg.Payload))
		require.NoError(t, err)
		assert.Equal(t, posts.EventPostCreated, event.Type)
		assert.Equal(t, "p1", event.PostID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
