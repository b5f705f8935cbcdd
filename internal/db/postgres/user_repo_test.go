package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Connector/internal/core/users"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	defer cleanupTestData(t, db)

	repo := NewUserRepository(db, 0)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	created, err := repo.Create(ctx, &users.User{
		ID:        "test-user-1",
		Name:      "Ada",
		Email:     "test-ada@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "test-user-1", created.ID)

	byID, err := repo.GetByID(ctx, "test-user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	byEmail, err := repo.GetByEmail(ctx, "test-ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "test-user-1", byEmail.ID)

	_, err = repo.GetByID(ctx, "test-missing")
	assert.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestUserRepo_UniqueConstraints(t *testing.T) {
	db := setupTestDB(t)
	defer func() { _ = db.Close() }()
	defer cleanupTestData(t, db)

	repo := NewUserRepository(db, 0)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Create(ctx, &users.User{ID: "test-user-2", Name: "A", Email: "test-a@example.com", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &users.User{ID: "test-user-2", Name: "B", Email: "test-b@example.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, users.ErrUserAlreadyExists)

	_, err = repo.Create(ctx, &users.User{ID: "test-user-3", Name: "C", Email: "test-a@example.com", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, users.ErrEmailAlreadyTaken)
}
