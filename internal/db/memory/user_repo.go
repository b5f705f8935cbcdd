package memory

import (
	"context"
	"fmt"
	"sync"

	"Connector/internal/core/users"
)

type memoryUserRepo struct {
	byID map[string]*users.User
	mu   sync.RWMutex
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() users.UserRepository {
	return &memoryUserRepo{byID: make(map[string]*users.User)}
}

// Create stores user, enforcing unique id and email
func (r *memoryUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return nil, users.ErrUserAlreadyExists
	}
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return nil, users.ErrEmailAlreadyTaken
		}
	}

	stored := *user
	r.byID[user.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID retrieves a user by id
func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetByEmail retrieves a user by email
func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, users.ErrUserNotFound
}
