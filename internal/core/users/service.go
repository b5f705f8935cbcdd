package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"Connector/internal/core/posts"
)

const maxNameLength = 100

type userService struct {
	userRepo UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

// CreateUser creates a new user record
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	user := &User{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(strings.ToLower(req.Email)),
		Avatar:    strings.TrimSpace(req.Avatar),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Repository will handle duplicate constraint errors
	return s.userRepo.Create(ctx, user)
}

// GetUserByID retrieves a user by id
func (s *userService) GetUserByID(ctx context.Context, id string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	return s.userRepo.GetByEmail(ctx, email)
}

// LookupAuthor returns the display snapshot the post engine copies onto
// new posts and comments. An unknown user maps to a post NotFoundError.
func (s *userService) LookupAuthor(ctx context.Context, userID string) (*posts.AuthorSnapshot, error) {
	user, err := s.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, posts.NewNotFoundError("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up author %s: %w", userID, err)
	}

	return &posts.AuthorSnapshot{
		DisplayName: user.Name,
		Avatar:      user.Avatar,
	}, nil
}

func (s *userService) validateCreateRequest(req CreateUserRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return &InvalidNameError{Reason: "name is required"}
	}
	if len(name) > maxNameLength {
		return &InvalidNameError{Reason: fmt.Sprintf("name must be at most %d characters", maxNameLength)}
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		return &InvalidEmailError{Email: req.Email}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &InvalidEmailError{Email: req.Email}
	}

	return nil
}
