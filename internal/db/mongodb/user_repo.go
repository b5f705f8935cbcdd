package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"Connector/internal/core/users"
	"Connector/internal/db/dbctx"
)

type mongoUserRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewUserRepository creates a MongoDB-backed user repository
func NewUserRepository(db *mongo.Database, timeout time.Duration) users.UserRepository {
	return &mongoUserRepo{coll: db.Collection(usersCollection), timeout: timeout}
}

// Create inserts user; the unique email index reports ErrEmailAlreadyTaken
func (r *mongoUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	stored := *user
	if _, err := r.coll.InsertOne(ctx, &stored); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "users_email_key") {
				return nil, users.ErrEmailAlreadyTaken
			}
			return nil, users.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &stored, nil
}

// GetByID retrieves a user by id
func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "id")
}

// GetByEmail retrieves a user by email
func (r *mongoUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email")
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M, by string) (*users.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, r.timeout)
	defer cancel()

	var user users.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", by, err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
