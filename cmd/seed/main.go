package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"Connector/internal/config"
	"Connector/internal/core/posts"
	"Connector/internal/core/users"
	"Connector/internal/db/store"
)

// seed populates a store with demo users, posts, likes and comments.
// Everything goes through the post engine so invariants hold.
//
// Usage:
//
//	go run ./cmd/seed --driver postgres --database-url postgres://...
//	go run ./cmd/seed --driver mongo --mongo-uri mongodb://localhost:27017

var userNames = []string{
	"sarah_jenkins", "michael_chen", "jessica_rodriguez", "david_nguyen",
	"emily_williams", "james_patel", "ashley_garcia", "robert_kim",
	"jennifer_lee", "william_martinez", "amanda_johnson", "daniel_brown",
}

var postTexts = []string{
	"Just shipped my first Go service to production. Feels good!",
	"Anyone else think code review is the best way to learn a codebase?",
	"Looking for recommendations on a good mechanical keyboard.",
	"Hot take: tabs are fine, the formatter decides anyway.",
	"Spent the weekend refactoring a 2000 line handler. Worth it.",
	"Pair programming session today taught me more than a week of docs.",
}

var commentTexts = []string{
	"Congrats, that's awesome!",
	"Couldn't agree more.",
	"Great point, thanks for sharing.",
	"I had the same experience last month.",
	"Interesting take, I'd love to hear more.",
	"This made my day.",
}

func main() {
	defaults := config.Default().Store

	driver := pflag.String("driver", envOr("STORE_DRIVER", config.DriverPostgres), "store driver: postgres or mongo")
	databaseURL := pflag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	mongoURI := pflag.String("mongo-uri", os.Getenv("MONGO_URI"), "MongoDB connection string")
	mongoDatabase := pflag.String("mongo-database", envOr("MONGO_DATABASE", defaults.MongoDatabase), "MongoDB database name")
	numPosts := pflag.Int("posts", 20, "number of posts to create")
	maxComments := pflag.Int("max-comments", 5, "maximum comments per post")
	workers := pflag.Int("workers", 4, "concurrent writers")
	pflag.Parse()

	if *driver == config.DriverMemory {
		log.Fatal("seeding the memory driver is pointless: the data dies with this process")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	st, err := store.Open(ctx, config.StoreConfig{
		Driver:           *driver,
		OperationTimeout: defaults.OperationTimeout,
		DatabaseURL:      *databaseURL,
		MongoURI:         *mongoURI,
		MongoDatabase:    *mongoDatabase,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = st.Close(ctx) }()

	userService := users.NewUserService(st.Users)
	postService := posts.NewService(st.Posts, userService, nil, logger)

	ids, err := seedUsers(ctx, userService)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	fmt.Printf("Seeded %d users\n", len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for i := 0; i < *numPosts; i++ {
		i := i
		g.Go(func() error {
			return seedPost(gctx, postService, ids, i, *maxComments)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Failed to seed posts: %v", err)
	}

	fmt.Printf("Seeded %d posts\n", *numPosts)
}

// seedUsers creates the demo users, reusing any that already exist
func seedUsers(ctx context.Context, service users.UserService) ([]string, error) {
	ids := make([]string, 0, len(userNames))
	for _, name := range userNames {
		id := "seed-" + strings.ReplaceAll(name, "_", "-")
		_, err := service.CreateUser(ctx, users.CreateUserRequest{
			ID:    id,
			Name:  displayName(name),
			Email: name + "@example.com",
		})
		if err != nil && !errors.Is(err, users.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seedPost creates one post, then likes and comments on it from random users
func seedPost(ctx context.Context, service posts.Service, ids []string, i, maxComments int) error {
	rng := rand.New(rand.NewSource(int64(i) + 1))

	author := ids[rng.Intn(len(ids))]
	post, err := service.CreatePost(ctx, posts.CreatePostRequest{
		Author: author,
		Text:   postTexts[i%len(postTexts)],
	})
	if err != nil {
		return fmt.Errorf("create post %d: %w", i, err)
	}

	for _, liker := range rng.Perm(len(ids))[:rng.Intn(len(ids))] {
		if _, err := service.LikePost(ctx, post.ID, ids[liker]); err != nil {
			return fmt.Errorf("like post %s: %w", post.ID, err)
		}
	}

	if maxComments <= 0 {
		return nil
	}
	for c := rng.Intn(maxComments + 1); c > 0; c-- {
		_, err := service.AddComment(ctx, posts.AddCommentRequest{
			PostID: post.ID,
			Author: ids[rng.Intn(len(ids))],
			Text:   commentTexts[rng.Intn(len(commentTexts))],
		})
		if err != nil {
			return fmt.Errorf("comment on post %s: %w", post.ID, err)
		}
	}
	return nil
}

// displayName turns sarah_jenkins into Sarah Jenkins
func displayName(handle string) string {
	parts := strings.Split(handle, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
