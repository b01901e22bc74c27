package posts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/blogivea-go/config"
	"github.com/user/blogivea-go/db"
)

// newTestPool connects to TEST_DATABASE_URL and applies the schema. Tests that
// need it are skipped when the variable is unset.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, &config.DatabaseConfig{URL: url, MaxConns: 20})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := db.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return pool
}

// seedPost inserts a post under a unique author and removes that author's posts afterwards.
func seedPost(t *testing.T, repo *PostgresRepository) *Post {
	t.Helper()
	p := &Post{
		ID:        uuid.NewString(),
		Name:      "N",
		Username:  "author-" + uuid.NewString(),
		Title:     "T",
		Content:   "C",
		CreatedAt: time.Now().UTC(),
		Likes:     []string{},
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { repo.DeleteByAuthor(context.Background(), p.Username) })
	return p
}

func TestPostgresConcurrentLikeOnce(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	p := seedPost(t, repo)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, duplicates := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddLike(ctx, p.ID, "ana")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyLiked):
				duplicates++
			default:
				t.Errorf("add like: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || duplicates != n-1 {
		t.Fatalf("succeeded=%d duplicates=%d", succeeded, duplicates)
	}
	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Likes) != 1 || got.Likes[0] != "ana" {
		t.Fatalf("likes %v", got.Likes)
	}
}

func TestPostgresConcurrentLikesByManyUsers(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	p := seedPost(t, repo)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := repo.AddLike(ctx, p.ID, fmt.Sprintf("user%d", i)); err != nil {
				t.Errorf("like %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := repo.FindByID(ctx, p.ID)
	if len(got.Likes) != n {
		t.Fatalf("got %d likes, want %d", len(got.Likes), n)
	}
}

func TestPostgresLikeMissingPost(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	ctx := context.Background()
	missing := uuid.NewString()

	if _, err := repo.AddLike(ctx, missing, "ana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("like: %v", err)
	}
	if _, err := repo.RemoveLike(ctx, missing, "ana"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unlike: %v", err)
	}
}

func TestPostgresRemoveLikeIsIdempotent(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	p := seedPost(t, repo)
	ctx := context.Background()

	if _, err := repo.AddLike(ctx, p.ID, "ana"); err != nil {
		t.Fatalf("like: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := repo.RemoveLike(ctx, p.ID, "ana")
		if err != nil {
			t.Fatalf("unlike %d: %v", i, err)
		}
		if got.Likes == nil || len(got.Likes) != 0 {
			t.Fatalf("unlike %d: likes %#v", i, got.Likes)
		}
	}
}

func TestPostgresUpdateModifiedAndNoop(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	p := seedPost(t, repo)
	ctx := context.Background()
	title := "T2"

	modified, err := repo.Update(ctx, p.ID, Changes{Title: &title})
	if err != nil || !modified {
		t.Fatalf("update: modified=%v err=%v", modified, err)
	}
	after, _ := repo.FindByID(ctx, p.ID)
	if after.Title != "T2" || after.Content != "C" || after.UpdatedAt == nil {
		t.Fatalf("stored %+v", after)
	}

	modified, err = repo.Update(ctx, p.ID, Changes{Title: &title})
	if err != nil || modified {
		t.Fatalf("same-value update: modified=%v err=%v", modified, err)
	}
	again, _ := repo.FindByID(ctx, p.ID)
	if !again.UpdatedAt.Equal(*after.UpdatedAt) {
		t.Fatalf("updatedAt moved on a no-op update: %v -> %v", after.UpdatedAt, again.UpdatedAt)
	}

	if _, err := repo.Update(ctx, uuid.NewString(), Changes{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post: %v", err)
	}
}

func TestPostgresDeletes(t *testing.T) {
	repo := NewPostgresRepository(newTestPool(t))
	ctx := context.Background()
	p := seedPost(t, repo)
	second := &Post{ID: uuid.NewString(), Username: p.Username, CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListByAuthor(ctx, p.Username)
	if err != nil || len(list) != 2 || list[0].ID != p.ID {
		t.Fatalf("by author: %v %v", list, err)
	}

	if err := repo.DeleteByID(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteByID(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	n, err := repo.DeleteByAuthor(ctx, p.Username)
	if err != nil || n != 1 {
		t.Fatalf("delete by author: %d %v", n, err)
	}
}
