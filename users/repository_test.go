package users

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

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

// seedUser inserts a user with unique username and email and deletes it afterwards.
func seedUser(t *testing.T, pool *pgxpool.Pool, repo *PostgresRepository) *User {
	t.Helper()
	suffix := uuid.NewString()
	u := &User{
		ID:           uuid.NewString(),
		Username:     "u-" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
		UserType:     DefaultUserType,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, u.ID) })
	return u
}

func TestPostgresCreateDuplicates(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	existing := seedUser(t, pool, repo)

	dupName := &User{ID: uuid.NewString(), Username: existing.Username, Email: uuid.NewString() + "@example.com", PasswordHash: "h", UserType: DefaultUserType}
	if err := repo.Create(ctx, dupName); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate username: %v", err)
	}
	dupEmail := &User{ID: uuid.NewString(), Username: "u-" + uuid.NewString(), Email: existing.Email, PasswordHash: "h", UserType: DefaultUserType}
	if err := repo.Create(ctx, dupEmail); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate email: %v", err)
	}
}

func TestPostgresConcurrentRegistrationsOneWins(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	username := "race-" + uuid.NewString()
	t.Cleanup(func() { pool.Exec(context.Background(), `DELETE FROM users WHERE username = $1`, username) })

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := &User{ID: uuid.NewString(), Username: username, Email: uuid.NewString() + "@example.com", PasswordHash: "h", UserType: DefaultUserType}
			err := repo.Create(ctx, u)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrDuplicateUsername):
				duplicates++
			default:
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || duplicates != n-1 {
		t.Fatalf("created=%d duplicates=%d", created, duplicates)
	}
}

func TestPostgresUpdateDuplicates(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	a := seedUser(t, pool, repo)
	b := seedUser(t, pool, repo)

	if _, err := repo.Update(ctx, b.ID, Changes{Username: &a.Username}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("rename onto taken username: %v", err)
	}
	if _, err := repo.Update(ctx, b.ID, Changes{Email: &a.Email}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("change onto taken email: %v", err)
	}

	name := "Bea"
	got, err := repo.Update(ctx, b.ID, Changes{Name: &name, Username: &b.Username})
	if err != nil || got.Name != "Bea" || got.Username != b.Username {
		t.Fatalf("update: %+v %v", got, err)
	}
	if _, err := repo.Update(ctx, uuid.NewString(), Changes{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestPostgresExistsExcludesSelf(t *testing.T) {
	pool := newTestPool(t)
	repo := NewPostgresRepository(pool)
	ctx := context.Background()
	u := seedUser(t, pool, repo)

	taken, err := repo.ExistsByUsername(ctx, u.Username, "")
	if err != nil || !taken {
		t.Fatalf("username taken: %v %v", taken, err)
	}
	taken, err = repo.ExistsByUsername(ctx, u.Username, u.ID)
	if err != nil || taken {
		t.Fatalf("own username excluded: %v %v", taken, err)
	}
	taken, err = repo.ExistsByEmail(ctx, u.Email, u.ID)
	if err != nil || taken {
		t.Fatalf("own email excluded: %v %v", taken, err)
	}
	found, err := repo.FindByUsername(ctx, u.Username)
	if err != nil || found.ID != u.ID || found.CreatedAt.IsZero() {
		t.Fatalf("find by username: %+v %v", found, err)
	}
}
