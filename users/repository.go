package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/blogivea-go/db"
)

// Repository is the persistence boundary of the user directory.
type Repository interface {
	// ExistsByUsername reports whether another user (not excludeID) has username.
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	// ExistsByEmail reports whether another user (not excludeID) has email.
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	// Create inserts u. Unique collisions return ErrDuplicateUsername or ErrDuplicateEmail.
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// Update applies the non-nil changes and returns the stored record.
	Update(ctx context.Context, id string, c Changes) (*User, error)
}

// PostgresRepository implements Repository on a pgx pool. The users table carries
// UNIQUE constraints on username and email, so uniqueness holds even when two
// registrations race past the service's existence checks.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a Repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

const userColumns = `id::text, COALESCE(name, ''), username, email, password_hash, user_type, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.UserType, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// mapUniqueViolation turns constraint names from schema.sql into sentinel errors.
func mapUniqueViolation(err error) error {
	constraint, ok := db.UniqueViolation(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(constraint, "username"):
		return ErrDuplicateUsername
	case strings.Contains(constraint, "email"):
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) exists(ctx context.Context, column, value, excludeID string) (bool, error) {
	var exists bool
	// column is one of two literals chosen below, never caller input.
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1 AND ($2 = '' OR id::text <> $2))`, column)
	if err := r.db.QueryRow(ctx, query, value, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, "username", username, excludeID)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (id, name, username, email, password_hash, user_type)
	          VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
	          RETURNING created_at`
	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Username, u.Email, u.PasswordHash, u.UserType).Scan(&u.CreatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, id string, c Changes) (*User, error) {
	var setClauses []string
	var args []interface{}
	add := func(column string, value string) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if c.Name != nil {
		add("name", *c.Name)
	}
	if c.Username != nil {
		add("username", *c.Username)
	}
	if c.Email != nil {
		add("email", *c.Email)
	}
	if c.PasswordHash != nil {
		add("password_hash", *c.PasswordHash)
	}
	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args), userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, mapUniqueViolation(err)
	}
	return u, nil
}
