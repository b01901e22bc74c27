package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence boundary of the post store.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	List(ctx context.Context) ([]Post, error)
	FindByID(ctx context.Context, id string) (*Post, error)
	ListByAuthor(ctx context.Context, username string) ([]Post, error)
	// DeleteByID returns ErrNotFound when nothing was deleted.
	DeleteByID(ctx context.Context, id string) error
	DeleteByAuthor(ctx context.Context, username string) (int64, error)
	// Update applies c and reports whether any stored value changed.
	// A missing post is ErrNotFound.
	Update(ctx context.Context, id string, c Changes) (bool, error)
	// AddLike adds username to the post's likes only if absent, in one atomic
	// step. Returns ErrAlreadyLiked or ErrNotFound.
	AddLike(ctx context.Context, id, username string) (*Post, error)
	// RemoveLike removes username from the likes; absence is not an error.
	RemoveLike(ctx context.Context, id, username string) (*Post, error)
}

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a Repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

const postColumns = `id::text, name, username, title, description, content, created_at, updated_at, likes`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Name, &p.Username, &p.Title, &p.Description, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.Likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return &p, nil
}

func (r *PostgresRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Create(ctx context.Context, p *Post) error {
	query := `INSERT INTO posts (id, name, username, title, description, content, created_at, likes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, '{}')`
	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Username, p.Title, p.Description, p.Content, p.CreatedAt)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Post, error) {
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at`)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	return scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, username string) ([]Post, error) {
	return r.queryPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE username = $1 ORDER BY created_at`, username)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, username string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE username = $1`, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, c Changes) (bool, error) {
	var setClauses, diffClauses []string
	var args []interface{}
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
		diffClauses = append(diffClauses, fmt.Sprintf("%s IS DISTINCT FROM $%d", column, len(args)))
	}
	add("name", c.Name)
	add("username", c.Username)
	add("title", c.Title)
	add("description", c.Description)
	add("content", c.Content)

	if len(setClauses) == 0 {
		exists, err := r.exists(ctx, id)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}

	args = append(args, id)
	// Rows whose values already match are left alone so updated_at only moves on a real change.
	query := fmt.Sprintf(`UPDATE posts SET %s, updated_at = now() WHERE id = $%d AND (%s)`,
		strings.Join(setClauses, ", "), len(args), strings.Join(diffClauses, " OR "))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *PostgresRepository) AddLike(ctx context.Context, id, username string) (*Post, error) {
	// The membership test and the append are one statement; Postgres row locking
	// makes concurrent duplicates serialize, and the loser matches zero rows.
	query := `UPDATE posts SET likes = array_append(likes, $2::text)
	          WHERE id = $1 AND NOT ($2::text = ANY(likes))
	          RETURNING ` + postColumns
	p, err := scanPost(r.db.QueryRow(ctx, query, id, username))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return nil, ErrAlreadyLiked
}

func (r *PostgresRepository) RemoveLike(ctx context.Context, id, username string) (*Post, error) {
	query := `UPDATE posts SET likes = array_remove(likes, $2::text)
	          WHERE id = $1
	          RETURNING ` + postColumns
	return scanPost(r.db.QueryRow(ctx, query, id, username))
}
