package comments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence boundary of the comment store.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	// ListByPost returns the comments of a post, newest first.
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	ListAll(ctx context.Context) ([]Comment, error)
}

// PostgresRepository implements Repository on a pgx pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a Repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

const commentColumns = `id::text, post_id::text, name, username, content, created_at`

func (r *PostgresRepository) Create(ctx context.Context, c *Comment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO comments (id, post_id, name, username, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.PostID, c.Name, c.Username, c.Content, c.CreatedAt)
	return err
}

func (r *PostgresRepository) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at DESC`, postID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at`)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...interface{}) ([]Comment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
