// Package db provides database connectivity for the application.
// It builds the pgx connection pool, verifies it, and applies the embedded schema.
// The pool is created once by the composition root and injected into every
// repository; closing it is also the composition root's job.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/config"
)

// PgUniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const PgUniqueViolation = "23505"

//go:embed schema.sql
var schemaSQL string

// NewPool establishes a pgxpool connection pool using the provided configuration
// and pings it before returning.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, apperror.NewDatabaseError("error parsing database DSN", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", poolConfig.ConnConfig.Database), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", poolConfig.ConnConfig.Database), err)
	}

	return pool, nil
}

// schemaLockID keys the advisory lock held while the schema is applied.
const schemaLockID = 7_215_004

// EnsureSchema creates the tables, constraints and indexes if they are missing.
// Concurrent callers are serialized on an advisory lock, since CREATE ... IF NOT
// EXISTS can still collide when two sessions run it at the same moment.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return apperror.NewDatabaseError("failed to apply schema", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return apperror.NewDatabaseError("failed to lock schema", err)
	}
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return apperror.NewDatabaseError("failed to apply schema", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperror.NewDatabaseError("failed to apply schema", err)
	}
	return nil
}

// UniqueViolation reports whether err is a unique constraint violation and, if so,
// the name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
