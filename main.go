// Entry point of the Blogivea API server.
//
// @title Blogivea API
// @version 1.0
// @description Blog backend: users, posts, comments, likes and text summaries.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/user/blogivea-go/auth"
	"github.com/user/blogivea-go/comments"
	"github.com/user/blogivea-go/config"
	"github.com/user/blogivea-go/db"
	"github.com/user/blogivea-go/logger"
	"github.com/user/blogivea-go/posts"
	"github.com/user/blogivea-go/summarize"
	"github.com/user/blogivea-go/users"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:   "blogivea",
		Usage:  "blog API server",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply the schema and start the HTTP server",
				Action: serve,
			},
			{
				Name:   "init-db",
				Usage:  "apply the database schema and exit",
				Action: initDB,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads .env and the configuration and builds the process logger.
func bootstrap() (*config.AppConfig, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env not loaded")
	}
	if cfg.Auth.UsingDefaultSecret {
		log.Warn().Msg("JWT_SECRET is not set; using the built-in default secret")
	}
	return cfg, log, nil
}

func initDB(c *cli.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	pool, err := db.NewPool(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.EnsureSchema(c.Context, pool); err != nil {
		return err
	}
	log.Info().Msg("database schema applied")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.EnsureSchema(c.Context, pool); err != nil {
		return err
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration, cfg.Auth.Issuer)

	srvDeps := &server{
		cfg:       cfg,
		log:       log,
		tokens:    tokens,
		health:    pool.Ping,
		users:     users.NewUserHandlers(users.NewUserService(users.NewPostgresRepository(pool), hasher, tokens, log)),
		posts:     posts.NewPostHandlers(posts.NewPostService(posts.NewPostgresRepository(pool), log)),
		comments:  comments.NewCommentHandlers(comments.NewCommentService(comments.NewPostgresRepository(pool), log)),
		summarize: summarize.NewHandlers(summarize.NewClient(cfg.Summarize)),
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      srvDeps.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Summarize.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("api_prefix", cfg.Server.APIPrefix).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
