package main

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/auth"
	"github.com/user/blogivea-go/comments"
	"github.com/user/blogivea-go/config"
	"github.com/user/blogivea-go/docs"
	"github.com/user/blogivea-go/logger"
	"github.com/user/blogivea-go/posts"
	"github.com/user/blogivea-go/summarize"
	"github.com/user/blogivea-go/users"
)

// server holds everything the router needs.
type server struct {
	cfg    *config.AppConfig
	log    zerolog.Logger
	tokens *auth.TokenService
	// health reports whether the database is reachable.
	health func(ctx context.Context) error

	users     *users.UserHandlers
	posts     *posts.PostHandlers
	comments  *comments.CommentHandlers
	summarize *summarize.Handlers
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			next.ServeHTTP(w, r.WithContext(reqLog.WithContext(r.Context())))
		})
	})
	r.Use(logger.RequestLogger(s.log))
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(s.cfg.Summarize.Timeout + 10*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	docs.SwaggerInfo.BasePath = s.cfg.Server.APIPrefix
	if docs.SwaggerInfo.BasePath == "" {
		docs.SwaggerInfo.BasePath = "/"
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	requireAuth := auth.Middleware(s.tokens)
	api := func(r chi.Router) {
		r.Route("/users", func(r chi.Router) { s.users.RegisterRoutes(r, requireAuth) })
		r.Route("/posts", func(r chi.Router) { s.posts.RegisterRoutes(r, requireAuth) })
		r.Route("/comments", func(r chi.Router) { s.comments.RegisterRoutes(r, requireAuth) })
		r.Route("/summarize", s.summarize.RegisterRoutes)
	}
	if s.cfg.Server.APIPrefix == "" {
		api(r)
	} else {
		r.Route(s.cfg.Server.APIPrefix, api)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		auth.WriteError(w, r, apperror.NewNotFoundError("Route not found", nil))
	})
	return r
}

// recoverer turns a handler panic into a JSON 500.
func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				zerolog.Ctx(r.Context()).Error().Interface("panic", rvr).Bytes("stack", debug.Stack()).Msg("handler panic")
				auth.WriteJSON(w, http.StatusInternalServerError, apperror.NewInternalError("Internal server error", nil).ToResponse())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.health(ctx); err != nil {
		auth.WriteError(w, r, apperror.NewExternalServiceError("Database unavailable", err))
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
