package config

import (
	"strings"
	"testing"
	"time"

	"github.com/user/blogivea-go/apperror"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/blog")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != DefaultJWTSecret || !cfg.Auth.UsingDefaultSecret {
		t.Fatalf("expected fallback secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenDuration != time.Hour {
		t.Fatalf("token ttl %v", cfg.Auth.TokenDuration)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("bcrypt cost %d", cfg.Auth.BcryptCost)
	}
	if cfg.Server.Port != "3000" || cfg.Server.APIPrefix != "/api" {
		t.Fatalf("server %+v", cfg.Server)
	}
	if cfg.Database.DSN() != "postgres://u:p@localhost:5432/blog" {
		t.Fatalf("dsn %q", cfg.Database.DSN())
	}
}

func TestLoadConfigDiscreteDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "blog")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "posts")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("API_PREFIX", "v1/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.Database.DSN(); got != "postgres://blog:secret@db:5432/posts?sslmode=disable" {
		t.Fatalf("dsn %q", got)
	}
	if cfg.Auth.UsingDefaultSecret {
		t.Fatalf("secret was provided")
	}
	if cfg.Server.APIPrefix != "/v1" {
		t.Fatalf("prefix %q", cfg.Server.APIPrefix)
	}
}

func TestLoadConfigCollectsErrors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "")
	t.Setenv("BCRYPT_COST", "99")
	t.Setenv("JWT_TTL", "soon")

	_, err := LoadConfig()
	if err == nil {
		t.Fatalf("expected error")
	}
	if appErr, ok := apperror.FromError(err); !ok || appErr.Type != apperror.ConfigError {
		t.Fatalf("expected a ConfigError, got %T", err)
	}
	for _, want := range []string{"DATABASE_URL", "BCRYPT_COST", "JWT_TTL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}
