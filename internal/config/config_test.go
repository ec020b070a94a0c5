package config

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("STORAGE", "")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Fatalf("port: got %d, want 8080", cfg.Port)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("jwt ttl: got %s, want 24h", cfg.JWTTTL)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("expected a dev secret fallback")
	}
	if cfg.Storage != StoragePostgres {
		t.Fatalf("storage: got %q", cfg.Storage)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Fatalf("cors origins: got %v", cfg.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/blog")
	t.Setenv("AUTH_RATE_WINDOW", "not-a-duration")

	cfg := Load()

	if cfg.Port != 9090 || cfg.JWTTTL != 2*time.Hour || cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DBURL != "postgres://u:p@db:5432/blog" {
		t.Fatalf("db url: got %q", cfg.DBURL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors origins: got %v", cfg.CORSOrigins)
	}
	if cfg.AuthRateWindow != time.Minute {
		t.Fatalf("invalid duration should fall back, got %s", cfg.AuthRateWindow)
	}
	if cfg.MigrateOnBoot {
		t.Fatalf("migrate on boot should default to false outside dev")
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Env:            "prod",
		Port:           8080,
		Storage:        StoragePostgres,
		JWTSecret:      "x",
		JWTTTL:         time.Hour,
		AuthRateLimit:  1,
		AuthRateWindow: time.Second,

		WriteRateLimit:  1,
		WriteRateWindow: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing_secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "dev_secret_in_prod", mutate: func(c *Config) { c.JWTSecret = devJWTSecret }, wantErr: true},
		{name: "bad_storage", mutate: func(c *Config) { c.Storage = "sqlite" }, wantErr: true},
		{name: "bad_port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "bad_ttl", mutate: func(c *Config) { c.JWTTTL = 0 }, wantErr: true},
		{name: "bad_write_limit", mutate: func(c *Config) { c.WriteRateLimit = 0 }, wantErr: true},
		{name: "admin_password_72_bytes", mutate: func(c *Config) { c.AdminPassword = strings.Repeat("é", 36) }},
		{name: "admin_password_over_72_bytes", mutate: func(c *Config) { c.AdminPassword = strings.Repeat("é", 37) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("got err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDBURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "blog")
	t.Setenv("DB_PASSWORD", "p@ss word/+:?")
	t.Setenv("DB_NAME", "blogdb")
	t.Setenv("DB_SSLMODE", "require")

	raw := Load().DBURL

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	if pass, _ := u.User.Password(); pass != "p@ss word/+:?" || u.User.Username() != "blog" {
		t.Fatalf("userinfo did not round-trip: %q", raw)
	}
	if u.Host != "db.internal:6543" || u.Path != "/blogdb" || u.Query().Get("sslmode") != "require" {
		t.Fatalf("unexpected dsn %q", raw)
	}
	if !strings.Contains(raw, "p%40ss%20word%2F+%3A%3F@") {
		t.Fatalf("userinfo must be percent-encoded, got %q", raw)
	}
}
