package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/security"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	devJWTSecret = "dev-only-insecure-secret"
)

type Config struct {
	Env     string
	Port    int
	Storage string

	DBURL         string
	DBMaxConns    int32
	MigrateOnBoot bool

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins  []string
	MaxBodyBytes int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimit  int
	AuthRateWindow time.Duration

	WriteRateLimit  int
	WriteRateWindow time.Duration

	OTLPEndpoint string
	ServiceName  string

	AdminEmail    string
	AdminPassword string
	AdminUsername string
}

// Load reads the configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && env == "dev" {
		jwtSecret = devJWTSecret
	}

	return Config{
		Env:     env,
		Port:    getEnvInt("PORT", 8080),
		Storage: strings.ToLower(getEnv("STORAGE", StoragePostgres)),

		DBURL:         buildDBURL(),
		DBMaxConns:    int32(getEnvInt("DB_MAX_CONNS", 10)),
		MigrateOnBoot: getEnvBool("MIGRATE_ON_BOOT", env == "dev"),

		JWTSecret: jwtSecret,
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),

		WriteRateLimit:  getEnvInt("WRITE_RATE_LIMIT", 60),
		WriteRateWindow: getEnvDuration("WRITE_RATE_WINDOW", time.Minute),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "blogapi"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
	}
}

// Validate reports configuration that the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Env == "prod" && c.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set explicitly in prod"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.AuthRateLimit <= 0 || c.AuthRateWindow <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be positive"))
	}
	if c.WriteRateLimit <= 0 || c.WriteRateWindow <= 0 {
		errs = append(errs, errors.New("WRITE_RATE_LIMIT and WRITE_RATE_WINDOW must be positive"))
	}
	if len(c.AdminPassword) > security.MaxPasswordBytes {
		errs = append(errs, fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", security.MaxPasswordBytes))
	}

	return errors.Join(errs...)
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "blogapi")
	pass := getEnv("DB_PASSWORD", "blogapi")
	name := getEnv("DB_NAME", "blogapi")
	ssl := getEnv("DB_SSLMODE", "disable")

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": {ssl}}.Encode(),
	}

	return dsn.String()
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in env, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in env, using default", "key", key, "value", v)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration in env, using default", "key", key, "value", v)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
