package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/blogapi/internal/auth"
	"github.com/geocoder89/blogapi/internal/config"
	"github.com/geocoder89/blogapi/internal/db"
	apphttp "github.com/geocoder89/blogapi/internal/http"
	"github.com/geocoder89/blogapi/internal/http/handlers"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/geocoder89/blogapi/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		ServiceName:    "blogapi-integration",
		JWTSecret:      "test-secret-key",
		JWTTTL:         time.Hour,
		MaxBodyBytes:   1 << 20,
		AuthRateLimit:  1000,
		AuthRateWindow: time.Minute,
	}
}

// setupRouter builds the real router over postgres. Tests skip unless
// TEST_DB_DSN points at a disposable database.
func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	if err := db.MigrateUp(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(dsn, 4)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	resetDB(t, pool)

	cfg := testConfig()
	prom := observability.NewProm()

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Stores: apphttp.Stores{
			Users:    postgres.NewUsersRepo(pool, prom),
			Posts:    postgres.NewPostsRepo(pool, prom),
			Comments: postgres.NewCommentsRepo(pool, prom),
		},
		JWT:          jwtManager,
		AuthLimiter:  middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow),
		WriteLimiter: middlewares.NewMemoryLimiter(1000, time.Minute),
		Checks:       []handlers.ReadyCheck{{Name: "database", Ping: pool.Ping}},
		Prom:         prom,
	})

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE comments, posts, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
}

func signup(t *testing.T, router http.Handler, email, username string) authResponse {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/auth/signup", "",
		`{"email":"`+email+`","username":"`+username+`","password":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status=%d body=%s", email, w.Code, w.Body.String())
	}

	var resp authResponse
	mustReadJSON(t, w, &resp)
	return resp
}
