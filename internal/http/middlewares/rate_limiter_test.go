package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "ip:1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: ok=%v err=%v", i, ok, err)
		}
	}

	ok, retry, _ := l.Allow(ctx, "ip:1.2.3.4")
	if ok {
		t.Fatalf("third request in window should be limited")
	}
	if retry != time.Minute {
		t.Fatalf("retry after: got %s, want 1m", retry)
	}

	// other clients are unaffected
	if ok, _, _ := l.Allow(ctx, "ip:5.6.7.8"); !ok {
		t.Fatalf("separate key should pass")
	}

	now = now.Add(time.Minute + time.Second)
	if ok, _, _ := l.Allow(ctx, "ip:1.2.3.4"); !ok {
		t.Fatalf("new window should pass")
	}
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/auth/login", RateLimit(NewMemoryLimiter(1, time.Minute), KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/open", RateLimit(erroringLimiter{}, KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("/auth/login"); w.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w.Code)
	}

	w := do("/auth/login")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}

	if w := do("/open"); w.Code != http.StatusOK {
		t.Fatalf("limiter errors must fail open, got %d", w.Code)
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/posts", nil)
	c.Request.RemoteAddr = "10.0.0.1:1234"

	if got := KeyByUserOrIP(c); got != "ip:10.0.0.1" {
		t.Fatalf("anonymous key = %q", got)
	}

	c.Set(ctxUserIDKey, int64(7))
	if got := KeyByUserOrIP(c); got != "user:7" {
		t.Fatalf("authenticated key = %q", got)
	}
}

func TestIsJSONContentType(t *testing.T) {
	cases := map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"Application/JSON":                true,
		"application/problem+json":        true,
		"text/plain":                      false,
		"":                                false,

		"application/x-www-form-urlencoded": false,
	}

	for ct, want := range cases {
		if got := isJSONContentType(ct); got != want {
			t.Errorf("isJSONContentType(%q) = %v, want %v", ct, got, want)
		}
	}
}
