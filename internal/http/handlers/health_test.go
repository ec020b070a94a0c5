package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/blogapi/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestReadyz(t *testing.T) {
	up := handlers.ReadyCheck{Name: "database", Ping: func(context.Context) error { return nil }}
	down := handlers.ReadyCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: refused") }}

	tests := []struct {
		name   string
		checks []handlers.ReadyCheck
		want   int
		status string
	}{
		{name: "no checks", want: http.StatusOK, status: "ready"},
		{name: "all up", checks: []handlers.ReadyCheck{up}, want: http.StatusOK, status: "ready"},
		{name: "one down", checks: []handlers.ReadyCheck{up, down}, want: http.StatusServiceUnavailable, status: "not_ready"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tc.checks...)
			r := gin.New()
			r.GET("/readyz", h.Readyz)

			w := do(t, r, http.MethodGet, "/readyz", 0, nil)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
			body := decode[struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}](t, w)
			if body.Status != tc.status {
				t.Fatalf("status field = %q, want %q", body.Status, tc.status)
			}
			for _, c := range tc.checks {
				if _, ok := body.Checks[c.Name]; !ok {
					t.Fatalf("missing check %q in %v", c.Name, body.Checks)
				}
			}
		})
	}
}
