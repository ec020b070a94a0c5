package redisclient

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestClient(t *testing.T) {
	mr := miniredis.RunT(t)

	c := New(Config{Addr: mr.Addr()})
	defer c.Close()

	ctx := context.Background()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if err := c.Raw().Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("set through raw client: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("value = %q, want v", got)
	}

	mr.Close()
	if err := c.Ping(ctx); err == nil {
		t.Fatalf("ping should fail once redis is gone")
	}
}
