package integration_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/geocoder89/blogapi/internal/auth"
)

func TestSignupLoginAndMe(t *testing.T) {
	router, _ := setupRouter(t)

	created := signup(t, router, "ada@example.com", "ada")
	if created.User.ID <= 0 || created.Token == "" {
		t.Fatalf("unexpected signup response %+v", created)
	}

	w := doRequest(router, http.MethodPost, "/auth/login", "", `{"email":"ada@example.com","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}

	var login authResponse
	mustReadJSON(t, w, &login)

	jwtManager, _ := auth.NewManager(testConfig().JWTSecret, testConfig().JWTTTL)
	claims, err := jwtManager.VerifyAccessToken(login.Token)
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}
	if claims.UserID != created.User.ID {
		t.Fatalf("token id=%d, want %d", claims.UserID, created.User.ID)
	}

	w = doRequest(router, http.MethodGet, "/auth/me", login.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	router, pool := setupRouter(t)

	signup(t, router, "ada@example.com", "ada")

	w := doRequest(router, http.MethodPost, "/auth/signup", "", `{"email":"ada@example.com","username":"again","password":"password123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup status=%d, want 400", w.Code)
	}

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT count(*) FROM users WHERE email = $1`, "ada@example.com").Scan(&n); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Fatalf("users with that email = %d, want 1", n)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := setupRouter(t)

	signup(t, router, "ada@example.com", "ada")

	w := doRequest(router, http.MethodPost, "/auth/login", "", `{"email":"ada@example.com","password":"wrong-password"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", w.Code)
	}
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	router, pool := setupRouter(t)

	created := signup(t, router, "ada@example.com", "ada")

	if _, err := pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, created.User.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	w := doRequest(router, http.MethodGet, "/auth/me", created.Token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", w.Code)
	}
}
