package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/domain/user"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware: the caller id travels in a test header.
func asUser(store *memory.Store, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(testUserHeader)
		if raw == "" {
			if required {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Next()
			return
		}

		id, _ := strconv.ParseInt(raw, 10, 64)
		u, err := store.Users().GetByID(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		middlewares.SetIdentity(c, u)
		c.Next()
	}
}

func do(t *testing.T, r http.Handler, method, path string, callerID int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if callerID > 0 {
		req.Header.Set(testUserHeader, strconv.FormatInt(callerID, 10))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, w.Body.String())
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	resp := decode[struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}](t, w)
	return resp.Error.Code
}

func seedUser(t *testing.T, store *memory.Store, email, username string) user.User {
	t.Helper()

	u, err := store.Users().Create(context.Background(), user.CreateParams{
		Email: email, Username: username, PasswordHash: "unused", Role: user.RoleUser,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedPost(t *testing.T, store *memory.Store, authorID int64, title string, published bool) post.Post {
	t.Helper()

	p, err := store.Posts().Create(context.Background(), post.CreateParams{
		AuthorID: authorID, Title: title, Content: "**" + title + "**", Published: published,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func urlQuery(q string) string {
	return url.QueryEscape(q)
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
