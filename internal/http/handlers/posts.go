package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/geocoder89/blogapi/internal/render"
	"github.com/geocoder89/blogapi/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

type PostStore interface {
	Create(ctx context.Context, params post.CreateParams) (post.Post, error)
	GetByID(ctx context.Context, id int64) (post.Post, error)
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, error)
	Update(ctx context.Context, id, authorID int64, params post.UpdateParams) (post.Post, error)
	Delete(ctx context.Context, id, authorID int64) error
}

type PostsHandler struct {
	posts PostStore
	prom  *observability.Prom
}

func NewPostsHandler(posts PostStore, prom *observability.Prom) *PostsHandler {
	return &PostsHandler{posts: posts, prom: prom}
}

// GET /posts
func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	filter, ok := pageFilter(ctx)
	if !ok {
		return
	}

	h.list(ctx, filter)
}

// GET /posts/filtered?q=
func (h *PostsHandler) SearchPosts(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		RespondBadRequest(ctx, "invalid_query", "Query parameter q is required")
		return
	}

	filter, ok := pageFilter(ctx)
	if !ok {
		return
	}

	viewerID, _ := middlewares.UserIDFromContext(ctx)
	filter.Query = &q
	filter.ViewerID = viewerID
	filter.IncludeOwnDrafts = viewerID > 0

	h.list(ctx, filter)
}

// GET /posts/user/:id
func (h *PostsHandler) ListUserPosts(ctx *gin.Context) {
	authorID, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "invalid_id", "User id must be a positive integer")
		return
	}

	filter, ok := pageFilter(ctx)
	if !ok {
		return
	}

	viewerID, _ := middlewares.UserIDFromContext(ctx)
	filter.AuthorID = &authorID
	filter.ViewerID = viewerID
	filter.IncludeOwnDrafts = viewerID == authorID

	h.list(ctx, filter)
}

func (h *PostsHandler) list(ctx *gin.Context, filter post.ListFilter) {
	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	limit := filter.Limit
	// one extra row tells us whether another page exists
	filter.Limit = limit + 1

	posts, err := h.posts.List(cctx, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list posts", err)
		return
	}

	if len(posts) > limit {
		posts = posts[:limit]
		next, err := utils.EncodePostCursor(posts[len(posts)-1])
		if err != nil {
			RespondInternal(ctx, "Could not build cursor", err)
			return
		}
		ctx.Header("X-Next-Cursor", next)
	}

	for i := range posts {
		posts[i] = withHTML(posts[i])
	}

	ctx.JSON(http.StatusOK, posts)
}

// GET /posts/:id
func (h *PostsHandler) GetPost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeContext(ctx, 2*time.Second)
	defer cancel()

	p, err := h.posts.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not fetch post", err)
		return
	}

	viewerID, _ := middlewares.UserIDFromContext(ctx)
	// drafts are reported as missing to everyone but their author
	if !p.VisibleTo(viewerID) {
		RespondNotFound(ctx, "Post not found")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, withHTML(p))
}

// POST /posts
func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	authorID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req post.CreatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	p, err := h.posts.Create(cctx, post.NewCreateParams(authorID, req))
	if err != nil {
		RespondInternal(ctx, "Could not create post", err)
		return
	}

	h.prom.ObserveContent("post", "create")
	ctx.JSON(http.StatusCreated, withHTML(p))
}

// PUT /posts/:id
func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	callerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req post.UpdatePostRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.authorize(ctx, cctx, id, callerID) {
		return
	}

	p, err := h.posts.Update(cctx, id, callerID, post.NewUpdateParams(req))
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not update post", err)
		return
	}

	h.prom.ObserveContent("post", "update")
	ctx.JSON(http.StatusOK, withHTML(p))
}

// DELETE /posts/:id
func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	callerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.authorize(ctx, cctx, id, callerID) {
		return
	}

	if err := h.posts.Delete(cctx, id, callerID); err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post", err)
		return
	}
	h.prom.ObserveContent("post", "delete")

	ctx.Status(http.StatusNoContent)
}

// authorize writes 404/403 and returns false unless callerID authored post id.
func (h *PostsHandler) authorize(ctx *gin.Context, cctx context.Context, id, callerID int64) bool {
	p, err := h.posts.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return false
		}
		RespondInternal(ctx, "Could not fetch post", err)
		return false
	}

	if p.AuthorID != callerID {
		RespondForbidden(ctx, "Only the author can modify this post")
		return false
	}

	return true
}

func withHTML(p post.Post) post.Post {
	p.ContentHTML = render.Markdown(p.Content)
	return p
}

func pathID(ctx *gin.Context) (int64, bool) {
	id, ok := utils.ParseID(ctx.Param("id"))
	if !ok {
		RespondBadRequest(ctx, "invalid_id", "Id must be a positive integer")
		return 0, false
	}
	return id, true
}

// pageFilter reads limit and cursor; only published posts are selected until
// the caller widens the filter.
func pageFilter(ctx *gin.Context) (post.ListFilter, bool) {
	filter := post.ListFilter{Limit: defaultPageSize}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			RespondBadRequest(ctx, "invalid_limit", "limit must be a positive integer")
			return post.ListFilter{}, false
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		filter.Limit = n
	}

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodePostCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "invalid_cursor", "cursor is malformed")
			return post.ListFilter{}, false
		}
		filter.After = &c
	}

	return filter, true
}
