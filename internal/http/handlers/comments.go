package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/comment"
	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/http/middlewares"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/gin-gonic/gin"
)

type CommentStore interface {
	Create(ctx context.Context, params comment.CreateParams) (comment.Comment, error)
	GetByID(ctx context.Context, id int64) (comment.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error)
	Update(ctx context.Context, id, userID int64, content string) (comment.Comment, error)
	Delete(ctx context.Context, id, userID int64) error
}

type PostReader interface {
	GetByID(ctx context.Context, id int64) (post.Post, error)
}

type CommentsHandler struct {
	comments CommentStore
	posts    PostReader
	prom     *observability.Prom
}

func NewCommentsHandler(comments CommentStore, posts PostReader, prom *observability.Prom) *CommentsHandler {
	return &CommentsHandler{comments: comments, posts: posts, prom: prom}
}

// GET /posts/:id/comments
func (h *CommentsHandler) ListComments(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.postVisible(ctx, cctx, postID) {
		return
	}

	comments, err := h.comments.ListByPost(cctx, postID)
	if err != nil {
		RespondInternal(ctx, "Could not list comments", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, comments)
}

// POST /posts/:id/comments
func (h *CommentsHandler) CreateComment(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req comment.CreateCommentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.postVisible(ctx, cctx, postID) {
		return
	}

	c, err := h.comments.Create(cctx, comment.CreateParams{
		PostID:  postID,
		UserID:  userID,
		Content: strings.TrimSpace(req.Content),
	})
	if err != nil {
		// post deleted between the visibility check and the insert
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not create comment", err)
		return
	}

	h.prom.ObserveContent("comment", "create")
	ctx.JSON(http.StatusCreated, c)
}

// PUT /posts/comments/:id
func (h *CommentsHandler) UpdateComment(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req comment.UpdateCommentRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.authorize(ctx, cctx, id, userID) {
		return
	}

	c, err := h.comments.Update(cctx, id, userID, strings.TrimSpace(req.Content))
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not update comment", err)
		return
	}

	h.prom.ObserveContent("comment", "update")
	ctx.JSON(http.StatusOK, c)
}

// DELETE /posts/comments/:id
func (h *CommentsHandler) DeleteComment(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := storeContext(ctx, 3*time.Second)
	defer cancel()

	if !h.authorize(ctx, cctx, id, userID) {
		return
	}

	if err := h.comments.Delete(cctx, id, userID); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not delete comment", err)
		return
	}
	h.prom.ObserveContent("comment", "delete")

	ctx.Status(http.StatusNoContent)
}

func (h *CommentsHandler) postVisible(ctx *gin.Context, cctx context.Context, postID int64) bool {
	p, err := h.posts.GetByID(cctx, postID)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return false
		}
		RespondInternal(ctx, "Could not fetch post", err)
		return false
	}

	viewerID, _ := middlewares.UserIDFromContext(ctx)
	if !p.VisibleTo(viewerID) {
		RespondNotFound(ctx, "Post not found")
		return false
	}
	return true
}

func (h *CommentsHandler) authorize(ctx *gin.Context, cctx context.Context, id, userID int64) bool {
	c, err := h.comments.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return false
		}
		RespondInternal(ctx, "Could not fetch comment", err)
		return false
	}

	if c.UserID != userID {
		RespondForbidden(ctx, "Only the author can modify this comment")
		return false
	}
	return true
}
