package comment

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("comment not found")

type Commenter struct {
	Username string `json:"username"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	PostID    int64     `json:"postId"`
	UserID    int64     `json:"userId"`
	User      Commenter `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

type CreateParams struct {
	PostID  int64
	UserID  int64
	Content string
}
