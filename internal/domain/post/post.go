package post

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("post not found")

type Author struct {
	Username string `json:"username"`
}

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"contentHtml,omitempty"`
	ImageURL    *string   `json:"imageUrl"`
	Published   bool      `json:"published"`
	AuthorID    int64     `json:"authorId"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VisibleTo reports whether viewerID may read the post. Anonymous callers pass 0.
func (p Post) VisibleTo(viewerID int64) bool {
	return p.Published || (viewerID > 0 && p.AuthorID == viewerID)
}

type CreatePostRequest struct {
	Title     string  `json:"title" binding:"required,notblank,max=200"`
	Content   string  `json:"content" binding:"required,notblank,max=20000"`
	ImageURL  *string `json:"imageUrl" binding:"omitempty,url,max=2048"`
	Published bool    `json:"published"`
}

// a full update payload, same shape as create.
type UpdatePostRequest struct {
	Title     string  `json:"title" binding:"required,notblank,max=200"`
	Content   string  `json:"content" binding:"required,notblank,max=20000"`
	ImageURL  *string `json:"imageUrl" binding:"omitempty,url,max=2048"`
	Published bool    `json:"published"`
}

type CreateParams struct {
	AuthorID  int64
	Title     string
	Content   string
	ImageURL  *string
	Published bool
}

type UpdateParams struct {
	Title     string
	Content   string
	ImageURL  *string
	Published bool
}

// Cursor marks the last post of a page (posts are ordered newest first).
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// with pointers if optional, it will be nil
type ListFilter struct {
	AuthorID *int64
	Query    *string

	// ViewerID is the authenticated caller (0 when anonymous). When IncludeOwnDrafts
	// is set, unpublished posts written by the viewer are part of the result.
	ViewerID         int64
	IncludeOwnDrafts bool

	Limit int
	After *Cursor
}
