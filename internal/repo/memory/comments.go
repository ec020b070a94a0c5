package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/comment"
	"github.com/geocoder89/blogapi/internal/domain/post"
)

type CommentsRepo struct {
	s *Store
}

func (r *CommentsRepo) Create(_ context.Context, params comment.CreateParams) (comment.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[params.PostID]; !ok {
		return comment.Comment{}, post.ErrNotFound
	}

	r.s.nextCommentID++
	now := r.s.now()

	c := comment.Comment{
		ID:        r.s.nextCommentID,
		Content:   strings.TrimSpace(params.Content),
		PostID:    params.PostID,
		UserID:    params.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.comments[c.ID] = c

	return r.withUser(c), nil
}

func (r *CommentsRepo) GetByID(_ context.Context, id int64) (comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	return r.withUser(c), nil
}

func (r *CommentsRepo) ListByPost(_ context.Context, postID int64) ([]comment.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]comment.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID == postID {
			out = append(out, r.withUser(c))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *CommentsRepo) Update(_ context.Context, id, userID int64, content string) (comment.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok || c.UserID != userID {
		return comment.Comment{}, comment.ErrNotFound
	}

	c.Content = strings.TrimSpace(content)
	c.UpdatedAt = r.s.now()
	r.s.comments[id] = c

	return r.withUser(c), nil
}

func (r *CommentsRepo) Delete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok || c.UserID != userID {
		return comment.ErrNotFound
	}

	delete(r.s.comments, id)
	return nil
}

func (r *CommentsRepo) withUser(c comment.Comment) comment.Comment {
	c.User.Username = r.s.username(c.UserID)
	return c
}
