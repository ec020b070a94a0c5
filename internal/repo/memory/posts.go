package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/post"
)

type PostsRepo struct {
	s *Store
}

func (r *PostsRepo) Create(_ context.Context, params post.CreateParams) (post.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextPostID++
	now := r.s.now()

	p := post.Post{
		ID:        r.s.nextPostID,
		Title:     params.Title,
		Content:   params.Content,
		ImageURL:  params.ImageURL,
		Published: params.Published,
		AuthorID:  params.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.posts[p.ID] = p

	return r.withAuthor(p), nil
}

func (r *PostsRepo) GetByID(_ context.Context, id int64) (post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	return r.withAuthor(p), nil
}

func (r *PostsRepo) List(_ context.Context, filter post.ListFilter) ([]post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var q string
	if filter.Query != nil {
		q = strings.ToLower(*filter.Query)
	}

	matched := make([]post.Post, 0)
	for _, p := range r.s.posts {
		p = r.withAuthor(p)

		if !p.Published && !(filter.IncludeOwnDrafts && p.VisibleTo(filter.ViewerID)) {
			continue
		}
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Query != nil && !containsFold(p, q) {
			continue
		}
		if filter.After != nil && !before(p, *filter.After) {
			continue
		}

		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return before(matched[j], post.Cursor{CreatedAt: matched[i].CreatedAt, ID: matched[i].ID})
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

func (r *PostsRepo) Update(_ context.Context, id, authorID int64, params post.UpdateParams) (post.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || p.AuthorID != authorID {
		return post.Post{}, post.ErrNotFound
	}

	p.Title = params.Title
	p.Content = params.Content
	p.ImageURL = params.ImageURL
	p.Published = params.Published
	p.UpdatedAt = r.s.now()
	r.s.posts[id] = p

	return r.withAuthor(p), nil
}

func (r *PostsRepo) Delete(_ context.Context, id, authorID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok || p.AuthorID != authorID {
		return post.ErrNotFound
	}

	r.s.deletePostLocked(id)
	return nil
}

func (r *PostsRepo) withAuthor(p post.Post) post.Post {
	p.Author.Username = r.s.username(p.AuthorID)
	return p
}

// before reports whether p sorts after the cursor in newest-first order.
func before(p post.Post, c post.Cursor) bool {
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID < c.ID
	}
	return p.CreatedAt.Before(c.CreatedAt)
}

func containsFold(p post.Post, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered) ||
		strings.Contains(strings.ToLower(p.Author.Username), lowered)
}
