package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/domain/user"
)

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type PostCreator interface {
	Create(ctx context.Context, params post.CreateParams) (post.Post, error)
}

var samplePosts = []struct {
	title     string
	content   string
	published bool
}{
	{
		title:     "Hello, world",
		content:   "Welcome to the blog.\n\nPosts are written in **Markdown** and rendered for readers.",
		published: true,
	},
	{
		title:     "Keeping drafts",
		content:   "Unpublished posts are only visible to their author.\n\n- write\n- review\n- publish",
		published: true,
	},
	{
		title:     "Work in progress",
		content:   "This one stays a draft until it is ready.",
		published: false,
	},
}

// SeedPosts adds the sample posts for the user with the given email.
func SeedPosts(ctx context.Context, users UserFinder, posts PostCreator, email string) ([]post.Post, error) {
	author, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, fmt.Errorf("seed posts: no user with email %q", email)
		}
		return nil, fmt.Errorf("seed posts: %w", err)
	}

	created := make([]post.Post, 0, len(samplePosts))
	for _, s := range samplePosts {
		p, err := posts.Create(ctx, post.CreateParams{
			AuthorID:  author.ID,
			Title:     s.title,
			Content:   s.content,
			Published: s.published,
		})
		if err != nil {
			return created, fmt.Errorf("seed posts: create %q: %w", s.title, err)
		}
		created = append(created, p)
	}

	return created, nil
}
