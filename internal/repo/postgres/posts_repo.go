package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// columns of a post joined with its author; the row source must be aliased p
// and the users table u.
const postSelect = `SELECT p.id, p.title, p.content, p.image_url, p.published, p.author_id, u.username, p.created_at, p.updated_at`

type PostsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{pool: pool, observer: observer{prom: prom}}
}

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.ImageURL,
		&p.Published,
		&p.AuthorID,
		&p.Author.Username,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}
	return p, nil
}

func (r *PostsRepo) Create(ctx context.Context, params post.CreateParams) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.create", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx, `
			WITH p AS (
				INSERT INTO posts (title, content, image_url, published, author_id)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING *
			)
			`+postSelect+`
			FROM p JOIN users u ON u.id = p.author_id`,
			params.Title, params.Content, params.ImageURL, params.Published, params.AuthorID,
		))
		return err
	})

	return p, err
}

func (r *PostsRepo) GetByID(ctx context.Context, id int64) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx,
			postSelect+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1`,
			id,
		))
		return err
	}, post.ErrNotFound)

	return p, err
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	// visibility
	if filter.IncludeOwnDrafts && filter.ViewerID > 0 {
		conds = append(conds, fmt.Sprintf("(p.published OR p.author_id = $%d)", argsPosition))
		args = append(args, filter.ViewerID)
		argsPosition++
	} else {
		conds = append(conds, "p.published")
	}

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", argsPosition))
		args = append(args, *filter.AuthorID)
		argsPosition++
	}

	if filter.Query != nil {
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d OR u.username ILIKE $%d)", argsPosition, argsPosition, argsPosition))
		args = append(args, containsPattern(*filter.Query))
		argsPosition++
	}

	// keyset pagination, newest first
	if filter.After != nil {
		conds = append(conds, fmt.Sprintf("(p.created_at, p.id) < ($%d::timestamptz, $%d::bigint)", argsPosition, argsPosition+1))
		args = append(args, filter.After.CreatedAt, filter.After.ID)
		argsPosition += 2
	}

	query := postSelect + ` FROM posts p JOIN users u ON u.id = p.author_id WHERE ` + strings.Join(conds, " AND ")

	query += fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d", argsPosition)
	args = append(args, filter.Limit)

	output := make([]post.Post, 0, filter.Limit)

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return err
			}
			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Update replaces the editable fields of a post owned by authorID. A post that
// does not exist or belongs to someone else yields post.ErrNotFound.
func (r *PostsRepo) Update(ctx context.Context, id, authorID int64, params post.UpdateParams) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.update", func() error {
		var err error
		p, err = scanPost(r.pool.QueryRow(ctx, `
			WITH p AS (
				UPDATE posts
				SET title = $3,
					content = $4,
					image_url = $5,
					published = $6,
					updated_at = NOW()
				WHERE id = $1 AND author_id = $2
				RETURNING *
			)
			`+postSelect+`
			FROM p JOIN users u ON u.id = p.author_id`,
			id, authorID, params.Title, params.Content, params.ImageURL, params.Published,
		))
		return err
	}, post.ErrNotFound)

	return p, err
}

func (r *PostsRepo) Delete(ctx context.Context, id, authorID int64) error {
	var tag pgconn.CommandTag

	err := r.observe("posts.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return nil
}
