package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/comment"
	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentSelect = `SELECT c.id, c.content, c.post_id, c.user_id, u.username, c.created_at, c.updated_at`

type CommentsRepo struct {
	observer
	pool *pgxpool.Pool
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{pool: pool, observer: observer{prom: prom}}
}

func scanComment(row pgx.Row) (comment.Comment, error) {
	var c comment.Comment

	err := row.Scan(&c.ID, &c.Content, &c.PostID, &c.UserID, &c.User.Username, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}
	return c, nil
}

func (r *CommentsRepo) Create(ctx context.Context, params comment.CreateParams) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.create", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx, `
			WITH c AS (
				INSERT INTO comments (content, post_id, user_id)
				VALUES ($1, $2, $3)
				RETURNING *
			)
			`+commentSelect+`
			FROM c JOIN users u ON u.id = c.user_id`,
			strings.TrimSpace(params.Content), params.PostID, params.UserID,
		))
		return err
	})

	if err != nil {
		// the post vanished between the visibility check and the insert
		if IsForeignKeyViolation(err) {
			return comment.Comment{}, post.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id int64) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.get", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx,
			commentSelect+` FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = $1`,
			id,
		))
		return err
	}, comment.ErrNotFound)

	return c, err
}

// ListByPost returns the comments of a post, oldest first.
func (r *CommentsRepo) ListByPost(ctx context.Context, postID int64) ([]comment.Comment, error) {
	out := make([]comment.Comment, 0)

	err := r.observe("comments.list_by_post", func() error {
		rows, err := r.pool.Query(ctx,
			commentSelect+` FROM comments c JOIN users u ON u.id = c.user_id
			WHERE c.post_id = $1
			ORDER BY c.created_at ASC, c.id ASC`,
			postID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanComment(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommentsRepo) Update(ctx context.Context, id, userID int64, content string) (comment.Comment, error) {
	var c comment.Comment

	err := r.observe("comments.update", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx, `
			WITH c AS (
				UPDATE comments
				SET content = $3, updated_at = NOW()
				WHERE id = $1 AND user_id = $2
				RETURNING *
			)
			`+commentSelect+`
			FROM c JOIN users u ON u.id = c.user_id`,
			id, userID, strings.TrimSpace(content),
		))
		return err
	}, comment.ErrNotFound)

	return c, err
}

func (r *CommentsRepo) Delete(ctx context.Context, id, userID int64) error {
	var tag pgconn.CommandTag

	err := r.observe("comments.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}
	return nil
}
