package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/post"
)

var ErrInvalidCursor = errors.New("invalid cursor")

type PostCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id"`
}

func EncodePostCursor(p post.Post) (string, error) {
	b, err := json.Marshal(PostCursor{CreatedAt: p.CreatedAt, ID: p.ID})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodePostCursor(cursor string) (post.Cursor, error) {
	if cursor == "" {
		return post.Cursor{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return post.Cursor{}, ErrInvalidCursor
	}

	var c PostCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return post.Cursor{}, ErrInvalidCursor
	}
	if c.ID <= 0 || c.CreatedAt.IsZero() {
		return post.Cursor{}, ErrInvalidCursor
	}
	return post.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}, nil
}
