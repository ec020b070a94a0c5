package memory

import (
	"sync"
	"time"

	"github.com/geocoder89/blogapi/internal/domain/comment"
	"github.com/geocoder89/blogapi/internal/domain/post"
	"github.com/geocoder89/blogapi/internal/domain/user"
)

// Store is an in-process stand-in for the relational store. The three repos
// share one lock so joins (author names) and cascades stay consistent.
type Store struct {
	mu sync.RWMutex

	users    map[int64]user.User
	posts    map[int64]post.Post
	comments map[int64]comment.Comment

	nextUserID    int64
	nextPostID    int64
	nextCommentID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:    make(map[int64]user.User),
		posts:    make(map[int64]post.Post),
		comments: make(map[int64]comment.Comment),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UsersRepo       { return &UsersRepo{s: s} }
func (s *Store) Posts() *PostsRepo       { return &PostsRepo{s: s} }
func (s *Store) Comments() *CommentsRepo { return &CommentsRepo{s: s} }

// DeleteUser removes a user and, like the foreign keys in postgres, everything
// they own.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)

	for pid, p := range s.posts {
		if p.AuthorID == id {
			s.deletePostLocked(pid)
		}
	}
	for cid, c := range s.comments {
		if c.UserID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) deletePostLocked(id int64) {
	delete(s.posts, id)
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

func (s *Store) username(id int64) string {
	return s.users[id].Username
}
