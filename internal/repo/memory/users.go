package memory

import (
	"context"
	"strings"

	"github.com/geocoder89/blogapi/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(_ context.Context, p user.CreateParams) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.TrimSpace(p.Email)

	for _, u := range r.s.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.s.nextUserID++
	now := r.s.now()

	u := user.User{
		ID:           r.s.nextUserID,
		Email:        email,
		Username:     strings.TrimSpace(p.Username),
		PasswordHash: p.PasswordHash,
		Role:         p.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// Count is used by tests to assert that rejected signups left no trace.
func (r *UsersRepo) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.users)
}
