package memory

import (
	"context"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// UserRepository provides in-memory account storage
type UserRepository struct {
	s *Store
}

// Verify interface compliance
var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Username == user.Username {
			return repositories.ErrConflict
		}
	}
	user.ID = r.s.allocID()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*entities.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

// SessionStore keeps sessions in memory. Used by ephemeral servers and tests.
type SessionStore struct {
	s *Store
}

// Verify interface compliance
var _ repositories.SessionStore = (*SessionStore)(nil)

func (r *SessionStore) Save(_ context.Context, session *entities.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.sessions[session.Token] = *session
	return nil
}

func (r *SessionStore) Get(_ context.Context, token string) (*entities.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.data.sessions[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &sess, nil
}

func (r *SessionStore) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.data.sessions, token)
	return nil
}

func (r *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	removed := 0
	for token, sess := range r.s.data.sessions {
		if sess.Expired(now) {
			delete(r.s.data.sessions, token)
			removed++
		}
	}
	return removed, nil
}
