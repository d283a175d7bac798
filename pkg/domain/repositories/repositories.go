package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/vsinha/cmrp/pkg/domain/entities"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint
	ErrConflict = errors.New("conflict")
)

// Transactor runs a unit of work atomically. Repository calls made with the
// context handed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository provides access to dashboard accounts
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
}

// SessionStore persists browser sessions
type SessionStore interface {
	Save(ctx context.Context, session *entities.Session) error
	Get(ctx context.Context, token string) (*entities.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
