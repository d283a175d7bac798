package sqlite

import (
	"context"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
)

// UserRepository stores accounts in the users table
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Verify interface compliance
var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	res, err := r.db.conn(ctx).ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)",
		user.Username, user.PasswordHash, string(user.Role))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.get(ctx, "SELECT id, username, password_hash, role FROM users WHERE username = ?", username)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return r.get(ctx, "SELECT id, username, password_hash, role FROM users WHERE id = ?", id)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*entities.User, error) {
	var (
		u    entities.User
		role string
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if err != nil {
		return nil, translate(err)
	}
	u.Role = entities.Role(role)
	return &u, nil
}
