package entities

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a user's access role
type Role string

const (
	Administrator Role = "Administrator"
	DSEngineer    Role = "DS Engineer"
	Procurement   Role = "Procurement"
	Finance       Role = "Finance"
	Guest         Role = "Guest"
)

// ValidRoles lists every role in display order
var ValidRoles = []Role{Administrator, DSEngineer, Procurement, Finance, Guest}

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	for _, r := range ValidRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role selected. Must be one of: %s", RoleList())
}

// RoleList renders the valid roles as a comma separated list
func RoleList() string {
	names := make([]string, len(ValidRoles))
	for i, r := range ValidRoles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// In reports whether r is one of roles
func (r Role) In(roles ...Role) bool {
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// User is a dashboard account
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
}

// NewUser creates a validated User
func NewUser(username, passwordHash string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &User{Username: username, PasswordHash: passwordHash, Role: role}, nil
}

// Session is a logged-in browser session
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
