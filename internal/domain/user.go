package domain

import (
	"context"
	"time"
)

// Role constants as supplied by the identity layer
const (
	RoleEmployer  = "employer"
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository is a read-only view of accounts owned by the identity layer.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// Actor is the caller identity handed to usecases by the delivery layer.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsEmployer() bool { return a.Role == RoleEmployer }
func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }

// Transactor runs fn inside a single store transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
