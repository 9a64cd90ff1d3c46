package interfaces

import (
	"context"

	"cookalong/pkg/types"
)

// UserStore persists user records for the auth and user-management REST
// surface. Room and seat state is deliberately not stored.
type UserStore interface {
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	ListUsers(ctx context.Context) ([]*types.User, error)
	UpdateUser(ctx context.Context, user *types.User) error
	DeleteUser(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
	Close() error
}
