package users

import "context"

// Repository abstracts user persistence so the service can be tested with an
// in-memory double.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, username, fullName, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, fullName string, isActive bool) (User, error)
	SetPasswordHash(ctx context.Context, id int64, hash string) error
	RolesFor(ctx context.Context, id int64) ([]string, error)
}
