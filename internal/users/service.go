package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Service implements account management rules.
type Service struct {
	repo     Repository
	sessions *shared.SessionManager
}

// NewService constructs a Service. sessions may be nil in tests that do not
// exercise deactivation.
func NewService(repo Repository, sessions *shared.SessionManager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one account with its assigned role names.
func (s *Service) Get(ctx context.Context, id int64) (UserWithRoles, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return UserWithRoles{}, err
	}
	roles, err := s.repo.RolesFor(ctx, id)
	if err != nil {
		return UserWithRoles{}, err
	}
	return UserWithRoles{User: user, Roles: roles}, nil
}

// Create registers a new active account.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (User, error) {
	username := strings.TrimSpace(strings.ToLower(in.Username))
	if username == "" {
		return User{}, httpx.ErrValidation
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, username, strings.TrimSpace(in.FullName), string(hash))
}

// Update changes profile fields. Deactivating an account revokes every live
// session so the change takes effect immediately.
func (s *Service) Update(ctx context.Context, id int64, in UpdateUserInput) (User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	isActive := current.IsActive
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	updated, err := s.repo.Update(ctx, id, strings.TrimSpace(in.FullName), isActive)
	if err != nil {
		return User{}, err
	}
	if current.IsActive && !isActive && s.sessions != nil {
		if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
			return User{}, err
		}
	}
	return updated, nil
}

// Deactivate disables an account and revokes its sessions. Accounts are never
// hard-deleted; audit records keep pointing at a real actor.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.repo.Update(ctx, id, current.FullName, false); err != nil {
		return err
	}
	if current.IsActive && s.sessions != nil {
		return s.sessions.RevokeAllForUser(ctx, id)
	}
	return nil
}

// ResetPassword replaces the stored hash and revokes existing sessions.
func (s *Service) ResetPassword(ctx context.Context, id int64, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.SetPasswordHash(ctx, id, string(hash)); err != nil {
		return err
	}
	if s.sessions != nil {
		return s.sessions.RevokeAllForUser(ctx, id)
	}
	return nil
}
