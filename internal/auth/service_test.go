package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mandap-rentals/mandap-server/internal/shared"
)

type mockRepository struct {
	users map[string]*User
}

func (m *mockRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := &mockRepository{users: map[string]*User{
		"owner": {
			ID:           1,
			Username:     "owner",
			FullName:     "Shop Owner",
			PasswordHash: hashFor(t, "correct horse"),
			IsActive:     true,
			CreatedAt:    time.Now(),
		},
	}}
	svc := NewService(repo)

	user, err := svc.Authenticate(context.Background(), "owner", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &mockRepository{users: map[string]*User{
		"owner": {ID: 1, Username: "owner", PasswordHash: hashFor(t, "correct horse"), IsActive: true},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "owner", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc := NewService(&mockRepository{users: map[string]*User{}})

	_, err := svc.Authenticate(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	repo := &mockRepository{users: map[string]*User{
		"former": {ID: 2, Username: "former", PasswordHash: hashFor(t, "correct horse"), IsActive: false},
	}}
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "former", "correct horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
