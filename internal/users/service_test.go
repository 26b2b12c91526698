package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type mockRepository struct {
	users  map[int64]User
	hashes map[int64]string
	roles  map[int64][]string
	nextID int64
	err    error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:  make(map[int64]User),
		hashes: make(map[int64]string),
		roles:  make(map[int64][]string),
		nextID: 1,
	}
}

func (m *mockRepository) List(context.Context) ([]User, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) Create(_ context.Context, username, fullName, hash string) (User, error) {
	if m.err != nil {
		return User{}, m.err
	}
	for _, u := range m.users {
		if u.Username == username {
			return User{}, httpx.ErrDuplicate
		}
	}
	u := User{ID: m.nextID, Username: username, FullName: fullName, IsActive: true, CreatedAt: time.Now()}
	m.users[u.ID] = u
	m.hashes[u.ID] = hash
	m.nextID++
	return u, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, fullName string, isActive bool) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	u.FullName = fullName
	u.IsActive = isActive
	m.users[id] = u
	return u, nil
}

func (m *mockRepository) SetPasswordHash(_ context.Context, id int64, hash string) error {
	if _, ok := m.users[id]; !ok {
		return httpx.ErrNotFound
	}
	m.hashes[id] = hash
	return nil
}

func (m *mockRepository) RolesFor(_ context.Context, id int64) ([]string, error) {
	return m.roles[id], nil
}

func TestCreateUserLowercasesUsername(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Username: "Kiran",
		FullName: "Kiran Desai",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "kiran", user.Username)
	assert.True(t, user.IsActive)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserInput{Username: "KIRAN", FullName: "B", Password: "longenough"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateUserStoresBcryptHash(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	user, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "longenough"})
	require.NoError(t, err)

	hash := repo.hashes[user.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("longenough")))
}

func TestUpdatePreservesActiveWhenOmitted(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	user, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "longenough"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, UpdateUserInput{FullName: "Kiran D"})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "Kiran D", updated.FullName)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.Update(context.Background(), 99, UpdateUserInput{FullName: "X"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeactivateDisablesAccount(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	user, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "longenough"})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))
	assert.False(t, repo.users[user.ID].IsActive)
	assert.Equal(t, "A", repo.users[user.ID].FullName)
}

func TestDeactivateUnknownUser(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	err := svc.Deactivate(context.Background(), 99)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestResetPasswordReplacesHash(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	user, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "oldpassword"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), user.ID, "newpassword"))

	hash := repo.hashes[user.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("oldpassword")))
}

func TestGetIncludesRoles(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)
	user, err := svc.Create(context.Background(), CreateUserInput{Username: "kiran", FullName: "A", Password: "longenough"})
	require.NoError(t, err)
	repo.roles[user.ID] = []string{"manager"}

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, got.Roles)
}
