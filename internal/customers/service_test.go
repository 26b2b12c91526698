package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandap-rentals/mandap-server/internal/listview"
	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type mockRepository struct {
	customers    map[int64]Customer
	nextID       int64
	activeOrders map[int64]bool
	pendingBills map[int64]bool
	flagSets     FlagSets
	err          error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customers:    make(map[int64]Customer),
		nextID:       1,
		activeOrders: make(map[int64]bool),
		pendingBills: make(map[int64]bool),
		flagSets: FlagSets{
			AnyOrders:      map[int64]struct{}{},
			ActiveOrders:   map[int64]struct{}{},
			UnbilledOrders: map[int64]struct{}{},
			BilledOrders:   map[int64]struct{}{},
			PendingBills:   map[int64]struct{}{},
		},
	}
}

func (m *mockRepository) ListActive(context.Context) ([]Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Customer
	for _, c := range m.customers {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, httpx.ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) FindByMobile(_ context.Context, mobile string) (Customer, error) {
	for _, c := range m.customers {
		if c.Mobile == mobile {
			return c, nil
		}
	}
	return Customer{}, httpx.ErrNotFound
}

func (m *mockRepository) Create(_ context.Context, in CustomerInput) (Customer, error) {
	c := Customer{
		ID: m.nextID, Name: in.Name, Mobile: in.Mobile, PalNumbers: in.PalNumbers,
		AlternateContact: in.AlternateContact, Address: in.Address, Notes: in.Notes, Active: true,
	}
	m.customers[c.ID] = c
	m.nextID++
	return c, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, in CustomerInput, active bool) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, httpx.ErrNotFound
	}
	c.Name, c.Mobile, c.PalNumbers = in.Name, in.Mobile, in.PalNumbers
	c.AlternateContact, c.Address, c.Notes, c.Active = in.AlternateContact, in.Address, in.Notes, active
	m.customers[id] = c
	return c, nil
}

func (m *mockRepository) Deactivate(_ context.Context, id int64) error {
	c, ok := m.customers[id]
	if !ok {
		return httpx.ErrNotFound
	}
	c.Active = false
	m.customers[id] = c
	return nil
}

func (m *mockRepository) LoadFlagSets(context.Context) (FlagSets, error) {
	return m.flagSets, nil
}

func (m *mockRepository) HasActiveOrders(_ context.Context, id int64) (bool, error) {
	return m.activeOrders[id], nil
}

func (m *mockRepository) HasPendingBills(_ context.Context, id int64) (bool, error) {
	return m.pendingBills[id], nil
}

func newTestService(repo Repository) *Service {
	return NewService(nil, repo, nil)
}

func TestCreateCustomer(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	c, err := svc.Create(context.Background(), 1, CustomerInput{
		Name:       "  Ramesh Patel ",
		Mobile:     "9876543210",
		PalNumbers: []string{" P-12 ", "P-12", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Patel", c.Name)
	assert.Equal(t, []string{"P-12"}, c.PalNumbers)
	assert.True(t, c.Active)
}

func TestCreateCustomerDuplicateMobile(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), 1, CustomerInput{Name: "A", Mobile: "9876543210"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, CustomerInput{Name: "B", Mobile: "9876543210"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateKeepsActiveAndPalsWhenOmitted(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	c, err := svc.Create(context.Background(), 1, CustomerInput{
		Name: "A", Mobile: "9876543210", PalNumbers: []string{"P-1"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 1, c.ID, CustomerInput{Name: "A2", Mobile: "9876543210"})
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, []string{"P-1"}, updated.PalNumbers)
	assert.Equal(t, "A2", updated.Name)
}

func TestUpdateRejectsMobileTakenByAnother(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	_, err := svc.Create(context.Background(), 1, CustomerInput{Name: "A", Mobile: "1111111111"})
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), 1, CustomerInput{Name: "B", Mobile: "2222222222"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 1, b.ID, CustomerInput{Name: "B", Mobile: "1111111111"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestDeleteSoftDeletes(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	c, err := svc.Create(context.Background(), 1, CustomerInput{Name: "A", Mobile: "1111111111"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, c.ID))

	stored := repo.customers[c.ID]
	assert.False(t, stored.Active)
}

func TestDeleteBlockedByActiveOrders(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	c, err := svc.Create(context.Background(), 1, CustomerInput{Name: "A", Mobile: "1111111111"})
	require.NoError(t, err)
	repo.activeOrders[c.ID] = true

	err = svc.Delete(context.Background(), 1, c.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
	assert.True(t, repo.customers[c.ID].Active)
}

func TestDeleteBlockedByPendingBills(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	c, err := svc.Create(context.Background(), 1, CustomerInput{Name: "A", Mobile: "1111111111"})
	require.NoError(t, err)
	repo.pendingBills[c.ID] = true

	err = svc.Delete(context.Background(), 1, c.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestListFiltersByNameAndAttachesFlags(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	a, err := svc.Create(context.Background(), 1, CustomerInput{Name: "Ramesh Patel", Mobile: "1111111111"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 1, CustomerInput{Name: "Suresh Shah", Mobile: "2222222222"})
	require.NoError(t, err)
	repo.flagSets.ActiveOrders[a.ID] = struct{}{}
	repo.flagSets.AnyOrders[a.ID] = struct{}{}

	rows, err := svc.List(context.Background(), listview.Query{Filters: map[string]string{"name": "ramesh"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasActiveOrders)
	assert.True(t, rows[0].HasRentalOrders)
	assert.False(t, rows[0].HasPendingBills)
}
