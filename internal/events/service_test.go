package events

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandap-rentals/mandap-server/internal/platform/httpx"
)

type mockRepository struct {
	events map[int64]Event
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{events: make(map[int64]Event), nextID: 1}
}

func (m *mockRepository) ListActive(context.Context) ([]Event, error) {
	var out []Event
	for _, e := range m.events {
		if e.Active {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRepository) ListByYear(_ context.Context, year int) ([]Event, error) {
	var out []Event
	for _, e := range m.events {
		if e.Active && e.Year == year {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) ListByType(_ context.Context, t Type) ([]Event, error) {
	var out []Event
	for _, e := range m.events {
		if e.Active && e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) DistinctYears(context.Context) ([]int, error) {
	seen := make(map[int]struct{})
	for _, e := range m.events {
		if e.Active {
			seen[e.Year] = struct{}{}
		}
	}
	var out []int
	for y := range seen {
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Event, error) {
	e, ok := m.events[id]
	if !ok {
		return Event{}, httpx.ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) Create(_ context.Context, e Event) (Event, error) {
	e.ID = m.nextID
	m.nextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	m.events[e.ID] = e
	return e, nil
}

func (m *mockRepository) Update(_ context.Context, e Event) (Event, error) {
	if _, ok := m.events[e.ID]; !ok {
		return Event{}, httpx.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	m.events[e.ID] = e
	return e, nil
}

func (m *mockRepository) Deactivate(_ context.Context, id int64) error {
	e, ok := m.events[id]
	if !ok {
		return httpx.ErrNotFound
	}
	e.Active = false
	m.events[id] = e
	return nil
}

func TestCreateEventDefaultsToNormalType(t *testing.T) {
	svc := NewService(nil, newMockRepository())

	event, err := svc.Create(context.Background(), EventInput{Name: "Village Wedding", Year: 2026})
	require.NoError(t, err)

	assert.Equal(t, TypeNormal, event.Type)
	assert.True(t, event.Active)
}

func TestCreateEventFagunSud13(t *testing.T) {
	svc := NewService(nil, newMockRepository())

	event, err := svc.Create(context.Background(), EventInput{
		Name: "Fagun Sud 13",
		Type: "FAGUN_SUD_13",
		Year: 2026,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeFagunSud13, event.Type)
}

func TestUpdateEventKeepsActiveWhenOmitted(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(nil, repo)

	event, err := svc.Create(context.Background(), EventInput{Name: "Fagun Sud 13", Year: 2026})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), event.ID, EventInput{
		Name: "Fagun Sud 13 (moved)",
		Year: 2027,
	})
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, 2027, updated.Year)
}

func TestDeleteEventDeactivates(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(nil, repo)

	event, err := svc.Create(context.Background(), EventInput{Name: "Old Event", Year: 2024})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), event.ID))

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Row survives for historical lookups.
	got, err := svc.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestYearsAreDistinctAndDescending(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(nil, repo)

	for _, in := range []EventInput{
		{Name: "A", Year: 2025},
		{Name: "B", Year: 2026},
		{Name: "C", Year: 2025},
	} {
		_, err := svc.Create(context.Background(), in)
		require.NoError(t, err)
	}

	years, err := svc.Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025}, years)
}
