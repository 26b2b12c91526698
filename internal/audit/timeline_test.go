package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestBuildTimelineCreateShowsAllFields(t *testing.T) {
	events := BuildTimeline([]Entry{
		{
			ActorID:  1,
			Action:   "create",
			Snapshot: snap(t, map[string]any{"name": "Ramesh", "mobile": "111"}),
			At:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
	})

	require.Len(t, events, 1)
	require.Len(t, events[0].Changes, 2)
	assert.Equal(t, "mobile", events[0].Changes[0].Field)
	assert.Nil(t, events[0].Changes[0].From)
	assert.Equal(t, "111", events[0].Changes[0].To)
}

func TestBuildTimelineDiffsConsecutiveSnapshots(t *testing.T) {
	events := BuildTimeline([]Entry{
		{Action: "create", Snapshot: snap(t, map[string]any{"name": "Ramesh", "mobile": "111"})},
		{Action: "update", Snapshot: snap(t, map[string]any{"name": "Ramesh", "mobile": "222"})},
	})

	require.Len(t, events, 2)
	require.Len(t, events[1].Changes, 1)
	change := events[1].Changes[0]
	assert.Equal(t, "mobile", change.Field)
	assert.Equal(t, "111", change.From)
	assert.Equal(t, "222", change.To)
}

func TestBuildTimelineUnchangedSnapshotHasNoChanges(t *testing.T) {
	same := map[string]any{"name": "Ramesh"}
	events := BuildTimeline([]Entry{
		{Action: "create", Snapshot: snap(t, same)},
		{Action: "update", Snapshot: snap(t, same)},
	})

	require.Len(t, events, 2)
	assert.Empty(t, events[1].Changes)
}

func TestBuildTimelineReportsRemovedFields(t *testing.T) {
	events := BuildTimeline([]Entry{
		{Action: "create", Snapshot: snap(t, map[string]any{"name": "A", "notes": "vip"})},
		{Action: "update", Snapshot: snap(t, map[string]any{"name": "A"})},
	})

	require.Len(t, events[1].Changes, 1)
	assert.Equal(t, "notes", events[1].Changes[0].Field)
	assert.Equal(t, "vip", events[1].Changes[0].From)
	assert.Nil(t, events[1].Changes[0].To)
}

func TestBuildTimelineNestedValuesComparedAsWhole(t *testing.T) {
	events := BuildTimeline([]Entry{
		{Action: "create", Snapshot: snap(t, map[string]any{"pal_numbers": []string{"P-1"}})},
		{Action: "update", Snapshot: snap(t, map[string]any{"pal_numbers": []string{"P-1", "P-2"}})},
	})

	require.Len(t, events[1].Changes, 1)
	assert.Equal(t, "pal_numbers", events[1].Changes[0].Field)
}
