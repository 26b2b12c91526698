package audit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// BuildTimeline turns a chronological list of entries into events carrying
// field-level diffs. The first entry diffs against an empty snapshot, so a
// create shows every populated field as a change from nil.
func BuildTimeline(entries []Entry) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(entries))
	var prev map[string]any
	for _, e := range entries {
		curr := decodeSnapshot(e.Snapshot)
		events = append(events, TimelineEvent{
			ActorID: e.ActorID,
			Action:  e.Action,
			At:      e.At,
			Changes: diffSnapshots(prev, curr),
		})
		prev = curr
	}
	return events
}

func decodeSnapshot(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// diffSnapshots compares top-level fields. Nested objects and arrays are
// compared by their JSON rendering; a changed nested value reports the whole
// value under its top-level key.
func diffSnapshots(prev, curr map[string]any) []FieldChange {
	keys := make(map[string]struct{}, len(prev)+len(curr))
	for k := range prev {
		keys[k] = struct{}{}
	}
	for k := range curr {
		keys[k] = struct{}{}
	}
	ordered := make([]string, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var changes []FieldChange
	for _, k := range ordered {
		before, after := prev[k], curr[k]
		if renderValue(before) == renderValue(after) {
			continue
		}
		changes = append(changes, FieldChange{Field: k, From: before, To: after})
	}
	return changes
}

func renderValue(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
