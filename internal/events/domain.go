// Package events keeps the seasonal event calendar. Bills are grouped by
// year, and Fagun Sud 13 is the busiest booking date of the season, so the
// calendar distinguishes it from ordinary events.
package events

import "time"

// Type classifies calendar events.
type Type string

const (
	TypeFagunSud13 Type = "FAGUN_SUD_13"
	TypeNormal     Type = "NORMAL"
)

// ParseType defaults to NORMAL for unknown input.
func ParseType(raw string) Type {
	if Type(raw) == TypeFagunSud13 {
		return TypeFagunSud13
	}
	return TypeNormal
}

// Event is one entry of the calendar. Deleting an event deactivates it.
type Event struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        Type       `json:"type"`
	Year        int        `json:"year"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventInput creates or updates an event.
type EventInput struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Type        string     `json:"type"`
	Year        int        `json:"year" validate:"required,gte=2000,lte=2100"`
	EventDate   *time.Time `json:"event_date"`
	Description string     `json:"description" validate:"max=500"`
	Active      *bool      `json:"active"`
}
