package domain

import "time"

// IncidentNote is an append-only operator note owned by its incident,
// ordered by creation time.
type IncidentNote struct {
	ID         string
	IncidentID string
	Body       string
	CreatedBy  string
	CreatedAt  time.Time
}
