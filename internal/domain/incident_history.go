package domain

import "time"

// IncidentChangeType captures what changed in a history entry.
type IncidentChangeType string

const (
	ChangeTypeStatus   IncidentChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee IncidentChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeFields   IncidentChangeType = "FIELDS_CHANGE"
)

// IncidentHistory is an immutable audit trail entry.
type IncidentHistory struct {
	ID         string
	IncidentID string
	ChangedBy  string
	ChangeType IncidentChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	ChangedAt  time.Time
}
