package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pispas/incident-service/internal/domain"
)

// CreateIncidentRequest payload.
type CreateIncidentRequest struct {
	Title         string           `json:"title" validate:"required"`
	Description   string           `json:"description" validate:"required"`
	Category      string           `json:"category"`
	Priority      string           `json:"priority"`
	ScooterID     *string          `json:"scooter_id"`
	TripID        *string          `json:"trip_id"`
	Location      *string          `json:"location"`
	UserPhone     *string          `json:"user_phone"`
	ReportedBy    *string          `json:"reported_by"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost"`
	Source        *string          `json:"source"`
	CreatedBy     string           `json:"created_by"`
}

// UpdateIncidentRequest payload; absent fields are left untouched.
type UpdateIncidentRequest struct {
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	Status          *string          `json:"status"`
	Priority        *string          `json:"priority"`
	ScooterID       *string          `json:"scooter_id"`
	TripID          *string          `json:"trip_id"`
	Location        *string          `json:"location"`
	UserPhone       *string          `json:"user_phone"`
	ReportedBy      *string          `json:"reported_by"`
	AssignedTo      *string          `json:"assigned_to"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost"`
	ResolutionNotes *string          `json:"resolution_notes"`
	ChangedBy       string           `json:"changed_by"`
}

// CreateNoteRequest payload.
type CreateNoteRequest struct {
	Body      string `json:"body" validate:"required"`
	CreatedBy string `json:"created_by"`
}

// IncidentResponse mirrors the stored incident.
type IncidentResponse struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Status          string           `json:"status"`
	Priority        string           `json:"priority"`
	ScooterID       *string          `json:"scooter_id"`
	TripID          *string          `json:"trip_id"`
	Location        *string          `json:"location"`
	UserPhone       *string          `json:"user_phone"`
	ReportedBy      *string          `json:"reported_by"`
	AssignedTo      *string          `json:"assigned_to"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost"`
	Source          *string          `json:"source"`
	CreatedBy       string           `json:"created_by"`
	ResolutionNotes *string          `json:"resolution_notes"`
	ResolutionDate  *time.Time       `json:"resolution_date"`
	CreatedDate     time.Time        `json:"created_date"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NoteResponse mirrors a stored note.
type NoteResponse struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incident_id"`
	Body       string    `json:"body"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse mirrors an audit entry.
type HistoryResponse struct {
	ID         string         `json:"id"`
	IncidentID string         `json:"incident_id"`
	ChangedBy  string         `json:"changed_by"`
	ChangeType string         `json:"change_type"`
	OldValue   map[string]any `json:"old_value"`
	NewValue   map[string]any `json:"new_value"`
	ChangedAt  time.Time      `json:"changed_at"`
}

// FromIncident maps the aggregate to its response shape.
func FromIncident(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:              incident.ID,
		Number:          incident.Number,
		Title:           incident.Title,
		Description:     incident.Description,
		Category:        string(incident.Category),
		Status:          string(incident.Status),
		Priority:        incident.Priority,
		ScooterID:       incident.ScooterID,
		TripID:          incident.TripID,
		Location:        incident.Location,
		UserPhone:       incident.UserPhone,
		ReportedBy:      incident.ReportedBy,
		AssignedTo:      incident.AssignedTo,
		EstimatedCost:   incident.EstimatedCost,
		Source:          incident.Source,
		CreatedBy:       incident.CreatedBy,
		ResolutionNotes: incident.ResolutionNotes,
		ResolutionDate:  incident.ResolutionDate,
		CreatedDate:     incident.CreatedAt,
		UpdatedAt:       incident.UpdatedAt,
	}
}

// FromNote maps a note to its response shape.
func FromNote(note *domain.IncidentNote) NoteResponse {
	return NoteResponse{
		ID:         note.ID,
		IncidentID: note.IncidentID,
		Body:       note.Body,
		CreatedBy:  note.CreatedBy,
		CreatedAt:  note.CreatedAt,
	}
}

// FromHistory maps an audit entry to its response shape.
func FromHistory(entry *domain.IncidentHistory) HistoryResponse {
	return HistoryResponse{
		ID:         entry.ID,
		IncidentID: entry.IncidentID,
		ChangedBy:  entry.ChangedBy,
		ChangeType: string(entry.ChangeType),
		OldValue:   entry.OldValue,
		NewValue:   entry.NewValue,
		ChangedAt:  entry.ChangedAt,
	}
}
