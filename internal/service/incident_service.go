package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pispas/incident-service/internal/domain"
	"github.com/pispas/incident-service/internal/repository"
	"github.com/pispas/incident-service/internal/webhook"
	apperrors "github.com/pispas/incident-service/pkg/util"
)

// SystemActor is recorded when no caller identity is supplied.
const SystemActor = "sistema"

// IncidentService coordinates incident workflows, including the
// resolution-triggered webhook routing.
type IncidentService struct {
	incidents repository.IncidentRepository
	notes     repository.IncidentNoteRepository
	history   repository.IncidentHistoryRepository
	sender    webhook.Sender
	logger    *zap.Logger
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	IncidentRepo repository.IncidentRepository
	NoteRepo     repository.IncidentNoteRepository
	HistoryRepo  repository.IncidentHistoryRepository
	Sender       webhook.Sender
	Logger       *zap.Logger
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	return &IncidentService{
		incidents: deps.IncidentRepo,
		notes:     deps.NoteRepo,
		history:   deps.HistoryRepo,
		sender:    deps.Sender,
		logger:    deps.Logger,
	}
}

// IncidentCreateInput describes intake payload.
type IncidentCreateInput struct {
	Title         string
	Description   string
	Category      domain.IncidentCategory
	Priority      string
	ScooterID     *string
	TripID        *string
	Location      *string
	UserPhone     *string
	ReportedBy    *string
	EstimatedCost *decimal.Decimal
	Source        *string
	CreatedBy     string
}

// IncidentUpdateInput carries a partial update; nil fields are left as-is.
type IncidentUpdateInput struct {
	Title           *string
	Description     *string
	Category        *domain.IncidentCategory
	Status          *domain.IncidentStatus
	Priority        *string
	ScooterID       *string
	TripID          *string
	Location        *string
	UserPhone       *string
	ReportedBy      *string
	AssignedTo      *string
	EstimatedCost   *decimal.Decimal
	ResolutionNotes *string
	ChangedBy       string
}

// CreateIncident registers a new report with a generated ticket code.
func (s *IncidentService) CreateIncident(ctx context.Context, input IncidentCreateInput) (*domain.Incident, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = SystemActor
	}
	priority := input.Priority
	if priority == "" {
		priority = "medium"
	}

	incident := &domain.Incident{
		Number:        generateIncidentNumber(),
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Category:      input.Category,
		Status:        domain.IncidentStatusOpen,
		Priority:      priority,
		ScooterID:     input.ScooterID,
		TripID:        input.TripID,
		Location:      input.Location,
		UserPhone:     input.UserPhone,
		ReportedBy:    input.ReportedBy,
		EstimatedCost: input.EstimatedCost,
		Source:        input.Source,
		CreatedBy:     createdBy,
	}

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// GetIncident fetches one incident.
func (s *IncidentService) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	return s.incidents.GetByID(ctx, id)
}

// ListIncidents returns filtered incidents.
func (s *IncidentService) ListIncidents(ctx context.Context, filter repository.IncidentFilter) ([]domain.Incident, error) {
	return s.incidents.ListWithFilter(ctx, filter)
}

// UpdateIncident applies a partial update and runs the transition-triggered
// side effects: the resolution timestamp is stamped exactly once, a history
// entry is recorded on status change, and the channel routing is evaluated
// against the snapshot pair of this single request. The webhook delivery is
// enqueued, never awaited, so its outcome cannot affect the response.
func (s *IncidentService) UpdateIncident(ctx context.Context, id string, input IncidentUpdateInput) (*domain.Incident, error) {
	previous, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *previous
	applyIncidentPatch(&updated, input)

	transition := domain.NewStatusTransition(previous.Status, updated.Status)

	now := time.Now()
	if transition.IntoResolved() && updated.ResolutionDate == nil {
		updated.ResolutionDate = &now
	}

	if err := s.incidents.Update(ctx, &updated); err != nil {
		return nil, err
	}

	if previous.Status != updated.Status {
		s.recordStatusChange(ctx, &updated, previous.Status, input.ChangedBy)
	}

	resolvedAt := now
	if updated.ResolutionDate != nil {
		resolvedAt = *updated.ResolutionDate
	}
	if delivery, ok := webhook.Route(transition, &updated, resolvedAt); ok {
		s.sender.Enqueue(delivery)
	}

	return &updated, nil
}

// DeleteIncident removes the incident and its owned notes and history.
func (s *IncidentService) DeleteIncident(ctx context.Context, id string) error {
	if _, err := s.incidents.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.notes.DeleteByIncident(ctx, id); err != nil {
		return err
	}
	if err := s.history.DeleteByIncident(ctx, id); err != nil {
		return err
	}
	return s.incidents.Delete(ctx, id)
}

// AddNote appends an operator note.
func (s *IncidentService) AddNote(ctx context.Context, incidentID, body, createdBy string) (*domain.IncidentNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	if _, err := s.incidents.GetByID(ctx, incidentID); err != nil {
		return nil, err
	}
	if createdBy == "" {
		createdBy = SystemActor
	}
	note := &domain.IncidentNote{
		IncidentID: incidentID,
		Body:       strings.TrimSpace(body),
		CreatedBy:  createdBy,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns notes ordered by creation time.
func (s *IncidentService) ListNotes(ctx context.Context, incidentID string) ([]domain.IncidentNote, error) {
	return s.notes.ListByIncident(ctx, incidentID)
}

// ListHistory returns the audit trail.
func (s *IncidentService) ListHistory(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	return s.history.ListByIncident(ctx, incidentID)
}

func (s *IncidentService) recordStatusChange(ctx context.Context, incident *domain.Incident, oldStatus domain.IncidentStatus, changedBy string) {
	if changedBy == "" {
		changedBy = SystemActor
	}
	entry := &domain.IncidentHistory{
		IncidentID: incident.ID,
		ChangedBy:  changedBy,
		ChangeType: domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status": incident.Status,
		},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		// the audit trail must not abort an already persisted update
		s.logger.Error("record status change", zap.String("incident_id", incident.ID), zap.Error(err))
	}
}

func applyIncidentPatch(incident *domain.Incident, input IncidentUpdateInput) {
	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Description != nil {
		incident.Description = *input.Description
	}
	if input.Category != nil {
		incident.Category = *input.Category
	}
	if input.Status != nil {
		incident.Status = *input.Status
	}
	if input.Priority != nil {
		incident.Priority = *input.Priority
	}
	if input.ScooterID != nil {
		incident.ScooterID = input.ScooterID
	}
	if input.TripID != nil {
		incident.TripID = input.TripID
	}
	if input.Location != nil {
		incident.Location = input.Location
	}
	if input.UserPhone != nil {
		incident.UserPhone = input.UserPhone
	}
	if input.ReportedBy != nil {
		incident.ReportedBy = input.ReportedBy
	}
	if input.AssignedTo != nil {
		incident.AssignedTo = input.AssignedTo
	}
	if input.EstimatedCost != nil {
		incident.EstimatedCost = input.EstimatedCost
	}
	if input.ResolutionNotes != nil {
		incident.ResolutionNotes = input.ResolutionNotes
	}
}

func generateIncidentNumber() string {
	now := time.Now()
	return fmt.Sprintf("PSP-%s-%d", now.Format("060102"), rand.Intn(9000)+1000)
}
