package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pispas/incident-service/internal/domain"
	"github.com/pispas/incident-service/internal/repository"
	"github.com/pispas/incident-service/internal/webhook"
	apperrors "github.com/pispas/incident-service/pkg/util"
)

type fakeIncidentRepo struct {
	incidents map[string]domain.Incident
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: map[string]domain.Incident{}}
}

func (f *fakeIncidentRepo) Create(_ context.Context, incident *domain.Incident) error {
	incident.ID = uuid.NewString()
	incident.CreatedAt = time.Now()
	incident.UpdatedAt = incident.CreatedAt
	f.incidents[incident.ID] = *incident
	return nil
}

func (f *fakeIncidentRepo) Update(_ context.Context, incident *domain.Incident) error {
	if _, ok := f.incidents[incident.ID]; !ok {
		return apperrors.NewNotFound("incident", nil)
	}
	incident.UpdatedAt = time.Now()
	f.incidents[incident.ID] = *incident
	return nil
}

func (f *fakeIncidentRepo) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	incident, ok := f.incidents[id]
	if !ok {
		return nil, apperrors.NewNotFound("incident", nil)
	}
	copied := incident
	return &copied, nil
}

func (f *fakeIncidentRepo) GetByNumber(_ context.Context, number string) (*domain.Incident, error) {
	for _, incident := range f.incidents {
		if incident.Number == number {
			copied := incident
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("incident", nil)
}

func (f *fakeIncidentRepo) ListWithFilter(_ context.Context, _ repository.IncidentFilter) ([]domain.Incident, error) {
	out := make([]domain.Incident, 0, len(f.incidents))
	for _, incident := range f.incidents {
		out = append(out, incident)
	}
	return out, nil
}

func (f *fakeIncidentRepo) Delete(_ context.Context, id string) error {
	delete(f.incidents, id)
	return nil
}

type fakeNoteRepo struct {
	notes []domain.IncidentNote
}

func (f *fakeNoteRepo) Create(_ context.Context, note *domain.IncidentNote) error {
	note.ID = uuid.NewString()
	note.CreatedAt = time.Now()
	f.notes = append(f.notes, *note)
	return nil
}

func (f *fakeNoteRepo) ListByIncident(_ context.Context, incidentID string) ([]domain.IncidentNote, error) {
	out := []domain.IncidentNote{}
	for _, note := range f.notes {
		if note.IncidentID == incidentID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) DeleteByIncident(_ context.Context, incidentID string) error {
	kept := f.notes[:0]
	for _, note := range f.notes {
		if note.IncidentID != incidentID {
			kept = append(kept, note)
		}
	}
	f.notes = kept
	return nil
}

type fakeHistoryRepo struct {
	entries []domain.IncidentHistory
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.IncidentHistory) error {
	entry.ID = uuid.NewString()
	entry.ChangedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByIncident(_ context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	out := []domain.IncidentHistory{}
	for _, entry := range f.entries {
		if entry.IncidentID == incidentID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) DeleteByIncident(_ context.Context, incidentID string) error {
	kept := f.entries[:0]
	for _, entry := range f.entries {
		if entry.IncidentID != incidentID {
			kept = append(kept, entry)
		}
	}
	f.entries = kept
	return nil
}

type fakeSender struct {
	deliveries []webhook.Delivery
}

func (f *fakeSender) Enqueue(delivery webhook.Delivery) {
	f.deliveries = append(f.deliveries, delivery)
}

type incidentFixture struct {
	service   *IncidentService
	incidents *fakeIncidentRepo
	notes     *fakeNoteRepo
	history   *fakeHistoryRepo
	sender    *fakeSender
}

func newIncidentFixture() *incidentFixture {
	incidents := newFakeIncidentRepo()
	notes := &fakeNoteRepo{}
	history := &fakeHistoryRepo{}
	sender := &fakeSender{}
	svc := NewIncidentService(IncidentDependencies{
		IncidentRepo: incidents,
		NoteRepo:     notes,
		HistoryRepo:  history,
		Sender:       sender,
		Logger:       zap.NewNop(),
	})
	return &incidentFixture{service: svc, incidents: incidents, notes: notes, history: history, sender: sender}
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.IncidentStatus) *domain.IncidentStatus { return &s }

func TestCreateIncidentDefaults(t *testing.T) {
	fx := newIncidentFixture()

	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "  scooter will not start  ",
		Description: "battery indicator dead",
		Category:    domain.CategoryBatteryIssue,
	})
	require.NoError(t, err)
	require.Equal(t, "scooter will not start", incident.Title)
	require.Equal(t, domain.IncidentStatusOpen, incident.Status)
	require.Equal(t, "medium", incident.Priority)
	require.Equal(t, SystemActor, incident.CreatedBy)
	require.Regexp(t, `^PSP-\d{6}-\d{4}$`, incident.Number)
}

func TestCreateIncidentRequiresTitleAndDescription(t *testing.T) {
	fx := newIncidentFixture()

	_, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "   ",
		Description: "something",
	})
	require.True(t, apperrors.IsValidation(err))
}

func TestUpdateIncidentResolvingBillingEnqueuesDelivery(t *testing.T) {
	fx := newIncidentFixture()
	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "double charge",
		Description: "user billed twice for one trip",
		Category:    domain.CategoryBillingIssue,
	})
	require.NoError(t, err)

	updated, err := fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status: statusPtr(domain.IncidentStatusResolved),
	})
	require.NoError(t, err)
	require.Equal(t, domain.IncidentStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolutionDate)

	require.Len(t, fx.sender.deliveries, 1)
	delivery := fx.sender.deliveries[0]
	require.Equal(t, webhook.ChannelBilling, delivery.Channel)
	require.Equal(t, "billing_resolved", delivery.Payload.Type)
	require.Equal(t, incident.Number, delivery.Payload.IncidentNumber)
}

func TestUpdateIncidentResolvedAgainDoesNotRefire(t *testing.T) {
	fx := newIncidentFixture()
	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "double charge",
		Description: "user billed twice for one trip",
		Category:    domain.CategoryBillingIssue,
	})
	require.NoError(t, err)

	first, err := fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status: statusPtr(domain.IncidentStatusResolved),
	})
	require.NoError(t, err)
	firstResolved := *first.ResolutionDate

	second, err := fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status:   statusPtr(domain.IncidentStatusResolved),
		Priority: strPtr("low"),
	})
	require.NoError(t, err)

	require.Len(t, fx.sender.deliveries, 1, "a second resolved save must not re-fire")
	require.Equal(t, firstResolved, *second.ResolutionDate, "resolution date is stamped once")
}

func TestUpdateIncidentMechanicalWithoutNotesStaysSilent(t *testing.T) {
	fx := newIncidentFixture()
	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "front wheel flat",
		Description: "reported by rider",
		Category:    domain.CategoryFlatTire,
	})
	require.NoError(t, err)

	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status: statusPtr(domain.IncidentStatusResolved),
	})
	require.NoError(t, err)
	require.Empty(t, fx.sender.deliveries)

	// reopen, then resolve with notes in the same update
	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status: statusPtr(domain.IncidentStatusOpen),
	})
	require.NoError(t, err)

	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status:          statusPtr(domain.IncidentStatusResolved),
		ResolutionNotes: strPtr("tube replaced at depot"),
	})
	require.NoError(t, err)
	require.Len(t, fx.sender.deliveries, 1)
	require.Equal(t, webhook.ChannelMechanical, fx.sender.deliveries[0].Channel)
}

func TestUpdateIncidentRecordsStatusHistory(t *testing.T) {
	fx := newIncidentFixture()
	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "handlebar loose",
		Description: "mechanic check needed",
		Category:    domain.CategoryMechanicalFailure,
	})
	require.NoError(t, err)

	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status:    statusPtr(domain.IncidentStatusInProgress),
		ChangedBy: "ops-ana",
	})
	require.NoError(t, err)

	entries, err := fx.service.ListHistory(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.ChangeTypeStatus, entries[0].ChangeType)
	require.Equal(t, "ops-ana", entries[0].ChangedBy)
	require.Equal(t, domain.IncidentStatusOpen, entries[0].OldValue["status"])
	require.Equal(t, domain.IncidentStatusInProgress, entries[0].NewValue["status"])

	// a notes-only update must not add a history entry
	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Priority: strPtr("high"),
	})
	require.NoError(t, err)
	entries, err = fx.service.ListHistory(context.Background(), incident.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDeleteIncidentCascades(t *testing.T) {
	fx := newIncidentFixture()
	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "stolen unit",
		Description: "GPS offline since midnight",
		Category:    domain.CategoryTheft,
	})
	require.NoError(t, err)

	_, err = fx.service.AddNote(context.Background(), incident.ID, "police report filed", "ops-ana")
	require.NoError(t, err)
	_, err = fx.service.UpdateIncident(context.Background(), incident.ID, IncidentUpdateInput{
		Status: statusPtr(domain.IncidentStatusInProgress),
	})
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteIncident(context.Background(), incident.ID))

	_, err = fx.service.GetIncident(context.Background(), incident.ID)
	require.True(t, apperrors.IsNotFound(err))
	require.Empty(t, fx.notes.notes)
	require.Empty(t, fx.history.entries)
}

func TestAddNoteRequiresBodyAndIncident(t *testing.T) {
	fx := newIncidentFixture()

	_, err := fx.service.AddNote(context.Background(), uuid.NewString(), "hello", "")
	require.True(t, apperrors.IsNotFound(err))

	incident, err := fx.service.CreateIncident(context.Background(), IncidentCreateInput{
		Title:       "app crash on unlock",
		Description: "stack trace attached",
		Category:    domain.CategoryOther,
	})
	require.NoError(t, err)

	_, err = fx.service.AddNote(context.Background(), incident.ID, "   ", "")
	require.True(t, apperrors.IsValidation(err))

	note, err := fx.service.AddNote(context.Background(), incident.ID, "forwarded to app team", "")
	require.NoError(t, err)
	require.Equal(t, SystemActor, note.CreatedBy)
}
