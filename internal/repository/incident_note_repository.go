package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pispas/incident-service/internal/domain"
)

// IncidentNoteRepository stores operator notes.
type IncidentNoteRepository interface {
	Create(ctx context.Context, note *domain.IncidentNote) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentNote, error)
	DeleteByIncident(ctx context.Context, incidentID string) error
}

type incidentNoteRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentNoteRepository builds repository.
func NewIncidentNoteRepository(pool *pgxpool.Pool) IncidentNoteRepository {
	return &incidentNoteRepository{pool: pool}
}

func (r *incidentNoteRepository) Create(ctx context.Context, note *domain.IncidentNote) error {
	const query = `
        INSERT INTO incident_notes (incident_id, body, created_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		note.IncidentID,
		note.Body,
		note.CreatedBy,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *incidentNoteRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentNote, error) {
	const query = `
        SELECT id, incident_id, body, created_by, created_at
        FROM incident_notes WHERE incident_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IncidentNote
	for rows.Next() {
		var note domain.IncidentNote
		if err := rows.Scan(
			&note.ID,
			&note.IncidentID,
			&note.Body,
			&note.CreatedBy,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}

func (r *incidentNoteRepository) DeleteByIncident(ctx context.Context, incidentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM incident_notes WHERE incident_id=$1`, incidentID)
	return err
}
