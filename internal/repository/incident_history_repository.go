package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pispas/incident-service/internal/domain"
)

// IncidentHistoryRepository stores audit entries.
type IncidentHistoryRepository interface {
	Create(ctx context.Context, history *domain.IncidentHistory) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error)
	DeleteByIncident(ctx context.Context, incidentID string) error
}

type incidentHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentHistoryRepository builds repository.
func NewIncidentHistoryRepository(pool *pgxpool.Pool) IncidentHistoryRepository {
	return &incidentHistoryRepository{pool: pool}
}

func (r *incidentHistoryRepository) Create(ctx context.Context, history *domain.IncidentHistory) error {
	const query = `
        INSERT INTO incident_history (incident_id, changed_by, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, changed_at`
	return r.pool.QueryRow(ctx, query,
		history.IncidentID,
		history.ChangedBy,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.ChangedAt)
}

func (r *incidentHistoryRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.IncidentHistory, error) {
	const query = `
        SELECT id, incident_id, changed_by, change_type, old_value, new_value, changed_at
        FROM incident_history WHERE incident_id=$1 ORDER BY changed_at ASC`
	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IncidentHistory
	for rows.Next() {
		var history domain.IncidentHistory
		if err := rows.Scan(
			&history.ID,
			&history.IncidentID,
			&history.ChangedBy,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.ChangedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}

func (r *incidentHistoryRepository) DeleteByIncident(ctx context.Context, incidentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM incident_history WHERE incident_id=$1`, incidentID)
	return err
}
