package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pispas/incident-service/internal/domain"
)

// IncidentFilter captures listing parameters.
type IncidentFilter struct {
	Status     *domain.IncidentStatus
	Priority   *string
	Category   *domain.IncidentCategory
	AssignedTo *string
	Sort       string
	Limit      int
}

// IncidentRepository encapsulates incident persistence.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Update(ctx context.Context, incident *domain.Incident) error
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	GetByNumber(ctx context.Context, number string) (*domain.Incident, error)
	ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
	Delete(ctx context.Context, id string) error
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `id, number, title, description, category, status, priority,
               scooter_id, trip_id, location, user_phone, reported_by, assigned_to,
               estimated_cost, source, created_by, resolution_notes, resolution_date,
               created_at, updated_at`

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const query = `
        INSERT INTO incidents (number, title, description, category, status, priority,
            scooter_id, trip_id, location, user_phone, reported_by, assigned_to,
            estimated_cost, source, created_by, resolution_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		incident.Number,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Status,
		incident.Priority,
		incident.ScooterID,
		incident.TripID,
		incident.Location,
		incident.UserPhone,
		incident.ReportedBy,
		incident.AssignedTo,
		incident.EstimatedCost,
		incident.Source,
		incident.CreatedBy,
		incident.ResolutionNotes,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	const query = `
        UPDATE incidents SET title=$1, description=$2, category=$3, status=$4, priority=$5,
            scooter_id=$6, trip_id=$7, location=$8, user_phone=$9, reported_by=$10,
            assigned_to=$11, estimated_cost=$12, source=$13, resolution_notes=$14,
            resolution_date=$15, updated_at=NOW()
        WHERE id=$16`
	cmd, err := r.pool.Exec(ctx, query,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Status,
		incident.Priority,
		incident.ScooterID,
		incident.TripID,
		incident.Location,
		incident.UserPhone,
		incident.ReportedBy,
		incident.AssignedTo,
		incident.EstimatedCost,
		incident.Source,
		incident.ResolutionNotes,
		incident.ResolutionDate,
		incident.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *incidentRepository) GetByNumber(ctx context.Context, number string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *incidentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Incident, error) {
	var incident domain.Incident
	if err := scanIncident(r.pool.QueryRow(ctx, query, arg), &incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

// sortColumns whitelists sortable fields; the request syntax uses a leading
// "-" for descending order.
var sortColumns = map[string]string{
	"created_date":    "created_at",
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"status":          "status",
	"priority":        "priority",
	"resolution_date": "resolution_date",
}

func (r *incidentRepository) ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}

	orderBy := "created_at DESC"
	if filter.Sort != "" {
		field := filter.Sort
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			direction = "DESC"
		}
		if column, ok := sortColumns[field]; ok {
			orderBy = column + " " + direction
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s ORDER BY %s LIMIT %d`,
		incidentColumns, strings.Join(clauses, " AND "), orderBy, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Incident
	for rows.Next() {
		var incident domain.Incident
		if err := scanIncident(rows, &incident); err != nil {
			return nil, err
		}
		result = append(result, incident)
	}
	return result, rows.Err()
}

func (r *incidentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanIncident(row pgx.Row, incident *domain.Incident) error {
	return row.Scan(
		&incident.ID,
		&incident.Number,
		&incident.Title,
		&incident.Description,
		&incident.Category,
		&incident.Status,
		&incident.Priority,
		&incident.ScooterID,
		&incident.TripID,
		&incident.Location,
		&incident.UserPhone,
		&incident.ReportedBy,
		&incident.AssignedTo,
		&incident.EstimatedCost,
		&incident.Source,
		&incident.CreatedBy,
		&incident.ResolutionNotes,
		&incident.ResolutionDate,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
}
