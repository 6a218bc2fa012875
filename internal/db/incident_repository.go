package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hollowmere/ashfall/internal/model"
)

// IncidentRepository persists movement violations for anticheat review.
type IncidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository creates a new incident repository.
func NewIncidentRepository(pool *pgxpool.Pool) *IncidentRepository {
	return &IncidentRepository{pool: pool}
}

// Insert stores one incident and returns its assigned ID.
func (r *IncidentRepository) Insert(ctx context.Context, inc *model.Incident) (int64, error) {
	query := `
		INSERT INTO movement_incidents (entity_id, kind, detail, x, y, z, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		int64(inc.EntityID),
		inc.Kind,
		inc.Detail,
		inc.Position.X,
		inc.Position.Y,
		inc.Position.Z,
		inc.OccurredAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting incident for entity %d: %w", inc.EntityID, err)
	}

	return id, nil
}

// RecentByEntity returns the newest incidents for an entity, newest first.
func (r *IncidentRepository) RecentByEntity(ctx context.Context, entityID uint32, limit int) ([]*model.Incident, error) {
	query := `
		SELECT id, entity_id, kind, detail, x, y, z, occurred_at
		FROM movement_incidents
		WHERE entity_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, int64(entityID), limit)
	if err != nil {
		return nil, fmt.Errorf("loading incidents for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	incidents := make([]*model.Incident, 0, limit)
	for rows.Next() {
		inc, err := scanIncident(rows.Scan)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating incident rows: %w", err)
	}

	return incidents, nil
}

// CountSince returns how many incidents an entity accumulated after the
// cutoff. Escalation logic keys off this.
func (r *IncidentRepository) CountSince(ctx context.Context, entityID uint32, since time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM movement_incidents WHERE entity_id = $1 AND occurred_at >= $2`,
		int64(entityID), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting incidents for entity %d: %w", entityID, err)
	}
	return count, nil
}

// DeleteOlderThan removes incidents past the retention cutoff and returns
// how many were dropped.
func (r *IncidentRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM movement_incidents WHERE occurred_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purging incidents before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

func scanIncident(scan func(dest ...any) error) (*model.Incident, error) {
	var (
		inc      model.Incident
		entityID int64
	)
	if err := scan(&inc.ID, &entityID, &inc.Kind, &inc.Detail,
		&inc.Position.X, &inc.Position.Y, &inc.Position.Z, &inc.OccurredAt); err != nil {
		return nil, fmt.Errorf("scanning incident row: %w", err)
	}
	inc.EntityID = uint32(entityID)
	return &inc, nil
}
