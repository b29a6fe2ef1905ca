package dept

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janavani/api/internal/apperr"
)

// Repository provides read access to departments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Names resolves department names for a set of ids in one query.
func (r *Repository) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	const query = `SELECT id, dept_name FROM issue_depts WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperr.Internal(err)
		}
		names[id] = name
	}
	if rows.Err() != nil {
		return nil, apperr.Internal(rows.Err())
	}
	return names, nil
}

// TopByVolume ranks departments by total reported issue sentiment, busiest
// first when desc is true.
func (r *Repository) TopByVolume(ctx context.Context, limit int, desc bool) ([]Ranked, error) {
	if limit <= 0 {
		limit = 3
	}

	order := "ASC"
	if desc {
		order = "DESC"
	}

	query := `
        SELECT dept_name, negative_count + positive_count AS total, state
        FROM issue_depts
        ORDER BY total ` + order + `
        LIMIT $1
    `

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []Ranked
	for rows.Next() {
		var d Ranked
		if err := rows.Scan(&d.Name, &d.Total, &d.State); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, apperr.Internal(rows.Err())
	}
	return out, nil
}
