// Package save manages the relational saves join table: at most one row per
// (issue, user), enforced by the composite primary key.
package save

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/issue"
)

// Repository provides access to the saves table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Toggle flips save membership for (issueID, userID) and reports the
// resulting state. Delete-or-insert, never both.
func (r *Repository) Toggle(ctx context.Context, issueID, userID uuid.UUID) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM saves WHERE issue_id = $1 AND user_id = $2`, issueID, userID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	if cmd.RowsAffected() > 0 {
		return false, nil
	}

	// ON CONFLICT covers the race against a concurrent toggle; either way
	// the row exists afterwards.
	_, err = r.pool.Exec(ctx, `
        INSERT INTO saves (issue_id, user_id, created_at)
        VALUES ($1, $2, now())
        ON CONFLICT (issue_id, user_id) DO NOTHING
    `, issueID, userID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return true, nil
}

// IsSaved reports whether the viewer holds a save row for the issue.
func (r *Repository) IsSaved(ctx context.Context, issueID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM saves WHERE issue_id = $1 AND user_id = $2)`,
		issueID, userID,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return exists, nil
}

// AnySaved reports whether any subject saved the issue.
func (r *Repository) AnySaved(ctx context.Context, issueID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM saves WHERE issue_id = $1)`,
		issueID,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return exists, nil
}

// ListSaved returns the viewer's saved, still-visible issues, newest save
// first.
func (r *Repository) ListSaved(ctx context.Context, userID uuid.UUID) ([]issue.Issue, error) {
	const query = `
        SELECT i.id, i.user_id, i.dept_id, i.dept, i.issue_headline, i.issue_desc, i.issue_type,
               i.village, i.state, i.district, i.taluk, i.current_status, i.issue_time, i.is_anonymous,
               i.evidence_url, i.created_at, i.is_edited, i.is_deleted
        FROM saves s
        JOIN issues i ON i.id = s.issue_id
        WHERE s.user_id = $1 AND i.is_deleted = FALSE
        ORDER BY s.created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var issues []issue.Issue
	for rows.Next() {
		var it issue.Issue
		err := rows.Scan(
			&it.ID, &it.UserID, &it.DeptID, &it.Dept, &it.Headline, &it.Description, &it.IssueType,
			&it.Village, &it.State, &it.District, &it.Taluk, &it.CurrentStatus, &it.IssueTime,
			&it.IsAnonymous, &it.EvidenceURL, &it.CreatedAt, &it.IsEdited, &it.IsDeleted,
		)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		issues = append(issues, it)
	}
	if rows.Err() != nil {
		return nil, apperr.Internal(rows.Err())
	}
	return issues, nil
}
