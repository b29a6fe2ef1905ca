package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janavani/api/internal/apperr"
)

const issueColumns = `id, user_id, dept_id, dept, issue_headline, issue_desc, issue_type,
        village, state, district, taluk, current_status, issue_time, is_anonymous,
        evidence_url, created_at, is_edited, is_deleted`

// Repository provides access to the issues table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (Issue, error) {
	var it Issue
	err := row.Scan(
		&it.ID, &it.UserID, &it.DeptID, &it.Dept, &it.Headline, &it.Description, &it.IssueType,
		&it.Village, &it.State, &it.District, &it.Taluk, &it.CurrentStatus, &it.IssueTime,
		&it.IsAnonymous, &it.EvidenceURL, &it.CreatedAt, &it.IsEdited, &it.IsDeleted,
	)
	return it, err
}

// Create inserts a new issue.
func (r *Repository) Create(ctx context.Context, it Issue) (Issue, error) {
	const query = `
        INSERT INTO issues (id, user_id, dept_id, dept, issue_headline, issue_desc, issue_type,
            village, state, district, taluk, current_status, issue_time, is_anonymous,
            evidence_url, created_at, is_edited, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), FALSE, FALSE)
        RETURNING ` + issueColumns

	evidence := it.EvidenceURL
	if evidence == nil {
		evidence = []string{}
	}

	row := r.pool.QueryRow(ctx, query,
		it.ID, it.UserID, it.DeptID, strings.TrimSpace(it.Dept),
		strings.TrimSpace(it.Headline), strings.TrimSpace(it.Description), it.IssueType,
		it.Village, it.State, it.District, it.Taluk, it.CurrentStatus,
		it.IssueTime, it.IsAnonymous, evidence,
	)

	created, err := scanIssue(row)
	if err != nil {
		return Issue{}, apperr.Internal(err)
	}
	return created, nil
}

// Get fetches a non-deleted issue by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id = $1 AND is_deleted = FALSE`

	it, err := scanIssue(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Issue{}, apperr.NotFound("issue not found")
	}
	if err != nil {
		return Issue{}, apperr.Internal(err)
	}
	return it, nil
}

// Update persists mutable fields and marks the row edited.
func (r *Repository) Update(ctx context.Context, it Issue) (Issue, error) {
	const query = `
        UPDATE issues
        SET dept_id = $2, dept = $3, issue_headline = $4, issue_desc = $5, issue_type = $6,
            village = $7, state = $8, district = $9, taluk = $10, current_status = $11,
            is_anonymous = $12, evidence_url = $13, is_edited = TRUE
        WHERE id = $1 AND is_deleted = FALSE
        RETURNING ` + issueColumns

	evidence := it.EvidenceURL
	if evidence == nil {
		evidence = []string{}
	}

	row := r.pool.QueryRow(ctx, query,
		it.ID, it.DeptID, it.Dept, it.Headline, it.Description, it.IssueType,
		it.Village, it.State, it.District, it.Taluk, it.CurrentStatus,
		it.IsAnonymous, evidence,
	)

	updated, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Issue{}, apperr.NotFound("issue not found")
	}
	if err != nil {
		return Issue{}, apperr.Internal(err)
	}
	return updated, nil
}

// SoftDelete flags the issue deleted, keeping the row.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE issues SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("issue not found")
	}
	return nil
}

// List returns the feed window: non-deleted issues, AND-filtered, newest
// first with id as the deterministic tiebreak. The cursor bounds issue_time
// strictly below; page/limit still skip and cap rows.
func (r *Repository) List(ctx context.Context, f ListFilters, p Page) ([]Issue, error) {
	base := `SELECT ` + issueColumns + ` FROM issues`

	clauses := []string{"is_deleted = FALSE"}
	var args []any
	idx := 1

	if p.Cursor != nil {
		clauses = append(clauses, fmt.Sprintf("issue_time < $%d", idx))
		args = append(args, *p.Cursor)
		idx++
	}

	for _, filter := range []struct {
		column string
		value  string
	}{
		{"state", f.State},
		{"district", f.District},
		{"taluk", f.Taluk},
		{"village", f.Village},
		{"issue_type", f.IssueType},
		{"dept", f.Department},
	} {
		if filter.value == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", filter.column, idx))
		args = append(args, filter.value)
		idx++
	}

	p = p.Normalize()
	query := base + " WHERE " + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, p.Limit, (p.Page-1)*p.Limit)

	return r.queryIssues(ctx, query, args...)
}

// ListAdmin is the backoffice window: plain offset pagination.
func (r *Repository) ListAdmin(ctx context.Context, p Page) ([]Issue, error) {
	p = p.Normalize()
	query := `SELECT ` + issueColumns + ` FROM issues
        WHERE is_deleted = FALSE
        ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	return r.queryIssues(ctx, query, p.Limit, (p.Page-1)*p.Limit)
}

// Batch returns every non-deleted issue satisfying at least one populated
// criterion. With no criteria the full non-deleted set is returned; callers
// are expected to bound that themselves.
func (r *Repository) Batch(ctx context.Context, c Criteria) ([]Issue, error) {
	base := `SELECT ` + issueColumns + ` FROM issues WHERE is_deleted = FALSE`

	var ors []string
	var args []any
	idx := 1

	appendList := func(column string, value any, n int) {
		if n == 0 {
			return
		}
		ors = append(ors, fmt.Sprintf("%s = ANY($%d)", column, idx))
		args = append(args, value)
		idx++
	}

	appendList("user_id", c.UserIDs, len(c.UserIDs))
	appendList("dept_id", c.DeptIDs, len(c.DeptIDs))
	appendList("id", c.IssueIDs, len(c.IssueIDs))
	appendList("state", c.States, len(c.States))
	appendList("district", c.Districts, len(c.Districts))
	appendList("taluk", c.Taluks, len(c.Taluks))
	appendList("village", c.Villages, len(c.Villages))

	query := base
	if len(ors) > 0 {
		query += " AND (" + strings.Join(ors, " OR ") + ")"
	}
	query += " ORDER BY created_at DESC, id DESC"

	return r.queryIssues(ctx, query, args...)
}

func (r *Repository) queryIssues(ctx context.Context, query string, args ...any) ([]Issue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		it, err := scanIssue(rows)
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

// TopStates groups non-deleted issues by state, busiest first.
func (r *Repository) TopStates(ctx context.Context, limit int) ([]StateCount, error) {
	if limit <= 0 {
		limit = 3
	}

	const query = `
        SELECT state, COUNT(*) AS total
        FROM issues
        WHERE is_deleted = FALSE AND state <> ''
        GROUP BY state
        ORDER BY total DESC
        LIMIT $1
    `

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var out []StateCount
	for rows.Next() {
		var sc StateCount
		if err := rows.Scan(&sc.State, &sc.Count); err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, sc)
	}
	if rows.Err() != nil {
		return nil, apperr.Internal(rows.Err())
	}
	return out, nil
}

// StateCount is an aggregated issue volume per state.
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}
