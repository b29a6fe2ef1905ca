package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/db"
)

// Repository provides access to users and profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertByEmail returns the user for the asserted email, creating the row on
// first login and refreshing the provider subject on every login.
func (r *Repository) UpsertByEmail(ctx context.Context, email, providerSubject string) (User, error) {
	const query = `
        INSERT INTO users (id, email, google_id, created_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (email) DO UPDATE SET google_id = EXCLUDED.google_id
        RETURNING id, email, google_id, created_at
    `

	var u User
	err := r.pool.QueryRow(ctx, query, uuid.New(), email, providerSubject).
		Scan(&u.ID, &u.Email, &u.GoogleID, &u.CreatedAt)
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	return u, nil
}

// GetByID fetches a user row.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	const query = `SELECT id, email, google_id, created_at FROM users WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.GoogleID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	return u, nil
}

// CreateProfile onboards a user exactly once.
func (r *Repository) CreateProfile(ctx context.Context, p Profile) error {
	const query = `
        INSERT INTO profiles (user_id, fullname, role, following_users, following_issues, following_depts, following_locations)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := r.pool.Exec(ctx, query,
		p.UserID, p.FullName, p.Role,
		emptyIfNil(p.FollowingUsers), emptyIfNil(p.FollowingIssues),
		emptyIfNil(p.FollowingDepts), emptyIfNil(p.FollowingLocations),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("user already onboarded")
		}
		return apperr.Internal(err)
	}
	return nil
}

// GetProfile fetches the profile for a subject.
func (r *Repository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	const query = `
        SELECT user_id, fullname, role, following_users, following_issues, following_depts, following_locations
        FROM profiles
        WHERE user_id = $1
    `

	var p Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FullName, &p.Role,
		&p.FollowingUsers, &p.FollowingIssues, &p.FollowingDepts, &p.FollowingLocations,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return Profile{}, apperr.Internal(err)
	}
	return p, nil
}

// UpdateProfile changes fullname and role.
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, role string) error {
	const query = `UPDATE profiles SET fullname = $2, role = $3 WHERE user_id = $1`

	cmd, err := r.pool.Exec(ctx, query, userID, fullName, role)
	if err != nil {
		return apperr.Internal(err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFound("profile not found")
	}
	return nil
}

// GetFollowing reads the following lists for the subject.
func (r *Repository) GetFollowing(ctx context.Context, userID uuid.UUID) (Following, error) {
	p, err := r.GetProfile(ctx, userID)
	if err != nil {
		return Following{}, err
	}
	return Following{
		Users:     emptyIfNil(p.FollowingUsers),
		Issues:    emptyIfNil(p.FollowingIssues),
		Depts:     emptyIfNil(p.FollowingDepts),
		Locations: emptyIfNil(p.FollowingLocations),
	}, nil
}

// AddFollowing appends a value to one of the following lists, idempotently.
// The mutation and the existence check run in one transaction so a missing
// profile is reported consistently.
func (r *Repository) AddFollowing(ctx context.Context, userID uuid.UUID, kind FollowKind, value string) error {
	column, err := followColumn(kind)
	if err != nil {
		return err
	}

	query := `
        UPDATE profiles
        SET ` + column + ` = array_append(` + column + `, $2)
        WHERE user_id = $1 AND NOT ($2 = ANY(` + column + `))
    `
	return r.mutateFollowing(ctx, query, userID, value)
}

// RemoveFollowing drops a value from one of the following lists.
func (r *Repository) RemoveFollowing(ctx context.Context, userID uuid.UUID, kind FollowKind, value string) error {
	column, err := followColumn(kind)
	if err != nil {
		return err
	}

	query := `
        UPDATE profiles
        SET ` + column + ` = array_remove(` + column + `, $2)
        WHERE user_id = $1
    `
	return r.mutateFollowing(ctx, query, userID, value)
}

func (r *Repository) mutateFollowing(ctx context.Context, query string, userID uuid.UUID, value string) error {
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, userID, value); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("profile not found")
		}
		return nil
	})
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return apperr.Internal(err)
	}
	return err
}

// AuthorNames resolves display names for a set of author ids in one query.
func (r *Repository) AuthorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	const query = `SELECT user_id, fullname FROM profiles WHERE user_id = ANY($1)`

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

func followColumn(kind FollowKind) (string, error) {
	switch kind {
	case FollowUser:
		return "following_users", nil
	case FollowIssue:
		return "following_issues", nil
	case FollowDept:
		return "following_depts", nil
	case FollowLocation:
		return "following_locations", nil
	}
	return "", apperr.Validation("unknown follow kind")
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
