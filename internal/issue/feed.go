package issue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/janavani/api/internal/engage"
)

// ListSource is the relational read surface the feed depends on.
type ListSource interface {
	List(ctx context.Context, f ListFilters, p Page) ([]Issue, error)
	ListAdmin(ctx context.Context, p Page) ([]Issue, error)
}

// SaveFlags answers save-membership questions from the relational join table.
type SaveFlags interface {
	IsSaved(ctx context.Context, issueID, userID uuid.UUID) (bool, error)
	AnySaved(ctx context.Context, issueID uuid.UUID) (bool, error)
}

// Feed builds filtered, ordered, paginated listings from the relational
// store and enriches every row with counters from the engagement store.
type Feed struct {
	repo     ListSource
	counters engage.Counter
	saves    SaveFlags
}

// NewFeed wires the feed engine.
func NewFeed(repo ListSource, counters engage.Counter, saves SaveFlags) *Feed {
	return &Feed{repo: repo, counters: counters, saves: saves}
}

// List returns the enriched feed window for the viewing subject plus the
// cursor for the next page (issue_time of the last row). Errors never leak
// a partial window.
func (f *Feed) List(ctx context.Context, filters ListFilters, p Page, viewerID uuid.UUID) ([]Enriched, *time.Time, error) {
	issues, err := f.repo.List(ctx, filters, p)
	if err != nil {
		return nil, nil, err
	}

	out := make([]Enriched, 0, len(issues))
	for _, it := range issues {
		row, err := f.enrich(ctx, it, viewerID)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}

	var next *time.Time
	if len(issues) > 0 {
		last := issues[len(issues)-1].IssueTime
		next = &last
	}
	return out, next, nil
}

// ListAdmin returns the backoffice window: offset-paged issues with their
// support volume only.
func (f *Feed) ListAdmin(ctx context.Context, p Page) ([]AdminRow, error) {
	issues, err := f.repo.ListAdmin(ctx, p)
	if err != nil {
		return nil, err
	}

	out := make([]AdminRow, 0, len(issues))
	for _, it := range issues {
		supports, err := f.counters.Count(ctx, engage.IssueSupport, it.ID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, AdminRow{Issue: it, Supports: supports})
	}
	return out, nil
}

func (f *Feed) enrich(ctx context.Context, it Issue, viewerID uuid.UUID) (Enriched, error) {
	entityID := it.ID.String()

	views, err := f.counters.ViewCount(ctx, entityID)
	if err != nil {
		return Enriched{}, err
	}
	supports, err := f.counters.Count(ctx, engage.IssueSupport, entityID)
	if err != nil {
		return Enriched{}, err
	}
	shares, err := f.counters.Count(ctx, engage.IssueShare, entityID)
	if err != nil {
		return Enriched{}, err
	}
	likes, err := f.counters.Count(ctx, engage.IssueLike, entityID)
	if err != nil {
		return Enriched{}, err
	}

	saved, err := f.saves.IsSaved(ctx, it.ID, viewerID)
	if err != nil {
		return Enriched{}, err
	}
	supported, err := f.counters.IsSet(ctx, engage.IssueSupport, entityID, viewerID.String())
	if err != nil {
		return Enriched{}, err
	}

	return Enriched{
		Issue:       it,
		Views:       views,
		Supports:    supports,
		Shares:      shares,
		Likes:       likes,
		IsSaved:     saved,
		IsSupported: supported,
	}, nil
}

// logCounterDrift records a counter write that failed after its relational
// write committed. The stores are reconciled eventually, never rolled back.
func logCounterDrift(op string, entityID string, err error) {
	log.Warn().Str("op", op).Str("entity_id", entityID).Err(err).
		Msg("counter write failed after relational commit")
}
