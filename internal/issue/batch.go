package issue

import (
	"context"

	"github.com/google/uuid"

	"github.com/janavani/api/internal/engage"
)

// Criterion names reported in matched_on.
const (
	matchUserID   = "user_id"
	matchDeptID   = "dept_id"
	matchIssueID  = "issue_id"
	matchState    = "state"
	matchDistrict = "district"
	matchTaluk    = "taluk"
	matchVillage  = "village"
)

// BatchSource is the relational surface of the batch filter.
type BatchSource interface {
	Batch(ctx context.Context, c Criteria) ([]Issue, error)
}

// NameSource resolves denormalized author and department names.
type NameSource interface {
	AuthorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	DeptNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Batch answers multi-criteria filter requests: one OR-combined query, then
// per-row annotation of which criteria actually matched.
type Batch struct {
	repo     BatchSource
	names    NameSource
	counters engage.Counter
	saves    SaveFlags
}

// NewBatch wires the batch filter engine.
func NewBatch(repo BatchSource, names NameSource, counters engage.Counter, saves SaveFlags) *Batch {
	return &Batch{repo: repo, names: names, counters: counters, saves: saves}
}

// Filter returns every non-deleted issue satisfying at least one populated
// criterion, annotated with the full subset of criteria it satisfies. There
// is no single viewer, so enrichment carries counts and whether anyone
// saved the issue, but no per-viewer support flag. Empty criteria return
// the entire non-deleted set; bounding that is the caller's problem.
func (b *Batch) Filter(ctx context.Context, c Criteria) ([]Match, error) {
	issues, err := b.repo.Batch(ctx, c)
	if err != nil {
		return nil, err
	}

	authorNames, err := b.names.AuthorNames(ctx, collectAuthorIDs(issues))
	if err != nil {
		return nil, err
	}
	deptNames, err := b.names.DeptNames(ctx, collectDeptIDs(issues))
	if err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(issues))
	for _, it := range issues {
		entityID := it.ID.String()

		views, err := b.counters.ViewCount(ctx, entityID)
		if err != nil {
			return nil, err
		}
		supports, err := b.counters.Count(ctx, engage.IssueSupport, entityID)
		if err != nil {
			return nil, err
		}
		shares, err := b.counters.Count(ctx, engage.IssueShare, entityID)
		if err != nil {
			return nil, err
		}
		likes, err := b.counters.Count(ctx, engage.IssueLike, entityID)
		if err != nil {
			return nil, err
		}
		saved, err := b.saves.AnySaved(ctx, it.ID)
		if err != nil {
			return nil, err
		}

		m := Match{
			Issue:      it,
			MatchedOn:  matchedOn(it, c),
			AuthorName: authorNames[it.UserID],
			Views:      views,
			Supports:   supports,
			Shares:     shares,
			Likes:      likes,
			IsSaved:    saved,
		}
		if it.DeptID != nil {
			m.DeptName = deptNames[*it.DeptID]
		}
		out = append(out, m)
	}
	return out, nil
}

// matchedOn re-checks every criterion against the row independently; it is
// the full satisfied subset, not just the clause the OR happened to hit.
func matchedOn(it Issue, c Criteria) []string {
	var matched []string

	if containsUUID(c.UserIDs, it.UserID) {
		matched = append(matched, matchUserID)
	}
	if it.DeptID != nil && containsUUID(c.DeptIDs, *it.DeptID) {
		matched = append(matched, matchDeptID)
	}
	if containsUUID(c.IssueIDs, it.ID) {
		matched = append(matched, matchIssueID)
	}
	if containsString(c.States, it.State) {
		matched = append(matched, matchState)
	}
	if containsString(c.Districts, it.District) {
		matched = append(matched, matchDistrict)
	}
	if containsString(c.Taluks, it.Taluk) {
		matched = append(matched, matchTaluk)
	}
	if containsString(c.Villages, it.Village) {
		matched = append(matched, matchVillage)
	}
	return matched
}

func containsUUID(values []uuid.UUID, v uuid.UUID) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func collectAuthorIDs(issues []Issue) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(issues))
	var ids []uuid.UUID
	for _, it := range issues {
		if _, ok := seen[it.UserID]; ok {
			continue
		}
		seen[it.UserID] = struct{}{}
		ids = append(ids, it.UserID)
	}
	return ids
}

func collectDeptIDs(issues []Issue) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(issues))
	var ids []uuid.UUID
	for _, it := range issues {
		if it.DeptID == nil {
			continue
		}
		if _, ok := seen[*it.DeptID]; ok {
			continue
		}
		seen[*it.DeptID] = struct{}{}
		ids = append(ids, *it.DeptID)
	}
	return ids
}
