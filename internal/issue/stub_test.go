package issue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/janavani/api/internal/engage"
)

// stubCounter serves canned engagement numbers keyed by entity id.
type stubCounter struct {
	views     map[string]int64
	likes     map[string]int64
	supports  map[string]int64
	shares    map[string]int64
	supported map[string]bool
}

func newStubCounter() *stubCounter {
	return &stubCounter{
		views:     map[string]int64{},
		likes:     map[string]int64{},
		supports:  map[string]int64{},
		shares:    map[string]int64{},
		supported: map[string]bool{},
	}
}

func (s *stubCounter) Toggle(ctx context.Context, kind engage.EventKind, entityID, userID string) (bool, error) {
	return false, nil
}

func (s *stubCounter) RecordShare(ctx context.Context, entityID, userID, platform string) error {
	return nil
}

func (s *stubCounter) IncrementView(ctx context.Context, entityID string) error {
	s.views[entityID]++
	return nil
}

func (s *stubCounter) Count(ctx context.Context, kind engage.EventKind, entityID string) (int64, error) {
	switch kind {
	case engage.IssueLike:
		return s.likes[entityID], nil
	case engage.IssueSupport:
		return s.supports[entityID], nil
	case engage.IssueShare:
		return s.shares[entityID], nil
	}
	return 0, nil
}

func (s *stubCounter) ViewCount(ctx context.Context, entityID string) (int64, error) {
	return s.views[entityID], nil
}

func (s *stubCounter) IsSet(ctx context.Context, kind engage.EventKind, entityID, userID string) (bool, error) {
	return s.supported[entityID+"/"+userID], nil
}

func (s *stubCounter) DistinctPlatforms(ctx context.Context, entityID string) ([]string, error) {
	return nil, nil
}

func (s *stubCounter) TopSupported(ctx context.Context, limit int) ([]engage.EntityCount, error) {
	return nil, nil
}

// stubListSource records the arguments it was called with and returns a
// fixed window.
type stubListSource struct {
	issues      []Issue
	lastFilters ListFilters
	lastPage    Page
}

func (s *stubListSource) List(ctx context.Context, f ListFilters, p Page) ([]Issue, error) {
	s.lastFilters = f
	s.lastPage = p
	return s.issues, nil
}

func (s *stubListSource) ListAdmin(ctx context.Context, p Page) ([]Issue, error) {
	s.lastPage = p
	return s.issues, nil
}

// stubSaves answers save membership from fixed sets.
type stubSaves struct {
	savedBy map[uuid.UUID]uuid.UUID
}

func (s *stubSaves) IsSaved(ctx context.Context, issueID, userID uuid.UUID) (bool, error) {
	return s.savedBy[issueID] == userID, nil
}

func (s *stubSaves) AnySaved(ctx context.Context, issueID uuid.UUID) (bool, error) {
	_, ok := s.savedBy[issueID]
	return ok, nil
}

func testIssue(t time.Time) Issue {
	return Issue{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Headline:  "streetlight out",
		IssueTime: t,
		CreatedAt: t,
	}
}
