package issue

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubBatchSource struct {
	issues   []Issue
	criteria Criteria
}

func (s *stubBatchSource) Batch(ctx context.Context, c Criteria) ([]Issue, error) {
	s.criteria = c
	return s.issues, nil
}

type stubNames struct {
	authors map[uuid.UUID]string
	depts   map[uuid.UUID]string
}

func (s *stubNames) AuthorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.authors, nil
}

func (s *stubNames) DeptNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return s.depts, nil
}

func TestBatchFilterMatchedOn(t *testing.T) {
	now := time.Now().UTC()
	author := uuid.New()
	deptID := uuid.New()

	both := Issue{ID: uuid.New(), UserID: author, DeptID: &deptID, State: "Karnataka", IssueTime: now}
	stateOnly := Issue{ID: uuid.New(), UserID: uuid.New(), State: "Karnataka", IssueTime: now}

	repo := &stubBatchSource{issues: []Issue{both, stateOnly}}
	names := &stubNames{
		authors: map[uuid.UUID]string{author: "Ravi Kumar"},
		depts:   map[uuid.UUID]string{deptID: "Public Works"},
	}

	batch := NewBatch(repo, names, newStubCounter(), &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{}})

	criteria := Criteria{UserIDs: []uuid.UUID{author}, States: []string{"Karnataka"}}
	matches, err := batch.Filter(context.Background(), criteria)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	if want := []string{"user_id", "state"}; !reflect.DeepEqual(matches[0].MatchedOn, want) {
		t.Errorf("matched_on = %v, want %v", matches[0].MatchedOn, want)
	}
	if matches[0].AuthorName != "Ravi Kumar" {
		t.Errorf("author name = %q", matches[0].AuthorName)
	}
	if matches[0].DeptName != "Public Works" {
		t.Errorf("dept name = %q", matches[0].DeptName)
	}

	if want := []string{"state"}; !reflect.DeepEqual(matches[1].MatchedOn, want) {
		t.Errorf("matched_on = %v, want %v", matches[1].MatchedOn, want)
	}
	if matches[1].DeptName != "" {
		t.Errorf("dept name resolved without dept_id: %q", matches[1].DeptName)
	}
}

func TestBatchFilterAnySave(t *testing.T) {
	now := time.Now().UTC()
	it := testIssue(now)

	repo := &stubBatchSource{issues: []Issue{it}}
	saves := &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{it.ID: uuid.New()}}

	batch := NewBatch(repo, &stubNames{}, newStubCounter(), saves)

	matches, err := batch.Filter(context.Background(), Criteria{IssueIDs: []uuid.UUID{it.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("matches = %d", len(matches))
	}
	if !matches[0].IsSaved {
		t.Error("is_saved should reflect any subject's save")
	}
	if want := []string{"issue_id"}; !reflect.DeepEqual(matches[0].MatchedOn, want) {
		t.Errorf("matched_on = %v", matches[0].MatchedOn)
	}
}

func TestCriteriaEmpty(t *testing.T) {
	if !(Criteria{}).Empty() {
		t.Error("zero criteria should be empty")
	}
	if (Criteria{States: []string{"Goa"}}).Empty() {
		t.Error("populated criteria should not be empty")
	}
}
