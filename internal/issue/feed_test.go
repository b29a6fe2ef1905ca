package issue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFeedListEnrichesAndReturnsCursor(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	first := testIssue(now)
	second := testIssue(now.Add(-time.Hour))

	repo := &stubListSource{issues: []Issue{first, second}}
	counters := newStubCounter()
	counters.views[first.ID.String()] = 7
	counters.supports[first.ID.String()] = 3
	counters.shares[first.ID.String()] = 2
	counters.likes[first.ID.String()] = 5

	viewer := uuid.New()
	counters.supported[first.ID.String()+"/"+viewer.String()] = true
	saves := &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{first.ID: viewer}}

	feed := NewFeed(repo, counters, saves)

	rows, next, err := feed.List(context.Background(), ListFilters{State: "Karnataka"}, Page{Limit: 10}, viewer)
	if err != nil {
		t.Fatal(err)
	}

	if repo.lastFilters.State != "Karnataka" {
		t.Errorf("filters not forwarded: %+v", repo.lastFilters)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	got := rows[0]
	if got.Views != 7 || got.Supports != 3 || got.Shares != 2 || got.Likes != 5 {
		t.Errorf("counters = %+v", got)
	}
	if !got.IsSaved || !got.IsSupported {
		t.Errorf("viewer flags = saved %v supported %v", got.IsSaved, got.IsSupported)
	}

	bare := rows[1]
	if bare.Views != 0 || bare.IsSaved || bare.IsSupported {
		t.Errorf("unengaged row enriched: %+v", bare)
	}

	if next == nil {
		t.Fatal("next cursor missing")
	}
	if !next.Equal(second.IssueTime) {
		t.Errorf("cursor = %s, want issue_time of last row %s", next, second.IssueTime)
	}
}

func TestFeedListEmptyWindow(t *testing.T) {
	feed := NewFeed(&stubListSource{}, newStubCounter(), &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{}})

	rows, next, err := feed.List(context.Background(), ListFilters{}, Page{}, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d", len(rows))
	}
	if next != nil {
		t.Errorf("cursor on empty window: %s", next)
	}
}

func TestFeedListAdmin(t *testing.T) {
	now := time.Now().UTC()
	it := testIssue(now)

	repo := &stubListSource{issues: []Issue{it}}
	counters := newStubCounter()
	counters.supports[it.ID.String()] = 12

	feed := NewFeed(repo, counters, &stubSaves{savedBy: map[uuid.UUID]uuid.UUID{}})

	rows, err := feed.ListAdmin(context.Background(), Page{Limit: 50, Page: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Supports != 12 {
		t.Errorf("supports = %d, want 12", rows[0].Supports)
	}
	if repo.lastPage.Limit != 50 || repo.lastPage.Page != 2 {
		t.Errorf("page not forwarded: %+v", repo.lastPage)
	}
}

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        Page
		wantLimit int
		wantPage  int
	}{
		{"defaults", Page{}, 10, 1},
		{"zero limit defaults", Page{Limit: 0, Page: 3}, 10, 3},
		{"negative limit defaults", Page{Limit: -5, Page: 1}, 10, 1},
		{"over cap clamps to 100", Page{Limit: 500, Page: 1}, 100, 1},
		{"negative page", Page{Limit: 25, Page: -2}, 25, 1},
		{"at cap", Page{Limit: 100, Page: 4}, 100, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Limit != tc.wantLimit || got.Page != tc.wantPage {
				t.Errorf("normalize = %+v, want limit %d page %d", got, tc.wantLimit, tc.wantPage)
			}
		})
	}
}
