package issue

import (
	"time"

	"github.com/google/uuid"
)

// Issue is the relational entity of record. Rows are never hard-deleted;
// is_deleted hides them from every read path.
type Issue struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	DeptID        *uuid.UUID `json:"dept_id,omitempty"`
	Dept          string     `json:"dept"`
	Headline      string     `json:"issue_headline"`
	Description   string     `json:"issue_desc"`
	IssueType     string     `json:"issue_type"`
	Village       string     `json:"village"`
	State         string     `json:"state"`
	District      string     `json:"district"`
	Taluk         string     `json:"taluk"`
	CurrentStatus string     `json:"current_status"`
	IssueTime     time.Time  `json:"issue_time"`
	IsAnonymous   bool       `json:"is_anonymous"`
	EvidenceURL   []string   `json:"evidence_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	IsEdited      bool       `json:"is_edited"`
	IsDeleted     bool       `json:"-"`
}

// ListFilters are the optional equality filters of the feed, AND-combined
// when present.
type ListFilters struct {
	State      string
	District   string
	Taluk      string
	Village    string
	IssueType  string
	Department string
}

// Page carries both pagination modes. Cursor bounds issue_time strictly
// below and is the canonical strategy; page/limit offset survives for
// compatibility with older clients and still applies for skip/limit when a
// cursor is also present.
type Page struct {
	Limit  int
	Page   int
	Cursor *time.Time
}

// Normalize clamps the offsets to the documented bounds: a missing or
// non-positive limit falls back to the default, anything above the cap is
// clamped to it.
func (p Page) Normalize() Page {
	if p.Limit < 1 {
		p.Limit = 10
	} else if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Criteria is the request-scoped input of the batch filter: disjoint
// candidate sets, OR-combined across every non-empty list.
type Criteria struct {
	UserIDs   []uuid.UUID `json:"user_ids"`
	DeptIDs   []uuid.UUID `json:"dept_ids"`
	IssueIDs  []uuid.UUID `json:"issue_ids"`
	States    []string    `json:"states"`
	Districts []string    `json:"districts"`
	Taluks    []string    `json:"taluks"`
	Villages  []string    `json:"villages"`
}

// Empty reports whether no criterion list is populated.
func (c Criteria) Empty() bool {
	return len(c.UserIDs) == 0 && len(c.DeptIDs) == 0 && len(c.IssueIDs) == 0 &&
		len(c.States) == 0 && len(c.Districts) == 0 && len(c.Taluks) == 0 && len(c.Villages) == 0
}

// Enriched is a feed row merged with engagement counters and viewer flags.
type Enriched struct {
	Issue       Issue `json:"issue"`
	Views       int64 `json:"views"`
	Supports    int64 `json:"supports"`
	Shares      int64 `json:"shares"`
	Likes       int64 `json:"likes"`
	IsSaved     bool  `json:"is_saved"`
	IsSupported bool  `json:"is_supported"`
}

// Match is a batch filter row: the issue, which criteria it satisfies, and
// the same counter enrichment minus viewer-specific flags.
type Match struct {
	Issue      Issue    `json:"issue"`
	MatchedOn  []string `json:"matched_on"`
	AuthorName string   `json:"author_name"`
	DeptName   string   `json:"dept_name"`
	Views      int64    `json:"views"`
	Supports   int64    `json:"supports"`
	Shares     int64    `json:"shares"`
	Likes      int64    `json:"likes"`
	IsSaved    bool     `json:"is_saved"`
}

// AdminRow is the backoffice listing: issue plus support volume.
type AdminRow struct {
	Issue    Issue `json:"issue"`
	Supports int64 `json:"supports"`
}
