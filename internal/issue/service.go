package issue

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
	"github.com/janavani/api/internal/auth"
)

// LifecycleStore is the write surface of the issue lifecycle.
type LifecycleStore interface {
	Create(ctx context.Context, it Issue) (Issue, error)
	Get(ctx context.Context, id uuid.UUID) (Issue, error)
	Update(ctx context.Context, it Issue) (Issue, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// Service owns the issue lifecycle. Every mutation is gated by the
// owner-or-admin policy.
type Service struct {
	repo LifecycleStore
}

// NewService creates the lifecycle service.
func NewService(repo LifecycleStore) *Service {
	return &Service{repo: repo}
}

// Input carries the caller-editable issue fields.
type Input struct {
	DeptID        *uuid.UUID `json:"dept_id"`
	Dept          string     `json:"dept"`
	Headline      string     `json:"issue_headline"`
	Description   string     `json:"issue_desc"`
	IssueType     string     `json:"issue_type"`
	Village       string     `json:"village"`
	State         string     `json:"state"`
	District      string     `json:"district"`
	Taluk         string     `json:"taluk"`
	CurrentStatus string     `json:"current_status"`
	IssueTime     *time.Time `json:"issue_time"`
	IsAnonymous   bool       `json:"is_anonymous"`
	EvidenceURL   []string   `json:"evidence_url"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Headline) == "" {
		return apperr.Validation("issue_headline is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperr.Validation("issue_desc is required")
	}
	return nil
}

// Create files a new issue owned by the authenticated subject.
func (s *Service) Create(ctx context.Context, identity auth.Identity, in Input) (Issue, error) {
	if err := in.validate(); err != nil {
		return Issue{}, err
	}

	issueTime := time.Now().UTC()
	if in.IssueTime != nil {
		issueTime = *in.IssueTime
	}

	status := in.CurrentStatus
	if status == "" {
		status = "Pending"
	}

	return s.repo.Create(ctx, Issue{
		ID:            uuid.New(),
		UserID:        identity.Subject,
		DeptID:        in.DeptID,
		Dept:          in.Dept,
		Headline:      in.Headline,
		Description:   in.Description,
		IssueType:     in.IssueType,
		Village:       in.Village,
		State:         in.State,
		District:      in.District,
		Taluk:         in.Taluk,
		CurrentStatus: status,
		IssueTime:     issueTime,
		IsAnonymous:   in.IsAnonymous,
		EvidenceURL:   in.EvidenceURL,
	})
}

// Update rewrites the editable fields of an issue the identity may mutate.
func (s *Service) Update(ctx context.Context, identity auth.Identity, id uuid.UUID, in Input) (Issue, error) {
	if err := in.validate(); err != nil {
		return Issue{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Issue{}, err
	}
	if err := auth.Authorize(identity, current.UserID); err != nil {
		return Issue{}, err
	}

	current.DeptID = in.DeptID
	current.Dept = in.Dept
	current.Headline = in.Headline
	current.Description = in.Description
	current.IssueType = in.IssueType
	current.Village = in.Village
	current.State = in.State
	current.District = in.District
	current.Taluk = in.Taluk
	if in.CurrentStatus != "" {
		current.CurrentStatus = in.CurrentStatus
	}
	current.IsAnonymous = in.IsAnonymous
	current.EvidenceURL = in.EvidenceURL

	return s.repo.Update(ctx, current)
}

// Delete soft-deletes an issue the identity may mutate.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id uuid.UUID) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.Authorize(identity, current.UserID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// Get fetches a single non-deleted issue.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Issue, error) {
	return s.repo.Get(ctx, id)
}
