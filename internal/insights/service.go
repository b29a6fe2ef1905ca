// Package insights serves the small discovery rankings shown on the home
// surface. Results are cached in Redis for a minute; every source query is
// cheap but the endpoint is hot.
package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/janavani/api/internal/dept"
	"github.com/janavani/api/internal/engage"
	"github.com/janavani/api/internal/issue"
)

const (
	cacheKeyTop = "insights:top"
	cacheTTL    = 60 * time.Second
)

// IssueStats is the relational aggregation surface.
type IssueStats interface {
	TopStates(ctx context.Context, limit int) ([]issue.StateCount, error)
}

// DeptStats is the department ranking surface.
type DeptStats interface {
	TopByVolume(ctx context.Context, limit int, desc bool) ([]dept.Ranked, error)
}

// Top is the ranking payload.
type Top struct {
	TopDepartments    []dept.Ranked        `json:"top_departments"`
	BottomDepartments []dept.Ranked        `json:"bottom_departments"`
	TopLocations      []issue.StateCount   `json:"top_locations"`
	TopIssues         []engage.EntityCount `json:"top_issues"`
}

// Service aggregates rankings across both stores.
type Service struct {
	issues   IssueStats
	depts    DeptStats
	counters engage.Counter
	cache    *redis.Client
}

// NewService wires the insights service. cache may be nil in tests.
func NewService(issues IssueStats, depts DeptStats, counters engage.Counter, cache *redis.Client) *Service {
	return &Service{issues: issues, depts: depts, counters: counters, cache: cache}
}

// Top returns the current rankings, from cache when fresh.
func (s *Service) Top(ctx context.Context) (Top, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKeyTop).Bytes(); err == nil {
			var cached Top
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	topDepts, err := s.depts.TopByVolume(ctx, 3, true)
	if err != nil {
		return Top{}, err
	}
	bottomDepts, err := s.depts.TopByVolume(ctx, 3, false)
	if err != nil {
		return Top{}, err
	}
	topLocations, err := s.issues.TopStates(ctx, 3)
	if err != nil {
		return Top{}, err
	}
	topIssues, err := s.counters.TopSupported(ctx, 3)
	if err != nil {
		return Top{}, err
	}

	result := Top{
		TopDepartments:    topDepts,
		BottomDepartments: bottomDepts,
		TopLocations:      topLocations,
		TopIssues:         topIssues,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKeyTop, payload, cacheTTL).Err()
		}
	}

	return result, nil
}
