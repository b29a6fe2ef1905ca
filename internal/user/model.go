package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account row created on first login.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	GoogleID  *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile carries onboarding data and the following lists that feed the
// batch filter.
type Profile struct {
	UserID             uuid.UUID `json:"user_id"`
	FullName           string    `json:"fullname"`
	Role               string    `json:"role"`
	FollowingUsers     []string  `json:"following_users"`
	FollowingIssues    []string  `json:"following_issues"`
	FollowingDepts     []string  `json:"following_depts"`
	FollowingLocations []string  `json:"following_locations"`
}

// Following is the criteria source for the following feed.
type Following struct {
	Users     []string `json:"following_users"`
	Issues    []string `json:"following_issues"`
	Depts     []string `json:"following_depts"`
	Locations []string `json:"following_locations"`
}

// FollowKind names a followable list on the profile.
type FollowKind string

const (
	FollowUser     FollowKind = "user"
	FollowIssue    FollowKind = "issue"
	FollowDept     FollowKind = "dept"
	FollowLocation FollowKind = "location"
)
