package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	cases := []struct {
		name     string
		identity Identity
		ownerID  uuid.UUID
		allowed  bool
	}{
		{"owner on own resource", Identity{Subject: owner}, owner, true},
		{"admin on foreign resource", Identity{Subject: stranger, Role: "admin"}, owner, true},
		{"admin role case-insensitive", Identity{Subject: stranger, Role: "ADMIN"}, owner, true},
		{"admin on own resource", Identity{Subject: owner, Role: "admin"}, owner, true},
		{"stranger denied", Identity{Subject: stranger}, owner, false},
		{"citizen role denied", Identity{Subject: stranger, Role: "citizen"}, owner, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.identity, tc.ownerID)
			if tc.allowed && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tc.allowed && !apperr.Is(err, apperr.KindForbidden) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}
