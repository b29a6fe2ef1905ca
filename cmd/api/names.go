package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/janavani/api/internal/dept"
	"github.com/janavani/api/internal/user"
)

// nameSource bridges the profile and department repositories into the single
// name-resolution surface the batch filter consumes.
type nameSource struct {
	users *user.Repository
	depts *dept.Repository
}

func (n *nameSource) AuthorNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return n.users.AuthorNames(ctx, ids)
}

func (n *nameSource) DeptNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return n.depts.Names(ctx, ids)
}
