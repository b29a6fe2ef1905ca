package auth

import (
	"github.com/google/uuid"

	"github.com/janavani/api/internal/apperr"
)

// Authorize decides whether an identity may act on a resource owned by
// ownerID: admins always may, owners may on their own resources, everyone
// else is denied. Pure function, evaluated per mutating request.
func Authorize(identity Identity, ownerID uuid.UUID) error {
	if identity.IsAdmin() {
		return nil
	}
	if identity.Subject == ownerID {
		return nil
	}
	return apperr.Forbidden("not authorized")
}
