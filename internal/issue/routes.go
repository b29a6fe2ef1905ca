package issue

import "github.com/go-chi/chi/v5"

// Mount registers the issue routes.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

// MountAdmin registers the backoffice routes.
func MountAdmin(r chi.Router, handler *Handler) {
	handler.RegisterAdmin(r)
}
