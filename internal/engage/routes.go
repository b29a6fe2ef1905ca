package engage

import "github.com/go-chi/chi/v5"

// Mount registers the engagement routes.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
