package insights

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpapi "github.com/janavani/api/internal/http"
)

// Provider serves the aggregated rankings.
type Provider interface {
	Top(ctx context.Context) (Top, error)
}

// Handler exposes the insights endpoint.
type Handler struct {
	service Provider
}

// NewHandler wires the insights handler.
func NewHandler(service Provider) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the insights endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/insights/top", h.getTop)
}

func (h *Handler) getTop(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.Top(r.Context())
	if err != nil {
		httpapi.WriteAppError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, top)
}
