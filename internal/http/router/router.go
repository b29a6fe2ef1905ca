// Package router assembles the HTTP surface: middleware chain, public and
// authenticated groups, and the admin subtree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/janavani/api/internal/auth"
	"github.com/janavani/api/internal/config"
	"github.com/janavani/api/internal/engage"
	httpapi "github.com/janavani/api/internal/http"
	"github.com/janavani/api/internal/http/middleware"
	"github.com/janavani/api/internal/insights"
	"github.com/janavani/api/internal/issue"
)

// Handlers groups the domain handlers mounted on the router.
type Handlers struct {
	Session  *httpapi.SessionHandler
	Profile  *httpapi.ProfileHandler
	Issues   *issue.Handler
	Engage   *engage.Handler
	Insights *insights.Handler
}

// New builds the complete router.
func New(cfg *config.Config, tokens *auth.Manager, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.Metrics)

	publicLimiter := middleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	subjectLimiter := middleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r.Group(func(pub chi.Router) {
		pub.Use(middleware.IPRateLimit(publicLimiter))

		pub.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httpapi.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		})
		pub.Handle("/metrics", middleware.MetricsHandler())

		h.Session.RegisterPublic(pub)
	})

	r.Group(func(priv chi.Router) {
		priv.Use(middleware.Auth(tokens))
		priv.Use(middleware.SubjectRateLimit(subjectLimiter))

		h.Session.RegisterPrivate(priv)
		h.Profile.RegisterRoutes(priv)
		issue.Mount(priv, h.Issues)
		engage.Mount(priv, h.Engage)
		h.Insights.RegisterRoutes(priv)

		priv.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin)
			issue.MountAdmin(admin, h.Issues)
		})
	})

	return r
}
