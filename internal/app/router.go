package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/rolodex-app/rolodex/internal/auth"
	"github.com/rolodex-app/rolodex/internal/contacts"
	"github.com/rolodex-app/rolodex/internal/observability"
	"github.com/rolodex-app/rolodex/internal/platform/ratelimit"
	"github.com/rolodex-app/rolodex/internal/users"
	"github.com/rolodex-app/rolodex/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	RedisClient     *redis.Client
	Metrics         *observability.Metrics
	AuthHandler     *auth.Handler
	AuthMiddleware  auth.Middleware
	ContactsHandler *contacts.Handler
	UsersHandler    *users.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		RedisClient: params.RedisClient,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	contactsLimit := 5
	if params.Config != nil && params.Config.ContactsRateLimit > 0 {
		contactsLimit = params.Config.ContactsRateLimit
	}

	// Everything behind the bearer-token gate shares the tighter per-IP
	// limit the contact routes carry.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireUser)
		r.Use(ratelimit.Limit(contactsLimit, time.Minute, params.RedisClient, params.Logger, "rl:contacts"))
		params.ContactsHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
