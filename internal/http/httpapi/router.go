package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"postgen/internal/http/handlers"
	"postgen/internal/middleware"
)

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/", app.Root)
	r.Get("/health", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/generate", app.Generate)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", app.HistoryList)
			r.Get("/{id}", app.HistoryGet)
			r.Get("/{id}/download", app.HistoryDownload)
			r.Delete("/{id}", app.HistoryDelete)
		})

		r.Get("/test-runpod", app.TestRunpod)
		r.Get("/check-job/{endpoint_id}/{job_id}", app.CheckJob)
	})

	return r
}
