package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/decartgilad/decart-video-processor/internal/http/handlers"
	"github.com/decartgilad/decart-video-processor/internal/infra"
	"github.com/decartgilad/decart-video-processor/internal/middleware"
)

// Options tunes the cross-cutting middleware.
type Options struct {
	Logger          infra.Logger
	RateLimitPerMin int
	AllowedOrigins  []string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	// Submissions call the remote API, so they share a per-client budget.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		r.Post("/process_video", app.ProcessVideo)
		r.Post("/process_csv", app.ProcessCSV)
	})

	r.Get("/static/videos/{filename}", app.ServePreview)

	r.Route("/output_videos", func(r chi.Router) {
		r.Get("/", app.ListArchive)
		r.Get("/bundle.zip", app.ArchiveBundle)
		r.Get("/{filename}", app.ServeArchive)
	})

	return r
}
