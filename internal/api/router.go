package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/skincare-api/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the collaborators the HTTP surface dispatches to.
type RouterConfig struct {
	Recommender Recommender
	Submitter   TaskSubmitter
	Tasks       TaskReader
	// Tokens enables bearer authentication on the task and recommendation
	// routes when non-nil.
	Tokens         middleware.TokenValidator
	PanicReporter  middleware.PanicReporter
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewRouter builds the chi router with the standard middleware chain and
// every route registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.TraceMiddleware(cfg.Logger))
	r.Use(middleware.CORS)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(cfg.PanicReporter))

	r.Get("/", Root)
	r.Get("/health", Health)
	r.Handle("/metrics", promhttp.Handler())

	recommendHandler := NewRecommendHandler(cfg.Recommender, cfg.Logger)
	uploadHandler := NewUploadHandler(cfg.Submitter, cfg.MaxUploadBytes, cfg.Logger)
	resultHandler := NewResultHandler(cfg.Tasks, cfg.Logger)

	r.Group(func(r chi.Router) {
		if cfg.Tokens != nil {
			r.Use(middleware.NewAuthMiddleware(cfg.Tokens).Authenticate)
		}
		r.Post("/recommend", recommendHandler.Recommend)
		r.Post("/upload", uploadHandler.Upload)
		r.Get("/result/{"+TaskIDParam+"}", resultHandler.Result)
	})

	return r
}
