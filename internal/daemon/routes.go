package daemon

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler returns the HTTP API.
//
//   - GET    /healthz
//   - GET    /v1/status, /v1/events, /v1/stream
//   - GET    /v1/categories, /v1/series/{category}, /v1/forecast/{category}
//   - GET    /v1/simulate/{category}?delta=N
//   - GET    /v1/platforms?top=N, /v1/locations
//   - POST   /v1/sessions
//   - PUT    /v1/sessions/{id}/balances
//   - GET    /v1/sessions/{id}/risk?weekly=N
//   - DELETE /v1/sessions/{id}
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Get("/categories", s.handleCategories)
		r.Get("/series/{category}", s.handleSeries)
		r.Get("/forecast/{category}", s.handleForecast)
		r.Get("/simulate/{category}", s.handleSimulate)
		r.Get("/platforms", s.handlePlatforms)
		r.Get("/locations", s.handleLocations)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Put("/balances", s.handleSetBalances)
			r.Get("/risk", s.handleRisk)
		})
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
