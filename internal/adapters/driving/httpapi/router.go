package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter wires every route behind the standard middleware stack.
func NewRouter(h *Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Permissive CORS, matching the browser clients this API serves.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/knowledge-bases", func(r chi.Router) {
			r.Get("/", h.ListCollections)
			r.Post("/", h.CreateCollection)
			r.Post("/auto-build", h.AutoBuild)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetCollection)
				r.Post("/ingest/text", h.IngestText)
				r.Post("/ingest/file", h.IngestFile)
				r.Post("/query", h.QueryCollection)
				r.Get("/documents/{docID}", h.GetDocument)
				r.Get("/documents/{docID}/file", h.DownloadDocument)
			})
		})

		r.Post("/inference", h.Inference)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteNotFound(w, "endpoint not found")
	})

	return r
}

// requestLogger logs one line per request with the fields that matter for
// tracing a call through the audit log.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
