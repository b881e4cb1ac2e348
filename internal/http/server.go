package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tesoreria/internal/log"
	"tesoreria/internal/metrics"
	"tesoreria/internal/middleware/ratelimit"
	"tesoreria/internal/middleware/security"
	"tesoreria/internal/services"
)

// DefaultMaxImportBytes bounds an upload when Deps leaves it unset.
const DefaultMaxImportBytes = 10 << 20

// Deps are the collaborators the API serves.
type Deps struct {
	Imports   *services.ImportService
	Dashboard *services.DashboardService
	Reports   *services.ReportService
	Catalog   *services.CatalogService
	Metrics   *metrics.Metrics
	Logger    *log.Logger

	MaxImportBytes int64
	RateLimit      ratelimit.Config
	// Ready reports whether the backing store is reachable; nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	deps         Deps
	limiter      *ratelimit.Limiter
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default(log.ComponentHTTP)
	}
	if deps.MaxImportBytes <= 0 {
		deps.MaxImportBytes = DefaultMaxImportBytes
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
			IdleTimeout:       2 * time.Minute,
		},
		deps:      deps,
		limiter:   ratelimit.NewLimiter(deps.RateLimit),
		startedAt: time.Now(),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(realIP)
	r.Use(log.Middleware(s.deps.Logger.WithComponent(log.ComponentHTTP)))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(clientIP, s.onRateLimit))

		r.Get("/centers", s.handleCenters)
		r.Get("/movement-types", s.handleMovementTypes)

		r.Post("/imports", s.handleImport)
		r.Post("/imports/preview", s.handlePreview)

		r.Get("/transactions", s.handleTransactions)
		r.Get("/dashboard", s.handleDashboard)

		r.Get("/reports/{year}/{month}", s.handleReport)
		r.Post("/reports/{year}/{month}/publish", s.handlePublishReport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w, r)
	})
	return r
}

// observe logs every request and records its duration by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		s.deps.Metrics.RecordRequestDuration(route, strconv.Itoa(status), elapsed)
		log.LogHTTPEnd(r.Context(), r, status, elapsed.Milliseconds(), clientIP(r))
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w, r)
}

// Shutdown stops the rate limiter and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
