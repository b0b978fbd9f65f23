package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spendlog/internal/log"
	"spendlog/internal/middleware/ratelimit"
	"spendlog/internal/middleware/security"
	"spendlog/internal/middleware/trace"
	"spendlog/internal/services"
	"spendlog/internal/sheets"
)

// Server is the JSON API server.
type Server struct {
	http.Server
	expenses *services.ExpenseService
	auth     *services.AuthService
	storage  sheets.Pinger
	logger   *log.Logger
	events   *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Expenses *services.ExpenseService
	Auth     *services.AuthService
	Storage  sheets.Pinger
	Logger   *log.Logger
}

// Options tune the middleware stack.
type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector(logger)
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		expenses:         deps.Expenses,
		auth:             deps.Auth,
		storage:          deps.Storage,
		logger:           logger,
		events:           log.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		startedAt:        time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(s.traceMiddleware.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.securityDetector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", trace.RequestIDHeader},
		ExposedHeaders:   []string{trace.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited))

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/signup", s.handleSignup)
			a.Post("/login", s.handleLogin)
			a.With(s.requireAuth).Get("/me", s.handleMe)
		})

		api.Route("/expenses", func(e chi.Router) {
			e.Use(s.requireAuth)
			e.Get("/", s.handleListExpenses)
			e.Post("/", s.handleCreateExpense)
			e.Get("/totals", s.handleTotals)
			e.Get("/hours", s.handleHours)
			e.Get("/options", s.handleOptions)
		})
	})

	return r
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
