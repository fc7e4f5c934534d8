// Package http exposes the household ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"housebudget/internal/cache"
	"housebudget/internal/ledger"
	"housebudget/internal/log"
	"housebudget/internal/middleware/ratelimit"
	"housebudget/internal/middleware/security"
	"housebudget/internal/middleware/trace"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	cacheSweepEvery   = 10 * time.Minute
)

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	CacheSize    int
	CacheTTL     time.Duration
	RateLimitRPM int
	Logger       *log.Logger
	Clock        func() time.Time
}

type Server struct {
	http.Server
	svc      *ledger.Service
	logger   *log.Logger
	now      func() time.Time
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	// Rendered analytics keyed by ledger revision, path and query
	responses *cache.LRUCache[cache.Response]
	caches    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *ledger.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:       svc,
		logger:    logger,
		now:       opts.Clock,
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM}),
		responses: cache.NewLRUCache[cache.Response](opts.CacheSize, opts.CacheTTL),
		caches:    cache.NewManager(opts.Logger),
	}
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)
	s.caches.Register(s.responses)
	s.caches.StartCleanup(cacheSweepEvery)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware(s.logger))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, handleRateLimited))
		r.Use(middleware.Compress(5))

		r.Get("/ledger", s.handleLedger)
		r.Post("/onboarding", s.handleOnboarding)
		r.Put("/current-month", s.handleSetCurrentMonth)

		r.Get("/household", s.handleGetHousehold)
		r.Put("/household", s.handleSetHousehold)

		r.Post("/members", s.handleAddMember)
		r.Put("/members/{id}", s.handleUpdateMember)
		r.Delete("/members/{id}", s.handleDeleteMember)

		r.Post("/income-sources", s.handleAddIncomeSource)
		r.Put("/income-sources/{id}", s.handleUpdateIncomeSource)
		r.Delete("/income-sources/{id}", s.handleDeleteIncomeSource)

		r.Post("/categories", s.handleAddCategory)
		r.Put("/categories/{id}", s.handleUpdateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Post("/monthly-categories", s.handleAddMonthlyCategory)
		r.Put("/monthly-categories/{id}", s.handleUpdateMonthlyCategory)

		r.Post("/incomes", s.handleAddIncome)
		r.Put("/incomes/{id}", s.handleUpdateIncome)
		r.Delete("/incomes/{id}", s.handleDeleteIncome)

		r.Post("/expenses", s.handleAddExpense)
		r.Put("/expenses/{id}", s.handleUpdateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)

		r.Get("/savings-goals", s.cached(s.savingsGoals))
		r.Post("/savings-goals", s.handleAddSavingsGoal)
		r.Post("/savings-goals/{id}/contributions", s.handleAddContribution)

		r.Get("/alerts", s.handleAlerts)
		r.Post("/alerts/{id}/dismiss", s.handleDismissAlert)

		r.Route("/months/{month}", func(r chi.Router) {
			r.Post("/", s.handleMaterializeMonth)
			r.Get("/", s.cached(s.monthData))
			r.Get("/summary", s.cached(s.monthSummary))
			r.Get("/spending", s.cached(s.monthSpending))
			r.Get("/income-breakdown", s.cached(s.monthIncomeBreakdown))
			r.Get("/carry-over", s.cached(s.monthCarryOver))
		})

		r.Get("/analytics/{view}", s.cached(s.analyticsView))

		r.Get("/transactions", s.handleTransactions)
		r.Get("/transactions/options", s.handleTransactionOptions)

		r.Get("/export/{kind}", s.handleExport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusNotFound).Error("route not found", "").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusMethodNotAllowed).Error("method not allowed", "").Write(w)
	})
	return r
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports the loaded revision and how many saves failed since
// start. The service always serves from memory, so it is always ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()
	NewJSONResponse().Body(map[string]any{
		"status":          "ready",
		"revision":        snap.Revision,
		"onboarded":       snap.OnboardingCompleted,
		"persistFailures": s.svc.PersistFailures(),
	}).Write(w)
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Error("rate limit exceeded, please try again later", "").
		Write(w)
}
