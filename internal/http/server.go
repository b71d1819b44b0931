package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Clark-Hu/hotel-review-sentiment/internal/config"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/domain"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/metrics"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/repository"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/store"
	"github.com/Clark-Hu/hotel-review-sentiment/internal/summarize"
)

// Analyzer scores review text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) domain.SentimentResult
	ModelName() string
}

// Summarizer condenses a hotel's reviews.
type Summarizer interface {
	Summarize(ctx context.Context, req summarize.Request) domain.SummaryResult
	ModelName() string
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg        config.Config
	store      *store.Store
	repo       *repository.Repository
	analyzer   Analyzer
	summarizer Summarizer
	logger     *slog.Logger
	router     chi.Router
	httpSrv    *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, analyzer Analyzer, summarizer Summarizer, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(recordMetrics)

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		store:      st,
		repo:       repo,
		analyzer:   analyzer,
		summarizer: summarizer,
		logger:     logger,
		router:     r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router.Route("/hotels", func(r chi.Router) {
		r.Get("/", s.handleListHotels)
		r.Post("/", s.handleCreateHotel)
		r.Get("/{hotelID}", s.handleGetHotel)
	})
	s.router.Post("/reviews", s.handleCreateReview)
	s.router.Post("/analyze", s.handleAnalyze)
	s.router.Post("/summarize", s.handleSummarize)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type rootResponse struct {
	Message        string `json:"message"`
	SentimentModel string `json:"sentiment_model,omitempty"`
	SummaryModel   string `json:"summary_model,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, rootResponse{
		Message:        "Hotel Review Sentiment Analysis API",
		SentimentModel: s.analyzer.ModelName(),
		SummaryModel:   s.summarizer.ModelName(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// recordMetrics counts requests by chi route pattern so ids do not explode
// label cardinality.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordRequest(route, status)
	})
}
