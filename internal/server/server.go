package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/osmith/BadgeForge_Go/internal/catalog"
	"github.com/osmith/BadgeForge_Go/internal/database"
	"github.com/osmith/BadgeForge_Go/internal/evaluator"
	"github.com/osmith/BadgeForge_Go/internal/handler"
	"github.com/osmith/BadgeForge_Go/internal/leaderboard"
	"github.com/osmith/BadgeForge_Go/internal/logger"
	"github.com/osmith/BadgeForge_Go/internal/metrics"
	"github.com/osmith/BadgeForge_Go/internal/processor"
	"github.com/osmith/BadgeForge_Go/internal/queue"
	"github.com/osmith/BadgeForge_Go/internal/repository"
	"github.com/osmith/BadgeForge_Go/internal/wallet"
	"github.com/osmith/BadgeForge_Go/internal/webhook"
)

// Options carries everything the router needs. All fields are required
// except the feature flags.
type Options struct {
	Port              int
	EngineID          string
	SimulationEnabled bool
	CatalogStrict     bool

	DBPool    database.Pool
	Queue     *queue.Queue
	Catalog   *catalog.Catalog
	Events    repository.Event
	Rules     repository.Rule
	States    repository.UserState
	History   repository.RewardHistory
	Entities  repository.Entity
	Wallets   *wallet.Service
	Evaluator *evaluator.Evaluator
	Processor *processor.Processor
	Boards    *leaderboard.Projector
	Webhooks  *webhook.Service
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(opts Options) *Server {
	r := chi.NewRouter()

	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(opts.DBPool))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", handler.HandleIngestEvent(opts.Queue, opts.Catalog, opts.CatalogStrict))
			r.Get("/catalog", handler.HandleEventCatalog(opts.Catalog))
			r.Post("/sandbox/dry-run", handler.HandleDryRun(opts.Evaluator, opts.Catalog, opts.CatalogStrict, opts.SimulationEnabled))
			r.Get("/user/{userId}", handler.HandleGetEventsByUser(opts.Events))
			r.Get("/type/{eventType}", handler.HandleGetEventsByType(opts.Events))
			r.Get("/{id}", handler.HandleGetEvent(opts.Events))
		})

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", handler.HandleCreateRule(opts.Rules))
			r.Get("/", handler.HandleListRules(opts.Rules))
			r.Get("/{id}", handler.HandleGetRule(opts.Rules))
			r.Put("/{id}", handler.HandleUpdateRule(opts.Rules))
			r.Delete("/{id}", handler.HandleDeleteRule(opts.Rules))
			r.Post("/{id}/activate", handler.HandleSetRuleActive(opts.Rules, true))
			r.Post("/{id}/deactivate", handler.HandleSetRuleActive(opts.Rules, false))
		})

		r.Route("/badges", func(r chi.Router) {
			r.Post("/", handler.HandleCreateBadge(opts.Catalog))
			r.Get("/", handler.HandleListBadges(opts.Entities, false))
			r.Get("/visible", handler.HandleListBadges(opts.Entities, true))
			r.Get("/{id}", handler.HandleGetBadge(opts.Catalog))
			r.Put("/{id}", handler.HandleUpdateBadge(opts.Catalog))
			r.Delete("/{id}", handler.HandleDeleteBadge(opts.Catalog))
		})

		r.Route("/trophies", func(r chi.Router) {
			r.Post("/", handler.HandleCreateTrophy(opts.Catalog))
			r.Get("/", handler.HandleListTrophies(opts.Entities, false))
			r.Get("/visible", handler.HandleListTrophies(opts.Entities, true))
			r.Get("/{id}", handler.HandleGetTrophy(opts.Catalog))
			r.Put("/{id}", handler.HandleUpdateTrophy(opts.Catalog))
			r.Delete("/{id}", handler.HandleDeleteTrophy(opts.Catalog))
		})

		r.Route("/levels", func(r chi.Router) {
			r.Post("/", handler.HandleCreateLevel(opts.Catalog))
			r.Get("/", handler.HandleListLevels(opts.Entities))
			r.Get("/category/{category}", handler.HandleListLevelsByCategory(opts.Catalog))
			r.Get("/{id}", handler.HandleGetLevel(opts.Catalog))
			r.Put("/{id}", handler.HandleUpdateLevel(opts.Catalog))
			r.Delete("/{id}", handler.HandleDeleteLevel(opts.Catalog))
		})

		r.Route("/point-categories", func(r chi.Router) {
			r.Post("/", handler.HandleCreatePointCategory(opts.Catalog))
			r.Get("/", handler.HandleListPointCategories(opts.Catalog))
			r.Get("/{id}", handler.HandleGetPointCategory(opts.Catalog))
			r.Put("/{id}", handler.HandleUpdatePointCategory(opts.Catalog))
			r.Delete("/{id}", handler.HandleDeletePointCategory(opts.Catalog))
		})

		r.Route("/event-definitions", func(r chi.Router) {
			r.Post("/", handler.HandleCreateEventDefinition(opts.Catalog))
			r.Get("/", handler.HandleEventCatalog(opts.Catalog))
			r.Put("/{id}", handler.HandleUpdateEventDefinition(opts.Catalog))
			r.Delete("/{id}", handler.HandleDeleteEventDefinition(opts.Catalog))
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/state", handler.HandleGetUserState(opts.States))
			r.Get("/points", handler.HandleGetUserPoints(opts.Wallets))
			r.Get("/points/{category}", handler.HandleGetUserPointsByCategory(opts.Wallets))
			r.Get("/badges", handler.HandleGetUserBadges(opts.States, opts.Catalog))
			r.Get("/trophies", handler.HandleGetUserTrophies(opts.States, opts.Catalog))
			r.Get("/levels", handler.HandleGetUserLevels(opts.States, opts.Catalog))
			r.Get("/levels/{category}", handler.HandleGetUserLevelByCategory(opts.States, opts.Catalog))
			r.Get("/rewards/history", handler.HandleGetUserRewardHistory(opts.History))
		})

		r.Route("/wallet/users/{userId}", func(r chi.Router) {
			r.Get("/balances", handler.HandleGetWalletBalances(opts.Wallets))
			r.Get("/transactions/{category}", handler.HandleGetWalletTransactions(opts.Wallets))
			r.Post("/spend", handler.HandleSpend(opts.Wallets, opts.Boards))
			r.Post("/transfer", handler.HandleTransfer(opts.Wallets, opts.Boards))
		})

		r.Route("/leaderboards", func(r chi.Router) {
			r.Get("/", handler.HandleQueryLeaderboard(opts.Boards))
			r.Post("/refresh", handler.HandleRefreshLeaderboards(opts.Boards))
			r.Get("/user/{userId}/rank", handler.HandleGetUserRank(opts.Boards))
			r.Get("/{kind}", handler.HandleGetLeaderboard(opts.Boards))
			r.Get("/{kind}/{category}", handler.HandleGetLeaderboard(opts.Boards))
		})

		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", handler.HandleCreateWebhook(opts.Webhooks))
			r.Get("/", handler.HandleListWebhooks(opts.Webhooks))
			r.Get("/{id}", handler.HandleGetWebhook(opts.Webhooks))
			r.Put("/{id}", handler.HandleUpdateWebhook(opts.Webhooks))
			r.Delete("/{id}", handler.HandleDeleteWebhook(opts.Webhooks))
			r.Post("/{id}/test", handler.HandleTestWebhook(opts.Webhooks))
		})

		r.Get("/engine/status", handler.HandleEngineStatus(opts.EngineID, opts.Processor))
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: opts.DBPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info("Request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// RequestSizeLimitMiddleware rejects request bodies above maxBytes.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info("Server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
