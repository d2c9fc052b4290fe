package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/faroled/faro/internal/catalog"
	"github.com/faroled/faro/internal/config"
	"github.com/faroled/faro/internal/db"
	dbRedis "github.com/faroled/faro/internal/db/redis"
	logpkg "github.com/faroled/faro/internal/logger"
	"github.com/faroled/faro/internal/metrics"
	historyrepo "github.com/faroled/faro/internal/repository/history"
	leadsrepo "github.com/faroled/faro/internal/repository/leads"
	sessionrepo "github.com/faroled/faro/internal/repository/session"
	"github.com/faroled/faro/internal/transport/crm"
	"github.com/faroled/faro/internal/transport/httpapi"
	openaiGen "github.com/faroled/faro/internal/transport/openai"
	"github.com/faroled/faro/internal/usecase/chat"
	"github.com/faroled/faro/internal/usecase/faq"
	healthuc "github.com/faroled/faro/internal/usecase/health"
	"github.com/faroled/faro/internal/usecase/intent"
	leadsuc "github.com/faroled/faro/internal/usecase/leads"
	"github.com/faroled/faro/internal/usecase/search"
	"github.com/faroled/faro/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting faro API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("session_driver", cfg.Session.Driver),
	)

	// Register chat metrics explicitly (no init())
	metrics.RegisterChatMetrics()

	// Catalog index with content-hash rebuilds
	source := catalog.NewFileSource(cfg.Catalog.Path)
	index := catalog.NewCache(source, func() {
		metrics.IndexRebuildsTotal.Inc()
	})
	if snap, err := index.Get(); err != nil {
		// Start anyway: the feed may appear later, chat degrades until then.
		logger.Warn("Initial catalog load failed", zap.Error(err))
	} else {
		logger.Info("Catalog indexed",
			zap.Int("products", snap.DocCount),
			zap.String("hash", snap.Hash()),
		)
	}

	// Session and history stores based on driver
	sessionTTL := time.Duration(cfg.Session.TTLMin) * time.Minute
	var sessions chat.SessionStore
	var histStore historyStore
	var store db.Store
	switch cfg.Session.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Session.Addrs,
			Password: cfg.Session.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()
		if err := store.Ping(context.Background()); err != nil {
			logger.Fatal("Redis not reachable", zap.Error(err))
		}
		sessions = sessionrepo.NewRedis(store, sessionTTL)
		histStore = historyrepo.NewRedis(store)
	default:
		sessions = sessionrepo.NewMemory(sessionTTL)
		histStore = historyrepo.NewMemory()
	}

	// Language generator; without an API key every reply uses the local
	// fallback sentence.
	generator := openaiGen.NewGenerator(&openaiGen.Config{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	// Use case services
	searchSvc := search.New(search.Params{
		PageSize:          cfg.Search.PageSize,
		OverfetchFactor:   cfg.Search.OverfetchFactor,
		RequiredDFRatio:   cfg.Search.RequiredDFRatio,
		AcceptSim:         cfg.Search.AcceptSim,
		NameWeight:        search.DefaultParams().NameWeight,
		TagsWeight:        search.DefaultParams().TagsWeight,
		CategoryWeight:    search.DefaultParams().CategoryWeight,
		DescriptionWeight: search.DefaultParams().DescriptionWeight,
	})
	classifier := intent.NewClassifier(intent.Params{
		CoverageThreshold:  cfg.Intent.CoverageThreshold,
		SmalltalkMaxChars:  cfg.Intent.SmalltalkMaxChars,
		SmalltalkMaxTokens: cfg.Intent.SmalltalkMaxTokens,
		SeedTerms:          cfg.Intent.SeedTerms,
	})
	guards := intent.NewChain(intent.GuardConfig{
		CatalogKeywords:  cfg.Intent.CatalogKeywords,
		QuoteKeywords:    cfg.Intent.QuoteKeywords,
		CompetitorBrands: cfg.Intent.CompetitorBrands,
		CatalogURL:       cfg.Intent.CatalogURL,
		QuoteURL:         cfg.Intent.QuoteURL,
	})
	faqSvc := faq.New(faq.CompanyCard{})

	chatSvc := chat.New(
		sessions, histStore, generator, index, faqSvc,
		searchSvc, classifier, guards,
		chat.Config{
			Fallback:   cfg.Generation.Fallback,
			StyleGuide: cfg.Generation.StyleGuide,
			Tone:       cfg.Generation.Tone,
		},
		logger,
	)

	var forwarder leadsuc.Forwarder
	if cfg.Leads.WebhookURL != "" {
		forwarder = crm.NewWebhook(
			cfg.Leads.WebhookURL,
			time.Duration(cfg.Leads.TimeoutSec)*time.Second,
			logger,
		)
	}
	leadSvc := leadsuc.New(
		leadsrepo.NewMemory(), forwarder,
		time.Duration(cfg.Leads.TimeoutSec)*time.Second, logger,
	)

	// Health service; generation is only checked when an API key is set.
	var genChecker healthuc.GenerationChecker
	if cfg.Generation.APIKey != "" {
		genChecker = generator
	}
	healthSvc := healthuc.New(catalogHealthChecker{index: index}, genChecker)

	// HTTP server
	server := httpapi.NewServer(chatSvc, leadSvc, faqSvc, histStore, index, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// historyStore is what both the chat service and the HTTP API need from a
// history backend.
type historyStore interface {
	chat.HistoryWriter
	httpapi.HistoryReader
}

// catalogHealthChecker adapts the index cache to health.CatalogChecker.
type catalogHealthChecker struct {
	index *catalog.Cache
}

func (c catalogHealthChecker) Check(context.Context) error {
	_, err := c.index.Get()
	return err
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
