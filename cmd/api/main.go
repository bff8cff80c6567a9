// Package main is the entry point for the support chatbot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/retailcx/support-chatbot/internal/analytics"
	"github.com/retailcx/support-chatbot/internal/backend"
	"github.com/retailcx/support-chatbot/internal/config"
	"github.com/retailcx/support-chatbot/internal/handler"
	"github.com/retailcx/support-chatbot/internal/middleware"
	natsclient "github.com/retailcx/support-chatbot/internal/nats"
	"github.com/retailcx/support-chatbot/internal/nlu"
	"github.com/retailcx/support-chatbot/internal/pipeline"
	"github.com/retailcx/support-chatbot/internal/respond"
	"github.com/retailcx/support-chatbot/internal/session"
	"github.com/retailcx/support-chatbot/pkg/logger"
	"github.com/retailcx/support-chatbot/pkg/tracing"
)

func main() {
	// Load .env in development; ignore absence in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting support chatbot API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-chatbot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Analytics is fire-and-forget, so an unreachable NATS server degrades
	// to log-only events rather than blocking startup.
	var sink analytics.Sink = analytics.NewLogSink(log)
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Warn("NATS unavailable, analytics events will be logged only", zap.Error(err))
	} else {
		defer natsClient.Close()
		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Warn("failed to ensure analytics stream, falling back to log sink", zap.Error(err))
		} else {
			sink = analytics.NewStreamSink(natsClient, streamManager, log)
		}
	}

	var lookup backend.Lookup
	if cfg.BackendBaseURL != "" {
		lookup = backend.NewHTTPLookup(cfg.BackendBaseURL, cfg.BackendAPIKey, cfg.BackendTimeout, log)
	} else {
		log.Info("no backend base URL configured, using fixture data")
		lookup = backend.NewMockLookup()
	}

	store := session.NewMemoryStore(cfg.ContextTTL, cfg.MaxTurnHistory)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSchedule, func() {
		if n := store.SweepExpired(); n > 0 {
			log.Info("swept expired sessions", zap.Int("count", n))
		}
	}); err != nil {
		log.Error("invalid sweep schedule", zap.String("schedule", cfg.SweepSchedule), zap.Error(err))
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	classifier := nlu.NewClassifier(cfg.IntentFloor, cfg.ContinuityBonus)
	selector := respond.NewSelector(respond.Options{
		EscalationThreshold: cfg.EscalationThreshold,
		LowConfidenceRepeat: cfg.LowConfidenceRepeat,
		MaxTurnsBeforeAgent: cfg.MaxTurnsBeforeAgent,
		RotationScope:       cfg.TemplateRotation,
		CompanyName:         cfg.CompanyName,
		LookupTimeout:       cfg.BackendTimeout,
	}, lookup, log)

	pipe := pipeline.New(classifier, selector, store, sink, log, cfg.MaxMessageLength)

	healthHandler := handler.NewHealthHandler(sink)
	chatHandler := handler.NewChatHandler(pipe, cfg.MaxMessageLength, log)
	sessionHandler := handler.NewSessionHandler(pipe)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Get("/intents", sessionHandler.Intents)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/history", sessionHandler.History)
			r.Delete("/", sessionHandler.Reset)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
