package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httphandler "performer-marketplace/internal/adapters/http"
	"performer-marketplace/internal/adapters/messaging/kafka"
	"performer-marketplace/internal/adapters/messaging/mock"
	"performer-marketplace/internal/adapters/storage/postgres"
	"performer-marketplace/internal/adapters/storage/redis"
	"performer-marketplace/internal/app"
	"performer-marketplace/internal/config"
	"performer-marketplace/internal/core/ports"
	"performer-marketplace/internal/observability"
)

func main() {
	// --- 1. Configuration and Logging ---
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fallbackLogger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("Application starting", "env", cfg.App.Env, "port", cfg.Server.Port)

	// --- 2. Validate critical config ---
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		logger.Error("JWT secret is not set")
		os.Exit(1)
	}

	// --- 3. Observability ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLP.Endpoint, "booking-api")
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("Failed to shutdown tracer", "error", err)
		}
	}()

	// --- 4. Dependencies ---
	ctx := context.Background()

	store, err := postgres.NewStore(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Connected to PostgreSQL")

	// Redis
	rateLimiterRepo, err := redis.NewRateLimiterAdapter(cfg.Redis.Addr)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rateLimiterRepo.Close(); err != nil {
			logger.Warn("Failed to close Redis connection", "error", err)
		}
	}()

	// Kafka. Without a broker the API still serves; notifications are
	// best-effort and fall back to a logging notifier.
	var notifier ports.Notifier
	kafkaNotifier, err := kafka.NewNotifier([]string{cfg.Kafka.BootstrapServers}, cfg.Kafka.NotificationsTopic, logger)
	if err != nil {
		logger.Warn("Kafka unavailable, notifications will only be logged", "error", err)
		notifier = mock.NewNotifier(logger)
	} else {
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		logger.Info("Kafka notifier created", "topic", cfg.Kafka.NotificationsTopic)
	}

	// --- 5. Service Layer ---
	accountService := app.NewAccountService(store, logger)
	bookingService := app.NewBookingService(store, notifier, cfg.Fees, logger)
	referralService := app.NewReferralService(store, logger)
	vettingService := app.NewVettingService(store, notifier, logger)
	catalogService := app.NewCatalogService(store, logger)

	authHandler := httphandler.NewAuthHandler(accountService, []byte(jwtSecret), logger)
	bookingHandler := httphandler.NewBookingHandler(bookingService, logger)
	referralHandler := httphandler.NewReferralHandler(referralService, logger)
	vettingHandler := httphandler.NewVettingHandler(vettingService, logger)
	catalogHandler := httphandler.NewCatalogHandler(catalogService, logger)

	rateLimitMiddleware := httphandler.NewRateLimitMiddleware(rateLimiterRepo, cfg.RateLimit.Limit, cfg.RateLimit.Window(), logger)

	// Bearer verification: the built-in HS256 middleware by default, the
	// OIDC verifier when a provider is configured. Both resolve the same
	// Identity, so everything downstream is unaffected by the choice.
	authMiddleware := httphandler.JWTMiddleware([]byte(jwtSecret), logger)
	if cfg.OIDC.URL != "" {
		oidcAuth, err := httphandler.NewOIDCAuthenticator(ctx, cfg.OIDC.URL, cfg.OIDC.ClientID, logger)
		if err != nil {
			logger.Error("Failed to create OIDC authenticator", "error", err)
			os.Exit(1)
		}
		authMiddleware = oidcAuth.Middleware
		logger.Info("Using OIDC bearer verification", "provider", cfg.OIDC.URL)
	}

	// --- 6. HTTP Router ---
	r := chi.NewRouter()

	// Public middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		rateLimitMiddleware,
		middleware.Logger,
		middleware.Recoverer,
		observability.NewLoggerMiddleware(logger),
		observability.NewMetricsMiddleware("booking-api"),
		observability.NewTracingMiddleware("booking-api"),
	)

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "booking-api",
		}); err != nil {
			logger.Error("Failed to write health response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	// Protected routes: /api/v1/*
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/services", catalogHandler.Create)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.Create)
			r.Get("/{bookingID}", bookingHandler.Get)
			r.Post("/{bookingID}/decision", bookingHandler.Decide)
			r.Post("/{bookingID}/receipt", bookingHandler.SubmitReceipt)
			r.Post("/{bookingID}/verify-deposit", bookingHandler.VerifyDeposit)
		})

		r.Post("/referrals/{referralID}/paid", referralHandler.MarkPaid)

		r.Route("/vetting/applications", func(r chi.Router) {
			r.Post("/", vettingHandler.Submit)
			r.Post("/{applicationID}/review", vettingHandler.Review)
		})
	})

	// --- 7. HTTP Server ---
	serverAddr := cfg.Server.Port
	if serverAddr == "" {
		serverAddr = ":8080"
	}

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited properly")
}
