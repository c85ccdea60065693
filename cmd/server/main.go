package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/featureflags"
	"github.com/KarthikRajS32/vsurvey/internal/handler"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/infrastructure/logger"
	"github.com/KarthikRajS32/vsurvey/internal/observability/metrics"
	"github.com/KarthikRajS32/vsurvey/internal/observability/tracing"
	"github.com/KarthikRajS32/vsurvey/internal/repository"
	"github.com/KarthikRajS32/vsurvey/internal/security/audit"
	"github.com/KarthikRajS32/vsurvey/internal/security/middleware"
	"github.com/KarthikRajS32/vsurvey/internal/security/ratelimit"
	"github.com/KarthikRajS32/vsurvey/internal/service"
	"github.com/KarthikRajS32/vsurvey/pkg/config"
	"github.com/KarthikRajS32/vsurvey/pkg/database"
)

func main() {
	// 1. Load .env for local development, then configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting vsurvey server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Optional tracing, only active when an OTLP endpoint is configured
	shutdownTracing, err := tracing.Init(ctx, log, "vsurvey", cfg.Environment)
	if err != nil {
		log.Warn("tracing disabled", slog.String("error", err.Error()))
	}

	// 4. Document store
	store, err := docstore.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("failed to connect to document store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	// 5. Identity provider on Postgres
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to identity database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	provider := identity.NewProvider(pool.GetDB(), cfg.Credentials, log)
	if err := provider.EnsureSchema(ctx); err != nil {
		log.Error("failed to prepare identity schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Repositories
	clientRepo := repository.NewClientRepository(store, log)
	userRepo := repository.NewUserRepository(store, log)
	surveyRepo := repository.NewSurveyRepository(store, log)
	questionRepo := repository.NewQuestionRepository(store, log)
	assignmentRepo := repository.NewAssignmentRepository(store, log)
	responseRepo := repository.NewResponseRepository(store, log)

	// 7. Services
	enforceUnique := featureflags.Enabled("UNIQUE_INDEX")
	assignmentService := service.NewAssignmentService(assignmentRepo, clientRepo, enforceUnique, log)
	deletionService := service.NewDeletionService(
		provider, clientRepo, userRepo, assignmentRepo, responseRepo, surveyRepo, questionRepo, log,
	)

	// 8. Security components
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMin, time.Minute)
	defer rateLimiter.Stop()
	auditLogger := audit.NewLogger(log)

	// 9. Handlers
	rootHandler := handler.NewRootHandler()
	loginHandler := handler.NewLoginHandler(provider, log)
	userHandler := handler.NewUserHandler(userRepo, clientRepo, provider, log)
	questionHandler := handler.NewQuestionHandler(questionRepo, clientRepo, log)
	surveyHandler := handler.NewSurveyHandler(surveyRepo, clientRepo, log)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, log)
	responseHandler := handler.NewResponseHandler(responseRepo, clientRepo, log)
	clientHandler := handler.NewClientHandler(clientRepo, provider, cfg.SuperAdminEmail, cfg.SuperAdminID, auditLogger, log)
	deletionHandler := handler.NewDeletionHandler(deletionService, provider, cfg.SuperAdminEmail, auditLogger, log)
	feedHandler := handler.NewFeedHandler(provider, clientRepo, store, cfg.CORSAllowedOrigins, log)

	// 10. Routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rootHandler.Root)
	mux.HandleFunc("GET /health", rootHandler.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/auth/login", loginHandler.Login)

	mux.HandleFunc("POST /api/clients", clientHandler.Create)
	mux.HandleFunc("GET /api/clients", clientHandler.List)

	mux.HandleFunc("POST /api/users", userHandler.Create)
	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("GET /api/users/{uid}", userHandler.Get)
	mux.HandleFunc("PUT /api/users/{uid}", userHandler.Update)
	mux.HandleFunc("DELETE /api/users/{uid}", userHandler.Delete)
	mux.HandleFunc("DELETE /api/users/{uid}/auth", userHandler.DeleteAuth)

	mux.HandleFunc("POST /api/questions", questionHandler.Create)
	mux.HandleFunc("GET /api/questions", questionHandler.List)
	mux.HandleFunc("GET /api/questions/{id}", questionHandler.Get)
	mux.HandleFunc("PUT /api/questions/{id}", questionHandler.Update)
	mux.HandleFunc("DELETE /api/questions/{id}", questionHandler.Delete)

	mux.HandleFunc("POST /api/surveys", surveyHandler.Create)
	mux.HandleFunc("GET /api/surveys", surveyHandler.List)
	mux.HandleFunc("GET /api/surveys/{id}", surveyHandler.Get)
	mux.HandleFunc("PUT /api/surveys/{id}", surveyHandler.Update)
	mux.HandleFunc("DELETE /api/surveys/{id}", surveyHandler.Delete)

	mux.HandleFunc("POST /api/assignments", assignmentHandler.Create)
	mux.HandleFunc("GET /api/assignments", assignmentHandler.List)

	mux.HandleFunc("POST /api/responses", responseHandler.Create)
	mux.HandleFunc("GET /api/responses", responseHandler.List)

	mux.HandleFunc("DELETE /client", deletionHandler.DeleteClient)
	mux.HandleFunc("DELETE /user", deletionHandler.DeleteUser)
	mux.HandleFunc("DELETE /delete-user/{user_id}", deletionHandler.DeleteUserLegacy)

	mux.Handle("GET /ws/responses/{survey_id}", feedHandler)

	// Chain middleware: metrics -> CORS -> content type -> auth -> rate
	// limit. CORS answers OPTIONS preflight before any token check runs.
	root := metrics.HTTPMetricsMiddleware(mux)(
		middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(
			middleware.ValidateJSONContentType(log)(
				middleware.AuthMiddleware(provider, log)(
					middleware.RateLimitMiddleware(rateLimiter, log)(mux),
				),
			),
		),
	)

	// 11. HTTP server with graceful shutdown
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Bool("unique_index", enforceUnique),
		slog.Int("rate_limit_per_minute", cfg.RateLimitPerMin),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}
	log.Info("server stopped")
}

