package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/splitlyapp/splitly/internal/auth"
	"github.com/splitlyapp/splitly/internal/authz"
	"github.com/splitlyapp/splitly/internal/config"
	"github.com/splitlyapp/splitly/internal/database"
	"github.com/splitlyapp/splitly/internal/events"
	eventskafka "github.com/splitlyapp/splitly/internal/events/kafka"
	"github.com/splitlyapp/splitly/internal/expense"
	"github.com/splitlyapp/splitly/internal/group"
	"github.com/splitlyapp/splitly/internal/metrics"
	"github.com/splitlyapp/splitly/internal/notification"
	"github.com/splitlyapp/splitly/internal/user"
	"github.com/splitlyapp/splitly/pkg/logging"
	mw "github.com/splitlyapp/splitly/pkg/middleware"
)

// @title        Splitly API
// @version      1.0
// @description  Shared expense bookkeeping backend.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("connected to database")

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Event publisher; events are discarded when no broker is configured.
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		slog.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	// Identity
	tokenManager := auth.NewTokenManager(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Auth feature
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(userRepo, authRepo, tokenManager, collector)
	authHandler := auth.NewHandler(authService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Group feature; the group repository doubles as the membership source
	// for the authorization gate.
	groupRepo := group.NewRepository(db)
	gate := authz.NewGate(groupRepo)
	groupService := group.NewService(groupRepo, gate, notificationService, collector)
	groupHandler := group.NewHandler(groupService)

	// Expense feature
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, gate, publisher, notificationService, collector)
	expenseHandler := expense.NewHandler(expenseService)

	authmw := mw.Auth(tokenManager)
	rateLimiter := mw.NewRateLimiter(cfg.RateLimitPerMin)
	defer rateLimiter.Stop()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authmw))

		r.Group(func(r chi.Router) {
			r.Use(authmw)
			r.Use(rateLimiter.Middleware())

			r.Mount("/users", userHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
