package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mandap-rentals/mandap-server/internal/app"
	"github.com/mandap-rentals/mandap-server/internal/audit"
	"github.com/mandap-rentals/mandap-server/internal/auth"
	"github.com/mandap-rentals/mandap-server/internal/billing"
	"github.com/mandap-rentals/mandap-server/internal/customers"
	"github.com/mandap-rentals/mandap-server/internal/events"
	"github.com/mandap-rentals/mandap-server/internal/inventory"
	"github.com/mandap-rentals/mandap-server/internal/platform/db"
	"github.com/mandap-rentals/mandap-server/internal/rbac"
	"github.com/mandap-rentals/mandap-server/internal/rentals"
	"github.com/mandap-rentals/mandap-server/internal/roles"
	"github.com/mandap-rentals/mandap-server/internal/shared"
	"github.com/mandap-rentals/mandap-server/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessions := shared.NewSessionManager(redisClient, cfg.SessionTTL)
	auditLogger := shared.NewAuditLogger(pool)
	auditService := audit.NewService(pool)

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessions)

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Source: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService)

	usersService := users.NewService(users.NewRepository(pool), sessions)
	usersHandler := users.NewHandler(logger, usersService, rbacService)
	rolesHandler := roles.NewHandler(logger, rbacService)

	customersService := customers.NewService(logger, customers.NewRepository(pool), auditLogger)
	customersHandler := customers.NewHandler(logger, customersService, auditService)

	inventoryService := inventory.NewService(logger, inventory.NewRepository(pool))
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	rentalsService := rentals.NewService(logger, rentals.NewRepository(pool), auditLogger)
	rentalsHandler := rentals.NewHandler(logger, rentalsService, auditService)

	billingService := billing.NewService(logger, billing.NewRepository(pool), auditLogger)
	billingHandler := billing.NewHandler(logger, billingService)

	eventsService := events.NewService(logger, events.NewRepository(pool))
	eventsHandler := events.NewHandler(logger, eventsService)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Sessions:           sessions,
		RBAC:               rbacMiddleware,
		AuthHandler:        authHandler,
		CustomersHandler:   customersHandler,
		InventoryHandler:   inventoryHandler,
		RentalsHandler:     rentalsHandler,
		BillingHandler:     billingHandler,
		EventsHandler:      eventsHandler,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
