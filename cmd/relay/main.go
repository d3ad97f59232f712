package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/relaycrm/relay/internal/app"
	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/auth"
	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/dashboards"
	"github.com/relaycrm/relay/internal/payments"
	"github.com/relaycrm/relay/internal/plans"
	"github.com/relaycrm/relay/internal/platform/cache"
	"github.com/relaycrm/relay/internal/platform/db"
	"github.com/relaycrm/relay/internal/shared"
	"github.com/relaycrm/relay/internal/subscriptions"
	"github.com/relaycrm/relay/internal/superadmin"
	"github.com/relaycrm/relay/internal/users"
	"github.com/relaycrm/relay/jobs"
)

// gateSubscriptions adapts the subscription repository to the gate's view.
type gateSubscriptions struct {
	repo *subscriptions.Repository
}

func (g gateSubscriptions) FindByEmail(ctx context.Context, email string) (authz.Subscription, error) {
	sub, err := g.repo.FindByEmail(ctx, email)
	if err != nil {
		return authz.Subscription{}, err
	}
	return authz.Subscription{
		ID:        sub.ID,
		Email:     sub.Email,
		PlanID:    sub.PlanID,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		Active:    sub.Active,
	}, nil
}

func (g gateSubscriptions) SetActive(ctx context.Context, id string, active bool) error {
	return g.repo.SetActive(ctx, id, active)
}

// gatePlans adapts the plan catalog to the gate's view.
type gatePlans struct {
	catalog *plans.Catalog
}

func (g gatePlans) ByID(ctx context.Context, id string) (authz.Plan, error) {
	plan, err := g.catalog.ByID(ctx, id)
	if err != nil {
		return authz.Plan{}, err
	}
	return authz.Plan{ID: plan.ID, Name: plan.Name, DashboardsAllowed: plan.DashboardsAllowed}, nil
}

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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, plan cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo, logger)

	planRepo := plans.NewRepository(dbpool)
	planCatalog := plans.NewCatalog(planRepo, redisClient, cfg.PlanCacheTTL, logger)

	subRepo := subscriptions.NewRepository(dbpool)
	subService := subscriptions.NewService(subRepo, auditService)

	dashboardRepo := dashboards.NewRepository(dbpool)
	dashboardService := dashboards.NewService(dashboardRepo, auditService)

	userRepo := users.NewRepository(dbpool)
	userService := users.NewService(userRepo, dashboardRepo, auditService)

	gate := authz.NewGate(
		gateSubscriptions{repo: subRepo},
		gatePlans{catalog: planCatalog},
		dashboardRepo,
		logger,
	)
	gateMiddleware := authz.Middleware{Gate: gate}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	googleVerifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	authService := auth.NewService(userRepo, subRepo, gate, tokens, googleVerifier)
	authHandler := auth.NewHandler(logger, authService)
	authenticator := auth.NewAuthenticator(tokens, userRepo, logger)

	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	paymentService := payments.NewService(gateway, planCatalog, subRepo, idempotencyStore, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
	paymentHandler := payments.NewHandler(paymentService)

	dashboardHandler := dashboards.NewHandler(logger, dashboardService, gateMiddleware)
	userHandler := users.NewHandler(logger, userService, gateMiddleware)
	superAdminHandler := superadmin.NewHandler(logger, userService, subService, auditService, gateMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authenticator:     authenticator,
		AuthHandler:       authHandler,
		PaymentHandler:    paymentHandler,
		DashboardHandler:  dashboardHandler,
		UserHandler:       userHandler,
		SuperAdminHandler: superAdminHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
