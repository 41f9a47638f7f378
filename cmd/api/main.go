package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anacreonhq/anacreon-backend/api/routes"
	"github.com/anacreonhq/anacreon-backend/internal/audit"
	authsvc "github.com/anacreonhq/anacreon-backend/internal/auth"
	"github.com/anacreonhq/anacreon-backend/internal/businesses"
	"github.com/anacreonhq/anacreon-backend/internal/catalog"
	"github.com/anacreonhq/anacreon-backend/internal/expenditures"
	"github.com/anacreonhq/anacreon-backend/internal/images"
	"github.com/anacreonhq/anacreon-backend/internal/items"
	"github.com/anacreonhq/anacreon-backend/internal/orders"
	"github.com/anacreonhq/anacreon-backend/internal/stock"
	"github.com/anacreonhq/anacreon-backend/internal/users"
	"github.com/anacreonhq/anacreon-backend/pkg/config"
	"github.com/anacreonhq/anacreon-backend/pkg/db"
	"github.com/anacreonhq/anacreon-backend/pkg/logger"
	"github.com/anacreonhq/anacreon-backend/pkg/metrics"
	"github.com/anacreonhq/anacreon-backend/pkg/migrate"
	"github.com/anacreonhq/anacreon-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	workflowMetrics := metrics.NewWorkflowMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, workflowMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, workflowMetrics *metrics.WorkflowMetrics) (routes.Services, error) {
	gormDB := dbClient.DB()

	auditRepo := audit.NewRepository(gormDB)
	recorder, err := audit.NewRecorder(auditRepo, logg, workflowMetrics)
	if err != nil {
		return routes.Services{}, err
	}
	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		return routes.Services{}, err
	}

	userService, err := users.NewService(users.NewRepository(gormDB), cfg.Password)
	if err != nil {
		return routes.Services{}, err
	}
	authService, err := authsvc.NewService(userService, redisClient, cfg.JWT)
	if err != nil {
		return routes.Services{}, err
	}
	businessService, err := businesses.NewService(dbClient, businesses.NewRepository(gormDB), recorder)
	if err != nil {
		return routes.Services{}, err
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	itemRepo := items.NewRepository(gormDB)
	itemService, err := items.NewService(dbClient, itemRepo, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	imageService, err := images.NewService(images.NewRepository(gormDB), itemRepo)
	if err != nil {
		return routes.Services{}, err
	}
	stockService, err := stock.NewService(dbClient, stock.NewRepository(gormDB), itemRepo, recorder)
	if err != nil {
		return routes.Services{}, err
	}
	expenditureService, err := expenditures.NewService(expenditures.NewRepository(gormDB), recorder)
	if err != nil {
		return routes.Services{}, err
	}
	orderService, err := orders.NewService(dbClient, orders.NewRepository(gormDB), itemRepo, recorder, workflowMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Users:        userService,
		Auth:         authService,
		Businesses:   businessService,
		Catalog:      catalogService,
		Items:        itemService,
		Images:       imageService,
		Stock:        stockService,
		Expenditures: expenditureService,
		Orders:       orderService,
		Audit:        auditService,
	}, nil
}
