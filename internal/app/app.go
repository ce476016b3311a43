// Package app wires the database, repositories, dataset loader and services
// shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/database"
	"github.com/jengzang/retention-backend-go/internal/repository"
	"github.com/jengzang/retention-backend-go/internal/service"
)

// App holds the wired components
type App struct {
	Config    *config.Config
	Dashboard *config.Dashboard
	Clock     clockwork.Clock
	Logger    *slog.Logger

	DB        *database.DB
	Orders    *repository.OrderRepository
	AdSpots   *repository.AdSpotRepository
	Loader    *service.DatasetLoader
	Retention *service.RetentionService
	Marketing *service.MarketingService
}

// New opens the database and builds every component on top of it
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	dashboard, err := config.LoadDashboard(cfg.DashboardConfig)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, database.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN}, logger)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, dashboard, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *config.Config, dashboard *config.Dashboard, db *database.DB, logger *slog.Logger) (*App, error) {
	orders, err := repository.NewOrderRepository(db, cfg.OrderTable)
	if err != nil {
		return nil, err
	}
	adSpots, err := repository.NewAdSpotRepository(db, cfg.AdSpotTable)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	loader, err := service.NewDatasetLoader(&service.LoaderConfig{
		Logger:      logger,
		Clock:       clock,
		Orders:      orders,
		AdSpots:     adSpots,
		DatasetTTL:  cfg.DatasetTTL,
		ResultTTL:   cfg.CacheTTL,
		MaxTries:    cfg.LoadRetries,
		LoadTimeout: cfg.LoadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset loader: %w", err)
	}

	return &App{
		Config:    cfg,
		Dashboard: dashboard,
		Clock:     clock,
		Logger:    logger,
		DB:        db,
		Orders:    orders,
		AdSpots:   adSpots,
		Loader:    loader,
		Retention: service.NewRetentionService(loader, dashboard, clock, logger),
		Marketing: service.NewMarketingService(loader, dashboard, clock, logger),
	}, nil
}

// Close stops the caches and closes the database
func (a *App) Close() error {
	a.Loader.Close()
	return a.DB.Close()
}
