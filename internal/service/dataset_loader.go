package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/retention-backend-go/internal/cache"
	"github.com/jengzang/retention-backend-go/internal/metrics"
	"github.com/jengzang/retention-backend-go/internal/models"
)

// Dataset names
const (
	DatasetOrders  = "orders"
	DatasetAdSpots = "ad_spots"
)

const (
	defaultDatasetTTL  = time.Hour
	defaultResultTTL   = 10 * time.Minute
	defaultMaxTries    = 5
	defaultLoadTimeout = 2 * time.Minute
)

// OrderSource supplies the full order ledger
type OrderSource interface {
	FetchOrders(ctx context.Context) ([]models.Order, error)
}

// AdSpotSource supplies the full ad spot ledger
type AdSpotSource interface {
	FetchAdSpotRecords(ctx context.Context) ([]models.AdSpotRecord, error)
}

// Snapshot is one loaded copy of a ledger. Rows must not be modified.
type Snapshot[T any] struct {
	Dataset  string
	Version  string
	LoadedAt time.Time
	Rows     []T
}

type LoaderConfig struct {
	Logger  *slog.Logger
	Clock   clockwork.Clock
	Orders  OrderSource
	AdSpots AdSpotSource

	DatasetTTL  time.Duration
	ResultTTL   time.Duration
	MaxTries    uint
	LoadTimeout time.Duration
	NewBackOff  func() backoff.BackOff
}

func (c *LoaderConfig) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Orders == nil {
		return errors.New("order source is required")
	}
	if c.AdSpots == nil {
		return errors.New("ad spot source is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.DatasetTTL == 0 {
		c.DatasetTTL = defaultDatasetTTL
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = defaultResultTTL
	}
	if c.MaxTries == 0 {
		c.MaxTries = defaultMaxTries
	}
	if c.LoadTimeout == 0 {
		c.LoadTimeout = defaultLoadTimeout
	}
	if c.NewBackOff == nil {
		c.NewBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	return nil
}

// DatasetLoader loads ledger snapshots from the warehouse with retries and
// keeps them for DatasetTTL. It also owns the result cache, so a refresh
// drops both.
type DatasetLoader struct {
	cfg *LoaderConfig

	snapshots *cache.Store
	results   *cache.Store

	ordersMu  sync.Mutex
	adSpotsMu sync.Mutex

	// bumped by Refresh; loads started in an older generation are not cached
	generation atomic.Uint64
}

func NewDatasetLoader(cfg *LoaderConfig) (*DatasetLoader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &DatasetLoader{
		cfg:       cfg,
		snapshots: cache.New("snapshots", cfg.DatasetTTL),
		results:   cache.New("results", cfg.ResultTTL),
	}, nil
}

// Orders returns the current order ledger snapshot, loading it when absent
func (l *DatasetLoader) Orders(ctx context.Context) (*Snapshot[models.Order], error) {
	return loadSnapshot(ctx, l, DatasetOrders, &l.ordersMu, l.cfg.Orders.FetchOrders)
}

// AdSpots returns the current ad ledger snapshot, loading it when absent
func (l *DatasetLoader) AdSpots(ctx context.Context) (*Snapshot[models.AdSpotRecord], error) {
	return loadSnapshot(ctx, l, DatasetAdSpots, &l.adSpotsMu, l.cfg.AdSpots.FetchAdSpotRecords)
}

// Results returns the cache shared by the metric services
func (l *DatasetLoader) Results() *cache.Store {
	return l.results
}

// Versions reports the snapshot versions currently held
type Versions struct {
	Orders   string    `json:"orders"`
	AdSpots  string    `json:"ad_spots"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Warmup loads both ledgers concurrently
func (l *DatasetLoader) Warmup(ctx context.Context) (Versions, error) {
	var v Versions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := l.Orders(gctx)
		if err != nil {
			return err
		}
		v.Orders = s.Version
		return nil
	})
	g.Go(func() error {
		s, err := l.AdSpots(gctx)
		if err != nil {
			return err
		}
		v.AdSpots = s.Version
		return nil
	})
	if err := g.Wait(); err != nil {
		return Versions{}, err
	}
	v.LoadedAt = l.cfg.Clock.Now()
	return v, nil
}

// Refresh drops every snapshot and cached result, then reloads both ledgers
func (l *DatasetLoader) Refresh(ctx context.Context) (Versions, error) {
	l.generation.Add(1)
	l.snapshots.Purge()
	l.results.Purge()
	l.cfg.Logger.Info("dataset caches purged")
	return l.Warmup(ctx)
}

// Close stops the cache expiry loops
func (l *DatasetLoader) Close() {
	l.snapshots.Close()
	l.results.Close()
}

func loadSnapshot[T any](ctx context.Context, l *DatasetLoader, name string, mu *sync.Mutex,
	fetch func(context.Context) ([]T, error)) (*Snapshot[T], error) {
	if cached, ok := l.snapshots.Get(name); ok {
		return cached.(*Snapshot[T]), nil
	}

	// one load per dataset at a time; waiters reuse its snapshot
	mu.Lock()
	defer mu.Unlock()
	if cached, ok := l.snapshots.Get(name); ok {
		return cached.(*Snapshot[T]), nil
	}

	log := l.cfg.Logger.With("dataset", name)
	start := l.cfg.Clock.Now()
	generation := l.generation.Load()

	loadCtx, cancel := context.WithTimeout(ctx, l.cfg.LoadTimeout)
	defer cancel()

	attempt := 0
	rows, err := backoff.Retry(loadCtx, func() ([]T, error) {
		if attempt > 0 {
			log.Warn("failed to load dataset, retrying", "attempt", attempt)
		}
		attempt++
		return fetch(loadCtx)
	}, backoff.WithBackOff(l.cfg.NewBackOff()), backoff.WithMaxTries(l.cfg.MaxTries))
	metrics.DatasetLoadDuration.WithLabelValues(name).Observe(l.cfg.Clock.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("failed to load %s dataset: %w", name, err)
	}
	metrics.DatasetLoadsTotal.WithLabelValues(name, "success").Inc()
	metrics.DatasetRows.WithLabelValues(name).Set(float64(len(rows)))

	snap := &Snapshot[T]{
		Dataset:  name,
		Version:  uuid.NewString(),
		LoadedAt: l.cfg.Clock.Now(),
		Rows:     rows,
	}
	if l.generation.Load() != generation {
		log.Warn("dataset refreshed during load, snapshot not cached", "version", snap.Version)
		return snap, nil
	}
	l.snapshots.Set(name, snap)

	log.Info("dataset loaded", "version", snap.Version, "rows", len(rows), "attempts", attempt)
	return snap, nil
}
