package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	"github.com/jengzang/retention-backend-go/internal/api"
	"github.com/jengzang/retention-backend-go/internal/app"
	"github.com/jengzang/retention-backend-go/internal/config"
	"github.com/jengzang/retention-backend-go/internal/handler"
	"github.com/jengzang/retention-backend-go/internal/middleware"
	"github.com/jengzang/retention-backend-go/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// 加载配置
	cfg := config.Load()
	log := newLogger(cfg.LogVerbose)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 初始化数据库与服务
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.DefaultSecret() {
		log.Warn("JWT_SECRET is not set, admin routes accept tokens signed with the built-in default")
	}

	// Serve even when the warehouse is unreachable at startup; datasets load on first request.
	if v, err := a.Loader.Warmup(ctx); err != nil {
		log.Warn("dataset warmup failed", "error", err)
	} else {
		log.Info("datasets warmed up", "orders", v.Orders, "ad_spots", v.AdSpots)
	}

	if !cfg.LogVerbose {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute, a.Clock)
	go limiter.Run(ctx)

	// 初始化路由
	router := api.SetupRouter(cfg, log, limiter, api.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			service.DatasetOrders:  a.Orders,
			service.DatasetAdSpots: a.AdSpots,
		}),
		Retention: handler.NewRetentionHandler(a.Retention),
		Marketing: handler.NewMarketingHandler(a.Marketing),
		Admin:     handler.NewAdminHandler(a.Loader),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// 启动服务器
		log.Info("server starting", "addr", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
	}))
}
