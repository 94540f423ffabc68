package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"talk-qa/internal/adapter/qahttp"
	"talk-qa/internal/di"
	"talk-qa/internal/infra/config"
	"talk-qa/internal/infra/logger"
	"talk-qa/internal/infra/telemetry"
)

func main() {
	// 1. Load and validate config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Telemetry before the logger so the otelslog bridge sees the provider
	if cfg.OTelEnabled {
		shutdown, err := telemetry.Setup(ctx, "talk-qa", cfg.OTLPEndpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to set up telemetry: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(flushCtx)
		}()
	}

	// 3. Logger
	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	// 4. Wire components
	components, err := di.NewApplicationComponents(ctx, cfg, log)
	if err != nil {
		log.Error("failed to wire components", "error", err)
		os.Exit(1)
	}
	defer components.Close()

	// 5. Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RequestsPerSecond))))

	validator, err := qahttp.NewOpenAPIValidator()
	if err != nil {
		log.Error("failed to load openapi contract", "error", err)
		os.Exit(1)
	}
	e.Use(validator)

	// 6. Routes
	handler := qahttp.NewHandler(components.AnswerUsecase)
	qahttp.RegisterRoutes(e, handler, components.Ready)

	// 7. Run until signalled
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("starting server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
