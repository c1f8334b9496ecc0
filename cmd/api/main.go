package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"permit-history/internal/adapters/storage"
	"permit-history/internal/domain/history"
	"permit-history/internal/domain/permits"
	"permit-history/internal/platform/config"
	"permit-history/internal/platform/logger"
	"permit-history/internal/platform/metrics"
	"permit-history/internal/router"
)

// @title Permit History API
// @version 1.0
// @description Historial de permisos de trabajo reconstruido a partir de snapshots completos del ledger.
// @BasePath /
func main() {
	log := logger.NewFromEnv()
	if err := run(log); err != nil {
		log.Error("server stopped", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	normalizer := permits.NewNormalizer()
	normalizer.Departments = cfg.Departments
	normalizer.Location = cfg.DayLocation

	m := metrics.New()
	svc := history.NewService(store, history.Options{
		Normalizer: normalizer,
		Logger:     log,
		Metrics:    m,
	})

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.NewRouter(router.Options{
			Service:      svc,
			Logger:       log,
			Metrics:      m,
			IngestAPIKey: cfg.IngestAPIKey,
		}),
		ReadTimeout: 30 * time.Second,
		// la primera consulta puede incluir la carga completa del histórico
		WriteTimeout: 2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "store": cfg.Store.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Carga inicial en segundo plano; si falla, la primera consulta reintenta.
	g.Go(func() error {
		if _, err := svc.Reload(gctx); err != nil {
			log.Warn("initial history load failed", map[string]any{"error": err})
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
