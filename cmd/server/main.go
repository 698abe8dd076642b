package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/kitchen-coop-server/internal/config"
	"github.com/DoyleJ11/kitchen-coop-server/internal/httpapi"
	"github.com/DoyleJ11/kitchen-coop-server/internal/hub"
	"github.com/DoyleJ11/kitchen-coop-server/internal/lobby"
	"github.com/DoyleJ11/kitchen-coop-server/internal/logging"
	"github.com/DoyleJ11/kitchen-coop-server/internal/results"
	"github.com/DoyleJ11/kitchen-coop-server/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() {
		// stderr sync fails on some terminals; nothing useful to do about it
		_ = log.Sync()
	}()

	rec, err := openRecorder(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, rec.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := lobby.NewStore(cfg.Rules(),
		lobby.WithLogger(log.Named("lobby")),
		lobby.WithRecorder(rec),
		lobby.WithMaxSessionAge(cfg.MaxSessionAge),
	)
	defer store.Close()

	h := hub.NewHub(ctx, log.Named("hub"))
	gateway := ws.NewGateway(store, h, log.Named("ws"))

	// Build the router *with* the store and gateway injected
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Store:          store,
			Gateway:        gateway,
			Log:            log.Named("http"),
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		store.RunSweeper(gctx, cfg.SweepInterval, gateway.Evicted)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	h.Send(hub.ShutdownHub{})
	return err
}

func openRecorder(cfg config.Config, log *zap.Logger) (results.Recorder, error) {
	if cfg.DatabaseURL == "" {
		log.Info("recording results in memory")
		return results.NewMemory(0), nil
	}
	pg, err := results.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("recording results in postgres")
	return pg, nil
}
