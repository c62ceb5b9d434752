package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mateus-s-a/jokenpo/internal/config"
	"github.com/mateus-s-a/jokenpo/internal/coordinator"
	"github.com/mateus-s-a/jokenpo/internal/httpapi"
	"github.com/mateus-s-a/jokenpo/internal/ws"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := ws.NewGateway(log)
	coord := coordinator.New(ctx, log, gateway)
	gateway.Attach(coord.Inbox())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.SetupRoutes(gateway, cfg.StaticDir),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		coord.Inbox() <- coordinator.Shutdown{}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
	log.Info("shutdown complete")
}
