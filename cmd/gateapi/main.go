package main

import (
	"context"
	"github.com/bwownie/go-browniegate/internal/api/rest"
	"github.com/bwownie/go-browniegate/internal/config"
	"github.com/bwownie/go-browniegate/internal/logger"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log := logger.InitLog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// get configuration
	cfg, err := config.NewConfiguration()
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}
	cfg.ParseFlags()

	// initialize server
	server, err := rest.InitServer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("")
	}

	// set a listener for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("gate API server start attempted")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
			return nil
		}
		log.Info().Msg("gate API server shutdown attempted")
		ctxTO, cancelTO := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelTO()
		return server.Shutdown(ctxTO)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("gate API server terminated abnormally")
	}
	log.Info().Msg("gate API server shutdown succeeded")
}
