package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"trackvault/internal/logging"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.SetGlobalLogger(logging.New(cfg.logging()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := migrateDatabase(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Msg("database schema up to date")
	}

	handler, err := newHTTPHandler(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("build handler")
	}
	server := newHTTPServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
