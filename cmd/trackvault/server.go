package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"trackvault/internal/app/catalog"
	"trackvault/internal/app/favorites"
	"trackvault/internal/http/middleware"
	"trackvault/internal/httpapi"
	"trackvault/internal/musicapi"
	"trackvault/internal/store"
)

func newHTTPHandler(cfg Config, db *sql.DB) (http.Handler, error) {
	dataStore := store.New(db)

	client, err := musicapi.NewCatalogClient(cfg.catalog())
	if err != nil {
		return nil, fmt.Errorf("catalog client: %w", err)
	}
	log.Info().Str("provider", cfg.CatalogProvider).Msg("catalog client initialized")

	favoritesSvc := favorites.New(dataStore)
	catalogSvc := catalog.New(client)

	var opts []httpapi.Option
	if cfg.StaticDir != "" {
		opts = append(opts, httpapi.WithStaticDir(cfg.StaticDir))
		log.Info().Str("dir", cfg.StaticDir).Msg("serving static files")
	}

	return withMiddleware(cfg, httpapi.New(favoritesSvc, catalogSvc, dataStore, opts...).Routes()), nil
}

// withMiddleware wraps h so that request logging sees every request,
// including ones that panic, and recovery logs carry the request id.
func withMiddleware(cfg Config, h http.Handler) http.Handler {
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.Recovery()(h)
	return middleware.RequestLogging()(h)
}

func newHTTPServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
