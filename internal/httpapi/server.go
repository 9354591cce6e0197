package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"trackvault/internal/app/errs"
	"trackvault/internal/app/favorites"
	"trackvault/internal/logging"
	"trackvault/internal/musicapi"
	"trackvault/internal/store"
)

// FavoritesService coordinates favorites workflows.
type FavoritesService interface {
	List(ctx context.Context) ([]store.Favorite, error)
	Create(ctx context.Context, c favorites.Candidate) (store.Favorite, bool, error)
	Delete(ctx context.Context, id string) error
}

// SearchService proxies catalog searches.
type SearchService interface {
	Search(ctx context.Context, term string) ([]musicapi.TrackSummary, error)
}

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	favorites FavoritesService
	search    SearchService
	health    HealthChecker
	staticDir string
}

// Option customizes a Server.
type Option func(*Server)

// WithStaticDir serves files from dir for any path not claimed by the API.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// New configures a Server with the given services.
func New(favorites FavoritesService, search SearchService, health HealthChecker, opts ...Option) *Server {
	s := &Server{
		favorites: favorites,
		search:    search,
		health:    health,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/favorites", s.handleListFavorites).Methods(http.MethodGet)
	api.HandleFunc("/favorites", s.handleCreateFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/{id}", s.handleDeleteFavorite).Methods(http.MethodDelete)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	if s.staticDir != "" {
		router.PathPrefix("/").
			MatcherFunc(outsideAPI).
			Handler(http.FileServer(http.Dir(s.staticDir))).
			Methods(http.MethodGet, http.MethodHead)
	}

	return router
}

// outsideAPI keeps unknown /api paths on the JSON not-found handler.
func outsideAPI(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeFailure logs err and answers with the status its class maps to.
// Server-side failures get the generic message; validation failures echo
// the validation message.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusFor(err)
	logger := logging.FromContext(r.Context())

	var event *zerolog.Event
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	} else {
		event = logger.Warn()
		message = err.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status_code", status).Msg(message)

	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
