package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"trackvault/internal/app/errs"
	"trackvault/internal/app/favorites"
	"trackvault/internal/store"
)

const maxFavoriteBody = 1 << 20

type favoriteRequest struct {
	TrackID    trackID `json:"trackId"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	ArtworkURL string  `json:"artworkUrl"`
	PreviewURL string  `json:"previewUrl"`
}

// trackID accepts a JSON number or a numeric string, as long as it holds a
// whole number. null and "" decode to zero and fail the required check.
type trackID int64

func (t *trackID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*t = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*t = 0
			return nil
		}
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*t = trackID(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return fmt.Errorf("trackId %s is not an integer", raw)
	}
	*t = trackID(f)
	return nil
}

// favoriteResponse also carries the id as _id for browser clients that
// predate the rename.
type favoriteResponse struct {
	store.Favorite
	LegacyID string `json:"_id"`
}

func toFavoriteResponse(fav store.Favorite) favoriteResponse {
	return favoriteResponse{Favorite: fav, LegacyID: fav.ID}
}

// handleListFavorites handles GET /api/favorites
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := s.favorites.List(r.Context())
	if err != nil {
		writeFailure(w, r, err, "failed to fetch favorites")
		return
	}
	out := make([]favoriteResponse, 0, len(list))
	for _, fav := range list {
		out = append(out, toFavoriteResponse(fav))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateFavorite handles POST /api/favorites. A track that is already
// a favorite answers 200 with the stored record instead of 201.
func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFavoriteBody)).Decode(&req); err != nil {
		writeFailure(w, r, errs.Invalid("invalid JSON payload"), "")
		return
	}

	fav, created, err := s.favorites.Create(r.Context(), favorites.Candidate{
		TrackID:    int64(req.TrackID),
		Title:      req.Title,
		Artist:     req.Artist,
		ArtworkURL: req.ArtworkURL,
		PreviewURL: req.PreviewURL,
	})
	if err != nil {
		writeFailure(w, r, err, "failed to save favorite")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toFavoriteResponse(fav))
}

// handleDeleteFavorite handles DELETE /api/favorites/{id}
func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.favorites.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, err, "failed to delete favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
