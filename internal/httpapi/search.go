package httpapi

import "net/http"

// handleSearch handles GET /api/search?term=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.search.Search(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		writeFailure(w, r, err, "failed to fetch songs")
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}
