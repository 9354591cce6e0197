package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFavoriteConflict signals that a favorite for the same track appeared
	// or vanished concurrently with an insert.
	ErrFavoriteConflict = errors.New("favorite conflict")
	// ErrInvalidFavoriteID indicates an identifier that is not a UUID.
	ErrInvalidFavoriteID = errors.New("invalid favorite id")
)

// Favorite is a saved catalog track.
type Favorite struct {
	ID         string    `json:"id"`
	TrackID    int64     `json:"trackId"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	ArtworkURL string    `json:"artworkUrl,omitempty"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const favoriteColumns = `id, track_id, title, artist, artwork_url, preview_url, created_at`

// ListFavorites returns every favorite ordered by title, compared byte-wise
// so ordering is case-sensitive regardless of the database locale.
func (s *Store) ListFavorites(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		ORDER BY title COLLATE "C" ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// AddFavorite stores fav unless a favorite with the same track id exists.
// The returned bool is true when a new row was written; otherwise the
// existing row is returned unchanged.
func (s *Store) AddFavorite(ctx context.Context, fav Favorite) (Favorite, bool, error) {
	id := uuid.New()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO favorites (id, track_id, title, artist, artwork_url, preview_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (track_id) DO NOTHING
		RETURNING `+favoriteColumns,
		id.String(), fav.TrackID, fav.Title, fav.Artist, nullIfEmpty(fav.ArtworkURL), nullIfEmpty(fav.PreviewURL),
	)
	created, err := scanFavorite(row)
	switch {
	case err == nil:
		return created, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// another row already holds this track id
	case isUniqueViolation(err):
		return Favorite{}, false, ErrFavoriteConflict
	default:
		return Favorite{}, false, fmt.Errorf("insert favorite: %w", err)
	}

	existing, err := s.favoriteByTrackID(ctx, fav.TrackID)
	if errors.Is(err, sql.ErrNoRows) {
		return Favorite{}, false, ErrFavoriteConflict
	}
	if err != nil {
		return Favorite{}, false, err
	}
	return existing, false, nil
}

// RemoveFavorite deletes the favorite with the given id. Removing an id that
// does not exist is not an error.
func (s *Store) RemoveFavorite(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFavoriteID, id)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = $1`, parsed.String()); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *Store) favoriteByTrackID(ctx context.Context, trackID int64) (Favorite, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		WHERE track_id = $1`, trackID)
	fav, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Favorite{}, err
	}
	if err != nil {
		return Favorite{}, fmt.Errorf("get favorite by track: %w", err)
	}
	return fav, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFavorite(row rowScanner) (Favorite, error) {
	var (
		fav        Favorite
		artworkURL sql.NullString
		previewURL sql.NullString
	)
	if err := row.Scan(&fav.ID, &fav.TrackID, &fav.Title, &fav.Artist, &artworkURL, &previewURL, &fav.CreatedAt); err != nil {
		return Favorite{}, err
	}
	fav.ArtworkURL = artworkURL.String
	fav.PreviewURL = previewURL.String
	return fav, nil
}
