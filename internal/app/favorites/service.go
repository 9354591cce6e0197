package favorites

import (
	"context"
	"errors"
	"strings"

	"trackvault/internal/app/errs"
	"trackvault/internal/store"
)

// Store defines persistence operations required for favorites workflows.
type Store interface {
	ListFavorites(ctx context.Context) ([]store.Favorite, error)
	AddFavorite(ctx context.Context, fav store.Favorite) (store.Favorite, bool, error)
	RemoveFavorite(ctx context.Context, id string) error
}

// Candidate is a favorite that has not been stored yet.
type Candidate struct {
	TrackID    int64
	Title      string
	Artist     string
	ArtworkURL string
	PreviewURL string
}

// Service describes high level favorites operations used by HTTP handlers.
type Service interface {
	List(ctx context.Context) ([]store.Favorite, error)
	// Create stores c unless a favorite for the same track exists. The bool
	// reports whether a new favorite was written.
	Create(ctx context.Context, c Candidate) (store.Favorite, bool, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store Store
}

// New constructs a favorites Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) List(ctx context.Context) ([]store.Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	favorites, err := s.store.ListFavorites(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrStorageUnavailable, err)
	}
	if favorites == nil {
		favorites = []store.Favorite{}
	}
	return favorites, nil
}

func (s *service) Create(ctx context.Context, c Candidate) (store.Favorite, bool, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Artist = strings.TrimSpace(c.Artist)
	c.ArtworkURL = strings.TrimSpace(c.ArtworkURL)
	c.PreviewURL = strings.TrimSpace(c.PreviewURL)

	if err := validateCandidate(c); err != nil {
		return store.Favorite{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return store.Favorite{}, false, err
	}

	fav, created, err := s.store.AddFavorite(ctx, store.Favorite{
		TrackID:    c.TrackID,
		Title:      c.Title,
		Artist:     c.Artist,
		ArtworkURL: c.ArtworkURL,
		PreviewURL: c.PreviewURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrFavoriteConflict) {
			return store.Favorite{}, false, errs.Wrap(errs.ErrConflict, err)
		}
		return store.Favorite{}, false, errs.Wrap(errs.ErrStorageUnavailable, err)
	}
	return fav, created, nil
}

// Delete removes a favorite. Unknown ids succeed; malformed ids are reported
// as storage failures, the same as a failed delete.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.RemoveFavorite(ctx, id); err != nil {
		return errs.Wrap(errs.ErrStorageUnavailable, err)
	}
	return nil
}

func validateCandidate(c Candidate) error {
	var missing []string
	if c.TrackID <= 0 {
		missing = append(missing, "trackId")
	}
	if c.Title == "" {
		missing = append(missing, "title")
	}
	if c.Artist == "" {
		missing = append(missing, "artist")
	}
	if len(missing) > 0 {
		return errs.Invalid("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
