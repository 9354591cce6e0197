package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var favoriteRowColumns = []string{"id", "track_id", "title", "artist", "artwork_url", "preview_url", "created_at"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestListFavoritesOrderedByTitle(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY title COLLATE "C" ASC, id ASC`)).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns).
			AddRow("6f1c7a4e-5d0a-4c55-9a8e-3c2b1a0f9e11", int64(7), "Aquarius", "Boards of Canada", "http://art/7", nil, now).
			AddRow("0b8e4f7c-2a6d-4e3b-8f1a-9d5c6b7a8e22", int64(3), "Teardrop", "Massive Attack", nil, "http://preview/3", now))

	got, err := s.ListFavorites(context.Background())
	if err != nil {
		t.Fatalf("ListFavorites error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(got))
	}
	if got[0].Title != "Aquarius" || got[1].Title != "Teardrop" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
	if got[0].ArtworkURL != "http://art/7" || got[0].PreviewURL != "" {
		t.Fatalf("unexpected optional urls on first favorite: %#v", got[0])
	}
	if got[1].PreviewURL != "http://preview/3" {
		t.Fatalf("expected preview url, got %q", got[1].PreviewURL)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListFavoritesEmptyIsNotNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM favorites`)).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns))

	got, err := s.ListFavorites(context.Background())
	if err != nil {
		t.Fatalf("ListFavorites error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestListFavoritesQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM favorites`)).
		WillReturnError(errors.New("connection refused"))

	if _, err := s.ListFavorites(context.Background()); err == nil {
		t.Fatalf("expected error but got nil")
	}
}

func TestAddFavoriteCreated(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (track_id) DO NOTHING`)).
		WithArgs(sqlmock.AnyArg(), int64(100), "Song A", "Artist A", nil, "http://preview").
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns).
			AddRow("4a1d2c3b-0000-4000-8000-000000000100", int64(100), "Song A", "Artist A", nil, "http://preview", now))

	got, created, err := s.AddFavorite(context.Background(), Favorite{
		TrackID:    100,
		Title:      "Song A",
		Artist:     "Artist A",
		PreviewURL: "http://preview",
	})
	if err != nil {
		t.Fatalf("AddFavorite error: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true")
	}
	if got.ID == "" || got.TrackID != 100 {
		t.Fatalf("unexpected favorite: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddFavoriteReturnsExisting(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (track_id) DO NOTHING`)).
		WithArgs(sqlmock.AnyArg(), int64(100), "Song A", "Artist A", nil, nil).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE track_id = $1`)).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns).
			AddRow("existing-id", int64(100), "Old Title", "Artist A", nil, nil, now))

	got, created, err := s.AddFavorite(context.Background(), Favorite{TrackID: 100, Title: "Song A", Artist: "Artist A"})
	if err != nil {
		t.Fatalf("AddFavorite error: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for duplicate track")
	}
	if got.ID != "existing-id" || got.Title != "Old Title" {
		t.Fatalf("expected the existing record unchanged, got %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddFavoriteExistingVanished(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (track_id) DO NOTHING`)).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE track_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(favoriteRowColumns))

	_, _, err := s.AddFavorite(context.Background(), Favorite{TrackID: 5, Title: "T", Artist: "A"})
	if !errors.Is(err, ErrFavoriteConflict) {
		t.Fatalf("expected ErrFavoriteConflict, got %v", err)
	}
}

func TestAddFavoriteUniqueViolation(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO favorites`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, _, err := s.AddFavorite(context.Background(), Favorite{TrackID: 5, Title: "T", Artist: "A"})
	if !errors.Is(err, ErrFavoriteConflict) {
		t.Fatalf("expected ErrFavoriteConflict, got %v", err)
	}
}

func TestAddFavoriteInsertError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO favorites`)).
		WillReturnError(errors.New("connection reset"))

	_, _, err := s.AddFavorite(context.Background(), Favorite{TrackID: 5, Title: "T", Artist: "A"})
	if err == nil || errors.Is(err, ErrFavoriteConflict) {
		t.Fatalf("expected plain storage error, got %v", err)
	}
}

func TestRemoveFavorite(t *testing.T) {
	s, mock := newMockStore(t)
	id := "4a1d2c3b-0000-4000-8000-000000000100"

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM favorites WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.RemoveFavorite(context.Background(), id); err != nil {
		t.Fatalf("first RemoveFavorite error: %v", err)
	}
	if err := s.RemoveFavorite(context.Background(), id); err != nil {
		t.Fatalf("second RemoveFavorite error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRemoveFavoriteMalformedID(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.RemoveFavorite(context.Background(), "not-a-uuid")
	if !errors.Is(err, ErrInvalidFavoriteID) {
		t.Fatalf("expected ErrInvalidFavoriteID, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database call: %v", err)
	}
}
