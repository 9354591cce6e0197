package musicapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider names a catalog service.
type Provider string

const (
	ProviderITunes     Provider = "itunes"
	ProviderAppleMusic Provider = "applemusic"
)

// SearchLimit caps the number of songs requested from a catalog.
const SearchLimit = 20

// DefaultTimeout bounds a single outbound catalog request.
const DefaultTimeout = 15 * time.Second

// ErrUnexpectedResponse signals a catalog payload that does not have the
// expected shape.
var ErrUnexpectedResponse = errors.New("unexpected catalog response")

// TrackSummary is a song returned by a catalog search. It is never persisted.
type TrackSummary struct {
	TrackID    int64  `json:"trackId"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// CatalogClient searches an external music catalog for songs.
type CatalogClient interface {
	// SearchTracks returns up to limit songs matching term, in the order the
	// catalog ranks them.
	SearchTracks(ctx context.Context, term string, limit int) ([]TrackSummary, error)
}

// Config holds configuration for catalog clients.
type Config struct {
	Provider Provider

	// iTunes Search
	ITunesBaseURL string

	// Apple Music credentials
	AppleMusicBaseURL    string
	AppleMusicKeyID      string
	AppleMusicTeamID     string
	AppleMusicPrivateKey string
	AppleMusicStorefront string

	RequestTimeout time.Duration
}

// NewCatalogClient builds the client for cfg.Provider. An empty provider
// selects iTunes.
func NewCatalogClient(cfg Config) (CatalogClient, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case "", ProviderITunes:
		return NewITunesClient(cfg.ITunesBaseURL, httpClient), nil
	case ProviderAppleMusic:
		client, err := NewAppleMusicClient(cfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("apple music client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown catalog provider %q", cfg.Provider)
	}
}
