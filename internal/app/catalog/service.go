package catalog

import (
	"context"
	"strings"

	"trackvault/internal/app/errs"
	"trackvault/internal/musicapi"
)

// Service exposes catalog search to HTTP handlers.
type Service interface {
	Search(ctx context.Context, term string) ([]musicapi.TrackSummary, error)
}

type service struct {
	client musicapi.CatalogClient
}

// New constructs a catalog Service that proxies to client.
func New(client musicapi.CatalogClient) Service {
	return &service{client: client}
}

func (s *service) Search(ctx context.Context, term string) ([]musicapi.TrackSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errs.Invalid("missing search term")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracks, err := s.client.SearchTracks(ctx, term, musicapi.SearchLimit)
	if err != nil {
		return nil, errs.Wrap(errs.ErrUpstreamUnavailable, err)
	}
	if tracks == nil {
		tracks = []musicapi.TrackSummary{}
	}
	return tracks, nil
}
