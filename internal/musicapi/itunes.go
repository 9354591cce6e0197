package musicapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultITunesBaseURL is the public iTunes Search API endpoint.
const DefaultITunesBaseURL = "https://itunes.apple.com/search"

// ITunesClient implements CatalogClient against the iTunes Search API.
type ITunesClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewITunesClient creates an iTunes Search client. An empty baseURL selects
// the public endpoint.
func NewITunesClient(baseURL string, httpClient *http.Client) *ITunesClient {
	if baseURL == "" {
		baseURL = DefaultITunesBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &ITunesClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type itunesSearchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     *[]itunesTrack `json:"results"`
}

type itunesTrack struct {
	WrapperType   string `json:"wrapperType"`
	Kind          string `json:"kind"`
	TrackID       int64  `json:"trackId"`
	TrackName     string `json:"trackName"`
	ArtistName    string `json:"artistName"`
	ArtworkURL100 string `json:"artworkUrl100"`
	PreviewURL    string `json:"previewUrl"`
}

// SearchTracks queries the iTunes Search API for songs.
func (c *ITunesClient) SearchTracks(ctx context.Context, term string, limit int) ([]TrackSummary, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	params := url.Values{
		"term":   []string{term},
		"entity": []string{"song"},
		"limit":  []string{strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("itunes api error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}
	if payload.Results == nil {
		return nil, fmt.Errorf("%w: missing results", ErrUnexpectedResponse)
	}

	tracks := make([]TrackSummary, 0, len(*payload.Results))
	for _, item := range *payload.Results {
		if !item.isSong() {
			continue
		}
		tracks = append(tracks, TrackSummary{
			TrackID:    item.TrackID,
			Title:      item.TrackName,
			Artist:     item.ArtistName,
			ArtworkURL: item.ArtworkURL100,
			PreviewURL: item.PreviewURL,
		})
	}

	return tracks, nil
}

// isSong filters out collection and artist rows the API occasionally mixes
// into entity=song responses.
func (t itunesTrack) isSong() bool {
	if t.TrackID == 0 {
		return false
	}
	if t.WrapperType != "" && t.WrapperType != "track" {
		return false
	}
	return t.Kind == "" || t.Kind == "song"
}
