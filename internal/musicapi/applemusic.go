package musicapi

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAppleMusicBaseURL is the Apple Music API root.
const DefaultAppleMusicBaseURL = "https://api.music.apple.com"

const (
	appleTokenTTL     = 24 * time.Hour
	appleTokenRefresh = 12 * time.Hour
	appleArtworkSize  = "100"
)

// AppleMusicClient implements CatalogClient for the Apple Music catalog.
type AppleMusicClient struct {
	baseURL    string
	storefront string
	keyID      string
	teamID     string
	privateKey *ecdsa.PrivateKey
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	tokenTime time.Time
}

// NewAppleMusicClient creates a new Apple Music API client from a PKCS#8 or
// SEC 1 encoded ES256 private key.
func NewAppleMusicClient(cfg Config, httpClient *http.Client) (*AppleMusicClient, error) {
	if cfg.AppleMusicKeyID == "" || cfg.AppleMusicTeamID == "" {
		return nil, errors.New("apple music key id and team id are required")
	}

	privateKey, err := parseECPrivateKey(cfg.AppleMusicPrivateKey)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.AppleMusicBaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAppleMusicBaseURL
	}
	storefront := cfg.AppleMusicStorefront
	if storefront == "" {
		storefront = "us"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &AppleMusicClient{
		baseURL:    baseURL,
		storefront: storefront,
		keyID:      cfg.AppleMusicKeyID,
		teamID:     cfg.AppleMusicTeamID,
		privateKey: privateKey,
		httpClient: httpClient,
	}, nil
}

func parseECPrivateKey(privateKeyPEM string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to parse PEM block containing the key")
	}

	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an ECDSA key")
	}
	return key, nil
}

type appleMusicSearchResponse struct {
	Results struct {
		Songs *appleMusicSongsResults `json:"songs,omitempty"`
	} `json:"results"`
}

type appleMusicSongsResults struct {
	Data []appleMusicSong `json:"data"`
}

type appleMusicSong struct {
	ID         string                   `json:"id"`
	Type       string                   `json:"type"`
	Attributes appleMusicSongAttributes `json:"attributes"`
}

type appleMusicSongAttributes struct {
	Name       string              `json:"name"`
	ArtistName string              `json:"artistName"`
	Artwork    appleMusicArtwork   `json:"artwork"`
	Previews   []appleMusicPreview `json:"previews"`
}

type appleMusicArtwork struct {
	URL string `json:"url"`
}

type appleMusicPreview struct {
	URL string `json:"url"`
}

// developerToken returns a cached ES256 developer token, signing a new one
// when the cached token is older than appleTokenRefresh.
func (c *AppleMusicClient) developerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenTime) < appleTokenRefresh {
		return c.token, nil
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.teamID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appleTokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = c.keyID

	signed, err := token.SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	c.token = signed
	c.tokenTime = now
	return signed, nil
}

// SearchTracks searches the storefront catalog for songs.
func (c *AppleMusicClient) SearchTracks(ctx context.Context, term string, limit int) ([]TrackSummary, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	token, err := c.developerToken()
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"term":  []string{term},
		"types": []string{"songs"},
		"limit": []string{strconv.Itoa(limit)},
	}
	apiURL := fmt.Sprintf("%s/v1/catalog/%s/search?%s", c.baseURL, url.PathEscape(c.storefront), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("apple music api error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload appleMusicSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}

	// A search with no matches omits the songs key entirely.
	if payload.Results.Songs == nil {
		return []TrackSummary{}, nil
	}

	tracks := make([]TrackSummary, 0, len(payload.Results.Songs.Data))
	for _, song := range payload.Results.Songs.Data {
		id, err := strconv.ParseInt(song.ID, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		track := TrackSummary{
			TrackID:    id,
			Title:      song.Attributes.Name,
			Artist:     song.Attributes.ArtistName,
			ArtworkURL: renderArtworkURL(song.Attributes.Artwork.URL),
		}
		if len(song.Attributes.Previews) > 0 {
			track.PreviewURL = song.Attributes.Previews[0].URL
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

func renderArtworkURL(template string) string {
	return strings.NewReplacer("{w}", appleArtworkSize, "{h}", appleArtworkSize).Replace(template)
}
