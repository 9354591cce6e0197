package musicapi

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppleKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func TestAppleMusicSearchTracks(t *testing.T) {
	key, keyPEM := testAppleKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/catalog/gb/search", r.URL.Path)
		assert.Equal(t, "songs", r.URL.Query().Get("types"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "massive attack", r.URL.Query().Get("term"))

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
			assert.Equal(t, "KEY123", tok.Header["kid"])
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"ES256"}))
		if !assert.NoError(t, err) || !token.Valid {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		iss, _ := token.Claims.GetIssuer()
		assert.Equal(t, "TEAM456", iss)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":{"songs":{"data":[
			{"id":"1440833098","type":"songs","attributes":{"name":"Teardrop","artistName":"Massive Attack",
			 "artwork":{"url":"https://img/{w}x{h}bb.jpg"},"previews":[{"url":"https://audio/teardrop.m4a"}]}},
			{"id":"pl.abc","type":"songs","attributes":{"name":"Not numeric","artistName":"X"}}
		]}}}`))
	}))
	defer srv.Close()

	client, err := NewAppleMusicClient(Config{
		AppleMusicBaseURL:    srv.URL,
		AppleMusicKeyID:      "KEY123",
		AppleMusicTeamID:     "TEAM456",
		AppleMusicPrivateKey: keyPEM,
		AppleMusicStorefront: "gb",
	}, srv.Client())
	require.NoError(t, err)

	tracks, err := client.SearchTracks(context.Background(), "massive attack", SearchLimit)
	require.NoError(t, err)
	assert.Equal(t, []TrackSummary{{
		TrackID:    1440833098,
		Title:      "Teardrop",
		Artist:     "Massive Attack",
		ArtworkURL: "https://img/100x100bb.jpg",
		PreviewURL: "https://audio/teardrop.m4a",
	}}, tracks)
}

func TestAppleMusicSearchTracksNoSongs(t *testing.T) {
	_, keyPEM := testAppleKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{}}`))
	}))
	defer srv.Close()

	client, err := NewAppleMusicClient(Config{
		AppleMusicBaseURL:    srv.URL,
		AppleMusicKeyID:      "k",
		AppleMusicTeamID:     "t",
		AppleMusicPrivateKey: keyPEM,
	}, srv.Client())
	require.NoError(t, err)

	tracks, err := client.SearchTracks(context.Background(), "nothing", SearchLimit)
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestAppleMusicDeveloperTokenCached(t *testing.T) {
	_, keyPEM := testAppleKey(t)
	client, err := NewAppleMusicClient(Config{
		AppleMusicKeyID:      "k",
		AppleMusicTeamID:     "t",
		AppleMusicPrivateKey: keyPEM,
	}, nil)
	require.NoError(t, err)

	first, err := client.developerToken()
	require.NoError(t, err)
	second, err := client.developerToken()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewAppleMusicClientRejectsBadKey(t *testing.T) {
	_, err := NewAppleMusicClient(Config{
		AppleMusicKeyID:      "k",
		AppleMusicTeamID:     "t",
		AppleMusicPrivateKey: "not a pem",
	}, nil)
	require.Error(t, err)
}
