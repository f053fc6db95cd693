// Package lyrics provides a client for the LRCLIB lyrics service.
// It resolves plain and time-synced lyrics for a track by artist,
// title, album and duration. The service is public and requires
// no authentication.
package lyrics

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	http_transport "github.com/anorlov/qobuz-grabber/internal/transport/http"
	"github.com/anorlov/qobuz-grabber/internal/utils"
)

// DefaultBaseURL is the base URL of the public LRCLIB API.
const DefaultBaseURL = "https://lrclib.net/api"

// getURI is the URI path resolving a track to its lyrics.
const getURI = "get"

// Static error definitions for better error handling.
var (
	// ErrLyricsNotFound indicates the service has no lyrics for the track.
	ErrLyricsNotFound = errors.New("lyrics not found")
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
)

// Client defines the interface for fetching lyrics.
type Client interface {
	// GetLyrics resolves lyrics for a track.
	// Returns ErrLyricsNotFound when the service has no match.
	GetLyrics(ctx context.Context, request *GetLyricsRequest) (*Lyrics, error)
}

// GetLyricsRequest identifies the track to resolve lyrics for.
type GetLyricsRequest struct {
	// ArtistName is the track artist.
	ArtistName string
	// TrackName is the track title.
	TrackName string
	// AlbumName is the release title.
	AlbumName string
	// DurationSeconds is the track length, used to disambiguate versions.
	DurationSeconds int64
}

// Lyrics holds the lyrics variants the service returned.
type Lyrics struct {
	// Plain is the unsynchronized lyrics text.
	Plain string `json:"plainLyrics"`
	// Synced is the time-synced lyrics in LRC format, empty when unavailable.
	Synced string `json:"syncedLyrics"`
	// Instrumental indicates the track has no lyrics at all.
	Instrumental bool `json:"instrumental"`
}

// ClientImpl implements the Client interface against the LRCLIB API.
type ClientImpl struct {
	// baseURL is the base URL for API requests.
	baseURL string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
}

// NewClient creates and returns a new instance of ClientImpl.
// An empty baseURL falls back to the public service.
func NewClient(baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
		Timeout: http_transport.DefaultTimeout,
	}

	return &ClientImpl{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// GetLyrics resolves lyrics for a track.
func (c *ClientImpl) GetLyrics(ctx context.Context, request *GetLyricsRequest) (*Lyrics, error) {
	route, err := url.JoinPath(c.baseURL, getURI)
	if err != nil {
		return nil, err
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, route, http.NoBody)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("artist_name", request.ArtistName)
	query.Set("track_name", request.TrackName)

	if request.AlbumName != "" {
		query.Set("album_name", request.AlbumName)
	}

	if request.DurationSeconds > 0 {
		query.Set("duration", strconv.FormatInt(request.DurationSeconds, 10))
	}

	httpRequest.URL.RawQuery = query.Encode()

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close() //nolint:errcheck // Error on close is not critical here.

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrLyricsNotFound
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	var result Lyrics
	if err = json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
