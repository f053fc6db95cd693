package qobuz

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/machinebox/graphql"

	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	http_transport "github.com/anorlov/qobuz-grabber/internal/transport/http"
	"github.com/anorlov/qobuz-grabber/internal/utils"
)

// Client defines the interface for interacting with the catalog API.
type Client interface {
	// DownloadFromURL downloads content from the specified URL.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
	// FetchTrack fetches audio data from the specified URL.
	FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error)
	// GetAlbum retrieves metadata for the specified album, including its tracks.
	GetAlbum(ctx context.Context, albumID string) (*Album, error)
	// GetAlbumPageURL constructs the public website URL for a specific album.
	GetAlbumPageURL(albumID string) (string, error)
	// GetArtist retrieves metadata for the specified artist.
	GetArtist(ctx context.Context, artistID string) (*Artist, error)
	// GetArtistReleaseIDs retrieves release IDs for a specific artist.
	GetArtistReleaseIDs(ctx context.Context, artistID string, offset int, limit int) ([]string, error)
	// GetBaseURL returns the base URL of the catalog API.
	GetBaseURL() string
	// GetFileURL resolves a track to a download URL for the requested audio format.
	GetFileURL(ctx context.Context, trackID string, formatID int64) (*FileURL, error)
	// GetPlaylist retrieves metadata for the specified playlist, including its tracks.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
	// GetTrack retrieves metadata for the specified track.
	GetTrack(ctx context.Context, trackID string) (*Track, error)
}

// FetchTrackResult holds the audio stream and its expected size.
type FetchTrackResult struct {
	// Body is the audio payload stream. The caller owns closing it.
	Body io.ReadCloser
	// TotalBytes is the expected payload size, -1 when unknown.
	TotalBytes int64
}

// ClientImpl implements the Client interface for interacting with the catalog API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// baseURL is the base URL for API requests.
	baseURL string
	// webBaseURL is the base URL of the public website.
	webBaseURL string
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// graphQLClient is the GraphQL client for making queries.
	graphQLClient *graphql.Client
	// artistsCache caches artist metadata to reduce duplicate API calls for the same artists.
	artistsCache *lru.Cache[string, *Artist]
	// albumsCache caches album metadata to reduce duplicate API calls for the same albums.
	albumsCache *lru.Cache[string, *Album]
	// tracksCache caches track metadata to reduce duplicate API calls for the same tracks.
	tracksCache *lru.Cache[string, *Track]
	// playlistsCache caches playlist metadata to reduce duplicate API calls for the same playlists.
	playlistsCache *lru.Cache[string, *Playlist]
}

// NewClient creates and returns a new instance of ClientImpl.
// It initializes the HTTP and GraphQL clients with the provided configuration.
func NewClient(cfg *config.Config) (Client, error) {
	baseURL, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid host URL: %w", err)
	}

	// Initialize the HTTP client with custom transport and timeout.
	// Every request carries the application ID and auth token headers.
	httpClient := &http.Client{
		Transport: http_transport.NewAuthInjector(
			http_transport.NewUserAgentInjector(
				http_transport.NewLogTransport(http.DefaultTransport, 0),
				utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
			cfg.AppID, cfg.AuthToken),
		Timeout: http_transport.DefaultTimeout,
	}

	// Initialize the GraphQL client against the website gateway.
	webBaseURL, err := url.Parse(cfg.WebBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid web URL: %w", err)
	}

	graphQLURL := webBaseURL.JoinPath(apiGraphQLURI)
	graphqlClient := graphql.NewClient(graphQLURL.String(), graphql.WithHTTPClient(httpClient))

	// Initialize LRU caches for metadata to reduce redundant API calls.
	artistsCache, err := lru.New[string, *Artist](artistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create artists cache: %w", err)
	}

	albumsCache, err := lru.New[string, *Album](albumsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create albums cache: %w", err)
	}

	tracksCache, err := lru.New[string, *Track](tracksCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracks cache: %w", err)
	}

	playlistsCache, err := lru.New[string, *Playlist](playlistsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlists cache: %w", err)
	}

	client := &ClientImpl{
		cfg:            cfg,
		baseURL:        baseURL.String(),
		webBaseURL:     webBaseURL.String(),
		httpClient:     httpClient,
		graphQLClient:  graphqlClient,
		artistsCache:   artistsCache,
		albumsCache:    albumsCache,
		tracksCache:    tracksCache,
		playlistsCache: playlistsCache,
	}

	return client, nil
}

// DownloadFromURL downloads content from the specified URL.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:gosec,errcheck // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}

// FetchTrack fetches audio data from the specified URL.
func (c *ClientImpl) FetchTrack(ctx context.Context, trackURL string) (*FetchTrackResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Add a Range header to request partial content.
	request.Header.Add("Range", "bytes=0-")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:gosec,errcheck // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchTrackResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// GetAlbum retrieves metadata for the specified album, including its tracks.
// Uses an LRU cache to avoid redundant API calls for the same albums.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	if cached, ok := c.albumsCache.Get(albumID); ok {
		logger.Debugf(ctx, "Album cache hit for ID: %s", albumID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("album_id", albumID)

	result, err := fetchJSONWithQuery[Album](c, ctx, apiAlbumURI, query)
	if err != nil {
		return nil, err
	}

	album := result.Data

	// Album track payloads omit the album back-reference, restore it
	// so a track can always be tagged from its own struct.
	if album.Tracks != nil {
		for _, track := range album.Tracks.Items {
			if track.Album == nil {
				track.Album = album
			}
		}
	}

	c.albumsCache.Add(albumID, album)

	return album, nil
}

// GetAlbumPageURL constructs the public website URL for a specific album.
func (c *ClientImpl) GetAlbumPageURL(albumID string) (string, error) {
	return url.JoinPath(c.webBaseURL, "album", albumID)
}

// GetArtist retrieves metadata for the specified artist.
// Uses an LRU cache to avoid redundant API calls for the same artists.
func (c *ClientImpl) GetArtist(ctx context.Context, artistID string) (*Artist, error) {
	if cached, ok := c.artistsCache.Get(artistID); ok {
		logger.Debugf(ctx, "Artist cache hit for ID: %s", artistID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("artist_id", artistID)

	result, err := fetchJSONWithQuery[Artist](c, ctx, apiArtistURI, query)
	if err != nil {
		return nil, err
	}

	c.artistsCache.Add(artistID, result.Data)

	return result.Data, nil
}

// GetArtistReleaseIDs retrieves release IDs for a specific artist.
func (c *ClientImpl) GetArtistReleaseIDs(ctx context.Context, artistID string, offset, limit int) ([]string, error) {
	graphqlRequest := graphql.NewRequest(`
		query getArtistReleases($id: ID!, $limit: Int!, $offset: Int!) {
			getArtists(ids: [$id]) {
				__typename
				releases(limit: $limit, offset: $offset) {
					__typename
					...ReleaseGqlFragment
				}
			}
		}
		fragment ReleaseGqlFragment on Release {
			id
		}
	`)

	graphqlRequest.Header.Add("X-App-Id", c.cfg.AppID)
	graphqlRequest.Header.Add("X-User-Auth-Token", c.cfg.AuthToken)
	graphqlRequest.Var("id", artistID)
	graphqlRequest.Var("offset", offset)
	graphqlRequest.Var("limit", limit)

	var graphQLResponse map[string]any
	if err := c.graphQLClient.Run(ctx, graphqlRequest, &graphQLResponse); err != nil {
		return nil, err
	}

	// Navigate the response map manually.
	data, ok := graphQLResponse["getArtists"].([]any)
	if !ok || len(data) == 0 {
		return nil, ErrArtistNotFound
	}

	artist, ok := data[0].(map[string]any)
	if !ok {
		return nil, ErrUnexpectedArtistResponseFormat
	}

	releases, ok := artist["releases"].([]any)
	if !ok {
		return nil, ErrUnexpectedReleasesResponseFormat
	}

	releaseIDs := make([]string, 0, len(releases))

	for _, r := range releases {
		release, hasExpectedFormat := r.(map[string]any)
		if !hasExpectedFormat {
			continue
		}

		if id, exists := release["id"].(string); exists && id != "" {
			releaseIDs = append(releaseIDs, id)
		}
	}

	return releaseIDs, nil
}

// GetBaseURL returns the base URL of the catalog API.
func (c *ClientImpl) GetBaseURL() string {
	return c.baseURL
}

// GetFileURL resolves a track to a download URL for the requested audio format.
// The API may grant a lower format than requested; the granted format
// is reported in the result. Rate-limited requests are retried with a
// randomized pause between attempts.
func (c *ClientImpl) GetFileURL(ctx context.Context, trackID string, formatID int64) (*FileURL, error) {
	query := url.Values{}
	query.Set("track_id", trackID)
	query.Set("format_id", fmt.Sprintf("%d", formatID))
	query.Set("intent", fileURLIntent)

	var result *FileURL

	for i := range c.cfg.RetryAttemptsCount {
		fetchResult, err := fetchJSONWithQuery[FileURL](c, ctx, apiFileURLURI, query)
		if err == nil {
			result = fetchResult.Data

			break
		}

		// Retry on rate limiting only.
		if i < c.cfg.RetryAttemptsCount-1 && fetchResult != nil && fetchResult.StatusCode == http.StatusTooManyRequests {
			logger.Infof(ctx, "Retrying due to error (%d attempts left): %v", c.cfg.RetryAttemptsCount-i-1, err)
			utils.RandomPause(c.cfg.ParsedMinRetryPause, c.cfg.ParsedMaxRetryPause)

			continue
		}

		return nil, err
	}

	if result == nil {
		return nil, ErrFailedToResolveFileURL
	}

	if result.URL == "" {
		return nil, ErrEmptyFileURL
	}

	return result, nil
}

// GetPlaylist retrieves metadata for the specified playlist, including its tracks.
// Uses an LRU cache to avoid redundant API calls for the same playlists.
func (c *ClientImpl) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	if cached, ok := c.playlistsCache.Get(playlistID); ok {
		logger.Debugf(ctx, "Playlist cache hit for ID: %s", playlistID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("playlist_id", playlistID)
	query.Set("extra", "tracks")
	query.Set("limit", playlistTracksLimit)

	result, err := fetchJSONWithQuery[Playlist](c, ctx, apiPlaylistURI, query)
	if err != nil {
		return nil, err
	}

	c.playlistsCache.Add(playlistID, result.Data)

	return result.Data, nil
}

// GetTrack retrieves metadata for the specified track.
// Uses an LRU cache to avoid redundant API calls for the same tracks.
func (c *ClientImpl) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	if cached, ok := c.tracksCache.Get(trackID); ok {
		logger.Debugf(ctx, "Track cache hit for ID: %s", trackID)

		return cached, nil
	}

	query := url.Values{}
	query.Set("track_id", trackID)

	result, err := fetchJSONWithQuery[Track](c, ctx, apiTrackURI, query)
	if err != nil {
		return nil, err
	}

	c.tracksCache.Add(trackID, result.Data)

	return result.Data, nil
}
