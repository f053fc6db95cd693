package qobuz

const (
	// apiTrackURI is the URI path for track metadata.
	apiTrackURI = "track/get"
	// apiAlbumURI is the URI path for album metadata.
	apiAlbumURI = "album/get"
	// apiPlaylistURI is the URI path for playlist metadata.
	apiPlaylistURI = "playlist/get"
	// apiArtistURI is the URI path for artist metadata.
	apiArtistURI = "artist/get"
	// apiFileURLURI is the URI path resolving a track to a download URL.
	apiFileURLURI = "track/getFileUrl"
	// apiGraphQLURI is the URI path for the GraphQL gateway.
	apiGraphQLURI = "api/graphql"
)

const (
	// playlistTracksLimit is the page size used when requesting playlist tracks.
	playlistTracksLimit = "500"
	// fileURLIntent tells the API the URL is requested for streaming a full track.
	fileURLIntent = "stream"
)

const (
	// artistsCacheSize defines the maximum number of artist entries to cache.
	// A batch rarely touches more than a handful of artists.
	artistsCacheSize = 500
	// albumsCacheSize defines the maximum number of album entries to cache.
	// Sized to hold recent albums accessed during typical usage.
	albumsCacheSize = 5000
	// tracksCacheSize defines the maximum number of track entries to cache.
	// Sized to hold recently accessed tracks.
	tracksCacheSize = 10000
	// playlistsCacheSize defines the maximum number of playlist entries to cache.
	// Playlists don't change frequently, so we cache them.
	playlistsCacheSize = 2000
)
