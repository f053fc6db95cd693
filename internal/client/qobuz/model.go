package qobuz

// FetchJSONResult wraps a decoded JSON payload together with the HTTP status code,
// so callers can react to specific statuses (rate limiting in particular).
type FetchJSONResult[T any] struct {
	// Data is the decoded response payload, nil when decoding failed.
	Data *T
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Artist represents a catalog artist.
type Artist struct {
	// ID is the artist identifier.
	ID int64 `json:"id"`
	// Name is the artist display name.
	Name string `json:"name"`
	// AlbumsCount is the number of releases attributed to the artist.
	AlbumsCount int64 `json:"albums_count"`
}

// AlbumArtist represents an artist credited on an album together with their roles.
type AlbumArtist struct {
	// ID is the artist identifier.
	ID int64 `json:"id"`
	// Name is the artist display name.
	Name string `json:"name"`
	// Roles lists the credit roles, e.g. "main-artist" or "featured-artist".
	Roles []string `json:"roles"`
}

// Genre represents a catalog genre.
// Name may carry a localized hierarchy delimited by "→",
// e.g. "Rock→Rock alternatif et Indé".
type Genre struct {
	// ID is the genre identifier.
	ID int64 `json:"id"`
	// Name is the genre display name.
	Name string `json:"name"`
}

// Label represents a record label.
type Label struct {
	// ID is the label identifier.
	ID int64 `json:"id"`
	// Name is the label display name.
	Name string `json:"name"`
}

// Image holds cover art URLs in the sizes the catalog provides.
type Image struct {
	// Small is the small cover URL.
	Small string `json:"small"`
	// Thumbnail is the thumbnail cover URL.
	Thumbnail string `json:"thumbnail"`
	// Large is the largest cover URL the catalog serves.
	Large string `json:"large"`
}

// Album represents a release with its metadata and, when requested, its tracks.
type Album struct {
	// ID is the release identifier.
	ID string `json:"id"`
	// Title is the release title.
	Title string `json:"title"`
	// Version is the release version qualifier, e.g. "Deluxe Edition".
	Version string `json:"version"`
	// Artist is the main credited artist.
	Artist Artist `json:"artist"`
	// Artists lists all credited artists with their roles.
	Artists []AlbumArtist `json:"artists"`
	// Genre is the release genre.
	Genre Genre `json:"genre"`
	// Label is the record label.
	Label Label `json:"label"`
	// Image holds the cover art URLs.
	Image Image `json:"image"`
	// ReleaseDateOriginal is the original release date in "2006-01-02" format.
	ReleaseDateOriginal string `json:"release_date_original"`
	// TracksCount is the total number of tracks on the release.
	TracksCount int64 `json:"tracks_count"`
	// MediaCount is the number of discs in the release.
	MediaCount int64 `json:"media_count"`
	// UPC is the release barcode.
	UPC string `json:"upc"`
	// Copyright is the copyright line.
	Copyright string `json:"copyright"`
	// ReleaseType distinguishes albums, EPs and singles.
	ReleaseType string `json:"release_type"`
	// Tracks holds the track listing when the album was fetched with tracks.
	Tracks *TrackList `json:"tracks"`
}

// TrackList is a paged list of tracks.
type TrackList struct {
	// Items are the tracks on this page.
	Items []*Track `json:"items"`
	// Total is the total number of tracks across all pages.
	Total int64 `json:"total"`
}

// Performer is a person credited on a track.
type Performer struct {
	// ID is the person identifier.
	ID int64 `json:"id"`
	// Name is the person display name.
	Name string `json:"name"`
}

// Track represents a catalog track.
type Track struct {
	// ID is the track identifier.
	ID int64 `json:"id"`
	// Title is the track title.
	Title string `json:"title"`
	// Version is the track version qualifier, e.g. "Remastered 2011".
	Version string `json:"version"`
	// TrackNumber is the position of the track on its disc.
	TrackNumber int64 `json:"track_number"`
	// MediaNumber is the disc the track belongs to.
	MediaNumber int64 `json:"media_number"`
	// Duration is the track length in seconds.
	Duration int64 `json:"duration"`
	// Copyright is the copyright line.
	Copyright string `json:"copyright"`
	// ISRC is the international standard recording code.
	ISRC string `json:"isrc"`
	// ParentalWarning indicates explicit content.
	ParentalWarning bool `json:"parental_warning"`
	// Performer is the main credited performer.
	Performer Performer `json:"performer"`
	// Composer is the credited composer.
	Composer Performer `json:"composer"`
	// Performers is the raw credit string,
	// formatted as "Name, Role1, Role2 - Name, Role" by the catalog.
	Performers string `json:"performers"`
	// Album is the release the track belongs to,
	// present when the track was fetched standalone or through a playlist.
	Album *Album `json:"album"`
}

// Playlist represents a user playlist with its tracks.
type Playlist struct {
	// ID is the playlist identifier.
	ID int64 `json:"id"`
	// Name is the playlist name.
	Name string `json:"name"`
	// Description is the playlist description.
	Description string `json:"description"`
	// Owner is the playlist owner.
	Owner Performer `json:"owner"`
	// TracksCount is the total number of tracks in the playlist.
	TracksCount int64 `json:"tracks_count"`
	// Duration is the playlist length in seconds.
	Duration int64 `json:"duration"`
	// Tracks holds the playlist track listing.
	Tracks *TrackList `json:"tracks"`
}

// FileURL is the result of resolving a track to a downloadable URL.
type FileURL struct {
	// URL is the signed download URL, empty when the format is not available.
	URL string `json:"url"`
	// FormatID is the format actually granted, which may differ from the requested one.
	FormatID int64 `json:"format_id"`
	// MimeType is the MIME type of the audio payload.
	MimeType string `json:"mime_type"`
	// SamplingRate is the sampling rate in kHz.
	SamplingRate float64 `json:"sampling_rate"`
	// BitDepth is the bit depth of the audio payload.
	BitDepth int64 `json:"bit_depth"`
	// Duration is the playable length in seconds.
	Duration int64 `json:"duration"`
	// Sample indicates the URL serves only a short preview snippet.
	Sample bool `json:"sample"`
	// TrackID is the track the URL belongs to.
	TrackID int64 `json:"track_id"`
}

// apiError is the error payload the catalog returns on non-200 responses.
type apiError struct {
	// Status is always "error" on failures.
	Status string `json:"status"`
	// Code is the numeric error code.
	Code int64 `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
}
