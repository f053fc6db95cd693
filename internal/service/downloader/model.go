package downloader

import (
	"fmt"
	"os"
	"time"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/metadata"
)

const (
	// defaultFolderPermissions sets the default permissions for folders: (rwxr-xr-x).
	defaultFolderPermissions os.FileMode = 0o755

	// File extensions.
	extensionMP3  = ".mp3"
	extensionFLAC = ".flac"
	extensionLRC  = ".lrc"
	extensionTXT  = ".txt"

	// Default filenames and values.
	defaultCoverBasename      = "cover"
	defaultCoverExtension     = ".jpg"
	defaultCoverMimeType      = "image/jpeg"
	trackNumberPaddingWidth   = 2
	previewMaxDurationSeconds = 30
	maxCoverSizeBytes         = 20 * 1024 * 1024
	partFileSuffix            = ".part"
)

// DownloadCategory represents the type of content being downloaded.
type DownloadCategory uint8

const (
	// DownloadCategoryUnknown - unknown category.
	DownloadCategoryUnknown DownloadCategory = iota
	// DownloadCategoryTrack - single track.
	DownloadCategoryTrack
	// DownloadCategoryAlbum - full album.
	DownloadCategoryAlbum
	// DownloadCategoryPlaylist - playlist.
	DownloadCategoryPlaylist
	// DownloadCategoryArtist - complete artist's discography.
	DownloadCategoryArtist
)

// String returns a human-readable representation of the DownloadCategory.
func (dc DownloadCategory) String() string {
	switch dc {
	case DownloadCategoryUnknown:
		return "unknown"
	case DownloadCategoryTrack:
		return "track"
	case DownloadCategoryAlbum:
		return "album"
	case DownloadCategoryPlaylist:
		return "playlist"
	case DownloadCategoryArtist:
		return "artist"
	default:
		return fmt.Sprintf("unknown: %d", dc)
	}
}

// SkipReason represents why a track was skipped.
type SkipReason uint8

const (
	// SkipReasonNone - track was not skipped.
	SkipReasonNone SkipReason = iota
	// SkipReasonExists - track file already exists.
	SkipReasonExists
	// SkipReasonDuration - track duration outside acceptable range.
	SkipReasonDuration
)

// String returns a human-readable representation of the SkipReason.
func (sr SkipReason) String() string {
	switch sr {
	case SkipReasonNone:
		return "not skipped"
	case SkipReasonExists:
		return "already exists"
	case SkipReasonDuration:
		return "duration filter"
	default:
		return fmt.Sprintf("unknown reason: %d", sr)
	}
}

// DownloadItem represents a full downloadable item, including its category, URL, and unique identifier.
type DownloadItem struct {
	// Category is the type of content (track, album, playlist, artist).
	Category DownloadCategory
	// URL is the direct URL to the item.
	URL string
	// ItemID is the unique identifier of the item.
	ItemID string
}

// String returns a human-readable representation of the DownloadItem.
func (di DownloadItem) String() string {
	return fmt.Sprintf("category: %v, ID: %s", di.Category, di.ItemID)
}

// GetShortVersion converts a full DownloadItem into a ShortDownloadItem by stripping the URL.
func (di DownloadItem) GetShortVersion() ShortDownloadItem {
	return ShortDownloadItem{
		Category: di.Category,
		ItemID:   di.ItemID,
	}
}

// ShortDownloadItem is a lightweight version of DownloadItem without the URL.
// It is useful when storing or processing items without needing the actual download link.
type ShortDownloadItem struct {
	// Category is the type of content.
	Category DownloadCategory
	// ItemID is the unique identifier of the item.
	ItemID string
}

// Options adjusts how a single entry-point call downloads its tracks.
// A nil Options is valid and falls back to configuration defaults.
type Options struct {
	// OutputDir overrides the configured output path when non-empty.
	OutputDir string
	// OnProgress receives progress events for every track of the call.
	OnProgress func(ProgressEvent)
	// OnMetadata receives the merged metadata record before tagging.
	OnMetadata func(*metadata.Record)
	// OnQuality receives the resolved format once per track.
	OnQuality func(trackID string, formatID int64)
	// TrackIndices restricts an album or playlist download to the given
	// one-based positions. Empty means all tracks.
	TrackIndices []int64
	// SkipExisting skips tracks whose final file already exists.
	SkipExisting bool
}

// Result describes the outcome of a single track download.
type Result struct {
	// TrackID is the catalog identifier of the track.
	TrackID string
	// Path is the final file location, empty on failure.
	Path string
	// FormatID is the audio format the track was downloaded in.
	FormatID int64
	// Success indicates the track was downloaded and tagged.
	Success bool
	// Skipped indicates the track was intentionally not downloaded.
	Skipped bool
	// SkipReason explains a skip.
	SkipReason SkipReason
	// Err holds the failure, nil on success or skip.
	Err error
}

// AggregateResult summarizes the per-track outcomes of a collection download.
type AggregateResult struct {
	// Title is the collection title.
	Title string
	// Category is the collection type.
	Category DownloadCategory
	// TotalTracks is the number of tracks attempted.
	TotalTracks int64
	// CompletedTracks is the number of tracks downloaded successfully.
	CompletedTracks int64
	// FailedTracks is the number of tracks that failed.
	FailedTracks int64
	// SkippedTracks is the number of tracks skipped.
	SkippedTracks int64
	// Success is true only when no track failed.
	Success bool
	// Results holds the per-track outcomes in download order.
	Results []*Result
}

// add folds a track result into the aggregate counters.
func (ar *AggregateResult) add(result *Result) {
	if result == nil {
		return
	}

	ar.TotalTracks++

	switch {
	case result.Skipped:
		ar.SkippedTracks++
	case result.Success:
		ar.CompletedTracks++
	default:
		ar.FailedTracks++
	}

	ar.Success = ar.FailedTracks == 0
	ar.Results = append(ar.Results, result)
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session completed.
	EndTime time.Time
	// IsDryRun indicates if this was a dry-run preview.
	IsDryRun bool
	// TotalTracksProcessed is the total number of tracks attempted.
	TotalTracksProcessed int64
	// TracksDownloaded is the number of tracks successfully downloaded.
	TracksDownloaded int64
	// TracksSkipped is the total number of tracks skipped for any reason.
	TracksSkipped int64
	// TracksSkippedExists is the number of tracks skipped because they already exist.
	TracksSkippedExists int64
	// TracksSkippedDuration is the number of tracks skipped due to duration thresholds.
	TracksSkippedDuration int64
	// TracksFailed is the number of tracks that failed to download.
	TracksFailed int64
	// TotalBytesDownloaded is the total size of downloaded content in bytes.
	TotalBytesDownloaded int64
	// LyricsDownloaded is the number of lyrics fetched.
	LyricsDownloaded int64
	// CoversDownloaded is the number of cover art files downloaded.
	CoversDownloaded int64
	// Errors is a list of all errors encountered during the download process.
	Errors []DownloadError
}

// DownloadError represents a single error that occurred during download.
type DownloadError struct {
	// Category is the type of item that failed (track, album, playlist, artist).
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item (for albums/playlists/artists).
	ItemURL string
	// ErrorMessage is the error message.
	ErrorMessage string
	// Phase indicates when the error occurred (e.g., "fetching metadata", "downloading file").
	Phase string
	// ParentCategory is the type of parent collection (album/playlist) for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// downloadFileResult contains the result of the raw audio transfer.
type downloadFileResult struct {
	// tempPath is the path to the temporary .part file.
	tempPath string
	// bytesDownloaded is the number of bytes successfully downloaded.
	bytesDownloaded int64
}

// audioCollection represents a collection of audio tracks with associated metadata.
type audioCollection struct {
	// category indicates the type of collection (album or playlist).
	category DownloadCategory
	// itemID is the collection identifier.
	itemID string
	// title is the collection name.
	title string
	// tags contains template placeholder values shared by the collection's tracks.
	tags map[string]string
	// album is the release the collection was built from, nil for playlists.
	album *qobuz.Album
	// tracks is the track listing in collection order.
	tracks []*qobuz.Track
	// tracksPath is the directory path where tracks will be saved.
	tracksPath string
	// coverPath is the file path for the collection's cover art, empty when absent.
	coverPath string
	// tracksCount is the total number of tracks in the collection.
	tracksCount int64
}
