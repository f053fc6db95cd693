package downloader

import (
	"context"
	"errors"
)

// Common errors for the download pipeline.
var (
	// ErrTrackNotFound indicates that the requested track was not found.
	ErrTrackNotFound = errors.New("track not found")
	// ErrAlbumNotFound indicates that the requested album was not found.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrPlaylistNotFound indicates that the requested playlist was not found.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrIncompleteDownload indicates that the downloaded file size doesn't match expected size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrNoStreamableFormat indicates that no acceptable format yielded a download URL.
	ErrNoStreamableFormat = errors.New("no streamable format available")
	// ErrDurationBelowThreshold indicates that track duration is below the configured minimum.
	ErrDurationBelowThreshold = errors.New("duration below minimum threshold")
	// ErrDurationAboveThreshold indicates that track duration exceeds the configured maximum.
	ErrDurationAboveThreshold = errors.New("duration above maximum threshold")
)

// ErrorContext provides context information for download errors.
type ErrorContext struct {
	// Category is the type of item that failed (track, album, playlist, artist).
	Category DownloadCategory
	// ItemID is the unique identifier of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item (for albums/playlists/artists).
	ItemURL string
	// Phase indicates when the error occurred (e.g., "fetching metadata", "downloading file").
	Phase string
	// ParentCategory is the type of parent collection (album/playlist) for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// recordError records an error in the statistics with proper context.
// Context cancellation errors are ignored as they are expected during graceful shutdown.
func (s *ServiceImpl) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	// Don't record context cancellation as an error - it's expected when user presses CTRL+C.
	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	downloadErr := DownloadError{
		Category:       errCtx.Category,
		ItemID:         errCtx.ItemID,
		ItemTitle:      errCtx.ItemTitle,
		ItemURL:        errCtx.ItemURL,
		ErrorMessage:   err.Error(),
		Phase:          errCtx.Phase,
		ParentCategory: errCtx.ParentCategory,
		ParentID:       errCtx.ParentID,
		ParentTitle:    errCtx.ParentTitle,
	}

	s.stats.Errors = append(s.stats.Errors, downloadErr)
}
