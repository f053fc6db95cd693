package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/utils"
)

// DownloadPlaylist downloads every track of a playlist.
// Playlist tracks keep their playlist order and land in a single folder
// named after the playlist.
func (s *ServiceImpl) DownloadPlaylist(ctx context.Context, playlistID string, opts *Options) *AggregateResult {
	opts = s.normalizeOptions(opts)

	aggregate := &AggregateResult{
		Category: DownloadCategoryPlaylist,
		Success:  true,
	}

	playlist, err := s.catalogClient.GetPlaylist(ctx, playlistID)
	if err != nil || playlist == nil {
		if err == nil {
			err = fmt.Errorf("playlist with ID '%s': %w", playlistID, ErrPlaylistNotFound)
		}

		logger.Errorf(ctx, "Failed to get metadata for playlist with ID '%s': %v", playlistID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryPlaylist,
			ItemID:    playlistID,
			ItemTitle: "Unknown Playlist",
			Phase:     "fetching metadata",
		}, err)

		aggregate.Success = false

		return aggregate
	}

	collection := s.registerPlaylistCollection(ctx, playlist, opts)
	if collection == nil {
		aggregate.Title = playlist.Name
		aggregate.Success = false

		return aggregate
	}

	return s.downloadTracks(ctx, collection, opts)
}

// registerPlaylistCollection prepares a playlist for download: folder
// creation, template tags, and the collection registry entry.
func (s *ServiceImpl) registerPlaylistCollection(
	ctx context.Context,
	playlist *qobuz.Playlist,
	opts *Options,
) *audioCollection {
	logger.Infof(ctx, "Downloading playlist: %s", playlist.Name)

	// Generate a sanitized folder name for the playlist and truncate if necessary.
	playlistFolderName := s.truncateFolderName(ctx, "Playlist", utils.SanitizeFilename(playlist.Name))
	playlistPath := filepath.Join(opts.OutputDir, playlistFolderName)

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would create playlist folder: %s", playlistPath)
	} else if err := os.MkdirAll(playlistPath, defaultFolderPermissions); err != nil {
		logger.Errorf(ctx, "Failed to create playlist folder '%s': %v", playlistPath, err)

		return nil
	}

	tracks := playlistTracks(playlist)
	playlistIDString := strconv.FormatInt(playlist.ID, 10)

	s.audioCollectionsMutex.Lock()
	defer s.audioCollectionsMutex.Unlock()

	key := ShortDownloadItem{
		Category: DownloadCategoryPlaylist,
		ItemID:   playlistIDString,
	}
	collection := &audioCollection{
		category: DownloadCategoryPlaylist,
		itemID:   playlistIDString,
		title:    playlist.Name,
		tags: map[string]string{
			"playlist":    playlist.Name,
			"playlist_id": playlistIDString,
		},
		// Playlist tracks carry their own album references; there is no
		// collection-wide release.
		album:       nil,
		tracks:      tracks,
		tracksPath:  playlistPath,
		coverPath:   "",
		tracksCount: int64(len(tracks)),
	}

	s.audioCollections[key] = collection

	return collection
}

// playlistTracks extracts the track listing, tolerating playlists
// fetched without one.
func playlistTracks(playlist *qobuz.Playlist) []*qobuz.Track {
	if playlist == nil || playlist.Tracks == nil {
		return nil
	}

	return playlist.Tracks.Items
}
