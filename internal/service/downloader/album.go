package downloader

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/metadata"
	"github.com/anorlov/qobuz-grabber/internal/utils"
)

// releaseDateYearLength is the number of leading characters of a
// "2006-01-02" date that form the year.
const releaseDateYearLength = 4

// DownloadAlbum downloads every track of an album.
func (s *ServiceImpl) DownloadAlbum(ctx context.Context, albumID string, opts *Options) *AggregateResult {
	opts = s.normalizeOptions(opts)

	aggregate := &AggregateResult{
		Category: DownloadCategoryAlbum,
		Success:  true,
	}

	album, err := s.catalogClient.GetAlbum(ctx, albumID)
	if err != nil || album == nil {
		if err == nil {
			err = fmt.Errorf("album with ID '%s': %w", albumID, ErrAlbumNotFound)
		}

		logger.Errorf(ctx, "Failed to fetch album data for ID '%s': %v", albumID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryAlbum,
			ItemID:    albumID,
			ItemTitle: "Unknown Album",
			Phase:     "fetching metadata",
		}, err)

		aggregate.Success = false

		return aggregate
	}

	collection := s.registerAlbumCollection(ctx, album, opts, true)
	if collection == nil {
		aggregate.Title = album.Title
		aggregate.Success = false

		return aggregate
	}

	return s.downloadTracks(ctx, collection, opts)
}

// getOrRegisterAlbumCollection returns the cached collection for a
// track's album, registering it (folder + cover) on first use.
func (s *ServiceImpl) getOrRegisterAlbumCollection(
	ctx context.Context,
	albumRef *qobuz.Album,
	opts *Options,
) *audioCollection {
	if albumRef == nil {
		return nil
	}

	s.audioCollectionsMutex.Lock()

	key := ShortDownloadItem{
		Category: DownloadCategoryAlbum,
		ItemID:   albumRef.ID,
	}
	collection, exists := s.audioCollections[key]

	s.audioCollectionsMutex.Unlock()

	if exists && collection != nil {
		return collection
	}

	// Track responses embed a trimmed album; fetch the full release so
	// tags and the track count are complete.
	album, err := s.catalogClient.GetAlbum(ctx, albumRef.ID)
	if err != nil || album == nil {
		logger.Errorf(ctx, "Failed to fetch album data for ID '%s': %v", albumRef.ID, err)

		return nil
	}

	return s.registerAlbumCollection(ctx, album, opts, false)
}

// registerAlbumCollection prepares an album for download: folder
// creation, cover art, template tags, and the collection registry entry.
func (s *ServiceImpl) registerAlbumCollection(
	ctx context.Context,
	album *qobuz.Album,
	opts *Options,
	isAlbumDownload bool,
) *audioCollection {
	albumTags := s.fillAlbumTagsForTemplating(album)

	if isAlbumDownload {
		logger.Infof(
			ctx,
			"Downloading '%s - %s (%s)'",
			albumTags["artist"],
			albumTags["album"],
			albumTags["year"])
	}

	tracks := albumTracks(album)

	// Determine if the album is a single and should not have a dedicated folder.
	isSingleWithoutFolder := !s.cfg.CreateFolderForSingles && len(tracks) == 1
	albumFolderName := ""

	if !isSingleWithoutFolder {
		// Template output may contain separators and invalid characters.
		rawAlbumFolderName := s.templateManager.GetAlbumFolderName(ctx, albumTags)
		albumFolderName = s.generateSanitizedFolderPath(ctx, rawAlbumFolderName)
	}

	albumPath := filepath.Join(opts.OutputDir, albumFolderName)

	albumCoverPath := ""

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would create album folder: %s", albumPath)
	} else {
		if err := os.MkdirAll(albumPath, defaultFolderPermissions); err != nil {
			logger.Errorf(ctx, "Failed to create album folder '%s': %v", albumPath, err)

			return nil
		}

		albumCoverPath = s.downloadAlbumCover(ctx, album, albumPath)
	}

	s.audioCollectionsMutex.Lock()
	defer s.audioCollectionsMutex.Unlock()

	key := ShortDownloadItem{
		Category: DownloadCategoryAlbum,
		ItemID:   album.ID,
	}
	collection := &audioCollection{
		category:    DownloadCategoryAlbum,
		itemID:      album.ID,
		title:       albumTags["album"],
		tags:        albumTags,
		album:       album,
		tracks:      tracks,
		tracksPath:  albumPath,
		coverPath:   albumCoverPath,
		tracksCount: int64(len(tracks)),
	}

	s.audioCollections[key] = collection

	return collection
}

// albumTracks extracts the track listing, tolerating albums fetched
// without one.
func albumTracks(album *qobuz.Album) []*qobuz.Track {
	if album == nil || album.Tracks == nil {
		return nil
	}

	return album.Tracks.Items
}

// fillAlbumTagsForTemplating builds the album-level placeholder values.
func (s *ServiceImpl) fillAlbumTagsForTemplating(album *qobuz.Album) map[string]string {
	albumTitle := album.Title
	if album.Version != "" && !strings.Contains(strings.ToLower(albumTitle), strings.ToLower(album.Version)) {
		albumTitle = albumTitle + " (" + album.Version + ")"
	}

	year := ""
	if len(album.ReleaseDateOriginal) >= releaseDateYearLength {
		year = album.ReleaseDateOriginal[:releaseDateYearLength]
	}

	return map[string]string{
		"artist":       album.Artist.Name,
		"album":        albumTitle,
		"album_id":     album.ID,
		"year":         year,
		"label":        album.Label.Name,
		"genre":        metadata.TranslateGenre(album.Genre.Name),
		"total_tracks": fmt.Sprintf("%d", album.TracksCount),
	}
}

// downloadAlbumCover fetches the largest cover into the album folder.
// The saved file doubles as the embedding source for the album's tracks.
func (s *ServiceImpl) downloadAlbumCover(
	ctx context.Context,
	album *qobuz.Album,
	albumPath string,
) string {
	coverURL := strings.TrimSpace(album.Image.Large)
	if coverURL == "" {
		coverURL = strings.TrimSpace(album.Image.Small)
	}

	if coverURL == "" {
		return ""
	}

	coverExtension := defaultCoverExtension

	if parsedURL, err := url.Parse(coverURL); err == nil {
		if ext := path.Ext(parsedURL.Path); ext != "" {
			coverExtension = ext
		}
	}

	coverFilename := utils.SetFileExtension(defaultCoverBasename, coverExtension, false)
	coverPath := filepath.Join(albumPath, coverFilename)

	if err := s.downloadAndSaveFile(ctx, coverURL, coverPath, false); err != nil {
		logger.Errorf(ctx, "Failed to download album cover: %v", err)

		return ""
	}

	s.incrementCoverDownloaded()

	return coverPath
}
