package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/anorlov/qobuz-grabber/internal/client/lyrics"
	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/constants"
	"github.com/anorlov/qobuz-grabber/internal/history"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/metadata"
	"github.com/anorlov/qobuz-grabber/internal/tag"
	"github.com/anorlov/qobuz-grabber/internal/utils"
)

// downloadTrackRequest contains parameters for downloading a single track.
type downloadTrackRequest struct {
	// position is the one-based position of the track in its collection.
	position int64
	// track is the catalog track to download.
	track *qobuz.Track
	// collection is the album or playlist the track belongs to.
	collection *audioCollection
	// opts are the normalized per-call options.
	opts *Options
}

// DownloadTrack downloads a single track by its catalog ID.
func (s *ServiceImpl) DownloadTrack(ctx context.Context, trackID string, opts *Options) *Result {
	opts = s.normalizeOptions(opts)

	track, err := s.catalogClient.GetTrack(ctx, trackID)
	if err != nil || track == nil {
		if err == nil {
			err = fmt.Errorf("track with ID '%s': %w", trackID, ErrTrackNotFound)
		}

		if !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "Failed to get track metadata: %v", err)
		}

		s.incrementTrackFailed()
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryTrack,
			ItemID:    trackID,
			ItemTitle: "Unknown Track",
			Phase:     "fetching metadata",
		}, err)

		return &Result{TrackID: trackID, Err: err}
	}

	// Standalone tracks live in their album's folder, so the album
	// collection gets registered (and its cover fetched) on demand.
	collection := s.getOrRegisterAlbumCollection(ctx, track.Album, opts)
	if collection == nil {
		err = fmt.Errorf("track with ID '%s': %w", trackID, ErrAlbumNotFound)
		s.incrementTrackFailed()
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryTrack,
			ItemID:    trackID,
			ItemTitle: track.Title,
			Phase:     "preparing album folder",
		}, err)

		return &Result{TrackID: trackID, Err: err}
	}

	return s.executeTrackDownload(ctx, track.TrackNumber, track, collection, opts)
}

// executeTrackDownload runs one track through the pipeline under its own
// cancelable context, then applies the politeness pause.
// This is the common logic shared between sequential and concurrent downloads.
func (s *ServiceImpl) executeTrackDownload(
	ctx context.Context,
	position int64,
	track *qobuz.Track,
	collection *audioCollection,
	opts *Options,
) *Result {
	trackID := strconv.FormatInt(track.ID, 10)

	trackCtx, cancel := s.registerTrackCancel(ctx, trackID)
	defer func() {
		cancel()
		s.unregisterTrackCancel(trackID)
	}()

	result := s.downloadTrack(trackCtx, &downloadTrackRequest{
		position:   position,
		track:      track,
		collection: collection,
		opts:       opts,
	})

	// Add a random pause between downloads to avoid rate limiting.
	utils.RandomPause(0, s.cfg.ParsedMaxDownloadPause)

	return result
}

// downloadTracks downloads a collection's tracks, sequentially or under
// a bounded worker pool, and aggregates the per-track outcomes.
func (s *ServiceImpl) downloadTracks(
	ctx context.Context,
	collection *audioCollection,
	opts *Options,
) *AggregateResult {
	tracks := filterTracksByIndices(collection.tracks, opts.TrackIndices)

	aggregate := &AggregateResult{
		Title:    collection.title,
		Category: collection.category,
		Success:  true,
	}

	results := make([]*Result, len(tracks))

	maxConcurrent := s.cfg.MaxConcurrentDownloads
	if maxConcurrent <= 1 {
		// Sequential download (default behavior when maxConcurrent == 1).
		for i, track := range tracks {
			// Check if context was canceled (CTRL+C pressed) - stop immediately.
			select {
			case <-ctx.Done():
				goto collectResults
			default:
			}

			results[i] = s.executeTrackDownload(ctx, int64(i)+1, track, collection, opts)
		}
	} else {
		s.downloadTracksConcurrently(ctx, tracks, collection, opts, results, maxConcurrent)
	}

collectResults:
	for _, result := range results {
		if result == nil {
			continue
		}

		aggregate.add(result)
	}

	return aggregate
}

// downloadTracksConcurrently downloads tracks using a worker pool for concurrent execution.
func (s *ServiceImpl) downloadTracksConcurrently(
	ctx context.Context,
	tracks []*qobuz.Track,
	collection *audioCollection,
	opts *Options,
	results []*Result,
	maxConcurrent int64,
) {
	// Create a semaphore channel to limit concurrent downloads.
	semaphore := make(chan struct{}, maxConcurrent)

	var waitGroup sync.WaitGroup

	// Process each track in a separate goroutine.
	for index, track := range tracks {
		// Check if context was canceled (CTRL+C pressed) - stop queueing new downloads.
		select {
		case <-ctx.Done():
			goto waitForCompletion
		default:
		}

		waitGroup.Add(1)

		go func(trackIndex int, currentTrack *qobuz.Track) {
			defer waitGroup.Done()

			// Acquire semaphore slot (blocks if all workers are busy).
			semaphore <- struct{}{}

			defer func() {
				// Release semaphore slot when done.
				<-semaphore
			}()

			results[trackIndex] = s.executeTrackDownload(
				ctx, int64(trackIndex)+1, currentTrack, collection, opts)
		}(index, track)
	}

waitForCompletion:
	// Wait for all in-flight downloads to complete.
	waitGroup.Wait()
}

// filterTracksByIndices keeps only the tracks at the given one-based
// positions. Empty indices keep everything.
func filterTracksByIndices(tracks []*qobuz.Track, indices []int64) []*qobuz.Track {
	if len(indices) == 0 {
		return tracks
	}

	wanted := make(map[int64]struct{}, len(indices))
	for _, index := range indices {
		wanted[index] = struct{}{}
	}

	filtered := make([]*qobuz.Track, 0, len(indices))

	for i, track := range tracks {
		if _, ok := wanted[int64(i)+1]; ok {
			filtered = append(filtered, track)
		}
	}

	return filtered
}

//nolint:funlen,gocognit,cyclop // Function orchestrates the download workflow with multiple sequential steps.
func (s *ServiceImpl) downloadTrack(ctx context.Context, req *downloadTrackRequest) *Result {
	var (
		track      = req.track
		collection = req.collection
		opts       = req.opts
		trackID    = strconv.FormatInt(track.ID, 10)
		result     = &Result{TrackID: trackID}
	)

	errCtx := &ErrorContext{
		Category:       DownloadCategoryTrack,
		ItemID:         trackID,
		ItemTitle:      track.Title,
		ParentCategory: collection.category,
		ParentID:       collection.itemID,
		ParentTitle:    collection.title,
	}

	s.publishProgress(opts, ProgressEvent{TrackID: trackID, Phase: PhaseDownloadStart})
	defer s.publishProgress(opts, ProgressEvent{TrackID: trackID, Phase: PhaseComplete})

	// Merge track and album metadata into the record driving tags and templates.
	record := metadata.Extract(track, collection.album)

	// Apply duration filters before any network traffic.
	if skipErr := s.checkDurationThresholds(ctx, track); skipErr != nil {
		errCtx.Phase = "duration check"
		s.incrementTrackSkipped(SkipReasonDuration)
		s.recordError(errCtx, skipErr)

		result.Skipped = true
		result.SkipReason = SkipReasonDuration

		return result
	}

	// Check for an existing file at the preferred quality before
	// touching the network at all.
	preferredTags := s.fillTrackTagsForTemplating(req.position, record, collection, s.cfg.Quality)
	if opts.SkipExisting {
		if existingPath, exists := s.finalTrackPath(ctx, preferredTags, collection, s.cfg.Quality); exists {
			logger.Infof(ctx, "Track '%s' already exists, skipping download", existingPath)
			s.incrementTrackSkipped(SkipReasonExists)

			result.Path = existingPath
			result.Skipped = true
			result.SkipReason = SkipReasonExists

			return result
		}
	}

	// Resolve the best obtainable format.
	resolution, err := s.qualityResolver.ResolveQuality(ctx, trackID, s.cfg.Quality)
	if err != nil {
		errCtx.Phase = "resolving quality"

		return s.failTrack(ctx, result, errCtx, err)
	}

	if opts.OnQuality != nil {
		opts.OnQuality(trackID, resolution.FormatID)
	}

	if resolution.IsPreview {
		logger.Warnf(ctx, "Track '%s' is a preview (sample or <=%ds)", track.Title, previewMaxDurationSeconds)
	}

	// The granted format may change the extension and the {quality}
	// placeholder, so the final path is rebuilt after resolution.
	trackTags := s.fillTrackTagsForTemplating(req.position, record, collection, resolution.FormatID)

	trackPath, exists := s.finalTrackPath(ctx, trackTags, collection, resolution.FormatID)
	if opts.SkipExisting && exists {
		logger.Infof(ctx, "Track '%s' already exists, skipping download", trackPath)
		s.incrementTrackSkipped(SkipReasonExists)

		result.Path = trackPath
		result.Skipped = true
		result.SkipReason = SkipReasonExists

		return result
	}

	result.FormatID = resolution.FormatID

	logger.Infof(
		ctx,
		"Downloading track %d of %d: %s (%s)",
		req.position,
		collection.tracksCount,
		track.Title,
		FormatName(resolution.FormatID))

	// Dry-run: report the plan without writing anything.
	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would download track to: %s", trackPath)
		s.incrementTrackDownloaded(0)

		result.Path = trackPath
		result.Success = true

		return result
	}

	downloadResult, err := s.downloadAndSaveTrack(ctx, trackID, resolution.FileURL.URL, trackPath, opts)
	if err != nil {
		errCtx.Phase = "downloading file"

		return s.failTrack(ctx, result, errCtx, err)
	}

	s.incrementTrackDownloaded(downloadResult.bytesDownloaded)

	// Lyrics and cover art are best-effort; their failures never fail the track.
	s.publishProgress(opts, ProgressEvent{TrackID: trackID, Phase: PhaseLyrics})

	trackLyrics := s.fetchLyrics(ctx, record)
	s.writeLyricsSidecar(ctx, trackLyrics, trackPath)

	s.publishProgress(opts, ProgressEvent{TrackID: trackID, Phase: PhaseCover})

	cover, coverMimeType := s.loadCoverArt(ctx, collection, track)

	if opts.OnMetadata != nil {
		opts.OnMetadata(record)
	}

	// Write metadata tags to the .part file BEFORE renaming, so the
	// final path only ever holds a fully tagged file.
	s.publishProgress(opts, ProgressEvent{TrackID: trackID, Phase: PhaseTagging})

	writeTagsRequest := &tag.WriteRequest{
		TrackPath:     downloadResult.tempPath,
		Format:        tagFormatForFormatID(resolution.FormatID),
		Tags:          record.VorbisTags(),
		Lyrics:        trackLyrics,
		Cover:         cover,
		CoverMimeType: coverMimeType,
	}

	if err = s.tagProcessor.WriteTags(ctx, writeTagsRequest); err != nil {
		errCtx.Phase = "writing metadata tags"

		// Clean up the .part file on tagging failure.
		_ = os.Remove(downloadResult.tempPath)

		return s.failTrack(ctx, result, errCtx, err)
	}

	// Atomically rename the .part file to its final name.
	if err = os.Rename(downloadResult.tempPath, trackPath); err != nil {
		errCtx.Phase = "renaming temporary file"

		_ = os.Remove(downloadResult.tempPath)

		return s.failTrack(ctx, result, errCtx, err)
	}

	s.recordHistory(ctx, trackID, record, trackPath, resolution.FormatID)

	result.Path = trackPath
	result.Success = true

	return result
}

// failTrack finalizes a failed result: logging, statistics and error bookkeeping.
func (s *ServiceImpl) failTrack(ctx context.Context, result *Result, errCtx *ErrorContext, err error) *Result {
	// Don't log context cancellation - it's expected when user presses CTRL+C.
	if !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "%s failed: %v", errCtx.Phase, err)
	}

	s.incrementTrackFailed()
	s.recordError(errCtx, err)

	result.Err = err

	return result
}

// checkDurationThresholds enforces the configured duration window.
func (s *ServiceImpl) checkDurationThresholds(ctx context.Context, track *qobuz.Track) error {
	duration := time.Duration(track.Duration) * time.Second

	if s.cfg.ParsedMinDuration > 0 && duration < s.cfg.ParsedMinDuration {
		logger.Warnf(ctx, "Track duration %ds is below minimum threshold %s, skipping",
			track.Duration, s.cfg.ParsedMinDuration)

		return fmt.Errorf("%w: %ds below %s", ErrDurationBelowThreshold, track.Duration, s.cfg.ParsedMinDuration)
	}

	if s.cfg.ParsedMaxDuration > 0 && duration > s.cfg.ParsedMaxDuration {
		logger.Warnf(ctx, "Track duration %ds exceeds maximum threshold %s, skipping",
			track.Duration, s.cfg.ParsedMaxDuration)

		return fmt.Errorf("%w: %ds exceeds %s", ErrDurationAboveThreshold, track.Duration, s.cfg.ParsedMaxDuration)
	}

	return nil
}

// finalTrackPath renders the track filename from its template and
// reports whether a file already exists at the resulting path.
func (s *ServiceImpl) finalTrackPath(
	ctx context.Context,
	trackTags map[string]string,
	collection *audioCollection,
	formatID int64,
) (string, bool) {
	isPlaylist := collection.category == DownloadCategoryPlaylist

	filename := s.templateManager.GetTrackFilename(ctx, isPlaylist, trackTags, collection.tracksCount)
	filename = utils.SetFileExtension(utils.SanitizeFilename(filename), formatExtension(formatID), true)

	trackPath := filepath.Join(collection.tracksPath, filename)
	exists, _ := utils.IsFileExist(trackPath)

	return trackPath, exists
}

// fillTrackTagsForTemplating builds the placeholder values for filename templates.
func (s *ServiceImpl) fillTrackTagsForTemplating(
	position int64,
	record *metadata.Record,
	collection *audioCollection,
	formatID int64,
) map[string]string {
	// Collection tags first, track-specific values override them.
	result := make(map[string]string, len(collection.tags)+8)
	maps.Copy(result, collection.tags)

	result["artist"] = record.ArtistLine()
	result["title"] = record.Title
	result["track_id"] = record.TrackID
	result["track_number"] = fmt.Sprintf("%0*d", trackNumberPaddingWidth, position)
	result["quality"] = FormatName(formatID)

	if record.Album != "" {
		result["album"] = record.Album
	}

	if record.Year != "" {
		result["year"] = record.Year
	}

	return result
}

// publishProgress forwards an event to subscribed consumers and the
// per-call callback.
func (s *ServiceImpl) publishProgress(opts *Options, event ProgressEvent) {
	s.progress.publishTo(opts.OnProgress, event)
}

//nolint:cyclop,funlen,gocognit // Function orchestrates the transfer with progress, speed limiting and cleanup.
func (s *ServiceImpl) downloadAndSaveTrack(
	ctx context.Context,
	trackID string,
	trackURL string,
	trackPath string,
	opts *Options,
) (*downloadFileResult, error) {
	// Fetch the track.
	fetchResult, fetchErr := s.catalogClient.FetchTrack(ctx, trackURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch track: %w", fetchErr)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	// Download to temporary .part file first for atomic operation.
	tempFilePath := trackPath + partFileSuffix

	// Always overwrite .part files (they indicate incomplete downloads).
	f, openErr := os.OpenFile(filepath.Clean(tempFilePath), overwriteFileOptions, constants.DefaultFilePermissions)
	if openErr != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", openErr)
	}

	// Track whether download succeeded.
	// If not, we'll clean up the .part file on function exit.
	var downloadSucceeded bool

	defer func() {
		// Ensure file is closed before cleanup.
		closeErr := f.Close()

		// Clean up .part file if download failed.
		if !downloadSucceeded {
			// Small delay to ensure file handle is released (Windows needs this).
			time.Sleep(10 * time.Millisecond)

			if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
				// Log warning but don't fail - this is best-effort cleanup.
				logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
					tempFilePath, removeErr, closeErr)
			}
		}
	}()

	// Every transfer reports through the progress publisher; the visual
	// bar stays sequential-only to avoid terminal output conflicts.
	writer := io.MultiWriter(f, newProgressWriter(trackID, fetchResult.TotalBytes, func(event ProgressEvent) {
		s.publishProgress(opts, event)
	}))

	if logger.Level() <= zap.InfoLevel && s.cfg.MaxConcurrentDownloads == 1 {
		bar := progressbar.DefaultBytes(
			fetchResult.TotalBytes,
			"Downloading",
		)

		writer = io.MultiWriter(writer, bar)
	}

	// Download logic.
	var (
		bytesWritten int64
		err          error
	)

	if s.cfg.ParsedDownloadSpeedLimit == 0 {
		bytesWritten, err = io.Copy(writer, fetchResult.Body)
	} else {
		for {
			var n int64

			n, err = io.CopyN(writer, fetchResult.Body, s.cfg.ParsedDownloadSpeedLimit)
			bytesWritten += n

			if errors.Is(err, io.EOF) {
				err = nil

				break
			}

			if err != nil {
				break
			}

			// Throttle to respect speed limit.
			time.Sleep(time.Second)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	// Verify that we downloaded the expected number of bytes.
	if fetchResult.TotalBytes > 0 && bytesWritten != fetchResult.TotalBytes {
		return nil, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteDownload,
			bytesWritten,
			fetchResult.TotalBytes,
		)
	}

	// Mark download as successful to prevent cleanup by defer.
	// The .part file will be renamed to final name by the caller after tags are written.
	downloadSucceeded = true

	return &downloadFileResult{
		tempPath:        tempFilePath,
		bytesDownloaded: bytesWritten,
	}, nil
}

// fetchLyrics asks the lyrics provider for the track. Missing lyrics are
// normal and return nil.
func (s *ServiceImpl) fetchLyrics(ctx context.Context, record *metadata.Record) *lyrics.Lyrics {
	if !s.cfg.DownloadLyrics || s.lyricsClient == nil {
		return nil
	}

	result, err := s.lyricsClient.GetLyrics(ctx, &lyrics.GetLyricsRequest{
		ArtistName:      record.ArtistLine(),
		TrackName:       record.Title,
		AlbumName:       record.Album,
		DurationSeconds: record.DurationSeconds,
	})
	if err != nil {
		if errors.Is(err, lyrics.ErrLyricsNotFound) {
			logger.Debugf(ctx, "No lyrics found for track: %s", record.Title)
		} else if !errors.Is(err, context.Canceled) {
			logger.Warnf(ctx, "Failed to get lyrics: %v", err)
		}

		return nil
	}

	if result.Instrumental {
		return nil
	}

	s.incrementLyricsDownloaded()

	return result
}

// writeLyricsSidecar stores synced lyrics as an .lrc file next to the track.
func (s *ServiceImpl) writeLyricsSidecar(ctx context.Context, trackLyrics *lyrics.Lyrics, trackPath string) {
	if trackLyrics == nil || strings.TrimSpace(trackLyrics.Synced) == "" {
		return
	}

	lyricsPath := utils.SetFileExtension(trackPath, extensionLRC, true)

	file, err := os.OpenFile(filepath.Clean(lyricsPath), overwriteFileOptions, constants.DefaultFilePermissions)
	if err != nil {
		logger.Warnf(ctx, "Failed to write lyrics file: %v", err)

		return
	}

	defer file.Close()

	if _, err = file.WriteString(trackLyrics.Synced); err != nil {
		logger.Warnf(ctx, "Failed to write lyrics file: %v", err)

		return
	}

	logger.Infof(ctx, "Lyrics saved to file: %s", lyricsPath)
}

// loadCoverArt produces cover bytes for embedding. Album downloads reuse
// the cover file saved in the album folder; playlist tracks fetch their
// own album's art into memory. Failures are tolerated: the track simply
// ships without embedded art.
func (s *ServiceImpl) loadCoverArt(
	ctx context.Context,
	collection *audioCollection,
	track *qobuz.Track,
) ([]byte, string) {
	if !s.cfg.EmbedCovers {
		return nil, ""
	}

	if collection.coverPath != "" {
		content, err := os.ReadFile(filepath.Clean(collection.coverPath))
		if err != nil {
			logger.Warnf(ctx, "Failed to read cover art '%s': %v", collection.coverPath, err)

			return nil, ""
		}

		if int64(len(content)) > maxCoverSizeBytes {
			logger.Warnf(ctx, "Cover art '%s' exceeds %d bytes, not embedding", collection.coverPath, maxCoverSizeBytes)

			return nil, ""
		}

		return content, coverMimeTypeForPath(collection.coverPath)
	}

	if track.Album == nil {
		return nil, ""
	}

	coverURL := strings.TrimSpace(track.Album.Image.Large)
	if coverURL == "" {
		coverURL = strings.TrimSpace(track.Album.Image.Small)
	}

	if coverURL == "" {
		return nil, ""
	}

	content, err := s.fetchBytes(ctx, coverURL, maxCoverSizeBytes)
	if err != nil {
		logger.Warnf(ctx, "Failed to fetch cover art: %v", err)

		return nil, ""
	}

	s.incrementCoverDownloaded()

	return content, coverMimeTypeForPath(coverURL)
}

// coverMimeTypeForPath maps a cover file extension to its MIME type.
func coverMimeTypeForPath(coverPath string) string {
	if strings.EqualFold(filepath.Ext(coverPath), ".png") {
		return "image/png"
	}

	return defaultCoverMimeType
}

// tagFormatForFormatID maps a catalog format to the tagging strategy.
func tagFormatForFormatID(formatID int64) tag.Format {
	if formatID == FormatIDMP3 {
		return tag.FormatMP3
	}

	return tag.FormatFLAC
}

// recordHistory stores a successful download in the ledger.
func (s *ServiceImpl) recordHistory(
	ctx context.Context,
	trackID string,
	record *metadata.Record,
	trackPath string,
	formatID int64,
) {
	if s.ledger == nil {
		return
	}

	entry := history.Entry{
		TrackID:      trackID,
		Title:        record.Title,
		Artist:       record.ArtistLine(),
		Album:        record.Album,
		Path:         trackPath,
		FormatID:     formatID,
		DownloadedAt: time.Now(),
	}

	if err := s.ledger.Add(entry); err != nil {
		logger.Warnf(ctx, "Failed to record download history: %v", err)
	}
}
