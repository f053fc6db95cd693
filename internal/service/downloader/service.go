package downloader

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/anorlov/qobuz-grabber/internal/client/lyrics"
	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/history"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/tag"
)

// Service provides methods for downloading audio content from catalog URLs.
// Entry points never return an error for expected per-track failures;
// those are captured in the returned results.
type Service interface {
	// DownloadURLs orchestrates the full download pipeline, from URL processing to file creation.
	DownloadURLs(ctx context.Context, urls []string)
	// DownloadTrack downloads a single track by its catalog ID.
	DownloadTrack(ctx context.Context, trackID string, opts *Options) *Result
	// DownloadAlbum downloads every track of an album.
	DownloadAlbum(ctx context.Context, albumID string, opts *Options) *AggregateResult
	// DownloadPlaylist downloads every track of a playlist.
	DownloadPlaylist(ctx context.Context, playlistID string, opts *Options) *AggregateResult
	// DownloadArtist downloads an artist's releases, one album at a time.
	DownloadArtist(ctx context.Context, artistID string, opts *Options) []*AggregateResult
	// CancelTrack cancels an in-flight track download by its catalog ID.
	// Returns false when no such download is running.
	CancelTrack(trackID string) bool
	// SubscribeProgress registers a consumer for all progress events.
	SubscribeProgress(consumer ProgressFunc)
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the download service with deduplication and metadata handling.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// catalogClient is the client for the music catalog API.
	catalogClient qobuz.Client
	// lyricsClient fetches lyrics; misses are tolerated.
	lyricsClient lyrics.Client
	// urlProcessor handles URL parsing and categorization.
	urlProcessor URLProcessor
	// templateManager generates filenames and folder names.
	templateManager TemplateManager
	// tagProcessor writes metadata tags to audio files.
	tagProcessor tag.Processor
	// qualityResolver walks the format fallback chain.
	qualityResolver QualityResolver
	// ledger records completed downloads, nil when history is disabled.
	ledger *history.Ledger
	// progress fans out per-track events to subscribed consumers.
	progress *progressPublisher
	// audioCollections stores download collections indexed by item.
	audioCollections map[ShortDownloadItem]*audioCollection
	// audioCollectionsMutex protects concurrent access to audioCollections.
	audioCollectionsMutex *sync.Mutex
	// trackCancels maps in-flight track IDs to their cancel functions.
	trackCancels map[string]context.CancelFunc
	// trackCancelsMutex protects concurrent access to trackCancels.
	trackCancelsMutex *sync.Mutex
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// NewService creates a download service instance with dependency-injected components.
func NewService(
	cfg *config.Config,
	catalogClient qobuz.Client,
	lyricsClient lyrics.Client,
	urlProcessor URLProcessor,
	templateManager TemplateManager,
	tagProcessor tag.Processor,
	ledger *history.Ledger,
) Service {
	return &ServiceImpl{
		cfg:                   cfg,
		catalogClient:         catalogClient,
		lyricsClient:          lyricsClient,
		urlProcessor:          urlProcessor,
		templateManager:       templateManager,
		tagProcessor:          tagProcessor,
		qualityResolver:       NewQualityResolver(catalogClient),
		ledger:                ledger,
		progress:              newProgressPublisher(),
		audioCollections:      make(map[ShortDownloadItem]*audioCollection),
		audioCollectionsMutex: new(sync.Mutex),
		trackCancels:          make(map[string]context.CancelFunc),
		trackCancelsMutex:     new(sync.Mutex),
		stats:                 new(DownloadStatistics),
		statsMutex:            new(sync.Mutex),
	}
}

// SubscribeProgress registers a consumer for all progress events.
func (s *ServiceImpl) SubscribeProgress(consumer ProgressFunc) {
	s.progress.Subscribe(consumer)
}

// CancelTrack cancels an in-flight track download by its catalog ID.
func (s *ServiceImpl) CancelTrack(trackID string) bool {
	s.trackCancelsMutex.Lock()
	cancel, ok := s.trackCancels[trackID]
	s.trackCancelsMutex.Unlock()

	if !ok {
		return false
	}

	cancel()

	return true
}

// registerTrackCancel makes a running track cancelable by ID and returns
// the context the download must run under.
func (s *ServiceImpl) registerTrackCancel(ctx context.Context, trackID string) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc

	if s.cfg.ParsedTrackDownloadTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ParsedTrackDownloadTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	s.trackCancelsMutex.Lock()
	s.trackCancels[trackID] = cancel
	s.trackCancelsMutex.Unlock()

	return ctx, cancel
}

// unregisterTrackCancel removes a finished track from the cancel table.
func (s *ServiceImpl) unregisterTrackCancel(trackID string) {
	s.trackCancelsMutex.Lock()
	delete(s.trackCancels, trackID)
	s.trackCancelsMutex.Unlock()
}

// normalizeOptions fills in configuration-driven defaults for nil options.
func (s *ServiceImpl) normalizeOptions(opts *Options) *Options {
	if opts == nil {
		opts = &Options{
			OutputDir:    "",
			OnProgress:   nil,
			OnMetadata:   nil,
			OnQuality:    nil,
			TrackIndices: nil,
			SkipExisting: !s.cfg.ReplaceTracks,
		}
	}

	if opts.OutputDir == "" {
		opts.OutputDir = s.cfg.OutputPath
	}

	return opts
}

// DownloadURLs orchestrates the full download pipeline, from URL processing to file creation.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) {
	// Record start time and dry-run mode for statistics.
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.stats.IsDryRun = s.cfg.DryRun
	s.statsMutex.Unlock()

	// Ensure the output directory exists (skip in dry-run mode).
	if !s.cfg.DryRun {
		err := os.MkdirAll(s.cfg.OutputPath, defaultFolderPermissions)
		if err != nil {
			logger.Errorf(ctx, "Failed to create output path: %v", err)
			return
		}
	} else {
		logger.Infof(ctx, "[DRY-RUN] Would create output directory: %s", s.cfg.OutputPath)
	}

	// Extract and categorize download items from the provided URLs.
	downloadItemsByCategories, err := s.urlProcessor.ExtractDownloadItems(ctx, urls)
	if err != nil {
		logger.Errorf(ctx, "Failed to extract items to download: %v", err)
		return
	}

	logger.Info(ctx, "Starting download process")

	// Process albums and playlists first to maintain organizational structure.
	standaloneItems := s.urlProcessor.DeduplicateDownloadItems(downloadItemsByCategories.StandaloneItems)
	s.downloadStandaloneItems(ctx, standaloneItems)

	// Artist discographies download their albums sequentially.
	for _, item := range downloadItemsByCategories.Artists {
		if ctx.Err() != nil {
			break
		}

		logger.Infof(ctx, "Downloading item: %v", item)
		s.DownloadArtist(ctx, item.ItemID, nil)
	}

	// Process individual tracks after collections to allow potential deduplication.
	for _, item := range downloadItemsByCategories.Tracks {
		if ctx.Err() != nil {
			break
		}

		logger.Infof(ctx, "Downloading item: %v", item)
		s.DownloadTrack(ctx, item.ItemID, nil)
	}

	logger.Info(ctx, "Download process completed")

	// Record end time for statistics.
	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()
}

// downloadStandaloneItems handles the download of albums and playlists.
func (s *ServiceImpl) downloadStandaloneItems(ctx context.Context, items []*DownloadItem) {
	itemsCount := len(items)

	// Iterate through each item and download based on its category.
	for index, item := range items {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return
		default:
		}

		//nolint:exhaustive // All meaningful cases are explicitly handled; default covers unknown values.
		switch item.Category {
		case DownloadCategoryAlbum:
			logger.Infof(ctx, "Downloading item: %v (%d / %d)", item, index+1, itemsCount)
			s.DownloadAlbum(ctx, item.ItemID, nil)
		case DownloadCategoryPlaylist:
			logger.Infof(ctx, "Downloading item: %v (%d / %d)", item, index+1, itemsCount)
			s.DownloadPlaylist(ctx, item.ItemID, nil)
		default:
			logger.Errorf(ctx, "Unknown URL category: %d", item.Category)
		}
	}
}
