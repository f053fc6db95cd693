package app

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/anorlov/qobuz-grabber/internal/client/lyrics"
	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/history"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/service/downloader"
	"github.com/anorlov/qobuz-grabber/internal/tag"
)

// progressLogInterval limits how often per-track progress lines are logged
// when downloads run concurrently and the interactive bar is disabled.
const progressLogInterval = 2 * time.Second

// ExecuteRootCommand is the entry point for the application.
// It initializes the catalog client, sets up the necessary service components,
// and starts the download process for the provided URLs.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, urls []string) {
	catalogClient, err := qobuz.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	var lyricsClient lyrics.Client
	if cfg.DownloadLyrics {
		lyricsClient = lyrics.NewClient(lyrics.DefaultBaseURL)
	}

	ledger, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open download history: %v", err)
	}

	urlProcessor := downloader.NewURLProcessor()
	templateManager := downloader.NewTemplateManager(ctx, cfg)

	tagProcessor := tag.NewQueuedProcessor()
	defer tagProcessor.Close()

	s := downloader.NewService(cfg, catalogClient, lyricsClient, urlProcessor, templateManager, tagProcessor, ledger)

	// The interactive progress bar only works for sequential downloads;
	// concurrent runs get throttled log lines instead.
	if cfg.MaxConcurrentDownloads > 1 {
		s.SubscribeProgress(downloader.NewThrottledConsumer(func(event downloader.ProgressEvent) {
			logProgressEvent(ctx, event)
		}, progressLogInterval))
	}

	// Ensure statistics are ALWAYS printed, even on panic or os.Exit bypass.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadURLs(ctx, urls)
}

// logProgressEvent renders one progress event as a log line.
func logProgressEvent(ctx context.Context, event downloader.ProgressEvent) {
	switch event.Phase {
	case downloader.PhaseDownload:
		if event.Total > 0 {
			logger.Infof(ctx, "Track %s: %s of %s (%s/s)",
				event.TrackID,
				humanize.Bytes(uint64(event.Loaded)), //nolint:gosec // Byte counters are never negative.
				humanize.Bytes(uint64(event.Total)),  //nolint:gosec // Byte counters are never negative.
				humanize.Bytes(uint64(event.Speed)))

			return
		}

		logger.Infof(ctx, "Track %s: %s downloaded (%s/s)",
			event.TrackID,
			humanize.Bytes(uint64(event.Loaded)), //nolint:gosec // Byte counters are never negative.
			humanize.Bytes(uint64(event.Speed)))
	case downloader.PhaseComplete:
		logger.Infof(ctx, "Track %s: finished", event.TrackID)
	case downloader.PhaseDownloadStart, downloader.PhaseLyrics, downloader.PhaseCover, downloader.PhaseTagging:
		logger.Debugf(ctx, "Track %s: %s", event.TrackID, event.Phase)
	}
}
