package app

import (
	"context"

	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/history"
	"github.com/anorlov/qobuz-grabber/internal/logger"
	"github.com/anorlov/qobuz-grabber/internal/service/downloader"
)

// ExecuteHistoryListCommand prints every entry of the download history.
func ExecuteHistoryListCommand(ctx context.Context, cfg *config.Config) {
	ledger, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open download history: %v", err)
	}

	entries := ledger.GetAll()
	if len(entries) == 0 {
		logger.Info(ctx, "Download history is empty.")

		return
	}

	logger.Infof(ctx, "Download history (%d tracks):", len(entries))

	for _, entry := range entries {
		logger.Infof(ctx, "  [%s] %s - %s (%s) | %s | %s",
			entry.DownloadedAt.Format("2006-01-02 15:04"),
			entry.Artist,
			entry.Title,
			entry.Album,
			downloader.FormatName(entry.FormatID),
			entry.Path)
	}
}

// ExecuteHistoryClearCommand removes every entry from the download history.
func ExecuteHistoryClearCommand(ctx context.Context, cfg *config.Config) {
	ledger, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Fatalf(ctx, "Failed to open download history: %v", err)
	}

	entriesCount := len(ledger.GetAll())
	if entriesCount == 0 {
		logger.Info(ctx, "Download history is already empty.")

		return
	}

	if err = ledger.ClearAll(); err != nil {
		logger.Fatalf(ctx, "Failed to clear download history: %v", err)
	}

	logger.Infof(ctx, "Removed %d tracks from the download history.", entriesCount)
}
