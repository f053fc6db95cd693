package downloader

import (
	"context"
	"slices"

	"github.com/anorlov/qobuz-grabber/internal/logger"
)

// artistReleasesPageSize is the page size used when walking an artist's releases.
const artistReleasesPageSize = 50

// DownloadArtist downloads an artist's discography, one album at a
// time. Albums are processed sequentially so a huge discography never
// multiplies the configured concurrency; tracks inside each album still
// use the regular worker pool.
func (s *ServiceImpl) DownloadArtist(ctx context.Context, artistID string, opts *Options) []*AggregateResult {
	opts = s.normalizeOptions(opts)

	artist, err := s.catalogClient.GetArtist(ctx, artistID)
	if err != nil {
		logger.Errorf(ctx, "Failed to fetch artist with ID '%s': %v", artistID, err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryArtist,
			ItemID:    artistID,
			ItemTitle: "Artist ID: " + artistID,
			Phase:     "fetching metadata",
		}, err)

		return nil
	}

	logger.Infof(ctx, "Fetching releases for artist: %s", artist.Name)

	albumIDs, err := s.getArtistReleaseIDs(ctx, artistID)
	if err != nil {
		logger.Errorf(ctx, "Failed to fetch artist releases: %v", err)
		s.recordError(&ErrorContext{
			Category:  DownloadCategoryArtist,
			ItemID:    artistID,
			ItemTitle: artist.Name,
			Phase:     "fetching artist releases",
		}, err)

		return nil
	}

	if len(albumIDs) == 0 {
		logger.Info(ctx, "No albums found for this artist")

		return nil
	}

	results := make([]*AggregateResult, 0, len(albumIDs))

	for index, albumID := range albumIDs {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return results
		default:
		}

		logger.Infof(ctx, "Downloading album %d of %d for artist: %s", index+1, len(albumIDs), artist.Name)

		results = append(results, s.DownloadAlbum(ctx, albumID, opts))
	}

	return results
}

// getArtistReleaseIDs fetches all release IDs for a given artist.
func (s *ServiceImpl) getArtistReleaseIDs(ctx context.Context, artistID string) ([]string, error) {
	var (
		allAlbumIDs []string
		offset      int
	)

	// Fetch albums in batches until no more are returned.
	for {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		select {
		case <-ctx.Done():
			return allAlbumIDs, ctx.Err()
		default:
		}

		albumIDs, err := s.catalogClient.GetArtistReleaseIDs(ctx, artistID, offset, artistReleasesPageSize)
		if err != nil {
			return nil, err
		}

		// Stop if the response is empty (no more albums to fetch).
		if len(albumIDs) == 0 {
			break
		}

		allAlbumIDs = append(allAlbumIDs, albumIDs...)
		offset += artistReleasesPageSize
	}

	// Remove duplicate album IDs and return the result.
	return slices.Compact(allAlbumIDs), nil
}
