package downloader

//go:generate $MOCKGEN -source=quality.go -destination=mocks/quality_resolver_mock.go

import (
	"context"
	"fmt"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	"github.com/anorlov/qobuz-grabber/internal/logger"
)

// Catalog format identifiers.
const (
	// FormatIDMP3 is MP3 320 Kbps.
	FormatIDMP3 int64 = 5
	// FormatIDFLAC is CD-quality FLAC (16-bit / 44.1 kHz).
	FormatIDFLAC int64 = 6
	// FormatIDHiRes96 is hi-res FLAC up to 24-bit / 96 kHz.
	FormatIDHiRes96 int64 = 7
	// FormatIDHiRes192 is hi-res FLAC up to 24-bit / 192 kHz.
	FormatIDHiRes192 int64 = 27
)

// flacFallbackChain lists lossless formats from best to worst.
// MP3 is deliberately absent: a lossy file is never substituted for a
// lossless request, the user has to ask for MP3 explicitly.
//
//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var flacFallbackChain = []int64{FormatIDHiRes192, FormatIDHiRes96, FormatIDFLAC}

// FormatName returns a short human-readable label for a format ID.
func FormatName(formatID int64) string {
	switch formatID {
	case FormatIDMP3:
		return "MP3 320"
	case FormatIDFLAC:
		return "FLAC 16/44.1"
	case FormatIDHiRes96:
		return "FLAC 24/96"
	case FormatIDHiRes192:
		return "FLAC 24/192"
	default:
		return fmt.Sprintf("format %d", formatID)
	}
}

// formatExtension returns the file extension for a format ID.
func formatExtension(formatID int64) string {
	if formatID == FormatIDMP3 {
		return extensionMP3
	}

	return extensionFLAC
}

// QualityResolutionResult contains the result of quality resolution.
type QualityResolutionResult struct {
	// FileURL is the resolved download descriptor.
	FileURL *qobuz.FileURL
	// FormatID is the format the catalog actually granted.
	FormatID int64
	// IsPreview indicates the URL serves only a short sample snippet.
	IsPreview bool
}

// QualityResolver resolves the best obtainable format and download URL
// for a track.
type QualityResolver interface {
	// ResolveQuality walks the fallback chain starting at the preferred
	// format and returns the first format the catalog grants.
	ResolveQuality(ctx context.Context, trackID string, preferredFormatID int64) (*QualityResolutionResult, error)
}

// qualityResolver implements QualityResolver against the catalog client.
type qualityResolver struct {
	catalogClient qobuz.Client
}

// NewQualityResolver creates a resolver backed by the catalog client.
func NewQualityResolver(catalogClient qobuz.Client) QualityResolver {
	return &qualityResolver{catalogClient: catalogClient}
}

// ResolveQuality tries each candidate format in order until the catalog
// grants a non-sample URL at the requested (or lower lossless) quality.
// Per-format failures walk the chain too, the catalog answers with an
// error when a tier is unavailable; only a canceled context stops early.
// A sample URL is kept as a last resort so previews remain downloadable.
func (r *qualityResolver) ResolveQuality(
	ctx context.Context,
	trackID string,
	preferredFormatID int64,
) (*QualityResolutionResult, error) {
	var (
		lastSample *qobuz.FileURL
		lastErr    error
	)

	for _, formatID := range buildFallbackChain(preferredFormatID) {
		fileURL, err := r.catalogClient.GetFileURL(ctx, trackID, formatID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("failed to resolve URL for format %d: %w", formatID, err)
			}

			// The catalog reports an unavailable format as an error,
			// so a failed tier means "try the next one down".
			logger.Debugf(ctx, "Track %s is not available as %s: %v", trackID, FormatName(formatID), err)

			lastErr = err

			continue
		}

		if fileURL.URL == "" {
			continue
		}

		if fileURL.Sample {
			// Remember the preview in case nothing better turns up.
			if lastSample == nil {
				lastSample = fileURL
			}

			continue
		}

		// The catalog may silently grant a lower format than requested.
		grantedFormatID := fileURL.FormatID
		if grantedFormatID == 0 {
			grantedFormatID = formatID
		}

		if grantedFormatID != preferredFormatID {
			logger.Infof(ctx, "Track %s is only available as %s", trackID, FormatName(grantedFormatID))
		}

		return &QualityResolutionResult{
			FileURL:   fileURL,
			FormatID:  grantedFormatID,
			IsPreview: fileURL.Duration > 0 && fileURL.Duration <= previewMaxDurationSeconds,
		}, nil
	}

	if lastSample != nil {
		formatID := lastSample.FormatID
		if formatID == 0 {
			formatID = preferredFormatID
		}

		logger.Warnf(ctx, "Track %s is only available as a preview sample", trackID)

		return &QualityResolutionResult{
			FileURL:   lastSample,
			FormatID:  formatID,
			IsPreview: true,
		}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("track %s: %w", trackID, lastErr)
	}

	return nil, fmt.Errorf("track %s: %w", trackID, ErrNoStreamableFormat)
}

// buildFallbackChain returns the formats to try, best first, starting
// from the preferred one. An explicit MP3 request stays MP3-only.
func buildFallbackChain(preferredFormatID int64) []int64 {
	if preferredFormatID == FormatIDMP3 {
		return []int64{FormatIDMP3}
	}

	chain := make([]int64, 0, len(flacFallbackChain))
	for _, formatID := range flacFallbackChain {
		if formatID > preferredFormatID {
			continue
		}

		chain = append(chain, formatID)
	}

	// Unrecognized preferences fall back to the full lossless chain.
	if len(chain) == 0 {
		return flacFallbackChain
	}

	return chain
}
