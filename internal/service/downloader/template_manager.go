package downloader

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"context"
	"regexp"
	"strings"

	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/logger"
)

// TemplateManager defines the interface for managing templates used to generate filenames and folder names.
type TemplateManager interface {
	// GetTrackFilename generates a filename for a track based on its tags and context.
	// Playlist tracks and singles without a dedicated folder use the playlist template.
	GetTrackFilename(ctx context.Context, isPlaylist bool, trackTags map[string]string, tracksCount int64) string

	// GetAlbumFolderName generates a folder name for an album based on its tags.
	GetAlbumFolderName(ctx context.Context, tags map[string]string) string
}

// templatePlaceholderPattern matches {placeholder} tokens in templates.
//
//nolint:gochecknoglobals // Immutable compiled pattern, reused across calls.
var templatePlaceholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// TemplateManagerImpl implements the TemplateManager interface.
// Templates are plain strings with {placeholder} tokens; unknown tokens
// are left intact so broken templates stay visible in the output.
type TemplateManagerImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// trackFilenameTemplate is the template for track filenames.
	trackFilenameTemplate string
	// albumFolderTemplate is the template for album folder names.
	albumFolderTemplate string
	// playlistFilenameTemplate is the template for playlist track filenames.
	playlistFilenameTemplate string
}

// NewTemplateManager creates and returns a new instance of TemplateManagerImpl.
// Configured templates without a single known placeholder fall back to the defaults.
func NewTemplateManager(ctx context.Context, cfg *config.Config) TemplateManager {
	return &TemplateManagerImpl{
		cfg: cfg,
		trackFilenameTemplate: validateTemplate(
			ctx, "track filename", cfg.TrackFilenameTemplate, config.DefaultTrackFilenameTemplate),
		albumFolderTemplate: validateTemplate(
			ctx, "album folder", cfg.AlbumFolderTemplate, config.DefaultAlbumFolderTemplate),
		playlistFilenameTemplate: validateTemplate(
			ctx, "playlist filename", cfg.PlaylistFilenameTemplate, config.DefaultPlaylistFilenameTemplate),
	}
}

// validateTemplate returns the configured template when it carries at
// least one placeholder, the default otherwise.
func validateTemplate(ctx context.Context, name, configured, fallback string) string {
	if strings.TrimSpace(configured) == "" {
		return fallback
	}

	if !templatePlaceholderPattern.MatchString(configured) {
		logger.Errorf(ctx, "Invalid %s template %q, using default", name, configured)

		return fallback
	}

	return configured
}

// GetTrackFilename generates a filename for a track based on its tags and context.
func (m *TemplateManagerImpl) GetTrackFilename(
	_ context.Context,
	isPlaylist bool,
	trackTags map[string]string,
	tracksCount int64,
) string {
	// Singles without a dedicated folder need the artist in the filename,
	// same as playlist entries.
	isSingleWithoutFolder := !m.cfg.CreateFolderForSingles && tracksCount == 1

	template := m.trackFilenameTemplate
	if isPlaylist || isSingleWithoutFolder {
		template = m.playlistFilenameTemplate
	}

	return expandTemplate(template, trackTags)
}

// GetAlbumFolderName generates a folder name for an album based on its tags.
func (m *TemplateManagerImpl) GetAlbumFolderName(_ context.Context, tags map[string]string) string {
	return expandTemplate(m.albumFolderTemplate, tags)
}

// expandTemplate substitutes {placeholder} tokens with tag values.
// Unknown placeholders are preserved verbatim.
func expandTemplate(template string, tags map[string]string) string {
	return templatePlaceholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := strings.Trim(token, "{}")

		value, ok := tags[key]
		if !ok {
			return token
		}

		return value
	})
}
