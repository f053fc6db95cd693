package cmd

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/constants"
)

const testBaseConfigContent = `
app_id: "test_app_id"
auth_token: "config_token"
quality: 6
output_path: "/config/output"
download_lyrics: false
embed_covers: true
download_speed_limit: "500KB"
log_level: "info"
track_filename_template: "{track_number} - {title}"
album_folder_template: "{year} - {artist} - {album}"
playlist_filename_template: "{track_number} - {artist} - {title}"
replace_tracks: false
create_folder_for_singles: false
max_folder_name_length: 100
retry_attempts_count: 3
max_download_pause: "5s"
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 1
`

// registerTestFlags mirrors the root command's flag definitions.
func registerTestFlags(testCmd *cobra.Command) {
	testCmd.Flags().Int64P("quality", "q", 0, "audio format")
	testCmd.Flags().StringP("output", "o", "", "output directory")
	testCmd.Flags().BoolP("lyrics", "l", false, "include lyrics")
	testCmd.Flags().StringP("speed-limit", "s", "", "download speed limit")
	testCmd.Flags().Int64P("concurrency", "n", 0, "maximum parallel downloads")
	testCmd.Flags().Bool("dry-run", false, "preview without downloading")
}

// writeTestConfig writes the shared test configuration into a temp file.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")

	err := os.WriteFile(configPath, []byte(content), constants.DefaultFilePermissions)
	require.NoError(t, err)

	return configPath
}

// TestFlagOverrides tests that command-line flags correctly override configuration file values.
//
//nolint:funlen,nolintlint,tparallel // It's a comprehensive integration test. Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]string
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]string{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(6), cfg.Quality)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "quality flag only - override quality",
			flags: map[string]string{
				"quality": "27",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(27), cfg.Quality)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "output flag only - override output path",
			flags: map[string]string{
				"output": "/flag/output",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(6), cfg.Quality)
				assert.Equal(t, "/flag/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "lyrics flag only - override lyrics",
			flags: map[string]string{
				"lyrics": "true",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(6), cfg.Quality)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.True(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "speed-limit flag only - override speed limit",
			flags: map[string]string{
				"speed-limit": "1MB",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(6), cfg.Quality)
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "concurrency flag only - override concurrency",
			flags: map[string]string{
				"concurrency": "4",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(4), cfg.MaxConcurrentDownloads)
				assert.Equal(t, int64(6), cfg.Quality)
			},
		},
		{
			name: "dry-run flag only - enable dry run",
			flags: map[string]string{
				"dry-run": "true",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.True(t, cfg.DryRun)
				assert.Equal(t, int64(6), cfg.Quality)
			},
		},
		{
			name: "all flags - override everything",
			flags: map[string]string{
				"quality":     "7",
				"output":      "/all/flags/output",
				"lyrics":      "true",
				"speed-limit": "2MB",
				"concurrency": "3",
				"dry-run":     "true",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(7), cfg.Quality)
				assert.Equal(t, "/all/flags/output", cfg.OutputPath)
				assert.True(t, cfg.DownloadLyrics)
				assert.Equal(t, "2MB", cfg.DownloadSpeedLimit)
				assert.Equal(t, int64(3), cfg.MaxConcurrentDownloads)
				assert.True(t, cfg.DryRun)
			},
		},
		{
			name: "quality and output flags - partial override",
			flags: map[string]string{
				"quality": "5",
				"output":  "/partial/output",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(5), cfg.Quality)
				assert.Equal(t, "/partial/output", cfg.OutputPath)
				assert.False(t, cfg.DownloadLyrics)
				assert.Equal(t, "500KB", cfg.DownloadSpeedLimit)
			},
		},
		{
			name: "lyrics false flag - explicit false override",
			flags: map[string]string{
				"lyrics": "false",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.False(t, cfg.DownloadLyrics)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTestConfig(t, testBaseConfigContent)

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			testCmd := &cobra.Command{Use: "test"}
			registerTestFlags(testCmd)

			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue),
					"failed to set flag %s", flagName)
			}

			err = bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			tt.expectedConfig(t, cfg)
		})
	}
}

// TestFlagOverrides_AllQualityValues tests every accepted format ID.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_AllQualityValues(t *testing.T) {
	qualityTests := []struct {
		name         string
		qualityValue int64
	}{
		{"quality 5 - MP3 320", 5},
		{"quality 6 - FLAC 16-bit/44.1kHz", 6},
		{"quality 7 - FLAC 24-bit/96kHz", 7},
		{"quality 27 - FLAC 24-bit/192kHz", 27},
	}

	for _, tt := range qualityTests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTestConfig(t, testBaseConfigContent)

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			testCmd := &cobra.Command{Use: "test"}
			registerTestFlags(testCmd)

			err = testCmd.Flags().Set("quality", strconv.FormatInt(tt.qualityValue, 10))
			require.NoError(t, err)

			err = bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.qualityValue, cfg.Quality)
		})
	}
}

// TestFlagOverrides_InvalidValues tests that invalid flag values are caught during validation.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidValues(t *testing.T) {
	invalidTests := []struct {
		name          string
		flagName      string
		flagValue     string
		expectedError string
	}{
		{
			name:          "invalid quality - zero",
			flagName:      "quality",
			flagValue:     "0",
			expectedError: "invalid quality",
		},
		{
			name:          "invalid quality - unknown format ID",
			flagName:      "quality",
			flagValue:     "8",
			expectedError: "invalid quality",
		},
		{
			name:          "invalid speed limit",
			flagName:      "speed-limit",
			flagValue:     "invalid-speed",
			expectedError: "failed to parse download speed limit",
		},
		{
			name:          "invalid concurrency - zero",
			flagName:      "concurrency",
			flagValue:     "0",
			expectedError: "max concurrent downloads",
		},
	}

	for _, tt := range invalidTests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeTestConfig(t, testBaseConfigContent)

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			testCmd := &cobra.Command{Use: "test"}
			registerTestFlags(testCmd)

			err = testCmd.Flags().Set(tt.flagName, tt.flagValue)
			require.NoError(t, err)

			err = bindFlagsToConfig(testCmd.Flags(), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

// TestBindFlagsToConfig_UnchangedFlags tests that unchanged flags don't override config values.
//
//nolint:nolintlint,tparallel // Cannot run in parallel due to Viper global state.
func TestBindFlagsToConfig_UnchangedFlags(t *testing.T) {
	configContent := `
app_id: "test_app_id"
auth_token: "config_token"
quality: 7
output_path: "/config/output"
download_lyrics: true
download_speed_limit: "1MB"
log_level: "info"
track_filename_template: "{track_number} - {title}"
album_folder_template: "{year} - {artist} - {album}"
playlist_filename_template: "{track_number} - {artist} - {title}"
replace_tracks: false
create_folder_for_singles: false
max_folder_name_length: 100
retry_attempts_count: 3
max_download_pause: "5s"
min_retry_pause: "1s"
max_retry_pause: "3s"
max_concurrent_downloads: 2
`

	configPath := writeTestConfig(t, configContent)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	// Register all flags but don't set any.
	testCmd := &cobra.Command{Use: "test"}
	registerTestFlags(testCmd)

	err = bindFlagsToConfig(testCmd.Flags(), cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Quality)
	assert.Equal(t, "/config/output", cfg.OutputPath)
	assert.True(t, cfg.DownloadLyrics)
	assert.Equal(t, "1MB", cfg.DownloadSpeedLimit)
	assert.Equal(t, int64(2), cfg.MaxConcurrentDownloads)
}

// TestBindFlagsToConfig_EmptyFlagSet tests handling of empty flag set.
func TestBindFlagsToConfig_EmptyFlagSet(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		AppID:                  "test_app_id",
		AuthToken:              "test_token",
		Quality:                6,
		LogLevel:               "info",
		RetryAttemptsCount:     3,
		MaxDownloadPause:       "5s",
		MinRetryPause:          "1s",
		MaxRetryPause:          "3s",
		MaxConcurrentDownloads: 1,
	}

	// Calling with empty flag set should just validate the config.
	emptyFlags := pflag.NewFlagSet("test", pflag.ContinueOnError)

	err := bindFlagsToConfig(emptyFlags, cfg)
	require.NoError(t, err)
}
