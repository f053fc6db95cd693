package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	mock_qobuz "github.com/anorlov/qobuz-grabber/internal/client/qobuz/mocks"
	"github.com/anorlov/qobuz-grabber/internal/config"
	"github.com/anorlov/qobuz-grabber/internal/history"
	"github.com/anorlov/qobuz-grabber/internal/tag"
)

// captureTagProcessor records write requests instead of touching files.
type captureTagProcessor struct {
	mu       sync.Mutex
	requests []*tag.WriteRequest
	err      error
}

func (p *captureTagProcessor) WriteTags(_ context.Context, req *tag.WriteRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	return p.err
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		AppID:                    "test_app_id",
		AuthToken:                "test_token",
		Quality:                  FormatIDFLAC,
		OutputPath:               t.TempDir(),
		TrackFilenameTemplate:    config.DefaultTrackFilenameTemplate,
		AlbumFolderTemplate:      config.DefaultAlbumFolderTemplate,
		PlaylistFilenameTemplate: config.DefaultPlaylistFilenameTemplate,
		MaxFolderNameLength:      100,
		MaxConcurrentDownloads:   1,
	}
}

func newTestService(
	t *testing.T,
	cfg *config.Config,
	client qobuz.Client,
	tagProcessor tag.Processor,
	ledger *history.Ledger,
) Service {
	t.Helper()

	return NewService(
		cfg,
		client,
		nil,
		NewURLProcessor(),
		NewTemplateManager(context.Background(), cfg),
		tagProcessor,
		ledger,
	)
}

// testAlbum builds an album fixture with sequentially numbered tracks.
func testAlbum(trackCount int) *qobuz.Album {
	tracks := make([]*qobuz.Track, 0, trackCount)
	for i := 1; i <= trackCount; i++ {
		tracks = append(tracks, &qobuz.Track{
			ID:          int64(100 + i),
			Title:       fmt.Sprintf("Track %d", i),
			TrackNumber: int64(i),
			MediaNumber: 1,
			Duration:    200,
		})
	}

	return &qobuz.Album{
		ID:                  "alb1",
		Title:               "Night Songs",
		Artist:              qobuz.Artist{Name: "Alice Smith"},
		ReleaseDateOriginal: "2021-06-18",
		TracksCount:         int64(trackCount),
		Tracks:              &qobuz.TrackList{Items: tracks, Total: int64(trackCount)},
	}
}

// streamableFileURL builds a granted download descriptor for a track.
func streamableFileURL(trackID int64, formatID int64) *qobuz.FileURL {
	return &qobuz.FileURL{
		URL:      fmt.Sprintf("https://cdn.example.com/%d.flac", trackID),
		FormatID: formatID,
		Duration: 200,
		TrackID:  trackID,
	}
}

// TestDownloadAlbum_DryRun tests that a dry run reports every track as
// downloaded without creating anything on disk.
func TestDownloadAlbum_DryRun(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(3), nil)
	client.EXPECT().
		GetFileURL(gomock.Any(), gomock.Any(), FormatIDFLAC).
		DoAndReturn(func(_ context.Context, trackID string, formatID int64) (*qobuz.FileURL, error) {
			return &qobuz.FileURL{
				URL:      "https://cdn.example.com/" + trackID + ".flac",
				FormatID: formatID,
				Duration: 200,
			}, nil
		}).
		Times(3)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "alb1", nil)

	assert.True(t, aggregate.Success)
	assert.Equal(t, int64(3), aggregate.TotalTracks)
	assert.Equal(t, int64(3), aggregate.CompletedTracks)
	assert.Equal(t, "Night Songs", aggregate.Title)

	// Nothing gets written in dry-run mode.
	entries, err := os.ReadDir(cfg.OutputPath)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestDownloadAlbum_AggregatesFailures tests that one failed track does
// not stop the others and flips the aggregate success flag.
func TestDownloadAlbum_AggregatesFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(3), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "101", FormatIDFLAC).Return(streamableFileURL(101, FormatIDFLAC), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "102", FormatIDFLAC).Return(nil, assert.AnError)
	client.EXPECT().GetFileURL(gomock.Any(), "103", FormatIDFLAC).Return(streamableFileURL(103, FormatIDFLAC), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "alb1", nil)

	assert.False(t, aggregate.Success)
	assert.Equal(t, int64(3), aggregate.TotalTracks)
	assert.Equal(t, int64(2), aggregate.CompletedTracks)
	assert.Equal(t, int64(1), aggregate.FailedTracks)

	require.Len(t, aggregate.Results, 3)
	assert.ErrorIs(t, aggregate.Results[1].Err, assert.AnError)
}

// TestDownloadAlbum_DurationFilterSkips tests that the duration window
// skips tracks before any URL resolution.
func TestDownloadAlbum_DurationFilterSkips(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true
	cfg.ParsedMinDuration = 5 * time.Minute

	// No GetFileURL expectations: resolution must never be reached.
	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(2), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "alb1", nil)

	assert.True(t, aggregate.Success)
	assert.Equal(t, int64(2), aggregate.SkippedTracks)

	for _, result := range aggregate.Results {
		assert.Equal(t, SkipReasonDuration, result.SkipReason)
	}
}

// TestDownloadAlbum_NotFound tests the missing-album failure path.
func TestDownloadAlbum_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)

	client.EXPECT().GetAlbum(gomock.Any(), "missing").Return(nil, nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "missing", nil)

	assert.False(t, aggregate.Success)
	assert.Equal(t, int64(0), aggregate.TotalTracks)
}

// TestDownloadTrack_FullPipeline tests the whole single-track flow:
// metadata, quality resolution, transfer, tagging, rename and history.
func TestDownloadTrack_FullPipeline(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)

	album := testAlbum(2)
	payload := []byte("flac-audio-payload")

	client.EXPECT().GetTrack(gomock.Any(), "101").Return(&qobuz.Track{
		ID:          101,
		Title:       "Track 1",
		TrackNumber: 1,
		Duration:    200,
		Album:       &qobuz.Album{ID: "alb1", Title: "Night Songs"},
	}, nil)
	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(album, nil)
	client.EXPECT().
		GetFileURL(gomock.Any(), "101", FormatIDFLAC).
		Return(streamableFileURL(101, FormatIDFLAC), nil)
	client.EXPECT().
		FetchTrack(gomock.Any(), "https://cdn.example.com/101.flac").
		Return(&qobuz.FetchTrackResult{
			Body:       io.NopCloser(bytes.NewReader(payload)),
			TotalBytes: int64(len(payload)),
		}, nil)

	tagProcessor := &captureTagProcessor{}

	ledger, err := history.Open(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	s := newTestService(t, cfg, client, tagProcessor, ledger)

	result := s.DownloadTrack(context.Background(), "101", &Options{SkipExisting: true})

	require.NoError(t, result.Err)
	assert.True(t, result.Success)
	assert.Equal(t, FormatIDFLAC, result.FormatID)

	expectedPath := filepath.Join(
		cfg.OutputPath,
		"2021 - Alice Smith - Night Songs",
		"01 - Track 1.flac")
	assert.Equal(t, expectedPath, result.Path)

	// The final file holds exactly the fetched payload, no .part leftover.
	content, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)

	_, err = os.Stat(result.Path + partFileSuffix)
	assert.True(t, os.IsNotExist(err))

	// Tags were written to the temporary file before the rename.
	require.Len(t, tagProcessor.requests, 1)
	assert.Equal(t, result.Path+partFileSuffix, tagProcessor.requests[0].TrackPath)
	assert.Equal(t, tag.FormatFLAC, tagProcessor.requests[0].Format)
	assert.Equal(t, "Track 1", tagProcessor.requests[0].Tags["TITLE"])

	// The download landed in the history ledger.
	entry, ok := ledger.Get("101")
	require.True(t, ok)
	assert.Equal(t, "Track 1", entry.Title)
	assert.Equal(t, result.Path, entry.Path)
	assert.Equal(t, FormatIDFLAC, entry.FormatID)
}

// TestDownloadTrack_SkipExisting tests that a present file short-circuits
// before quality resolution.
func TestDownloadTrack_SkipExisting(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)

	albumFolder := filepath.Join(cfg.OutputPath, "2021 - Alice Smith - Night Songs")
	require.NoError(t, os.MkdirAll(albumFolder, 0o755))

	existingPath := filepath.Join(albumFolder, "01 - Track 1.flac")
	require.NoError(t, os.WriteFile(existingPath, []byte("already here"), 0o600))

	// No GetFileURL or FetchTrack expectations: the skip must happen first.
	client.EXPECT().GetTrack(gomock.Any(), "101").Return(&qobuz.Track{
		ID:          101,
		Title:       "Track 1",
		TrackNumber: 1,
		Duration:    200,
		Album:       &qobuz.Album{ID: "alb1"},
	}, nil)
	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(2), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	result := s.DownloadTrack(context.Background(), "101", &Options{SkipExisting: true})

	assert.True(t, result.Skipped)
	assert.Equal(t, SkipReasonExists, result.SkipReason)
	assert.Equal(t, existingPath, result.Path)
}

// TestDownloadTrack_NotFound tests the missing-track failure path.
func TestDownloadTrack_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)

	client.EXPECT().GetTrack(gomock.Any(), "missing").Return(nil, nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	result := s.DownloadTrack(context.Background(), "missing", nil)

	require.ErrorIs(t, result.Err, ErrTrackNotFound)
	assert.False(t, result.Success)
}

// TestDownloadAlbum_ConcurrencyCeiling tests that the worker pool never
// exceeds the configured limit while all tracks still complete.
func TestDownloadAlbum_ConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	const (
		trackCount    = 8
		maxConcurrent = 3
	)

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true
	cfg.MaxConcurrentDownloads = maxConcurrent

	var (
		mu          sync.Mutex
		inFlight    int
		maxInFlight int
	)

	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(trackCount), nil)
	client.EXPECT().
		GetFileURL(gomock.Any(), gomock.Any(), FormatIDFLAC).
		DoAndReturn(func(_ context.Context, trackID string, formatID int64) (*qobuz.FileURL, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()

			return &qobuz.FileURL{
				URL:      "https://cdn.example.com/" + trackID + ".flac",
				FormatID: formatID,
				Duration: 200,
			}, nil
		}).
		Times(trackCount)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "alb1", nil)

	assert.True(t, aggregate.Success)
	assert.Equal(t, int64(trackCount), aggregate.CompletedTracks)
	assert.LessOrEqual(t, maxInFlight, maxConcurrent)
}

// TestDownloadAlbum_TrackIndices tests restricting a download to selected positions.
func TestDownloadAlbum_TrackIndices(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(5), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "102", FormatIDFLAC).Return(streamableFileURL(102, FormatIDFLAC), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "104", FormatIDFLAC).Return(streamableFileURL(104, FormatIDFLAC), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadAlbum(context.Background(), "alb1", &Options{
		SkipExisting: true,
		TrackIndices: []int64{2, 4},
	})

	assert.True(t, aggregate.Success)
	assert.Equal(t, int64(2), aggregate.TotalTracks)
	assert.Equal(t, int64(2), aggregate.CompletedTracks)
}

// TestDownloadPlaylist_DryRun tests the playlist flow with its flat folder layout.
func TestDownloadPlaylist_DryRun(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	playlist := &qobuz.Playlist{
		ID:   555,
		Name: "Evening Mix",
		Tracks: &qobuz.TrackList{
			Items: []*qobuz.Track{
				{ID: 201, Title: "First", TrackNumber: 1, Duration: 180},
				{ID: 202, Title: "Second", TrackNumber: 7, Duration: 210},
			},
			Total: 2,
		},
	}

	client.EXPECT().GetPlaylist(gomock.Any(), "555").Return(playlist, nil)
	client.EXPECT().GetFileURL(gomock.Any(), "201", FormatIDFLAC).Return(streamableFileURL(201, FormatIDFLAC), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "202", FormatIDFLAC).Return(streamableFileURL(202, FormatIDFLAC), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	aggregate := s.DownloadPlaylist(context.Background(), "555", nil)

	assert.True(t, aggregate.Success)
	assert.Equal(t, DownloadCategoryPlaylist, aggregate.Category)
	assert.Equal(t, "Evening Mix", aggregate.Title)
	assert.Equal(t, int64(2), aggregate.CompletedTracks)
}

// TestDownloadURLs_ReusesAlbumCollection tests that a standalone track from
// an already-downloaded album does not refetch the album.
func TestDownloadURLs_ReusesAlbumCollection(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	album := testAlbum(2)

	// One fetch serves both the album download and the standalone track.
	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(album, nil).Times(1)
	client.EXPECT().GetTrack(gomock.Any(), "101").Return(&qobuz.Track{
		ID:          101,
		Title:       "Track 1",
		TrackNumber: 1,
		Duration:    200,
		Album:       &qobuz.Album{ID: "alb1"},
	}, nil)
	client.EXPECT().
		GetFileURL(gomock.Any(), gomock.Any(), FormatIDFLAC).
		DoAndReturn(func(_ context.Context, trackID string, formatID int64) (*qobuz.FileURL, error) {
			return &qobuz.FileURL{
				URL:      "https://cdn.example.com/" + trackID + ".flac",
				FormatID: formatID,
				Duration: 200,
			}, nil
		}).
		AnyTimes()

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	s.DownloadURLs(context.Background(), []string{
		"https://www.example.com/album/alb1",
		"https://www.example.com/track/101",
	})
}

// TestDownloadArtist_DryRun tests the paged discography walk.
func TestDownloadArtist_DryRun(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	cfg := newTestConfig(t)
	cfg.DryRun = true

	client.EXPECT().GetArtist(gomock.Any(), "777").Return(&qobuz.Artist{ID: 777, Name: "Alice Smith"}, nil)

	gomock.InOrder(
		client.EXPECT().
			GetArtistReleaseIDs(gomock.Any(), "777", 0, artistReleasesPageSize).
			Return([]string{"alb1"}, nil),
		client.EXPECT().
			GetArtistReleaseIDs(gomock.Any(), "777", artistReleasesPageSize, artistReleasesPageSize).
			Return(nil, nil),
	)

	client.EXPECT().GetAlbum(gomock.Any(), "alb1").Return(testAlbum(2), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "101", FormatIDFLAC).Return(streamableFileURL(101, FormatIDFLAC), nil)
	client.EXPECT().GetFileURL(gomock.Any(), "102", FormatIDFLAC).Return(streamableFileURL(102, FormatIDFLAC), nil)

	s := newTestService(t, cfg, client, &captureTagProcessor{}, nil)

	results := s.DownloadArtist(context.Background(), "777", nil)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, int64(2), results[0].CompletedTracks)
}

// TestCancelTrack tests cancel bookkeeping for unknown tracks.
func TestCancelTrack_UnknownTrack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	s := newTestService(t, newTestConfig(t), client, &captureTagProcessor{}, nil)

	assert.False(t, s.CancelTrack("nope"))
}
