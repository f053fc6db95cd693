package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
)

// TestAggregateResultAdd tests result folding and the success flag.
func TestAggregateResultAdd(t *testing.T) {
	t.Parallel()

	aggregate := &AggregateResult{Success: true}

	aggregate.add(&Result{TrackID: "1", Success: true})
	aggregate.add(&Result{TrackID: "2", Skipped: true, SkipReason: SkipReasonExists})
	aggregate.add(&Result{TrackID: "3", Success: true})
	aggregate.add(nil)

	assert.Equal(t, int64(3), aggregate.TotalTracks)
	assert.Equal(t, int64(2), aggregate.CompletedTracks)
	assert.Equal(t, int64(1), aggregate.SkippedTracks)
	assert.Equal(t, int64(0), aggregate.FailedTracks)
	assert.True(t, aggregate.Success)
	assert.Len(t, aggregate.Results, 3)

	// A single failure flips the aggregate.
	aggregate.add(&Result{TrackID: "4", Err: assert.AnError})

	assert.Equal(t, int64(4), aggregate.TotalTracks)
	assert.Equal(t, int64(1), aggregate.FailedTracks)
	assert.False(t, aggregate.Success)
}

// TestDownloadCategoryString tests category labels.
func TestDownloadCategoryString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", DownloadCategoryUnknown.String())
	assert.Equal(t, "track", DownloadCategoryTrack.String())
	assert.Equal(t, "album", DownloadCategoryAlbum.String())
	assert.Equal(t, "playlist", DownloadCategoryPlaylist.String())
	assert.Equal(t, "artist", DownloadCategoryArtist.String())
	assert.Equal(t, "unknown: 42", DownloadCategory(42).String())
}

// TestSkipReasonString tests skip reason labels.
func TestSkipReasonString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "not skipped", SkipReasonNone.String())
	assert.Equal(t, "already exists", SkipReasonExists.String())
	assert.Equal(t, "duration filter", SkipReasonDuration.String())
	assert.Equal(t, "unknown reason: 42", SkipReason(42).String())
}

// TestFilterTracksByIndices tests one-based position filtering.
func TestFilterTracksByIndices(t *testing.T) {
	t.Parallel()

	tracks := []*qobuz.Track{
		{ID: 10, Title: "One"},
		{ID: 20, Title: "Two"},
		{ID: 30, Title: "Three"},
	}

	tests := []struct {
		name     string
		indices  []int64
		expected []int64
	}{
		{"empty keeps everything", nil, []int64{10, 20, 30}},
		{"single index", []int64{2}, []int64{20}},
		{"multiple indices keep listing order", []int64{3, 1}, []int64{10, 30}},
		{"out-of-range indices ignored", []int64{2, 7, 0}, []int64{20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			filtered := filterTracksByIndices(tracks, tt.indices)

			ids := make([]int64, 0, len(filtered))
			for _, track := range filtered {
				ids = append(ids, track.ID)
			}

			assert.Equal(t, tt.expected, ids)
		})
	}
}
