package downloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
	mock_qobuz "github.com/anorlov/qobuz-grabber/internal/client/qobuz/mocks"
)

// TestBuildFallbackChain tests fallback chain construction per preferred format.
func TestBuildFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		preferred int64
		expected  []int64
	}{
		{"mp3 stays mp3-only", FormatIDMP3, []int64{FormatIDMP3}},
		{"cd quality has no fallback", FormatIDFLAC, []int64{FormatIDFLAC}},
		{"hi-res 96 falls back to cd", FormatIDHiRes96, []int64{FormatIDHiRes96, FormatIDFLAC}},
		{
			"hi-res 192 walks the full chain",
			FormatIDHiRes192,
			[]int64{FormatIDHiRes192, FormatIDHiRes96, FormatIDFLAC},
		},
		{
			"unknown preference uses the full lossless chain",
			99,
			[]int64{FormatIDHiRes192, FormatIDHiRes96, FormatIDFLAC},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, buildFallbackChain(tt.preferred))
		})
	}
}

// TestFormatName tests human-readable format labels.
func TestFormatName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MP3 320", FormatName(FormatIDMP3))
	assert.Equal(t, "FLAC 16/44.1", FormatName(FormatIDFLAC))
	assert.Equal(t, "FLAC 24/96", FormatName(FormatIDHiRes96))
	assert.Equal(t, "FLAC 24/192", FormatName(FormatIDHiRes192))
	assert.Equal(t, "format 42", FormatName(42))
}

// TestFormatExtension tests the format to extension mapping.
func TestFormatExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, extensionMP3, formatExtension(FormatIDMP3))
	assert.Equal(t, extensionFLAC, formatExtension(FormatIDFLAC))
	assert.Equal(t, extensionFLAC, formatExtension(FormatIDHiRes192))
}

// TestResolveQuality_PreferredGranted tests the happy path at the requested format.
func TestResolveQuality_PreferredGranted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", FormatIDHiRes192).
		Return(&qobuz.FileURL{
			URL:      "https://cdn.example.com/100.flac",
			FormatID: FormatIDHiRes192,
			Duration: 251,
		}, nil)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.NoError(t, err)
	assert.Equal(t, FormatIDHiRes192, result.FormatID)
	assert.False(t, result.IsPreview)
	assert.Equal(t, "https://cdn.example.com/100.flac", result.FileURL.URL)
}

// TestResolveQuality_FallsBackToLowerFormat tests the walk down the chain
// when better formats come back as unavailability errors, which is how
// the catalog client reports a format it cannot serve.
func TestResolveQuality_FallsBackToLowerFormat(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes192).
			Return(nil, qobuz.ErrEmptyFileURL),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes96).
			Return(nil, qobuz.ErrEmptyFileURL),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDFLAC).
			Return(&qobuz.FileURL{
				URL:      "https://cdn.example.com/100-cd.flac",
				FormatID: FormatIDFLAC,
				Duration: 251,
			}, nil),
	)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.NoError(t, err)
	assert.Equal(t, FormatIDFLAC, result.FormatID)
	assert.False(t, result.IsPreview)
}

// TestResolveQuality_SilentDowngrade tests that the granted format wins
// over the requested one.
func TestResolveQuality_SilentDowngrade(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", FormatIDHiRes192).
		Return(&qobuz.FileURL{
			URL:      "https://cdn.example.com/100.flac",
			FormatID: FormatIDHiRes96,
			Duration: 251,
		}, nil)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.NoError(t, err)
	assert.Equal(t, FormatIDHiRes96, result.FormatID)
}

// TestResolveQuality_SampleAsLastResort tests that a preview sample is
// only returned when no full format is available.
func TestResolveQuality_SampleAsLastResort(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes96).
			Return(&qobuz.FileURL{
				URL:      "https://cdn.example.com/100-sample.flac",
				FormatID: FormatIDHiRes96,
				Sample:   true,
				Duration: 30,
			}, nil),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDFLAC).
			Return(&qobuz.FileURL{}, nil),
	)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes96)
	require.NoError(t, err)
	assert.True(t, result.IsPreview)
	assert.Equal(t, FormatIDHiRes96, result.FormatID)
	assert.Equal(t, "https://cdn.example.com/100-sample.flac", result.FileURL.URL)
}

// TestResolveQuality_SampleNotPreferredOverFullTrack tests that a full
// lower-quality track beats a higher-quality sample.
func TestResolveQuality_SampleNotPreferredOverFullTrack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes96).
			Return(&qobuz.FileURL{
				URL:      "https://cdn.example.com/100-sample.flac",
				FormatID: FormatIDHiRes96,
				Sample:   true,
			}, nil),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDFLAC).
			Return(&qobuz.FileURL{
				URL:      "https://cdn.example.com/100-cd.flac",
				FormatID: FormatIDFLAC,
				Duration: 251,
			}, nil),
	)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes96)
	require.NoError(t, err)
	assert.False(t, result.IsPreview)
	assert.Equal(t, FormatIDFLAC, result.FormatID)
}

// TestResolveQuality_NoStreamableFormat tests the all-empty failure case.
func TestResolveQuality_NoStreamableFormat(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", gomock.Any()).
		Return(&qobuz.FileURL{}, nil).
		Times(3)

	resolver := NewQualityResolver(client)

	_, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.ErrorIs(t, err, ErrNoStreamableFormat)
}

// TestResolveQuality_ClientError tests that an error on the only tier
// surfaces once the chain is exhausted.
func TestResolveQuality_ClientError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", FormatIDFLAC).
		Return(nil, assert.AnError)

	resolver := NewQualityResolver(client)

	_, err := resolver.ResolveQuality(context.Background(), "100", FormatIDFLAC)
	require.ErrorIs(t, err, assert.AnError)
}

// TestResolveQuality_AllTiersUnavailable tests that the last tier's
// unavailability error is what the caller sees.
func TestResolveQuality_AllTiersUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", gomock.Any()).
		Return(nil, qobuz.ErrEmptyFileURL).
		Times(3)

	resolver := NewQualityResolver(client)

	_, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.ErrorIs(t, err, qobuz.ErrEmptyFileURL)
}

// TestResolveQuality_ErrorThenGranted tests mixing an errored tier with
// an empty-URL tier before a grant.
func TestResolveQuality_ErrorThenGranted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes192).
			Return(nil, qobuz.ErrEmptyFileURL),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDHiRes96).
			Return(&qobuz.FileURL{}, nil),
		client.EXPECT().
			GetFileURL(gomock.Any(), "100", FormatIDFLAC).
			Return(&qobuz.FileURL{
				URL:      "https://cdn.example.com/100-cd.flac",
				FormatID: FormatIDFLAC,
				Duration: 251,
			}, nil),
	)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDHiRes192)
	require.NoError(t, err)
	assert.Equal(t, FormatIDFLAC, result.FormatID)
}

// TestResolveQuality_CanceledContextStopsChain tests that cancellation
// aborts the walk instead of probing the remaining tiers.
func TestResolveQuality_CanceledContextStopsChain(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	ctx, cancel := context.WithCancel(context.Background())

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", FormatIDHiRes192).
		DoAndReturn(func(ctx context.Context, _ string, _ int64) (*qobuz.FileURL, error) {
			cancel()

			return nil, ctx.Err()
		})

	resolver := NewQualityResolver(client)

	_, err := resolver.ResolveQuality(ctx, "100", FormatIDHiRes192)
	require.ErrorIs(t, err, context.Canceled)
}

// TestResolveQuality_ShortTrackIsPreview tests the duration-based preview heuristic.
func TestResolveQuality_ShortTrackIsPreview(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_qobuz.NewMockClient(ctrl)

	client.EXPECT().
		GetFileURL(gomock.Any(), "100", FormatIDFLAC).
		Return(&qobuz.FileURL{
			URL:      "https://cdn.example.com/100.flac",
			FormatID: FormatIDFLAC,
			Duration: previewMaxDurationSeconds,
		}, nil)

	resolver := NewQualityResolver(client)

	result, err := resolver.ResolveQuality(context.Background(), "100", FormatIDFLAC)
	require.NoError(t, err)
	assert.True(t, result.IsPreview)
}
