package downloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractDownloadItems tests URL categorization.
func TestExtractDownloadItems(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	response, err := processor.ExtractDownloadItems(context.Background(), []string{
		"https://www.example.com/track/12345678",
		"https://www.example.com/album/abcd1234efgh",
		"https://www.example.com/playlist/987654",
		"https://www.example.com/artist/456789",
		"https://www.example.com/something/else",
	})
	require.NoError(t, err)

	require.Len(t, response.Tracks, 1)
	assert.Equal(t, "12345678", response.Tracks[0].ItemID)
	assert.Equal(t, DownloadCategoryTrack, response.Tracks[0].Category)

	require.Len(t, response.StandaloneItems, 2)
	assert.Equal(t, "abcd1234efgh", response.StandaloneItems[0].ItemID)
	assert.Equal(t, DownloadCategoryAlbum, response.StandaloneItems[0].Category)
	assert.Equal(t, "987654", response.StandaloneItems[1].ItemID)
	assert.Equal(t, DownloadCategoryPlaylist, response.StandaloneItems[1].Category)

	require.Len(t, response.Artists, 1)
	assert.Equal(t, "456789", response.Artists[0].ItemID)
}

// TestExtractDownloadItems_AlbumIDsAlphanumeric tests that numeric-only
// and mixed album identifiers both match.
func TestExtractDownloadItems_AlbumIDsAlphanumeric(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	response, err := processor.ExtractDownloadItems(context.Background(), []string{
		"https://www.example.com/album/0886445927087",
		"https://www.example.com/album/lz75zee3rwdqb",
	})
	require.NoError(t, err)

	require.Len(t, response.StandaloneItems, 2)
	assert.Equal(t, "0886445927087", response.StandaloneItems[0].ItemID)
	assert.Equal(t, "lz75zee3rwdqb", response.StandaloneItems[1].ItemID)
}

// TestExtractDownloadItems_DuplicateURLs tests that repeated URLs are parsed once.
func TestExtractDownloadItems_DuplicateURLs(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	response, err := processor.ExtractDownloadItems(context.Background(), []string{
		"https://www.example.com/track/100",
		"https://www.example.com/track/100",
		"https://www.example.com/track/200",
	})
	require.NoError(t, err)

	require.Len(t, response.Tracks, 2)
	assert.Equal(t, "100", response.Tracks[0].ItemID)
	assert.Equal(t, "200", response.Tracks[1].ItemID)
}

// TestExtractDownloadItems_TextFileFlattening tests reading URLs out of a .txt list.
func TestExtractDownloadItems_TextFileFlattening(t *testing.T) {
	t.Parallel()

	listPath := filepath.Join(t.TempDir(), "urls.txt")
	content := "https://www.example.com/track/100\n" +
		"https://www.example.com/album/abc123\n" +
		"https://www.example.com/track/100\n"
	require.NoError(t, os.WriteFile(listPath, []byte(content), 0o600))

	processor := NewURLProcessor()

	response, err := processor.ExtractDownloadItems(context.Background(), []string{
		listPath,
		"https://www.example.com/track/200",
	})
	require.NoError(t, err)

	require.Len(t, response.Tracks, 2)
	assert.Equal(t, "100", response.Tracks[0].ItemID)
	assert.Equal(t, "200", response.Tracks[1].ItemID)

	require.Len(t, response.StandaloneItems, 1)
	assert.Equal(t, "abc123", response.StandaloneItems[0].ItemID)
}

// TestExtractDownloadItems_MissingTextFile tests the unreadable-list error path.
func TestExtractDownloadItems_MissingTextFile(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	_, err := processor.ExtractDownloadItems(context.Background(), []string{
		filepath.Join(t.TempDir(), "missing.txt"),
	})
	require.Error(t, err)
}

// TestExtractDownloadItems_TrailingSegmentsRejected tests that URLs with
// extra path segments after the ID do not match.
func TestExtractDownloadItems_TrailingSegmentsRejected(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	response, err := processor.ExtractDownloadItems(context.Background(), []string{
		"https://www.example.com/track/100/reviews",
	})
	require.NoError(t, err)

	assert.Empty(t, response.Tracks)
	assert.Empty(t, response.StandaloneItems)
	assert.Empty(t, response.Artists)
}

// TestDeduplicateDownloadItems tests category-and-ID deduplication.
func TestDeduplicateDownloadItems(t *testing.T) {
	t.Parallel()

	processor := NewURLProcessor()

	items := []*DownloadItem{
		{Category: DownloadCategoryAlbum, URL: "u1", ItemID: "abc"},
		{Category: DownloadCategoryAlbum, URL: "u2", ItemID: "abc"},
		{Category: DownloadCategoryPlaylist, URL: "u3", ItemID: "abc"},
		{Category: DownloadCategoryAlbum, URL: "u4", ItemID: "def"},
	}

	deduplicated := processor.DeduplicateDownloadItems(items)

	require.Len(t, deduplicated, 3)
	assert.Equal(t, "u1", deduplicated[0].URL)
	assert.Equal(t, "u3", deduplicated[1].URL)
	assert.Equal(t, "u4", deduplicated[2].URL)
}

// TestDownloadItemString tests item rendering and the short form.
func TestDownloadItemString(t *testing.T) {
	t.Parallel()

	item := DownloadItem{
		Category: DownloadCategoryAlbum,
		URL:      "https://www.example.com/album/abc",
		ItemID:   "abc",
	}

	assert.Equal(t, "category: album, ID: abc", item.String())
	assert.Equal(t, ShortDownloadItem{Category: DownloadCategoryAlbum, ItemID: "abc"}, item.GetShortVersion())
}
