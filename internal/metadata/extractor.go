package metadata

import (
	"strconv"
	"strings"

	"github.com/anorlov/qobuz-grabber/internal/client/qobuz"
)

// MultiValueSeparator joins multiple values of the same tag into one string.
// Tag writers split on it again when a format supports repeated fields.
const MultiValueSeparator = "; "

// releaseDateYearLength is how many leading characters of a
// "2006-01-02" date form the year.
const releaseDateYearLength = 4

// Extract merges track-level and album-level catalog payloads into a Record.
// Either argument may be nil or partially filled; when album is nil the
// track's embedded album is used instead. Contributor lists derived from
// the track credit string take precedence over the discrete single-value
// fields, which the catalog populates less reliably.
func Extract(track *qobuz.Track, album *qobuz.Album) *Record {
	record := &Record{}

	if track == nil {
		track = &qobuz.Track{}
	}

	if album == nil {
		album = track.Album
	}

	if album == nil {
		album = &qobuz.Album{}
	}

	record.TrackID = strconv.FormatInt(track.ID, 10)
	record.Title = joinTitleVersion(track.Title, track.Version)
	record.TrackNumber = track.TrackNumber
	record.DiscNumber = track.MediaNumber
	record.DurationSeconds = track.Duration
	record.ISRC = track.ISRC
	record.Explicit = track.ParentalWarning

	credits := ParseCredits(track.Performers)

	record.Artists = extractTrackArtists(track, album, credits)
	record.Composers = extractComposers(track, credits)
	record.Lyricists = NamesWithRole(credits, RoleLyricist)
	record.Producers = NamesWithRole(credits, RoleProducer)
	record.Conductors = NamesWithRole(credits, RoleConductor)
	record.Engineers = NamesWithRole(credits, RoleEngineer)
	record.Mixers = NamesWithRole(credits, RoleMixer)

	record.Copyright = track.Copyright
	if record.Copyright == "" {
		record.Copyright = album.Copyright
	}

	record.Album = joinTitleVersion(album.Title, album.Version)
	record.AlbumArtists = extractAlbumArtists(album)
	record.Genre = TranslateGenre(album.Genre.Name)
	record.Label = album.Label.Name
	record.Barcode = album.UPC
	record.ReleaseType = album.ReleaseType
	record.TotalTracks = album.TracksCount
	record.TotalDiscs = album.MediaCount

	record.Date = album.ReleaseDateOriginal
	if len(record.Date) >= releaseDateYearLength {
		record.Year = record.Date[:releaseDateYearLength]
	}

	return record
}

// ArtistLine returns the track artists joined for display.
func (r *Record) ArtistLine() string {
	return JoinArtists(r.Artists)
}

// AlbumArtistLine returns the album artists joined for display.
func (r *Record) AlbumArtistLine() string {
	return JoinArtists(r.AlbumArtists)
}

// VorbisTags renders the record as Vorbis comment fields.
// Multi-valued fields are joined with MultiValueSeparator;
// empty fields are omitted entirely.
func (r *Record) VorbisTags() map[string]string {
	tags := map[string]string{
		"TITLE":       r.Title,
		"ALBUM":       r.Album,
		"ARTIST":      strings.Join(r.Artists, MultiValueSeparator),
		"ALBUMARTIST": strings.Join(r.AlbumArtists, MultiValueSeparator),
		"COMPOSER":    strings.Join(r.Composers, MultiValueSeparator),
		"LYRICIST":    strings.Join(r.Lyricists, MultiValueSeparator),
		"PRODUCER":    strings.Join(r.Producers, MultiValueSeparator),
		"CONDUCTOR":   strings.Join(r.Conductors, MultiValueSeparator),
		"ENGINEER":    strings.Join(r.Engineers, MultiValueSeparator),
		"MIXER":       strings.Join(r.Mixers, MultiValueSeparator),
		"GENRE":       r.Genre,
		"DATE":        r.Date,
		"YEAR":        r.Year,
		"COPYRIGHT":   r.Copyright,
		"ISRC":        r.ISRC,
		"BARCODE":     r.Barcode,
		"LABEL":       r.Label,
		"RELEASETYPE": r.ReleaseType,
		"TRACKNUMBER": formatPositiveInt(r.TrackNumber),
		"TOTALTRACKS": formatPositiveInt(r.TotalTracks),
		"DISCNUMBER":  formatPositiveInt(r.DiscNumber),
		"TOTALDISCS":  formatPositiveInt(r.TotalDiscs),
	}

	for key, value := range tags {
		if value == "" {
			delete(tags, key)
		}
	}

	return tags
}

// joinTitleVersion appends a version qualifier to a title,
// "Fearless" + "Taylor's Version" = "Fearless (Taylor's Version)".
func joinTitleVersion(title, version string) string {
	title = strings.TrimSpace(title)
	version = strings.TrimSpace(version)

	if version == "" {
		return title
	}

	if title == "" {
		return version
	}

	// Some titles already embed the qualifier.
	if strings.Contains(strings.ToLower(title), strings.ToLower(version)) {
		return title
	}

	return title + " (" + version + ")"
}

// extractTrackArtists resolves the performing artists of a track.
// Credit-string main artists win, then the discrete performer field,
// then the album's main artist.
func extractTrackArtists(track *qobuz.Track, album *qobuz.Album, credits []Credit) []string {
	if names := NamesWithRole(credits, RoleMainArtist); len(names) > 0 {
		featured := NamesWithRole(credits, RoleFeaturedArtist)

		return DeduplicateNames(append(names, featured...))
	}

	if track.Performer.Name != "" {
		return []string{track.Performer.Name}
	}

	if album.Artist.Name != "" {
		return []string{album.Artist.Name}
	}

	return nil
}

// extractComposers resolves composers, preferring the credit string
// over the discrete composer field.
func extractComposers(track *qobuz.Track, credits []Credit) []string {
	if names := NamesWithRole(credits, RoleComposer); len(names) > 0 {
		return names
	}

	if track.Composer.Name != "" {
		return []string{track.Composer.Name}
	}

	return nil
}

// extractAlbumArtists resolves the release-level main artists.
func extractAlbumArtists(album *qobuz.Album) []string {
	var names []string

	for _, artist := range album.Artists {
		for _, role := range artist.Roles {
			if strings.Contains(strings.ToLower(role), "main") {
				names = append(names, artist.Name)
				break
			}
		}
	}

	if len(names) == 0 && album.Artist.Name != "" {
		names = []string{album.Artist.Name}
	}

	return DeduplicateNames(names)
}

// formatPositiveInt renders a positive integer, or "" for zero and below.
func formatPositiveInt(v int64) string {
	if v <= 0 {
		return ""
	}

	return strconv.FormatInt(v, 10)
}
