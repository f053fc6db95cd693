package metadata

// Role classifies a contributor credit on a track.
type Role uint8

const (
	// RoleUnknown is a credit that matched no known role.
	RoleUnknown Role = iota
	// RoleMainArtist is a primary credited artist.
	RoleMainArtist
	// RoleFeaturedArtist is a guest artist.
	RoleFeaturedArtist
	// RoleComposer wrote the music.
	RoleComposer
	// RoleLyricist wrote the words.
	RoleLyricist
	// RoleProducer produced the recording.
	RoleProducer
	// RoleConductor conducted the performance.
	RoleConductor
	// RoleOrchestra is a credited orchestra.
	RoleOrchestra
	// RoleChoir is a credited choir.
	RoleChoir
	// RoleEngineer engineered the recording.
	RoleEngineer
	// RoleMixer mixed the recording.
	RoleMixer
)

// String returns the human-readable name of the role.
func (r Role) String() string {
	switch r {
	case RoleMainArtist:
		return "main artist"
	case RoleFeaturedArtist:
		return "featured artist"
	case RoleComposer:
		return "composer"
	case RoleLyricist:
		return "lyricist"
	case RoleProducer:
		return "producer"
	case RoleConductor:
		return "conductor"
	case RoleOrchestra:
		return "orchestra"
	case RoleChoir:
		return "choir"
	case RoleEngineer:
		return "engineer"
	case RoleMixer:
		return "mixer"
	case RoleUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Credit is a single contributor parsed from a credit string.
type Credit struct {
	// Name is the contributor name as credited.
	Name string
	// Roles lists the classified roles of the contributor.
	Roles []Role
}

// HasRole reports whether the credit carries the given role.
func (c *Credit) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}

	return false
}

// Record is a tagging-ready view of a single track.
// String slices hold deduplicated names in credit order.
type Record struct {
	// TrackID is the catalog identifier of the track.
	TrackID string
	// Title is the track title including its version qualifier.
	Title string
	// Album is the release title including its version qualifier.
	Album string
	// Artists are the track-level performing artists.
	Artists []string
	// AlbumArtists are the release-level main artists.
	AlbumArtists []string
	// Composers wrote the music.
	Composers []string
	// Lyricists wrote the words.
	Lyricists []string
	// Producers produced the recording.
	Producers []string
	// Conductors conducted the performance.
	Conductors []string
	// Engineers engineered the recording.
	Engineers []string
	// Mixers mixed the recording.
	Mixers []string
	// Genre is the English genre name.
	Genre string
	// Date is the original release date in "2006-01-02" format.
	Date string
	// Year is the original release year.
	Year string
	// TrackNumber is the position of the track on its disc.
	TrackNumber int64
	// TotalTracks is the number of tracks on the release.
	TotalTracks int64
	// DiscNumber is the disc the track belongs to.
	DiscNumber int64
	// TotalDiscs is the number of discs in the release.
	TotalDiscs int64
	// Copyright is the copyright line.
	Copyright string
	// ISRC is the international standard recording code.
	ISRC string
	// Barcode is the release UPC.
	Barcode string
	// Label is the record label name.
	Label string
	// ReleaseType distinguishes albums, EPs and singles.
	ReleaseType string
	// Explicit indicates explicit content.
	Explicit bool
	// DurationSeconds is the track length in seconds.
	DurationSeconds int64
}
