package tag

import (
	"errors"

	"github.com/anorlov/qobuz-grabber/internal/client/lyrics"
)

// Format identifies the audio container being tagged.
type Format uint8

const (
	// FormatUnknown is an unrecognized container.
	FormatUnknown Format = iota
	// FormatFLAC is a FLAC container.
	FormatFLAC
	// FormatMP3 is an MP3 container.
	FormatMP3
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "FLAC"
	case FormatMP3:
		return "MP3"
	case FormatUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// WriteRequest contains parameters for writing metadata to an audio file.
type WriteRequest struct {
	// TrackPath is the file path of the audio track.
	TrackPath string
	// Format selects the tagging strategy.
	Format Format
	// Tags contains Vorbis-style key-value pairs to write.
	// Multi-valued fields are joined with "; " and expanded into
	// repeated fields where the container supports them.
	Tags map[string]string
	// Lyrics contains the lyrics to embed, nil when unavailable.
	Lyrics *lyrics.Lyrics
	// Cover contains the raw cover art bytes, nil when unavailable.
	Cover []byte
	// CoverMimeType is the MIME type of the cover art.
	CoverMimeType string
}

// Static error definitions for better error handling.
var (
	// ErrEmptyTrackPath indicates that the track file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
	// ErrUnknownFormat indicates the request carries an unsupported format.
	ErrUnknownFormat = errors.New("unknown audio format")
	// ErrNotFLAC indicates the file does not start with a FLAC stream marker.
	ErrNotFLAC = errors.New("not a FLAC file")
	// ErrBlockTooLarge indicates a metadata block exceeds the format's 24-bit length limit.
	ErrBlockTooLarge = errors.New("metadata block too large")
	// ErrSuspiciouslySmallOutput indicates the rewritten file contains no audio data.
	ErrSuspiciouslySmallOutput = errors.New("rewritten file smaller than its metadata")
	// ErrQueueClosed indicates a write was submitted after the queue shut down.
	ErrQueueClosed = errors.New("tag queue is closed")
	// ErrTagWritePanic indicates a write panicked and was converted into an error.
	ErrTagWritePanic = errors.New("tag write panicked")
)
