package tag

import (
	"context"
	"strings"

	"github.com/oshokin/id3v2/v2"

	"github.com/anorlov/qobuz-grabber/internal/logger"
)

// txxxKeys are the fields written as user-defined TXXX frames,
// mirroring how common tagging tools name them.
//
//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var txxxKeys = []string{"BARCODE", "CATALOGNUMBER", "LABEL", "RELEASETYPE"}

// writeMP3Tags writes an ID3v2.4 tag into an MP3 file.
// The file is not parsed first: fresh downloads carry no tag,
// so the writer starts from an empty one.
func writeMP3Tags(ctx context.Context, req *WriteRequest) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close() //nolint:errcheck // Save below reports the meaningful error.

	addMP3Frames(ctx, tag, req)

	if req.Cover != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    req.CoverMimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     req.Cover,
		})
	}

	return tag.Save()
}

// addMP3Frames maps the Vorbis-style tag fields onto ID3v2 frames.
func addMP3Frames(ctx context.Context, tag *id3v2.Tag, req *WriteRequest) {
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tags := req.Tags

	tag.SetTitle(tags["TITLE"])
	tag.SetArtist(tags["ARTIST"])
	tag.SetAlbum(tags["ALBUM"])
	tag.SetGenre(tags["GENRE"])
	tag.SetYear(tags["YEAR"])

	addPositionFrame(tag, "Track number/Position in set", tags["TRACKNUMBER"], tags["TOTALTRACKS"])
	addPositionFrame(tag, "Part of a set", tags["DISCNUMBER"], tags["TOTALDISCS"])

	addTextFrame(tag, "Band/Orchestra/Accompaniment", tags["ALBUMARTIST"])
	addTextFrame(tag, "Composer", tags["COMPOSER"])
	addTextFrame(tag, "Conductor/performer refinement", tags["CONDUCTOR"])
	addTextFrame(tag, "Lyricist/Text writer", tags["LYRICIST"])
	addTextFrame(tag, "Publisher", tags["LABEL"])
	addTextFrame(tag, "Copyright message", tags["COPYRIGHT"])
	addTextFrame(tag, "ISRC", tags["ISRC"])
	addTextFrame(tag, "Recording time", tags["DATE"])

	for _, key := range txxxKeys {
		if tags[key] == "" {
			continue
		}

		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: key,
			Value:       tags[key],
		})
	}

	addLyricsFrames(ctx, tag, req)
}

// addTextFrame adds a text frame by its descriptive ID, skipping empty values.
func addTextFrame(tag *id3v2.Tag, description, value string) {
	if value == "" {
		return
	}

	tag.AddTextFrame(tag.CommonID(description), tag.DefaultEncoding(), value)
}

// addPositionFrame adds a "current/total" frame such as track or disc numbers.
func addPositionFrame(tag *id3v2.Tag, description, current, total string) {
	if current == "" {
		return
	}

	value := current
	if total != "" {
		value += "/" + total
	}

	tag.AddTextFrame(tag.CommonID(description), tag.DefaultEncoding(), value)
}

// addLyricsFrames embeds lyrics: a synchronized frame when timed lyrics
// exist, and an unsynchronized frame sourced from the best text available.
func addLyricsFrames(ctx context.Context, tag *id3v2.Tag, req *WriteRequest) {
	if req.Lyrics == nil {
		return
	}

	var (
		synced = strings.TrimSpace(req.Lyrics.Synced)
		plain  = strings.TrimSpace(req.Lyrics.Plain)
	)

	if synced != "" {
		result, err := id3v2.ParseLRCFile(strings.NewReader(synced))
		if err != nil {
			logger.Errorf(ctx, "Failed to parse LRC content: %v", err)
		} else {
			tag.AddSynchronisedLyricsFrame(id3v2.SynchronisedLyricsFrame{
				Encoding: id3v2.EncodingUTF8,
				// Field is required, so we just use lingua franca.
				Language: id3v2.EnglishISO6392Code,
				// Use absolute timestamps.
				TimestampFormat: id3v2.SYLTAbsoluteMillisecondsTimestampFormat,
				// Mark as lyrics.
				ContentType: id3v2.SYLTLyricsContentType,
				// Descriptor for lyrics.
				ContentDescriptor: "Lyrics",
				// The actual synchronized lyrics.
				SynchronizedTexts: result.SynchronizedTexts,
			})
		}
	}

	if plain == "" {
		plain = synced
	}

	if plain == "" {
		return
	}

	tag.AddUnsynchronisedLyricsFrame(
		//nolint:exhaustruct // ContentDescriptor not available in source data.
		id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Lyrics:   plain,
			// Field is required, so we just use lingua franca.
			Language: id3v2.EnglishISO6392Code,
		})
}
