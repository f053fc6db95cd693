package tag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/google/uuid"

	"github.com/anorlov/qobuz-grabber/internal/constants"
	"github.com/anorlov/qobuz-grabber/internal/metadata"
)

const (
	// flacMarker is the stream marker every FLAC file starts with.
	flacMarker = "fLaC"

	// blockHeaderSize is the size of a metadata block header:
	// one byte combining the last-block flag and block type,
	// three bytes of big-endian payload length.
	blockHeaderSize = 4

	// maxBlockLength is the largest payload a 24-bit length field can describe.
	maxBlockLength = 1<<24 - 1

	// lastBlockFlag marks the physically last metadata block.
	lastBlockFlag = 0x80

	// vendorString identifies this writer in rewritten Vorbis comments.
	vendorString = "qobuz-grabber"

	// tempFileSuffixFormat builds unique temp file names next to the target.
	tempFileSuffixFormat = "%s.%s.tmp"
)

// writeFLACTags rewrites the metadata section of a FLAC file.
// Existing Vorbis comment blocks are always dropped in favor of a block
// built from the request; existing picture blocks are dropped only when
// new cover art replaces them. Audio frames are streamed through
// byte-for-byte. The rewrite happens in a uniquely named temporary file
// which atomically replaces the original on success.
func writeFLACTags(req *WriteRequest) error {
	source, err := os.Open(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	defer source.Close() //nolint:errcheck // Read-only handle, close error is not critical.

	// After reading, the source is positioned at the first audio frame.
	blocks, err := readMetadataBlocks(source)
	if err != nil {
		return err
	}

	blocks = dropReplacedBlocks(blocks, req.Cover != nil)

	newBlocks, err := buildMetadataBlocks(req)
	if err != nil {
		return err
	}

	blocks = insertAfterStreamInfo(blocks, newBlocks)

	return replaceWithRewrite(req.TrackPath, blocks, source)
}

// readMetadataBlocks reads the stream marker and every metadata block,
// leaving the reader positioned at the first audio frame.
func readMetadataBlocks(r io.Reader) ([]*flac.MetaDataBlock, error) {
	marker := make([]byte, len(flacMarker))
	if _, err := io.ReadFull(r, marker); err != nil {
		return nil, err
	}

	if string(marker) != flacMarker {
		return nil, ErrNotFLAC
	}

	var blocks []*flac.MetaDataBlock

	for {
		header := make([]byte, blockHeaderSize)
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, err
		}

		isLast := header[0]&lastBlockFlag != 0
		blockType := flac.BlockType(header[0] &^ byte(lastBlockFlag))
		length := int(header[1])<<16 | int(header[2])<<8 | int(header[3])

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}

		blocks = append(blocks, &flac.MetaDataBlock{
			Type: blockType,
			Data: data,
		})

		if isLast {
			return blocks, nil
		}
	}
}

// dropReplacedBlocks removes the blocks the rewrite supersedes:
// Vorbis comments always, pictures only when new cover art arrives.
func dropReplacedBlocks(blocks []*flac.MetaDataBlock, replacePictures bool) []*flac.MetaDataBlock {
	kept := blocks[:0]

	for _, block := range blocks {
		if block.Type == flac.VorbisComment {
			continue
		}

		if replacePictures && block.Type == flac.Picture {
			continue
		}

		kept = append(kept, block)
	}

	return kept
}

// buildMetadataBlocks builds the replacement Vorbis comment block and,
// when cover art is present, a front-cover picture block.
func buildMetadataBlocks(req *WriteRequest) ([]*flac.MetaDataBlock, error) {
	comment := flacvorbis.New()
	comment.Vendor = vendorString

	for key, value := range req.Tags {
		if value == "" {
			continue
		}

		// Expand multi-valued fields into repeated comments.
		for _, part := range strings.Split(value, metadata.MultiValueSeparator) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			if err := comment.Add(key, part); err != nil {
				return nil, err
			}
		}
	}

	if req.Lyrics != nil && strings.TrimSpace(req.Lyrics.Plain) != "" {
		if err := comment.Add("LYRICS", req.Lyrics.Plain); err != nil {
			return nil, err
		}
	}

	commentBlock := comment.Marshal()
	blocks := []*flac.MetaDataBlock{&commentBlock}

	if req.Cover != nil {
		picture, err := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover, "", req.Cover, req.CoverMimeType)
		if err != nil {
			return nil, err
		}

		pictureBlock := picture.Marshal()
		blocks = append(blocks, &pictureBlock)
	}

	return blocks, nil
}

// insertAfterStreamInfo places the new blocks right after STREAMINFO,
// which the format requires to stay first.
func insertAfterStreamInfo(blocks, newBlocks []*flac.MetaDataBlock) []*flac.MetaDataBlock {
	insertAt := 0
	if len(blocks) > 0 && blocks[0].Type == flac.StreamInfo {
		insertAt = 1
	}

	result := make([]*flac.MetaDataBlock, 0, len(blocks)+len(newBlocks))
	result = append(result, blocks[:insertAt]...)
	result = append(result, newBlocks...)
	result = append(result, blocks[insertAt:]...)

	return result
}

// replaceWithRewrite writes the metadata and remaining audio to a
// temporary file and renames it over the original. The temporary file
// is removed on any failure.
func replaceWithRewrite(trackPath string, blocks []*flac.MetaDataBlock, audio io.Reader) (err error) {
	tempPath := fmt.Sprintf(tempFileSuffixFormat, trackPath, uuid.NewString())

	destination, err := os.OpenFile(
		filepath.Clean(tempPath),
		os.O_CREATE|os.O_EXCL|os.O_WRONLY,
		constants.DefaultFilePermissions,
	)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			destination.Close() //nolint:errcheck,gosec // Already failing, close error is secondary.
			os.Remove(tempPath) //nolint:errcheck,gosec // Best-effort cleanup.
		}
	}()

	metadataSize, err := writeMetadataSection(destination, blocks)
	if err != nil {
		return err
	}

	if _, err = io.Copy(destination, audio); err != nil {
		return err
	}

	info, err := destination.Stat()
	if err != nil {
		return err
	}

	// A file no larger than its metadata carries no audio.
	if info.Size() <= metadataSize {
		return ErrSuspiciouslySmallOutput
	}

	if err = destination.Close(); err != nil {
		return err
	}

	return os.Rename(tempPath, trackPath)
}

// writeMetadataSection writes the stream marker and all metadata blocks,
// marking exactly the final block as physically last.
// Returns the number of bytes written.
func writeMetadataSection(w io.Writer, blocks []*flac.MetaDataBlock) (int64, error) {
	written := int64(0)

	n, err := w.Write([]byte(flacMarker))
	if err != nil {
		return 0, err
	}

	written += int64(n)

	for i, block := range blocks {
		length := len(block.Data)
		if length > maxBlockLength {
			return 0, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, length)
		}

		header := [blockHeaderSize]byte{
			byte(block.Type),
			byte(length >> 16),
			byte(length >> 8),
			byte(length),
		}

		if i == len(blocks)-1 {
			header[0] |= lastBlockFlag
		}

		if n, err = w.Write(header[:]); err != nil {
			return 0, err
		}

		written += int64(n)

		if n, err = w.Write(block.Data); err != nil {
			return 0, err
		}

		written += int64(n)
	}

	return written, nil
}
