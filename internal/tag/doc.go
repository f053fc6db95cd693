// Package tag writes metadata into downloaded audio files.
// FLAC files are rewritten block by block: existing comment blocks are
// replaced with a freshly built Vorbis comment, cover art is embedded
// as a front-cover picture block, and the audio frames are streamed
// through untouched. MP3 files get an ID3v2.4 tag with standard,
// picture, lyrics and user-defined frames.
//
// All writes go to a uniquely named temporary file in the target
// directory and are renamed over the original only after a size sanity
// check, so a crash mid-write never corrupts a finished download.
// A process-wide single-worker queue serializes writes across
// concurrent downloads.
package tag
