// Package downloader implements the download pipeline: it resolves
// catalog URLs into tracks, downloads audio at the best available FLAC
// quality with fallback, fetches lyrics and cover art, embeds metadata
// through the tag queue, and records completed downloads in the history
// ledger. Batches run under a bounded concurrency limiter; per-track
// progress is fanned out to subscribed consumers.
package downloader
