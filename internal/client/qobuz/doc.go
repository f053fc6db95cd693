// Package qobuz provides a Go client for interacting with the Qobuz catalog API,
// offering access to music metadata and content.
// It handles HTTP/GraphQL communication with retry logic,
// header-based authentication, and user-agent management.
// Key features include track/album/playlist/artist metadata retrieval,
// download URL resolution for a requested audio format, and content downloading.
// Metadata lookups are cached with bounded LRU caches so batch downloads
// do not refetch the same entities.
package qobuz
