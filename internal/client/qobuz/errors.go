package qobuz

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrArtistNotFound indicates that the requested artist was not found.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrUnexpectedArtistResponseFormat indicates an unexpected artist API response format.
	ErrUnexpectedArtistResponseFormat = errors.New("unexpected artist response format")
	// ErrUnexpectedReleasesResponseFormat indicates an unexpected releases API response format.
	ErrUnexpectedReleasesResponseFormat = errors.New("unexpected releases response format")
	// ErrFailedToResolveFileURL indicates failure to resolve a download URL after all retry attempts.
	ErrFailedToResolveFileURL = errors.New("failed to resolve download URL after retries")
	// ErrEmptyFileURL indicates the API responded without a usable download URL.
	ErrEmptyFileURL = errors.New("no download URL in response")
)
