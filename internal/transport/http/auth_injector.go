package http

import "net/http"

// Header names expected by the catalog API on every request.
const (
	appIDHeader     = "X-App-Id"
	authTokenHeader = "X-User-Auth-Token"
)

// AuthInjector is a custom http.RoundTripper that injects the application ID
// and user authentication token headers into HTTP requests.
// It wraps another http.RoundTripper and ensures both headers are present.
type AuthInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// appID is the application identifier to inject.
	appID string
	// authToken is the user authentication token to inject.
	authToken string
}

// NewAuthInjector creates and returns a new instance of AuthInjector.
func NewAuthInjector(next http.RoundTripper, appID, authToken string) http.RoundTripper {
	return &AuthInjector{
		next:      next,
		appID:     appID,
		authToken: authToken,
	}
}

// RoundTrip executes a single HTTP transaction and injects the
// authentication headers if they are missing.
// It implements the http.RoundTripper interface.
func (t *AuthInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(appIDHeader) == "" {
		req.Header.Set(appIDHeader, t.appID)
	}

	if req.Header.Get(authTokenHeader) == "" && t.authToken != "" {
		req.Header.Set(authTokenHeader, t.authToken)
	}

	return t.next.RoundTrip(req)
}
