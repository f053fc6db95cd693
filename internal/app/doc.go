// Package app provides the main application logic for downloading audio
// from catalog URLs. It initializes the necessary components, such as the
// catalog client, URL processor, template manager, tag processor, and
// download history, and orchestrates the download process.
package app
