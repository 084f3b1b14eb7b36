package loader

import (
	"log"
	"net/http"

	billy "github.com/go-git/go-billy/v5"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFilePath is an option builder that sets the base path prefixed to urls without a scheme
// and used to resolve image files. Empty values are ignored.
//
// Parameters:
//   - path: the base path (e.g. "/models/")
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file path option to a loader
func WithFilePath(path string) LoaderBuilderOption {
	return func(l *loader) {
		if path != "" {
			l.filePath = path
		}
	}
}

// WithFetcher is an option builder that replaces the document fetcher.
// When set, WithFilesystem and WithHTTPClient have no effect.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the fetcher option to a loader
func WithFetcher(f Fetcher) LoaderBuilderOption {
	return func(l *loader) {
		l.fetcher = f
	}
}

// WithFilesystem is an option builder that sets the filesystem local paths are read from.
//
// Parameters:
//   - fs: the filesystem
//
// Returns:
//   - LoaderBuilderOption: a function that applies the filesystem option to a loader
func WithFilesystem(fs billy.Filesystem) LoaderBuilderOption {
	return func(l *loader) {
		l.fs = fs
	}
}

// WithHTTPClient is an option builder that sets the client used for http:// and https:// urls.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(c *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		l.httpClient = c
	}
}

// WithWorkers is an option builder that sets the maximum number of concurrent asynchronous loads.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger is an option builder that sets the logger for skipped elements and failed loads.
//
// Parameters:
//   - logger: the logger; nil is ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
