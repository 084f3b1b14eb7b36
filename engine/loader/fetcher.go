package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Fetcher retrieves the raw bytes of a document. A fetch is a single attempt; failures are
// reported wrapped in ErrFetchFailed.
type Fetcher interface {
	// Fetch retrieves the document at url.
	//
	// Parameters:
	//   - ctx: context used to cancel the request
	//   - url: the resolved document location
	//
	// Returns:
	//   - []byte: the document bytes (possibly empty)
	//   - error: an error wrapping ErrFetchFailed if the document cannot be retrieved
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// fileFetcherImpl reads documents from a billy filesystem.
type fileFetcherImpl struct {
	fs billy.Filesystem
}

var _ Fetcher = &fileFetcherImpl{}

// NewFileFetcher creates a Fetcher that reads paths from fs. A "file://" prefix is accepted and stripped.
//
// Parameters:
//   - fs: the filesystem documents are read from
//
// Returns:
//   - Fetcher: the file fetcher
func NewFileFetcher(fs billy.Filesystem) Fetcher {
	return &fileFetcherImpl{fs: fs}
}

func (f *fileFetcherImpl) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	path := strings.TrimPrefix(url, "file://")
	data, err := util.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	return data, nil
}

// httpFetcherImpl retrieves documents over HTTP(S).
type httpFetcherImpl struct {
	client *http.Client
}

var _ Fetcher = &httpFetcherImpl{}

// NewHTTPFetcher creates a Fetcher issuing GET requests with client.
// A nil client selects http.DefaultClient.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - Fetcher: the HTTP fetcher
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcherImpl{client: client}
}

func (f *httpFetcherImpl) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %s", ErrFetchFailed, url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	return data, nil
}

// schemeFetcherImpl routes a fetch by URL scheme.
type schemeFetcherImpl struct {
	file Fetcher
	http Fetcher
}

var _ Fetcher = &schemeFetcherImpl{}

// NewFetcher creates a Fetcher that sends http:// and https:// URLs to an HTTP fetcher and
// plain paths or file:// URLs to a file fetcher over fs. Any other scheme fails.
//
// Parameters:
//   - fs: the filesystem for local paths
//   - client: the HTTP client (nil selects http.DefaultClient)
//
// Returns:
//   - Fetcher: the routing fetcher
func NewFetcher(fs billy.Filesystem, client *http.Client) Fetcher {
	return &schemeFetcherImpl{
		file: NewFileFetcher(fs),
		http: NewHTTPFetcher(client),
	}
}

func (f *schemeFetcherImpl) Fetch(ctx context.Context, url string) ([]byte, error) {
	scheme, _, found := strings.Cut(url, "://")
	if !found {
		return f.file.Fetch(ctx, url)
	}
	switch strings.ToLower(scheme) {
	case "http", "https":
		return f.http.Fetch(ctx, url)
	case "file":
		return f.file.Fetch(ctx, url)
	default:
		return nil, fmt.Errorf("%w: %s: unsupported scheme %q", ErrFetchFailed, url, scheme)
	}
}
