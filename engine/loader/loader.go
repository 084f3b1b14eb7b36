package loader

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-collada/common"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultWorkers is the worker pool size used when WithWorkers is not given.
const DefaultWorkers = 4

// taskQueueSize is the number of submitted loads that may wait for a free worker before
// Load blocks.
const taskQueueSize = 256

// LoadCallback receives the outcome of an asynchronous load. Exactly one of the
// arguments is non-nil.
type LoadCallback func(s scene.Scene, err error)

// LoadResult is the outcome of one load in a LoadAll batch.
type LoadResult struct {
	// URL is the requested url as given by the caller.
	URL string

	// Scene is the loaded scene, or nil on failure.
	Scene scene.Scene

	// Err is the failure, or nil on success.
	Err error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	taskID   atomic.Int64

	filePath   string
	fetcher    Fetcher
	fs         billy.Filesystem
	httpClient *http.Client
	workers    int
	logger     *log.Logger

	tasks   chan worker.Task
	stop    chan int
	stopped sync.Once
	backend loaderBackend
}

// Loader defines the public-facing interface for loading COLLADA documents into scenes.
// The loader holds configuration only; every load runs as an independent task, so a
// single Loader may serve concurrent loads.
type Loader interface {
	// Load fetches and parses the document at url on the loader's worker pool, then invokes
	// done exactly once. A url without "://" is prefixed with the loader's file path.
	// done receives either a complete scene or an error, never a partial scene.
	//
	// Parameters:
	//   - ctx: context checked before the fetch and passed to the fetcher
	//   - url: the document location
	//   - done: the completion callback
	Load(ctx context.Context, url string, done LoadCallback)

	// LoadScene is the synchronous form of Load.
	//
	// Parameters:
	//   - ctx: context checked before the fetch and passed to the fetcher
	//   - url: the document location
	//
	// Returns:
	//   - scene.Scene: the loaded scene, or nil on failure
	//   - error: ErrFetchFailed, ErrEmptyDocument, ErrMalformedDocument, ErrUnsupportedFormat or a context error
	LoadScene(ctx context.Context, url string) (scene.Scene, error)

	// LoadAll loads every url concurrently on the worker pool and waits for all of them.
	//
	// Parameters:
	//   - ctx: context shared by all loads
	//   - urls: the document locations
	//
	// Returns:
	//   - []LoadResult: one result per url, in input order
	LoadAll(ctx context.Context, urls []string) []LoadResult

	// Parse builds a scene from raw document text without fetching.
	//
	// Parameters:
	//   - data: the raw document text
	//
	// Returns:
	//   - scene.Scene: the parsed scene, or nil on failure
	//   - error: ErrEmptyDocument or ErrMalformedDocument
	Parse(data []byte) (scene.Scene, error)

	// ParseReader builds a scene from a reader providing document text.
	//
	// Parameters:
	//   - r: the reader
	//
	// Returns:
	//   - scene.Scene: the parsed scene, or nil on failure
	//   - error: error if reading or parsing fails
	ParseReader(r io.Reader) (scene.Scene, error)

	// FilePath returns the configured base path.
	//
	// Returns:
	//   - string: the base path
	FilePath() string

	// Close stops accepting loads, waits for in-flight asynchronous loads to finish and then
	// stops the worker goroutines. Load after Close reports ErrLoaderClosed to its callback.
	//
	// Returns:
	//   - error: always nil
	Close() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		filePath: scene.DefaultFilePath,
		workers:  DefaultWorkers,
		logger:   log.Default(),
	}

	for _, option := range options {
		option(l)
	}

	if l.fetcher == nil {
		if l.fs == nil {
			l.fs = osfs.New("/")
		}
		l.fetcher = NewFetcher(l.fs, l.httpClient)
	}

	// Workers only exit when the stop channel is closed, which Close does once the last
	// in-flight load has finished.
	l.tasks = make(chan worker.Task, taskQueueSize)
	l.stop = make(chan int)
	for i := range l.workers {
		worker.NewWorker(i, l.tasks, l.stop, 1*time.Second, nil).Start()
	}
	l.backend = newColladaLoaderBackend(l.logger)
	return l
}

func (l *loader) Load(ctx context.Context, url string, done LoadCallback) {
	if done == nil {
		done = func(scene.Scene, error) {}
	}

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		done(nil, ErrLoaderClosed)
		return
	}
	l.inflight.Add(1)
	l.mu.RUnlock()

	l.tasks <- worker.Task{
		ID: int(l.taskID.Add(1)),
		Do: func() (any, error) {
			defer l.inflight.Done()
			s, err := l.LoadScene(ctx, url)
			done(s, err)
			return nil, nil
		},
	}
}

func (l *loader) LoadScene(ctx context.Context, url string) (scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backend, err := l.resolveBackend(url)
	if err != nil {
		l.logger.Printf("[ERROR] %s: %v", url, err)
		return nil, err
	}

	resolved := common.ResolvePath(l.filePath, url)
	data, err := l.fetcher.Fetch(ctx, resolved)
	if err != nil {
		l.logger.Printf("[ERROR] %v", err)
		return nil, err
	}

	s, err := l.parse(backend, data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", resolved, err)
	}
	return s, nil
}

func (l *loader) LoadAll(ctx context.Context, urls []string) []LoadResult {
	results := make([]LoadResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		l.Load(ctx, url, func(s scene.Scene, err error) {
			defer wg.Done()
			results[i] = LoadResult{URL: url, Scene: s, Err: err}
		})
	}
	wg.Wait()
	return results
}

func (l *loader) Parse(data []byte) (scene.Scene, error) {
	return l.parse(l.backend, data)
}

func (l *loader) ParseReader(r io.Reader) (scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return l.Parse(data)
}

func (l *loader) FilePath() string {
	return l.filePath
}

func (l *loader) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.inflight.Wait()
	l.stopped.Do(func() { close(l.stop) })
	return nil
}

// parse runs one import and converts a panic into ErrMalformedDocument. Document-fatal
// errors are logged at error severity.
func (l *loader) parse(backend loaderBackend, data []byte) (s scene.Scene, err error) {
	defer func() {
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("%w: panic during parse: %v", ErrMalformedDocument, r)
			l.logger.Printf("[ERROR] %v", err)
		}
	}()

	s, err = backend.Load(data, l.filePath)
	if err != nil {
		l.logger.Printf("[ERROR] %v", err)
		return nil, err
	}
	return s, nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// .dae, .xml and extension-less locations select the COLLADA backend.
func (l *loader) resolveBackend(url string) (loaderBackend, error) {
	path := url
	if common.HasScheme(path) {
		_, rest, _ := strings.Cut(path, "://")
		_, path, _ = strings.Cut(rest, "/")
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".dae", ".xml", "":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}
