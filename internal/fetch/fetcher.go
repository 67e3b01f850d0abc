package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mosaictile/internal/logger"
	"mosaictile/internal/segment"
)

// Reason classifies why a fetch did not produce a segment. The controller
// treats every failure as end-of-stream, but the classification is kept so a
// retry policy can be layered on later without changing the contract.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonNotFound covers non-2xx responses: the segment does not exist
	// at the origin, the normal end of a stream.
	ReasonNotFound
	// ReasonTransportError covers connection, timeout and local storage
	// failures, indistinguishable from end-of-stream to the caller.
	ReasonTransportError
)

func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "not found"
	case ReasonTransportError:
		return "transport error"
	default:
		return "none"
	}
}

// Result is the outcome of one segment fetch.
type Result struct {
	Index int
	OK    bool
	// Reason is set when OK is false.
	Reason Reason
	Err    error
	// Duration is the wall-clock time of the whole fetch, measured so the
	// pacer can amortize it across the segment's frames.
	Duration time.Duration
}

// Fetcher retrieves numbered segments for one quadrant over HTTP and hands
// the bytes to the segment store.
type Fetcher struct {
	httpClient *http.Client
	store      *segment.Store
	logger     logger.Logger

	baseURL   string
	extension string
	userAgent string
	quadrant  int
}

// NewFetcher creates a fetcher for the given quadrant.
func NewFetcher(baseURL, extension, userAgent string, quadrant int, store *segment.Store, log logger.Logger) *Fetcher {
	transport := &http.Transport{
		ResponseHeaderTimeout: 3 * time.Second,
	}
	return &Fetcher{
		httpClient: &http.Client{Transport: transport},
		store:      store,
		logger:     log,
		baseURL:    baseURL,
		extension:  extension,
		userAgent:  userAgent,
		quadrant:   quadrant,
	}
}

// URL builds the per-quadrant segment URL for index.
func (f *Fetcher) URL(index int) string {
	return fmt.Sprintf("%s%d_q%d.%s", f.baseURL, index, f.quadrant, f.extension)
}

// Fetch retrieves segment index into the file at path and measures how long
// the transfer took. It never retries: the first failure is authoritative
// and the caller reads it as end-of-stream.
func (f *Fetcher) Fetch(ctx context.Context, index int, path string) Result {
	start := time.Now()
	url := f.URL(index)
	f.logger.Debugf("Fetching segment %d from %s", index, url)

	fail := func(reason Reason, err error) Result {
		return Result{Index: index, Reason: reason, Err: err, Duration: time.Since(start)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(ReasonTransportError, fmt.Errorf("failed to create request for segment %d: %w", index, err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fail(ReasonTransportError, fmt.Errorf("fetch of segment %d failed: %w", index, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(ReasonNotFound, fmt.Errorf("segment %d: received status code %d from %s", index, resp.StatusCode, url))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(ReasonTransportError, fmt.Errorf("failed to read body of segment %d: %w", index, err))
	}

	if err := f.store.Write(path, data); err != nil {
		return fail(ReasonTransportError, err)
	}

	elapsed := time.Since(start)
	f.logger.Debugf("Fetched segment %d (%d bytes) in %v", index, len(data), elapsed)
	return Result{Index: index, OK: true, Duration: elapsed}
}

// FetchAsync starts the fetch in the background and returns a channel that
// delivers exactly one Result. This is the fetch-ahead path: the controller
// starts it before rendering the current segment and joins it at the
// transition.
func (f *Fetcher) FetchAsync(ctx context.Context, index int, path string) <-chan Result {
	results := make(chan Result, 1)
	go func() {
		results <- f.Fetch(ctx, index, path)
	}()
	return results
}
