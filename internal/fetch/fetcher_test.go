package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosaictile/internal/logger"
	"mosaictile/internal/segment"
)

func newTestFetcher(t *testing.T, baseURL string, quadrant int) (*Fetcher, *segment.Store) {
	t.Helper()
	store := segment.NewStore(t.TempDir(), 0, 0, logger.Nop{})
	return NewFetcher(baseURL, "seg", "test-agent", quadrant, store, logger.Nop{}), store
}

func TestFetch_Success(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("4 2\nAAAA\nBBBB\n"))
	}))
	defer server.Close()

	f, store := newTestFetcher(t, server.URL+"/stream/", 2)
	res := f.Fetch(context.Background(), 7, store.CurrentPath())

	assert.True(t, res.OK)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Greater(t, res.Duration, time.Duration(0))
	assert.Equal(t, "/stream/7_q2.seg", gotPath, "URL carries index and quadrant")
	assert.Equal(t, "test-agent", gotAgent)

	data, err := os.ReadFile(store.CurrentPath())
	require.NoError(t, err)
	assert.Equal(t, "4 2\nAAAA\nBBBB\n", string(data))
}

func TestFetch_NotFound(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, store := newTestFetcher(t, server.URL+"/", 0)
	res := f.Fetch(context.Background(), 1, store.CurrentPath())

	assert.False(t, res.OK)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Error(t, res.Err)
	assert.Equal(t, 1, requests, "First failure is authoritative, no retries")
	assert.NoFileExists(t, store.CurrentPath())
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	f, store := newTestFetcher(t, server.URL+"/", 1)
	res := f.Fetch(context.Background(), 1, store.CurrentPath())

	assert.False(t, res.OK)
	assert.Equal(t, ReasonTransportError, res.Reason)
	assert.Error(t, res.Err)
}

func TestFetchAsync_DeliversOneResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("4 1\nAAAA\n"))
	}))
	defer server.Close()

	f, store := newTestFetcher(t, server.URL+"/", 3)
	results := f.FetchAsync(context.Background(), 2, store.NextPath())

	select {
	case res := <-results:
		assert.True(t, res.OK)
		assert.Equal(t, 2, res.Index)
		assert.FileExists(t, store.NextPath())
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for fetch-ahead result")
	}
}
