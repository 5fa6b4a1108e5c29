package repofetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	f := NewFetcher(nil)
	f.retryDelay = time.Millisecond
	return f
}

func TestFetchAll(t *testing.T) {
	t.Run("downloads archives into refs dir", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("archive-bytes"))
		}))
		defer srv.Close()

		dest := t.TempDir()
		f := newTestFetcher()
		err := f.FetchAll(context.Background(), dest, []string{srv.URL + "/repo-main.tar.gz"})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dest, RefsDir, "repo-main.tar.gz"))
		require.NoError(t, err)
		assert.Equal(t, "archive-bytes", string(data))
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		f := newTestFetcher()
		err := f.FetchAll(context.Background(), t.TempDir(), []string{srv.URL + "/a.tar.gz"})
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("exhausted retries surface the url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := newTestFetcher()
		err := f.FetchAll(context.Background(), t.TempDir(), []string{srv.URL + "/gone.tar.gz"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gone.tar.gz")
	})

	t.Run("empty url list is a no-op", func(t *testing.T) {
		dest := t.TempDir()
		f := newTestFetcher()
		require.NoError(t, f.FetchAll(context.Background(), dest, nil))

		_, err := os.Stat(filepath.Join(dest, RefsDir))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://codeload.github.com/org/repo/tar.gz/main", "main.tar.gz"},
		{"https://example.com/pkg-1.2.3.tar.gz", "pkg-1.2.3.tar.gz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, archiveName(tt.url))
	}

	t.Run("unusable paths get a generated name", func(t *testing.T) {
		name := archiveName("https://example.com/")
		assert.True(t, len(name) > len(".tar.gz"))
	})
}
