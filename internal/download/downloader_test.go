package download

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/utils"
)

type recordingSink struct {
	completed int64
	total     int64
	reports   int
	desc      string
}

func (r *recordingSink) Report(completed, total int64) {
	r.completed = completed
	r.total = total
	r.reports++
}

func (r *recordingSink) SetDescription(text string) {
	r.desc = text
}

func newTestDownloader(notices *[]string) *Downloader {
	d := New(utils.NewDrainzoHTTPClient(utils.HTTPClientConfig{}))
	if notices != nil {
		d.Notify = func(message string) {
			*notices = append(*notices, message)
		}
	}
	return d
}

// rangeServer serves content honoring Range requests with 206, counting
// all requests and remembering the last Range header it saw.
func rangeServer(t *testing.T, content []byte, requests *atomic.Int32, lastRange *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		rangeHdr := r.Header.Get("Range")
		if lastRange != nil {
			lastRange.Store(rangeHdr)
		}
		if rangeHdr != "" {
			offsetStr := strings.TrimSuffix(strings.TrimPrefix(rangeHdr, "bytes="), "-")
			offset, err := strconv.ParseInt(offsetStr, 10, 64)
			require.NoError(t, err)
			w.Header().Set("Content-Length", fmt.Sprint(int64(len(content))-offset))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(content[offset:])
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(content)))
		w.Write(content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadFresh(t *testing.T) {
	content := []byte("drainzo test payload: 0123456789abcdef")
	var requests atomic.Int32
	srv := rangeServer(t, content, &requests, nil)

	dest := filepath.Join(t.TempDir(), "sub", "file.bin")
	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	sink := &recordingSink{}

	d := newTestDownloader(nil)
	require.NoError(t, d.Download(item, dest, Options{}, sink))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), sink.completed)
	assert.Equal(t, int64(len(content)), sink.total)
}

func TestDownloadSkipsCompleteFileWithoutNetwork(t *testing.T) {
	content := []byte("already fully downloaded content")
	var requests atomic.Int32
	srv := rangeServer(t, content, &requests, nil)

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, content, 0644))

	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	var notices []string
	d := newTestDownloader(&notices)

	// Twice in a row: both succeed, neither touches the network.
	for i := 0; i < 2; i++ {
		sink := &recordingSink{}
		require.NoError(t, d.Download(item, dest, Options{}, sink))
		assert.Equal(t, int64(len(content)), sink.completed, "sink forced to 100%%")
		assert.Equal(t, int64(len(content)), sink.total)
	}
	assert.Equal(t, int32(0), requests.Load())
	assert.Contains(t, notices[0], "Skipped")
}

func TestDownloadResumesFromPartialFile(t *testing.T) {
	content := []byte("resumable content body with enough bytes to split")
	var requests atomic.Int32
	var seenRange atomic.Value
	srv := rangeServer(t, content, &requests, &seenRange)

	const partial = 16
	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, content[:partial], 0644))

	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	var notices []string
	d := newTestDownloader(&notices)
	sink := &recordingSink{}
	require.NoError(t, d.Download(item, dest, Options{}, sink))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got, "resumed file must match the full content")
	assert.Equal(t, fmt.Sprintf("bytes=%d-", partial), seenRange.Load())
	assert.Contains(t, notices[0], "Resuming")
}

func TestDownloadRestartsWhenServerDeclinesResume(t *testing.T) {
	content := []byte("server refuses ranges, full body only")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ignore any Range header and serve the whole file with 200.
		w.Write(content)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, []byte("GARBAGE-PREFIX"), 0644))

	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	var notices []string
	d := newTestDownloader(&notices)
	require.NoError(t, d.Download(item, dest, Options{}, &recordingSink{}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got, "file must be truncated and rewritten, not appended")
}

func TestDownloadOverwriteIgnoresExistingFile(t *testing.T) {
	content := []byte("fresh content")
	var requests atomic.Int32
	srv := rangeServer(t, content, &requests, nil)

	dest := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(dest, []byte("stale much longer prior content"), 0644))

	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	d := newTestDownloader(nil)
	require.NoError(t, d.Download(item, dest, Options{Overwrite: true}, &recordingSink{}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int32(1), requests.Load())
}

func TestDownloadFallsBackWhenAria2Missing(t *testing.T) {
	content := []byte("fallback path content")
	var requests atomic.Int32
	srv := rangeServer(t, content, &requests, nil)

	dest := filepath.Join(t.TempDir(), "file.bin")
	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}

	var notices []string
	d := newTestDownloader(&notices)
	d.Aria2Path = "drainzo-no-such-binary"

	require.NoError(t, d.Download(item, dest, Options{UseAria2: true}, &recordingSink{}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[0], "falling back")
}

func TestDownloadSidecarMarkerSkipsLocalResume(t *testing.T) {
	content := []byte("aria2 owned partial state")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The built-in engine must not send a Range here: the partial
		// file belongs to aria2c, not to us.
		assert.Empty(t, r.Header.Get("Range"))
		w.Write(content)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	dest := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(dest, []byte("partial-aria2-bytes"), 0644))
	require.NoError(t, os.WriteFile(dest+SidecarSuffix, []byte{}, 0644))

	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin", SizeBytes: int64(len(content))}
	var notices []string
	d := newTestDownloader(&notices)
	d.Aria2Path = "drainzo-no-such-binary"

	require.NoError(t, d.Download(item, dest, Options{UseAria2: true}, &recordingSink{}))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	// The sidecar is aria2c's file; the built-in engine leaves it alone.
	_, err = os.Stat(dest + SidecarSuffix)
	assert.NoError(t, err)
}

func TestDownloadReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "file.bin")
	item := extract.DownloadItem{DownloadURL: srv.URL, Filename: "file.bin"}
	d := newTestDownloader(nil)
	err := d.Download(item, dest, Options{}, &recordingSink{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDownloadSendsItemHeaders(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "file.bin")
	item := extract.DownloadItem{
		DownloadURL: srv.URL,
		Filename:    "file.bin",
		Headers:     map[string]string{"Authorization": "Bearer tok"},
	}
	d := newTestDownloader(nil)
	require.NoError(t, d.Download(item, dest, Options{}, &recordingSink{}))
	assert.Equal(t, "Bearer tok", gotAuth.Load())
}
