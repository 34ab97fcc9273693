package pixeldrain

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanq16/drainzo/internal/extract"
	"github.com/tanq16/drainzo/internal/utils"
)

func testClient() *utils.DrainzoHTTPClient {
	return utils.NewDrainzoHTTPClient(utils.HTTPClientConfig{})
}

func TestRegisteredWithRegistry(t *testing.T) {
	e, err := extract.ExtractorFor("https://pixeldrain.com/u/abc123")
	require.NoError(t, err)
	assert.Equal(t, "PixelDrain", e.Name())

	e, err = extract.ExtractorFor("https://www.pixeldrain.com/l/xyz")
	require.NoError(t, err)
	assert.Equal(t, "PixelDrain", e.Name())
}

func TestExtractSingleFile(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/file/abc123/info", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"success": true, "name": "video.mp4", "size": 123456}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &PixelDrain{APIBase: srv.URL}
	it := p.Extract("https://pixeldrain.com/u/abc123", testClient())
	assert.Equal(t, int32(0), requests.Load(), "no network call before iteration")

	items, err := it.Collect()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, srv.URL+"/file/abc123?download", items[0].DownloadURL)
	assert.Equal(t, "video.mp4", items[0].Filename)
	assert.Equal(t, int64(123456), items[0].SizeBytes)
	assert.Empty(t, items[0].CollectionName)
	assert.Equal(t, int32(1), requests.Load())
}

func TestExtractList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list/xyz789", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"success": true,
			"title": "Holiday Photos",
			"files": [
				{"detail_id": "id1", "name": "a.jpg", "size": 100},
				{"detail_id": "id2", "name": "b.jpg", "size": 200},
				{"detail_id": "id3", "name": "c.jpg", "size": 300}
			]
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &PixelDrain{APIBase: srv.URL}
	items, err := p.Extract("https://pixeldrain.com/l/xyz789", testClient()).Collect()
	require.NoError(t, err)
	require.Len(t, items, 3)

	seen := map[string]bool{}
	for i, item := range items {
		assert.Equal(t, "Holiday Photos", item.CollectionName)
		assert.False(t, seen[item.DownloadURL], "download URLs must be distinct")
		seen[item.DownloadURL] = true
		assert.Equal(t, int64((i+1)*100), item.SizeBytes)
	}
	assert.Equal(t, srv.URL+"/file/id1?download", items[0].DownloadURL)
}

func TestExtractListDefaultCollectionName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/list/untitled", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "files": [{"detail_id": "id1", "name": "a.jpg", "size": 1}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &PixelDrain{APIBase: srv.URL}
	items, err := p.Extract("https://pixeldrain.com/l/untitled", testClient()).Collect()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pixeldrain_list", items[0].CollectionName)
}

func TestExtractUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/file/gone/info", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "message": "file not found"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := &PixelDrain{APIBase: srv.URL}
	_, err := p.Extract("https://pixeldrain.com/u/gone", testClient()).Collect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestExtractUnsupportedURLFormat(t *testing.T) {
	p := &PixelDrain{}
	_, err := p.Extract("https://pixeldrain.com/gallery/asdf", testClient()).Collect()
	require.Error(t, err)

	var ee *extract.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, err.Error(), "unsupported pixeldrain URL format")
}

func TestExtractAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := &PixelDrain{APIBase: srv.URL}
	_, err := p.Extract("https://pixeldrain.com/u/abc", testClient()).Collect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
