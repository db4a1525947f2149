package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>" + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCollyFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t)
	f, err := NewCollyFetcher(FetcherOptions{UserAgent: "test-agent/1.0", Timeout: 5 * time.Second})
	require.NoError(t, err)

	page, err := f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, srv.URL+"/ok", page.URL)
	assert.Contains(t, string(page.Body), "test-agent/1.0")

	// revisits go back to the network
	_, err = f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
}

func TestCollyFetcher_NotFound(t *testing.T) {
	srv := newTestServer(t)
	f, err := NewCollyFetcher(FetcherOptions{})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrFetch)
}

func TestCollyFetcher_Cancelled(t *testing.T) {
	f, err := NewCollyFetcher(FetcherOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollyFetcher_WithBoltStorage(t *testing.T) {
	srv := newTestServer(t)
	store := NewBoltStorage(filepath.Join(t.TempDir(), "state", "crawl.db"))
	t.Cleanup(func() { store.Close() })

	f, err := NewCollyFetcher(FetcherOptions{Storage: store})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		name      string
		proxyURL  string
		wantErr   bool
		wantProxy bool
		wantDial  bool
	}{
		{name: "direct", proxyURL: "", wantProxy: true},
		{name: "http proxy", proxyURL: "http://proxy.local:3128", wantProxy: true},
		{name: "socks5 proxy", proxyURL: "socks5://127.0.0.1:9050", wantDial: true},
		{name: "unsupported scheme", proxyURL: "ftp://proxy.local", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := NewTransport(tt.proxyURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProxy, transport.Proxy != nil)
			assert.Equal(t, tt.wantDial, transport.DialContext != nil)
		})
	}
}

func TestNewTransport_HTTPProxyTarget(t *testing.T) {
	transport, err := NewTransport("http://proxy.local:3128")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://www.vinegret.cz/", nil)
	require.NoError(t, err)
	proxyURL, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", proxyURL.Host)
}
