package install_test

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/guard"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/retry"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/cache"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
	"github.com/stretchr/testify/require"
)

var linux = minecraft.Platform{Name: "linux", Arch: "x64"}

func sum(data string) string {
	h := sha1.Sum([]byte(data))
	return hex.EncodeToString(h[:])
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// repo is a fake remote serving fixed files and counting requests per path.
type repo struct {
	srv *httptest.Server

	mu    sync.Mutex
	files map[string]string
	bad   map[string]int // path -> responses left to corrupt
	fail  map[string]int // path -> status to answer with
	hits  map[string]int
}

func newRepo(t *testing.T) *repo {
	t.Helper()
	r := &repo{
		files: make(map[string]string),
		bad:   make(map[string]int),
		fail:  make(map[string]int),
		hits:  make(map[string]int),
	}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()
		p := req.URL.Path
		r.hits[p]++
		if status, ok := r.fail[p]; ok {
			w.WriteHeader(status)
			return
		}
		data, ok := r.files[p]
		if !ok {
			http.NotFound(w, req)
			return
		}
		if r.bad[p] > 0 {
			r.bad[p]--
			data = "garbage"
		}
		_, _ = w.Write([]byte(data))
	}))
	t.Cleanup(r.srv.Close)
	return r
}

// put serves data at path and returns its URL.
func (r *repo) put(path, data string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[path] = data
	return r.srv.URL + path
}

func (r *repo) corrupt(path string, times int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bad[path] = times
}

func (r *repo) failWith(path string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[path] = status
}

func (r *repo) hit(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[path]
}

func (r *repo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.hits {
		n += v
	}
	return n
}

var fastRetry = &retry.Config{MaxRetries: 2, InitialInterval: time.Millisecond, Multiplier: 1}

func newNetwork(t *testing.T) *install.Network {
	t.Helper()
	return install.NewNetwork(install.NetworkConfig{
		Cache: cache.New(t.TempDir()),
		Retry: fastRetry,
	})
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []db.HistoryEntry
}

func (h *fakeHistory) RecordInstall(e db.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	return nil
}

func (h *fakeHistory) all() []db.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]db.HistoryEntry(nil), h.entries...)
}

type fixture struct {
	repo      *repo
	folder    minecraft.Folder
	guard     *guard.Guard
	history   *fakeHistory
	installer *install.Installer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := newRepo(t)
	f := &fixture{
		repo:    r,
		folder:  minecraft.NewFolder(t.TempDir()),
		guard:   guard.New(),
		history: &fakeHistory{},
	}
	f.installer = install.New(install.Config{
		Folder:   f.folder,
		Platform: linux,
		Network:  newNetwork(t),
		Guard:    f.guard,
		History:  f.history,
		Endpoints: install.Endpoints{
			Manifest:   r.srv.URL + "/manifest.json",
			Assets:     r.srv.URL + "/assets",
			ForgeMaven: r.srv.URL + "/forge",
			FabricMeta: r.srv.URL + "/fabric",
			Liteloader: r.srv.URL + "/liteloader/versions.json",
			Authlib:    r.srv.URL + "/authlib",
		},
		Concurrency: 4,
	})
	return f
}

// zipOf builds an in-memory zip archive.
func zipOf(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.String()
}
