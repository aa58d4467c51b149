// Package install downloads and installs game versions, libraries, assets,
// loaders and the authlib-injector agent. Every operation runs as a task and
// is single-flight under an install class key.
package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/retry"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/cache"
)

// BMCLAPIHost is the mirror used on restricted networks.
const BMCLAPIHost = "https://bmclapi2.bangbang93.com"

// mirrorRoutes maps official hosts to their path on the mirror.
var mirrorRoutes = []struct{ prefix, path string }{
	{"https://piston-meta.mojang.com", ""},
	{"https://launchermeta.mojang.com", ""},
	{"https://launcher.mojang.com", ""},
	{"https://piston-data.mojang.com", ""},
	{"https://resources.download.minecraft.net", "/assets"},
	{"https://libraries.minecraft.net", "/maven"},
	{"https://maven.minecraftforge.net", "/maven"},
	{"https://files.minecraftforge.net/maven", "/maven"},
	{"https://maven.fabricmc.net", "/maven"},
	{"https://meta.fabricmc.net", "/fabric-meta"},
	{"https://authlib-injector.yushi.moe", "/mirrors/authlib-injector"},
}

// HTTPError is a non-200 response.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// NetworkConfig configures a Network.
type NetworkConfig struct {
	Client *http.Client
	// Restricted routes official hosts through Mirror.
	Restricted bool
	// Mirror is "bmclapi" or a base URL; empty means bmclapi.
	Mirror string
	// Cache stores fetched metadata; nil disables caching.
	Cache *cache.Cache
	Retry *retry.Config
}

// Network fetches metadata and artifacts.
type Network struct {
	client     *http.Client
	restricted bool
	mirror     string
	cache      *cache.Cache
	retry      retry.Config
	downloader *Downloader
}

// NewNetwork creates a network layer.
func NewNetwork(cfg NetworkConfig) *Network {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	mirror := strings.TrimSuffix(cfg.Mirror, "/")
	if mirror == "" || mirror == "bmclapi" {
		mirror = BMCLAPIHost
	}
	r := retry.Default
	if cfg.Retry != nil {
		r = *cfg.Retry
	}
	return &Network{
		client:     client,
		restricted: cfg.Restricted,
		mirror:     mirror,
		cache:      cfg.Cache,
		retry:      r,
		downloader: NewDownloader(client),
	}
}

// Rewrite returns the URL to fetch u from. Unknown hosts and unrestricted
// networks are left unchanged.
func (n *Network) Rewrite(u string) string {
	if !n.restricted {
		return u
	}
	for _, r := range mirrorRoutes {
		if rest, ok := strings.CutPrefix(u, r.prefix); ok && (rest == "" || rest[0] == '/' || rest[0] == '?') {
			return n.mirror + r.path + rest
		}
	}
	return u
}

// Get fetches u, retrying transient failures. Client errors are not retried.
func (n *Network) Get(ctx context.Context, u string) ([]byte, error) {
	u = n.Rewrite(u)
	var body []byte
	err := retry.Do(ctx, n.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}
		resp, err := n.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(ctx.Err())
			}
			return fmt.Errorf("executing request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			herr := &HTTPError{URL: u, Status: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Permanent(herr)
			}
			return herr
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	})
	return body, err
}

// FetchJSON decodes the JSON document at u into v.
func (n *Network) FetchJSON(ctx context.Context, u string, v any) error {
	data, err := n.Get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	return nil
}

// FetchCachedJSON is FetchJSON backed by the metadata cache. A cached entry
// younger than maxAge is used without a request; when the request fails a
// stale entry is used instead.
func (n *Network) FetchCachedJSON(ctx context.Context, key, u string, maxAge time.Duration, v any) error {
	if n.cache != nil {
		if data, ok := n.cache.Get(key, maxAge); ok && json.Unmarshal(data, v) == nil {
			return nil
		}
	}
	data, err := n.Get(ctx, u)
	if err != nil {
		if n.cache != nil {
			if stale, ok := n.cache.Get(key, 0); ok && json.Unmarshal(stale, v) == nil {
				ctxlog.FromContext(ctx).Warn("using stale metadata", "key", key, "error", err)
				return nil
			}
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", u, err)
	}
	if n.cache != nil {
		if err := n.cache.Store(key, data); err != nil {
			ctxlog.FromContext(ctx).Warn("caching metadata", "key", key, "error", err)
		}
	}
	return nil
}

// Download fetches u into dest, retrying transient failures. A checksum
// mismatch is returned as *ChecksumError without retrying and leaves dest
// untouched.
func (n *Network) Download(ctx context.Context, u, dest string, want minecraft.Checksum, progressFn ProgressFunc) (*DownloadResult, error) {
	u = n.Rewrite(u)
	var res *DownloadResult
	err := retry.Do(ctx, n.retry, func() error {
		var err error
		res, err = n.downloader.Download(ctx, u, dest, want, progressFn)
		var ce *ChecksumError
		var he *HTTPError
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return retry.Permanent(ctx.Err())
		case errors.As(err, &ce):
			return retry.Permanent(err)
		case errors.As(err, &he) && he.Status >= 400 && he.Status < 500:
			return retry.Permanent(err)
		}
		return err
	})
	return res, err
}
