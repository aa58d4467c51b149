package install

import (
	"context"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// InstallAuthlibInjector installs the latest authlib-injector agent and
// returns its path.
func (i *Installer) InstallAuthlibInjector(ctx context.Context) (*task.Handle[string], bool) {
	return submit(ctx, i, OpAuthlibInjector, "latest", func(c *task.Context) (string, error) {
		meta, err := stage(c, OpAuthlibInjector, "metadata", 1, func(c *task.Context) (*minecraft.AuthlibInjection, error) {
			var m minecraft.AuthlibInjection
			u := strings.TrimSuffix(i.endpoints.Authlib, "/") + "/artifact/latest.json"
			if err := i.net.FetchJSON(c, u, &m); err != nil {
				return nil, err
			}
			return &m, nil
		})
		if err != nil {
			return "", err
		}
		path := i.folder.AuthlibInjectorPath(meta.Version)
		if _, err := stage(c, OpAuthlibInjector, "download", 4, func(c *task.Context) (bool, error) {
			return i.net.Ensure(c, Artifact{
				Name:     "authlib-injector-" + meta.Version + ".jar",
				URL:      meta.DownloadURL,
				Path:     path,
				Checksum: minecraft.SHA256(meta.Checksums.SHA256),
				Size:     -1,
			}, nil)
		}); err != nil {
			return "", err
		}
		if _, err := stage(c, OpAuthlibInjector, "register", 1, func(c *task.Context) (struct{}, error) {
			return struct{}{}, i.folder.WriteAuthlibInjection(meta)
		}); err != nil {
			return "", err
		}
		return path, nil
	})
}
