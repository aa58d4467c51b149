package install

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// InstallFabric installs fabric loader on top of game version mc from the
// fabric meta service and returns the registered version id.
func (i *Installer) InstallFabric(ctx context.Context, mc, loader string) (*task.Handle[string], bool) {
	return submit(ctx, i, OpFabric, mc+"-"+loader, func(c *task.Context) (string, error) {
		if _, err := os.Stat(i.folder.VersionJSON(mc)); err != nil {
			return "", &StageError{Operation: OpFabric, Stage: "prepare", Err: &domain.MissingComponentVersionError{
				Component: domain.ComponentMinecraft, Version: mc,
			}}
		}

		d, err := stage(c, OpFabric, "profile", 1, func(c *task.Context) (*minecraft.Descriptor, error) {
			u := fmt.Sprintf("%s/v2/versions/loader/%s/%s/profile/json",
				strings.TrimSuffix(i.endpoints.FabricMeta, "/"), url.PathEscape(mc), url.PathEscape(loader))
			var d minecraft.Descriptor
			if err := i.net.FetchJSON(c, u, &d); err != nil {
				var he *HTTPError
				if errors.As(err, &he) && (he.Status == 400 || he.Status == 404) {
					return nil, &domain.MissingComponentVersionError{Component: domain.ComponentFabric, Version: loader, Minecraft: mc}
				}
				return nil, err
			}
			if d.ID == "" {
				return nil, errors.New("fabric profile has no id")
			}
			return &d, nil
		})
		if err != nil {
			return "", err
		}
		if _, err := stage(c, OpFabric, "libraries", 4, func(c *task.Context) (*BatchResult, error) {
			res, err := i.net.ensureAll(c, i.libraryArtifacts(minecraft.ResolveLibraries(d.Libraries, i.platform)), i.limit, false)
			if err != nil {
				return res, err
			}
			return res, res.Err()
		}); err != nil {
			return "", err
		}
		if _, err := stage(c, OpFabric, "register", 1, func(c *task.Context) (struct{}, error) {
			return struct{}{}, i.folder.WriteDescriptor(d)
		}); err != nil {
			return "", err
		}
		if err := i.refresh(c); err != nil {
			return "", &StageError{Operation: OpFabric, Stage: "refresh", Err: err}
		}
		return d.ID, nil
	})
}
