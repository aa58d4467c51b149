package install

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

const liteloaderCacheKey = "liteloader/versions"

// liteloaderManifest is the liteloader versions.json document.
type liteloaderManifest struct {
	Versions map[string]struct {
		Repo struct {
			URL string `json:"url"`
		} `json:"repo"`
		Artefacts map[string]map[string]liteloaderBuild `json:"artefacts"`
		Snapshots map[string]map[string]liteloaderBuild `json:"snapshots"`
	} `json:"versions"`
}

type liteloaderBuild struct {
	TweakClass string              `json:"tweakClass"`
	Libraries  []minecraft.Library `json:"libraries"`
	File       string              `json:"file"`
	Version    string              `json:"version"`
	Build      string              `json:"build"`
	Timestamp  string              `json:"timestamp"`
}

const liteloaderTweak = "com.mumfrey.liteloader.launch.LiteLoaderTweaker"

// InstallLiteloader installs liteloader on top of game version mc and
// returns the registered version id.
func (i *Installer) InstallLiteloader(ctx context.Context, mc, version string) (*task.Handle[string], bool) {
	return submit(ctx, i, OpLiteloader, mc+"-"+version, func(c *task.Context) (string, error) {
		base, err := minecraft.ReadDescriptor(i.folder.VersionJSON(mc))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = &domain.MissingComponentVersionError{Component: domain.ComponentMinecraft, Version: mc}
			}
			return "", &StageError{Operation: OpLiteloader, Stage: "prepare", Err: err}
		}

		d, err := stage(c, OpLiteloader, "manifest", 1, func(c *task.Context) (*minecraft.Descriptor, error) {
			var m liteloaderManifest
			if err := i.net.FetchCachedJSON(c, liteloaderCacheKey, i.endpoints.Liteloader, i.maxAge, &m); err != nil {
				return nil, err
			}
			entry, ok := m.Versions[mc]
			if !ok {
				return nil, &domain.MissingComponentVersionError{Component: domain.ComponentLiteloader, Version: version, Minecraft: mc}
			}
			build, ok := findLiteloaderBuild(entry.Artefacts, version)
			if !ok {
				build, ok = findLiteloaderBuild(entry.Snapshots, version)
			}
			if !ok {
				return nil, &domain.MissingComponentVersionError{Component: domain.ComponentLiteloader, Version: version, Minecraft: mc}
			}
			return liteloaderDescriptor(mc, base, build, entry.Repo.URL), nil
		})
		if err != nil {
			return "", err
		}
		if _, err := stage(c, OpLiteloader, "libraries", 3, func(c *task.Context) (*BatchResult, error) {
			res, err := i.net.ensureAll(c, i.libraryArtifacts(minecraft.ResolveLibraries(d.Libraries, i.platform)), i.limit, false)
			if err != nil {
				return res, err
			}
			return res, res.Err()
		}); err != nil {
			return "", err
		}
		if _, err := stage(c, OpLiteloader, "register", 1, func(c *task.Context) (struct{}, error) {
			return struct{}{}, i.folder.WriteDescriptor(d)
		}); err != nil {
			return "", err
		}
		if err := i.refresh(c); err != nil {
			return "", &StageError{Operation: OpLiteloader, Stage: "refresh", Err: err}
		}
		return d.ID, nil
	})
}

// findLiteloaderBuild picks the build whose version matches; "latest" is an
// alias entry and is only used when nothing else matches.
func findLiteloaderBuild(artefacts map[string]map[string]liteloaderBuild, version string) (liteloaderBuild, bool) {
	builds := artefacts["com.mumfrey:liteloader"]
	keys := make([]string, 0, len(builds))
	for k := range builds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "latest" {
			continue
		}
		if b := builds[k]; domain.SameLiteloaderVersion(b.Version, version) {
			return b, true
		}
	}
	if b, ok := builds["latest"]; ok && domain.SameLiteloaderVersion(b.Version, version) {
		return b, true
	}
	return liteloaderBuild{}, false
}

func liteloaderDescriptor(mc string, base *minecraft.Descriptor, b liteloaderBuild, repo string) *minecraft.Descriptor {
	if repo == "" {
		repo = "https://dl.liteloader.com/versions/"
	}
	coord := minecraft.Coordinate{Group: "com.mumfrey", Artifact: "liteloader", Version: b.Version, Extension: "jar"}
	lib := minecraft.Library{
		Name: coord.String(),
		Downloads: &minecraft.LibraryDownloads{Artifact: &minecraft.Download{
			Path: coord.Path(),
			URL:  strings.TrimSuffix(repo, "/") + "/com/mumfrey/liteloader/" + mc + "/" + b.File,
		}},
	}
	libs := append([]minecraft.Library{lib}, b.Libraries...)

	tweak := b.TweakClass
	if tweak == "" {
		tweak = liteloaderTweak
	}
	d := &minecraft.Descriptor{
		ID:           (domain.RuntimeVersions{Minecraft: mc, Liteloader: b.Version}).ExpectedID(),
		InheritsFrom: mc,
		Type:         base.Type,
		MainClass:    "net.minecraft.launchwrapper.Launch",
		Libraries:    libs,
	}
	if base.Arguments != nil {
		d.Arguments = &minecraft.Arguments{Game: []minecraft.Argument{{Values: []string{"--tweakClass", tweak}}}}
	} else {
		d.MinecraftArguments = minecraft.MergeLegacyArguments(base.MinecraftArguments, "--tweakClass "+tweak)
	}
	return d
}
