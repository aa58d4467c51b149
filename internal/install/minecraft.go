package install

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

const manifestCacheKey = "manifest/version_manifest"

// VersionManifest is the official list of game versions.
type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestVersion `json:"versions"`
}

// ManifestVersion is one manifest entry.
type ManifestVersion struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Time        string `json:"time"`
	ReleaseTime string `json:"releaseTime"`
	SHA1        string `json:"sha1,omitempty"`
}

// Manifest returns the version manifest, from the metadata cache when fresh.
func (i *Installer) Manifest(ctx context.Context) (*VersionManifest, error) {
	var m VersionManifest
	if err := i.net.FetchCachedJSON(ctx, manifestCacheKey, i.endpoints.Manifest, i.maxAge, &m); err != nil {
		return nil, fmt.Errorf("fetching version manifest: %w", err)
	}
	return &m, nil
}

// LatestRelease returns the newest release id from the manifest.
func (i *Installer) LatestRelease(ctx context.Context) (string, error) {
	m, err := i.Manifest(ctx)
	if err != nil {
		return "", err
	}
	if m.Latest.Release == "" {
		return "", errors.New("version manifest has no latest release")
	}
	return m.Latest.Release, nil
}

// InstallMinecraft installs the base game version id: descriptor, client
// jar, libraries, asset index and assets. Files already valid are kept.
func (i *Installer) InstallMinecraft(ctx context.Context, id string) (*task.Handle[string], bool) {
	return submit(ctx, i, OpMinecraft, id, func(c *task.Context) (string, error) {
		d, err := stage(c, OpMinecraft, "json", 1, func(c *task.Context) (*minecraft.Descriptor, error) {
			return i.ensureVersionJSON(c, id)
		})
		if err != nil {
			return "", err
		}
		if _, err := stage(c, OpMinecraft, "jar", 2, func(c *task.Context) (bool, error) {
			return i.ensureClientJar(c, d)
		}); err != nil {
			return "", err
		}
		res, err := stage(c, OpMinecraft, "dependencies", 10, func(c *task.Context) (*BatchResult, error) {
			return i.installDependencies(c, id)
		})
		if err != nil {
			return "", err
		}
		if err := res.Err(); err != nil {
			return "", &StageError{Operation: OpMinecraft, Stage: "dependencies", Err: err}
		}
		if err := i.refresh(c); err != nil {
			return "", &StageError{Operation: OpMinecraft, Stage: "refresh", Err: err}
		}
		return id, nil
	})
}

// ensureVersionJSON keeps a parseable local descriptor and otherwise fetches
// it through the manifest.
func (i *Installer) ensureVersionJSON(ctx context.Context, id string) (*minecraft.Descriptor, error) {
	path := i.folder.VersionJSON(id)
	if d, err := minecraft.ReadDescriptor(path); err == nil && d.ID == id {
		return d, nil
	}

	m, err := i.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	var entry *ManifestVersion
	for k := range m.Versions {
		if m.Versions[k].ID == id {
			entry = &m.Versions[k]
			break
		}
	}
	if entry == nil {
		return nil, &domain.MissingComponentVersionError{Component: domain.ComponentMinecraft, Version: id}
	}

	// An unparseable file that still matches a missing checksum would be
	// kept by Ensure.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing broken descriptor: %w", err)
	}
	a := Artifact{Name: id + ".json", URL: entry.URL, Path: path, Checksum: minecraft.SHA1(entry.SHA1), Size: -1}
	if _, err := i.net.Ensure(ctx, a, nil); err != nil {
		return nil, err
	}
	d, err := minecraft.ReadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("reading downloaded descriptor: %w", err)
	}
	return d, nil
}

func (i *Installer) ensureClientJar(ctx context.Context, d *minecraft.Descriptor) (bool, error) {
	client, ok := d.Downloads["client"]
	if !ok {
		return false, fmt.Errorf("%s declares no client download", d.ID)
	}
	return i.net.Ensure(ctx, Artifact{
		Name:     d.ID + ".jar",
		URL:      client.URL,
		Path:     i.folder.VersionJar(d.ID),
		Checksum: minecraft.SHA1(client.SHA1),
		Size:     artifactSize(client.Size),
	}, nil)
}

// InstallDependencies installs every library and asset of version id.
func (i *Installer) InstallDependencies(ctx context.Context, id string) (*task.Handle[*BatchResult], bool) {
	return submit(ctx, i, OpDependencies, id, func(c *task.Context) (*BatchResult, error) {
		return i.installDependencies(c, id)
	})
}

func (i *Installer) installDependencies(c *task.Context, id string) (*BatchResult, error) {
	r, err := i.folder.Resolve(id, i.platform)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id, err)
	}
	libs, err := task.Yield(c, "libraries", 3, func(c *task.Context) (*BatchResult, error) {
		return i.net.ensureAll(c, i.libraryArtifacts(r.Libraries), i.limit, false)
	})
	if err != nil {
		return libs, err
	}
	assets, err := task.Yield(c, "assets", 7, func(c *task.Context) (*BatchResult, error) {
		return i.installVersionAssets(c, r)
	})
	return mergeResults(libs, assets), err
}

// InstallLibraries installs exactly the given libraries.
func (i *Installer) InstallLibraries(ctx context.Context, libs []domain.LibraryArgs) (*task.Handle[*BatchResult], bool) {
	items := make([]Artifact, len(libs))
	for k, l := range libs {
		items[k] = Artifact{Name: l.Name, URL: l.URL, Path: l.Path, Checksum: minecraft.SHA1(l.Checksum), Size: artifactSize(l.Size)}
	}
	return submit(ctx, i, OpLibraries, fmt.Sprintf("%d libraries", len(libs)), func(c *task.Context) (*BatchResult, error) {
		return i.net.ensureAll(c, items, i.limit, false)
	})
}

// InstallAssets installs exactly the given asset objects.
func (i *Installer) InstallAssets(ctx context.Context, assets []domain.AssetArgs) (*task.Handle[*BatchResult], bool) {
	items := make([]Artifact, len(assets))
	for k, a := range assets {
		items[k] = i.assetArtifact(a.Name, a.Hash, a.Size)
	}
	return submit(ctx, i, OpAssets, fmt.Sprintf("%d assets", len(assets)), func(c *task.Context) (*BatchResult, error) {
		return i.net.ensureAll(c, items, i.limit, false)
	})
}

// InstallAssetsForVersion installs the asset index of version id and every
// object it lists.
func (i *Installer) InstallAssetsForVersion(ctx context.Context, id string) (*task.Handle[*BatchResult], bool) {
	return submit(ctx, i, OpAssetsForVersion, id, func(c *task.Context) (*BatchResult, error) {
		r, err := i.folder.Resolve(id, i.platform)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", id, err)
		}
		return i.installVersionAssets(c, r)
	})
}

func (i *Installer) installVersionAssets(c *task.Context, r *minecraft.ResolvedVersion) (*BatchResult, error) {
	ref := r.AssetIndex
	if ref == nil {
		ctxlog.FromContext(c).Debug("version declares no asset index", "version", r.ID)
		return &BatchResult{}, nil
	}
	path := i.folder.AssetIndexPath(ref.ID)
	if _, err := i.net.Ensure(c, Artifact{
		Name:     ref.ID + ".json",
		URL:      ref.URL,
		Path:     path,
		Checksum: minecraft.SHA1(ref.SHA1),
		Size:     artifactSize(ref.Size),
	}, nil); err != nil {
		return nil, fmt.Errorf("asset index: %w", err)
	}
	idx, err := minecraft.ReadAssetIndex(path)
	if err != nil {
		return nil, err
	}
	objects := idx.Sorted()
	items := make([]Artifact, len(objects))
	for k, o := range objects {
		items[k] = i.assetArtifact(o.Name, o.Hash, o.Size)
	}
	return i.net.ensureAll(c, items, i.limit, false)
}

func (i *Installer) assetArtifact(name, hash string, size int64) Artifact {
	return Artifact{
		Name:     name,
		URL:      minecraft.AssetURL(i.endpoints.Assets, hash),
		Path:     i.folder.AssetObjectPath(hash),
		Checksum: minecraft.SHA1(hash),
		Size:     artifactSize(size),
	}
}

func (i *Installer) libraryArtifacts(libs []minecraft.ResolvedLibrary) []Artifact {
	items := make([]Artifact, 0, len(libs))
	for _, l := range libs {
		items = append(items, Artifact{
			Name:     l.Name,
			URL:      l.URL,
			Path:     i.folder.LibraryPath(l.Path),
			Checksum: minecraft.SHA1(l.SHA1),
			Size:     artifactSize(l.Size),
		})
	}
	return items
}

func mergeResults(rs ...*BatchResult) *BatchResult {
	out := &BatchResult{}
	for _, r := range rs {
		if r == nil {
			continue
		}
		out.Installed = append(out.Installed, r.Installed...)
		out.Skipped = append(out.Skipped, r.Skipped...)
		out.Errors = append(out.Errors, r.Errors...)
	}
	return out
}
