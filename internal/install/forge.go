package install

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
)

// legacyProfile is the install_profile.json of installers that predate
// processors: the descriptor is embedded and the universal jar is copied
// from the installer root.
type legacyProfile struct {
	Install struct {
		Path      string `json:"path"`
		FilePath  string `json:"filePath"`
		Minecraft string `json:"minecraft"`
	} `json:"install"`
	VersionInfo *minecraft.Descriptor `json:"versionInfo"`
}

// forgeInstaller is what the extract stage learned from an installer jar.
type forgeInstaller struct {
	path       string
	descriptor *minecraft.Descriptor
	profile    *minecraft.InstallProfile // nil for legacy installers
}

// ForgeFullVersion joins the game and forge versions the way the forge maven
// names artifacts.
func ForgeFullVersion(mc, forge string) string {
	if strings.HasPrefix(forge, mc+"-") {
		return forge
	}
	return mc + "-" + forge
}

// InstallForge installs forge on top of game version mc. Stages: download the
// installer, extract its profile and data, install libraries, run
// processors, register the descriptor, refresh local versions. It returns
// the registered version id.
func (i *Installer) InstallForge(ctx context.Context, mc, forge string) (*task.Handle[string], bool) {
	full := ForgeFullVersion(mc, forge)
	return submit(ctx, i, OpForge, full, func(c *task.Context) (string, error) {
		if _, err := os.Stat(i.folder.VersionJSON(mc)); err != nil {
			return "", &StageError{Operation: OpForge, Stage: "prepare", Err: &domain.MissingComponentVersionError{
				Component: domain.ComponentMinecraft, Version: mc,
			}}
		}

		installer, err := stage(c, OpForge, "download", 2, func(c *task.Context) (string, error) {
			return i.ensureForgeInstaller(c, full)
		})
		if err != nil {
			return "", err
		}
		fi, err := stage(c, OpForge, "extract", 1, func(c *task.Context) (*forgeInstaller, error) {
			return i.extractForgeInstaller(installer)
		})
		if err != nil {
			return "", err
		}
		if _, err := stage(c, OpForge, "libraries", 4, func(c *task.Context) (*BatchResult, error) {
			libs := fi.descriptor.Libraries
			if fi.profile != nil {
				libs = append(append([]minecraft.Library(nil), fi.profile.Libraries...), libs...)
			}
			res, err := i.net.ensureAll(c, i.libraryArtifacts(minecraft.ResolveLibraries(libs, i.platform)), i.limit, false)
			if err != nil {
				return res, err
			}
			return res, res.Err()
		}); err != nil {
			return "", err
		}
		if fi.profile != nil {
			if _, err := stage(c, OpForge, "processors", 6, func(c *task.Context) (struct{}, error) {
				return struct{}{}, i.runProcessors(c, fi.profile, installer)
			}); err != nil {
				return "", err
			}
		}
		if _, err := stage(c, OpForge, "register", 1, func(c *task.Context) (struct{}, error) {
			return struct{}{}, i.folder.WriteDescriptor(fi.descriptor)
		}); err != nil {
			return "", err
		}
		if err := i.refresh(c); err != nil {
			return "", &StageError{Operation: OpForge, Stage: "refresh", Err: err}
		}
		return fi.descriptor.ID, nil
	})
}

func (i *Installer) forgeInstallerArtifact(ctx context.Context, coord minecraft.Coordinate) Artifact {
	url := strings.TrimSuffix(i.endpoints.ForgeMaven, "/") + "/" + coord.Path()
	a := Artifact{Name: coord.String(), URL: url, Path: i.folder.LibraryPath(coord.Path()), Size: -1}
	// The maven publishes a sha1 sidecar; without it the jar is only checked
	// for existence.
	if data, err := i.net.Get(ctx, url+".sha1"); err == nil {
		if sum := strings.TrimSpace(string(data)); len(sum) == 40 {
			a.Checksum = minecraft.SHA1(sum)
		}
	}
	return a
}

func (i *Installer) ensureForgeInstaller(ctx context.Context, full string) (string, error) {
	coord := minecraft.Coordinate{Group: "net.minecraftforge", Artifact: "forge", Version: full, Classifier: "installer", Extension: "jar"}
	path := i.folder.LibraryPath(coord.Path())
	if _, err := readZipEntry(path, "install_profile.json"); err == nil {
		return path, nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("removing broken installer: %w", err)
	}
	a := i.forgeInstallerArtifact(ctx, coord)
	if _, err := i.net.Ensure(ctx, a, nil); err != nil {
		var he *HTTPError
		if errors.As(err, &he) && he.Status == 404 {
			return "", &domain.MissingComponentVersionError{Component: domain.ComponentForge, Version: full}
		}
		return "", err
	}
	return a.Path, nil
}

// extractForgeInstaller reads the profile and descriptor from an installer
// jar, unpacks bundled maven artifacts into libraries/ and data files into
// the version folder, and stores the profile next to the descriptor.
func (i *Installer) extractForgeInstaller(installer string) (*forgeInstaller, error) {
	raw, err := readZipEntry(installer, "install_profile.json")
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing install profile: %w", err)
	}

	if _, legacy := probe["versionInfo"]; legacy {
		var lp legacyProfile
		if err := json.Unmarshal(raw, &lp); err != nil {
			return nil, fmt.Errorf("parsing legacy install profile: %w", err)
		}
		if lp.VersionInfo == nil || lp.VersionInfo.ID == "" {
			return nil, errors.New("legacy install profile has no version info")
		}
		if lp.Install.Path != "" && lp.Install.FilePath != "" {
			coord, err := minecraft.ParseCoordinate(lp.Install.Path)
			if err != nil {
				return nil, err
			}
			data, err := readZipEntry(installer, lp.Install.FilePath)
			if err != nil {
				return nil, err
			}
			if err := minecraft.WriteFileAtomic(i.folder.LibraryPath(coord.Path()), data); err != nil {
				return nil, fmt.Errorf("writing universal jar: %w", err)
			}
		}
		return &forgeInstaller{path: installer, descriptor: lp.VersionInfo}, nil
	}

	var p minecraft.InstallProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing install profile: %w", err)
	}
	jsonEntry := p.JSON
	if jsonEntry == "" {
		jsonEntry = "version.json"
	}
	data, err := readZipEntry(installer, jsonEntry)
	if err != nil {
		return nil, err
	}
	d, err := minecraft.ParseDescriptor(data)
	if err != nil {
		return nil, err
	}
	if p.Version == "" {
		p.Version = d.ID
	}

	if _, err := extractZipPrefix(installer, "maven/", i.folder.LibrariesDir()); err != nil {
		return nil, fmt.Errorf("extracting bundled libraries: %w", err)
	}
	if _, err := extractZipPrefix(installer, "data/", filepath.Join(i.folder.VersionDir(p.Version), "data")); err != nil {
		return nil, fmt.Errorf("extracting installer data: %w", err)
	}
	if err := i.folder.WriteInstallProfile(p.Version, &p); err != nil {
		return nil, err
	}
	return &forgeInstaller{path: installer, descriptor: d, profile: &p}, nil
}

// RunInstallProfile reruns the processors of the staged install recorded
// for version id, fetching the installer again when it is gone.
func (i *Installer) RunInstallProfile(ctx context.Context, id string) (*task.Handle[string], bool) {
	return submit(ctx, i, OpInstallProfile, id, func(c *task.Context) (string, error) {
		p, err := minecraft.ReadInstallProfile(i.folder.InstallProfile(id))
		if err != nil {
			return "", &StageError{Operation: OpInstallProfile, Stage: "read", Err: err}
		}
		installer, err := stage(c, OpInstallProfile, "download", 1, func(c *task.Context) (string, error) {
			return i.profileInstaller(c, p)
		})
		if err != nil {
			return "", err
		}
		if _, err := stage(c, OpInstallProfile, "extract", 1, func(c *task.Context) (int, error) {
			return extractZipPrefix(installer, "data/", filepath.Join(i.folder.VersionDir(p.Version), "data"))
		}); err != nil {
			return "", err
		}
		if _, err := stage(c, OpInstallProfile, "libraries", 3, func(c *task.Context) (*BatchResult, error) {
			res, err := i.net.ensureAll(c, i.libraryArtifacts(minecraft.ResolveLibraries(p.Libraries, i.platform)), i.limit, false)
			if err != nil {
				return res, err
			}
			return res, res.Err()
		}); err != nil {
			return "", err
		}
		if _, err := stage(c, OpInstallProfile, "processors", 6, func(c *task.Context) (struct{}, error) {
			return struct{}{}, i.runProcessors(c, p, installer)
		}); err != nil {
			return "", err
		}
		return id, nil
	})
}

func (i *Installer) profileInstaller(ctx context.Context, p *minecraft.InstallProfile) (string, error) {
	if p.Path == "" {
		return "", errors.New("install profile does not name its installer")
	}
	coord, err := minecraft.ParseCoordinate(p.Path)
	if err != nil {
		return "", err
	}
	return i.ensureForgeInstaller(ctx, coord.Version)
}
