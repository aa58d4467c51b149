package install_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBase(t *testing.T, f *fixture, id string) {
	t.Helper()
	writeFile(t, f.folder.VersionJSON(id), mustJSON(t, minecraft.Descriptor{
		ID:                 id,
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name} --version ${version_name}",
	}))
}

func TestForgeFullVersion(t *testing.T) {
	assert.Equal(t, "1.20.1-47.1.0", install.ForgeFullVersion("1.20.1", "47.1.0"))
	assert.Equal(t, "1.12.2-14.23.5.2859", install.ForgeFullVersion("1.12.2", "1.12.2-14.23.5.2859"))
}

func TestInstallForge_Modern(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.20.1")
	r := f.repo

	universal := "forge-universal-bytes"
	universalPath := "net/minecraftforge/forge/1.20.1-47.1.0/forge-1.20.1-47.1.0-universal.jar"
	r.put("/extra/com/example/forgelib/1.0/forgelib-1.0.jar", "forgelib")

	installer := zipOf(t, map[string]string{
		"install_profile.json": mustJSON(t, map[string]any{
			"spec":      1,
			"profile":   "forge",
			"version":   "1.20.1-forge-47.1.0",
			"json":      "/version.json",
			"path":      "net.minecraftforge:forge:1.20.1-47.1.0",
			"minecraft": "1.20.1",
			"libraries": []minecraft.Library{{
				Name:      "net.minecraftforge:forge:1.20.1-47.1.0:universal",
				Downloads: &minecraft.LibraryDownloads{Artifact: &minecraft.Download{Path: universalPath, SHA1: sum(universal), Size: int64(len(universal))}},
			}},
		}),
		"version.json": mustJSON(t, minecraft.Descriptor{
			ID:           "1.20.1-forge-47.1.0",
			InheritsFrom: "1.20.1",
			MainClass:    "cpw.mods.bootstraplauncher.BootstrapLauncher",
			Libraries:    []minecraft.Library{{Name: "com.example:forgelib:1.0", URL: r.srv.URL + "/extra/"}},
		}),
		"maven/" + universalPath: universal,
		"data/client.lzma":       "binpatch",
	})
	r.put("/forge/net/minecraftforge/forge/1.20.1-47.1.0/forge-1.20.1-47.1.0-installer.jar", installer)
	r.put("/forge/net/minecraftforge/forge/1.20.1-47.1.0/forge-1.20.1-47.1.0-installer.jar.sha1", sum(installer))

	h, ok := f.installer.InstallForge(context.Background(), "1.20.1", "47.1.0")
	require.True(t, ok)
	id, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.20.1-forge-47.1.0", id)

	d, err := minecraft.ReadDescriptor(f.folder.VersionJSON(id))
	require.NoError(t, err)
	assert.Equal(t, "1.20.1", d.InheritsFrom)
	assert.FileExists(t, f.folder.InstallProfile(id))
	assert.Equal(t, "binpatch", readFile(t, filepath.Join(f.folder.VersionDir(id), "data", "client.lzma")))
	assert.Equal(t, universal, readFile(t, f.folder.LibraryPath(universalPath)))
	assert.Equal(t, "forgelib", readFile(t, f.folder.LibraryPath("com/example/forgelib/1.0/forgelib-1.0.jar")))
}

func TestInstallForge_Legacy(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.7.10")

	installer := zipOf(t, map[string]string{
		"install_profile.json": mustJSON(t, map[string]any{
			"install": map[string]string{
				"path":      "net.minecraftforge:forge:1.7.10-10.13.4.1614",
				"filePath":  "forge-1.7.10-universal.jar",
				"minecraft": "1.7.10",
			},
			"versionInfo": minecraft.Descriptor{
				ID:           "1.7.10-Forge10.13.4.1614",
				InheritsFrom: "1.7.10",
				MainClass:    "net.minecraft.launchwrapper.Launch",
				Libraries:    []minecraft.Library{{Name: "net.minecraftforge:forge:1.7.10-10.13.4.1614"}},
			},
		}),
		"forge-1.7.10-universal.jar": "legacy-universal",
	})
	f.repo.put("/forge/net/minecraftforge/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614-installer.jar", installer)

	h, ok := f.installer.InstallForge(context.Background(), "1.7.10", "10.13.4.1614")
	require.True(t, ok)
	id, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.7.10-Forge10.13.4.1614", id)
	assert.Equal(t, "legacy-universal", readFile(t, f.folder.LibraryPath("net/minecraftforge/forge/1.7.10-10.13.4.1614/forge-1.7.10-10.13.4.1614.jar")))
	assert.NoFileExists(t, f.folder.InstallProfile(id))
}

func TestInstallForge_UnknownVersion(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.20.1")

	h, ok := f.installer.InstallForge(context.Background(), "1.20.1", "0.0.0")
	require.True(t, ok)
	_, err := h.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingComponentVersion))

	var me *domain.MissingComponentVersionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, domain.ComponentForge, me.Component)
}

func TestInstallForge_RequiresBaseVersion(t *testing.T) {
	f := newFixture(t)

	h, ok := f.installer.InstallForge(context.Background(), "1.20.1", "47.1.0")
	require.True(t, ok)
	_, err := h.Wait(context.Background())

	var se *install.StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "prepare", se.Stage)
	assert.Equal(t, 0, f.repo.total())
}

func TestInstallFabric(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.20.1")
	r := f.repo
	r.put("/fabric-maven/net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar", "loader")
	r.put("/fabric/v2/versions/loader/1.20.1/0.14.21/profile/json", mustJSON(t, minecraft.Descriptor{
		ID:           "fabric-loader-0.14.21-1.20.1",
		InheritsFrom: "1.20.1",
		MainClass:    "net.fabricmc.loader.impl.launch.knot.KnotClient",
		Libraries:    []minecraft.Library{{Name: "net.fabricmc:fabric-loader:0.14.21", URL: r.srv.URL + "/fabric-maven/"}},
	}))

	h, ok := f.installer.InstallFabric(context.Background(), "1.20.1", "0.14.21")
	require.True(t, ok)
	id, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fabric-loader-0.14.21-1.20.1", id)
	assert.FileExists(t, f.folder.VersionJSON(id))
	assert.Equal(t, "loader", readFile(t, f.folder.LibraryPath("net/fabricmc/fabric-loader/0.14.21/fabric-loader-0.14.21.jar")))
}

func TestInstallFabric_UnknownLoader(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.20.1")

	h, ok := f.installer.InstallFabric(context.Background(), "1.20.1", "9.9.9")
	require.True(t, ok)
	_, err := h.Wait(context.Background())

	var me *domain.MissingComponentVersionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, domain.ComponentFabric, me.Component)
	assert.Equal(t, "1.20.1", me.Minecraft)
}

func TestInstallLiteloader(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.12.2")
	r := f.repo
	r.put("/ll/com/mumfrey/liteloader/1.12.2/liteloader-1.12.2-SNAPSHOT.jar", "liteloader")
	r.put("/wrapper/net/minecraft/launchwrapper/1.12/launchwrapper-1.12.jar", "wrapper")

	build := map[string]any{
		"tweakClass": "com.mumfrey.liteloader.launch.LiteLoaderTweaker",
		"file":       "liteloader-1.12.2-SNAPSHOT.jar",
		"version":    "1.12.2-SNAPSHOT",
		"libraries":  []minecraft.Library{{Name: "net.minecraft:launchwrapper:1.12", URL: r.srv.URL + "/wrapper/"}},
	}
	r.put("/liteloader/versions.json", mustJSON(t, map[string]any{
		"versions": map[string]any{
			"1.12.2": map[string]any{
				"repo":      map[string]string{"url": r.srv.URL + "/ll/"},
				"artefacts": map[string]any{"com.mumfrey:liteloader": map[string]any{"latest": build, "1.12.2-SNAPSHOT": build}},
			},
		},
	}))

	h, ok := f.installer.InstallLiteloader(context.Background(), "1.12.2", "1.12.2")
	require.True(t, ok)
	id, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.12.2-liteloader1.12.2-SNAPSHOT", id)

	d, err := minecraft.ReadDescriptor(f.folder.VersionJSON(id))
	require.NoError(t, err)
	assert.Equal(t, "1.12.2", d.InheritsFrom)
	assert.Equal(t, "net.minecraft.launchwrapper.Launch", d.MainClass)
	assert.Contains(t, d.MinecraftArguments, "--tweakClass com.mumfrey.liteloader.launch.LiteLoaderTweaker")
	assert.Contains(t, d.MinecraftArguments, "--username ${auth_player_name}")
	assert.Equal(t, "liteloader", readFile(t, f.folder.LibraryPath("com/mumfrey/liteloader/1.12.2-SNAPSHOT/liteloader-1.12.2-SNAPSHOT.jar")))
	assert.Equal(t, "wrapper", readFile(t, f.folder.LibraryPath("net/minecraft/launchwrapper/1.12/launchwrapper-1.12.jar")))
}

func TestInstallLiteloader_UnknownGameVersion(t *testing.T) {
	f := newFixture(t)
	writeBase(t, f, "1.8")
	f.repo.put("/liteloader/versions.json", `{"versions":{}}`)

	h, ok := f.installer.InstallLiteloader(context.Background(), "1.8", "1.8")
	require.True(t, ok)
	_, err := h.Wait(context.Background())

	var me *domain.MissingComponentVersionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, domain.ComponentLiteloader, me.Component)
}

func TestInstallAuthlibInjector(t *testing.T) {
	f := newFixture(t)
	jar := "authlib-injector-jar"
	h256 := sha256.Sum256([]byte(jar))
	r := f.repo
	url := r.put("/authlib/artifacts/50/authlib-injector-1.2.3.jar", jar)
	r.put("/authlib/artifact/latest.json", mustJSON(t, map[string]any{
		"version":      "1.2.3",
		"build_number": 50,
		"download_url": url,
		"checksums":    map[string]string{"sha256": hex.EncodeToString(h256[:])},
	}))

	h, ok := f.installer.InstallAuthlibInjector(context.Background())
	require.True(t, ok)
	path, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.folder.AuthlibInjectorPath("1.2.3"), path)
	assert.Equal(t, jar, readFile(t, path))

	installed, ok, err := f.folder.AuthlibInjector()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, path, installed)
}

func TestExtractNatives(t *testing.T) {
	f := newFixture(t)
	jar := zipOf(t, map[string]string{
		"liblwjgl.so":          "native",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
	})
	writeFile(t, f.folder.LibraryPath("org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar"), jar)

	r := &minecraft.ResolvedVersion{ID: "1.20.1", Libraries: []minecraft.ResolvedLibrary{
		{Name: "org.lwjgl:lwjgl:3.3.1", Path: "org/lwjgl/lwjgl/3.3.1/lwjgl-3.3.1-natives-linux.jar", Native: true},
		{Name: "com.example:plain:1.0", Path: "com/example/plain/1.0/plain-1.0.jar"},
	}}
	dir, err := f.installer.ExtractNatives(r)
	require.NoError(t, err)
	assert.Equal(t, "native", readFile(t, filepath.Join(dir, "liblwjgl.so")))
	assert.NoFileExists(t, filepath.Join(dir, "META-INF", "MANIFEST.MF"))
}

func TestExtractNatives_RejectsTraversal(t *testing.T) {
	f := newFixture(t)
	jar := zipOf(t, map[string]string{"../../escape.so": "evil"})
	writeFile(t, f.folder.LibraryPath("evil/evil/1/evil-1.jar"), jar)

	r := &minecraft.ResolvedVersion{ID: "1.0", Libraries: []minecraft.ResolvedLibrary{
		{Name: "evil:evil:1", Path: "evil/evil/1/evil-1.jar", Native: true},
	}}
	_, err := f.installer.ExtractNatives(r)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(f.folder.Root, "escape.so"))
}
