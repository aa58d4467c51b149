package core_test

import (
	"archive/zip"
	"bytes"
	"context"
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

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/retry"
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

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

// fakeJava writes an executable answering -XshowSettings like a real runtime.
func fakeJava(t *testing.T, dir, version string) string {
	t.Helper()
	path := filepath.Join(dir, "java")
	script := "#!/bin/sh\ncat >&2 <<'EOF'\nProperty settings:\n" +
		"    java.home = " + dir + "\n" +
		"    java.version = " + version + "\n" +
		"    os.arch = amd64\n" +
		"EOF\nexit 0\n"
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// repo is a fake remote serving fixed files.
type repo struct {
	srv *httptest.Server

	mu    sync.Mutex
	files map[string]string
	hits  map[string]int
}

func newRepo(t *testing.T) *repo {
	t.Helper()
	r := &repo{files: make(map[string]string), hits: make(map[string]int)}
	r.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.hits[req.URL.Path]++
		data, ok := r.files[req.URL.Path]
		if !ok {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte(data))
	}))
	t.Cleanup(r.srv.Close)
	return r
}

func (r *repo) put(path, data string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[path] = data
	return r.srv.URL + path
}

func (r *repo) hit(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[path]
}

// publish serves a complete game version with four libraries and two
// assets, and makes it the latest release.
func (r *repo) publish(t *testing.T, id string) {
	t.Helper()
	r.publishRequiring(t, id, 17)
}

// publishRequiring is publish with the descriptor declaring java major.
func (r *repo) publishRequiring(t *testing.T, id string, major int) {
	t.Helper()
	objects := map[string]minecraft.AssetObject{}
	for _, data := range []string{"sound-" + id, "lang-" + id} {
		h := sum(data)
		r.put("/assets/"+h[:2]+"/"+h, data)
		objects["minecraft/"+data] = minecraft.AssetObject{Hash: h, Size: int64(len(data))}
	}
	index := mustJSON(t, minecraft.AssetIndex{Objects: objects})
	indexURL := r.put("/v/"+id+"/index.json", index)

	var libs []minecraft.Library
	for _, n := range []string{"a", "b", "c", "d"} {
		data := n + "-" + id
		path := "com/example/" + n + "/1.0/" + n + "-1.0.jar"
		libs = append(libs, minecraft.Library{
			Name: "com.example:" + n + ":1.0",
			Downloads: &minecraft.LibraryDownloads{Artifact: &minecraft.Download{
				Path: path, SHA1: sum(data), Size: int64(len(data)), URL: r.put("/maven/"+path, data),
			}},
		})
	}

	client := "client-" + id
	d := minecraft.Descriptor{
		ID:                 id,
		Type:               "release",
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name} --version ${version_name} --gameDir ${game_directory} --uuid ${auth_uuid}",
		Assets:             id,
		AssetIndex:         &minecraft.AssetIndexRef{ID: id, SHA1: sum(index), Size: int64(len(index)), URL: indexURL},
		Downloads: map[string]minecraft.Download{
			"client": {SHA1: sum(client), Size: int64(len(client)), URL: r.put("/v/"+id+"/client.jar", client)},
		},
		Libraries:   libs,
		JavaVersion: &minecraft.JavaVersion{Component: "java-runtime-gamma", MajorVersion: major},
	}
	descriptor := mustJSON(t, d)
	descURL := r.put("/v/"+id+"/"+id+".json", descriptor)

	manifest := install.VersionManifest{Versions: []install.ManifestVersion{{ID: id, Type: "release", URL: descURL, SHA1: sum(descriptor)}}}
	manifest.Latest.Release = id
	r.put("/manifest.json", mustJSON(t, manifest))
}

// publishForge serves a processor-less forge installer for mc whose forge
// jar is bundled under maven/.
func (r *repo) publishForge(t *testing.T, mc, forge string) string {
	t.Helper()
	full := mc + "-" + forge
	id := mc + "-forge-" + forge
	jar := "forge-" + full
	jarPath := "net/minecraftforge/forge/" + full + "/forge-" + full + ".jar"

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"install_profile.json": mustJSON(t, map[string]any{
			"spec":      1,
			"version":   id,
			"json":      "/version.json",
			"path":      "net.minecraftforge:forge:" + full,
			"minecraft": mc,
		}),
		"version.json": mustJSON(t, minecraft.Descriptor{
			ID:           id,
			InheritsFrom: mc,
			MainClass:    "cpw.mods.modlauncher.Launcher",
			Libraries: []minecraft.Library{{
				Name:      "net.minecraftforge:forge:" + full,
				Downloads: &minecraft.LibraryDownloads{Artifact: &minecraft.Download{Path: jarPath, SHA1: sum(jar), Size: int64(len(jar))}},
			}},
		}),
		"maven/" + jarPath: jar,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	installer := "/forge/net/minecraftforge/forge/" + full + "/forge-" + full + "-installer.jar"
	r.put(installer, buf.String())
	r.put(installer+".sha1", sum(buf.String()))
	return id
}

type fixture struct {
	repo   *repo
	svc    *core.Service
	base   string
	folder minecraft.Folder
	java   string
}

// newFixture starts a service over temp dirs whose downloads go to a fake
// repo and whose only java candidate is a fake java 17.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("LMC_ROOT_DIR", "")
	r := newRepo(t)
	base := t.TempDir()
	root := filepath.Join(base, "minecraft")
	configDir := filepath.Join(base, "config")
	writeFile(t, filepath.Join(configDir, "config.yaml"), "root_dir: "+root+"\nlink_method: symlink\n")
	java := fakeJava(t, filepath.Join(base, "jdk", "bin"), "17.0.8")

	svc, err := core.NewService(core.ServiceConfig{
		ConfigDir:  configDir,
		DataDir:    filepath.Join(base, "data"),
		CacheDir:   filepath.Join(base, "cache"),
		HTTPClient: r.srv.Client(),
		Endpoints: install.Endpoints{
			Manifest:   r.srv.URL + "/manifest.json",
			Assets:     r.srv.URL + "/assets",
			ForgeMaven: r.srv.URL + "/forge",
			FabricMeta: r.srv.URL + "/fabric",
			Liteloader: r.srv.URL + "/liteloader/versions.json",
			Authlib:    r.srv.URL + "/authlib",
		},
		Platform:       linux,
		HostArch:       func() (string, error) { return "x86_64", nil },
		Retry:          &retry.Config{MaxRetries: 1, InitialInterval: time.Millisecond, Multiplier: 1},
		JavaCandidates: func([]string) []string { return []string{java} },
	})
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Close() })

	return &fixture{repo: r, svc: svc, base: base, folder: minecraft.NewFolder(root), java: java}
}

// instance creates and selects an instance with runtime rt.
func (f *fixture) instance(t *testing.T, rt domain.RuntimeVersions) domain.Instance {
	t.Helper()
	path := filepath.Join(f.base, "instances", "main")
	require.NoError(t, f.svc.Instances().Create(domain.Instance{Path: path, Runtime: rt}))
	require.NoError(t, f.svc.Instances().Select(path))
	f.svc.Engine().Wait()
	inst, err := f.svc.Instances().Get(path)
	require.NoError(t, err)
	return inst
}

// blockingKinds lists the kinds of the blocking issues in report.
func blockingKinds(report domain.IssueReport) []domain.IssueKind {
	var out []domain.IssueKind
	for _, is := range report.Active() {
		if is.Blocking() {
			out = append(out, is.Kind)
		}
	}
	return out
}
