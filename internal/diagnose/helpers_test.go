package diagnose_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/minecraft"
	"github.com/DonovanMods/linux-mc-launcher/internal/resolver"
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

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	writeFile(t, path, string(data))
}

// install writes a complete version "1.16.5" with libs a..d and one asset.
func install(t *testing.T, f minecraft.Folder) {
	t.Helper()
	index := minecraft.AssetIndex{Objects: map[string]minecraft.AssetObject{"icons/icon.png": {Hash: sum("icon"), Size: 4}}}
	indexData, err := json.Marshal(index)
	require.NoError(t, err)
	writeFile(t, f.AssetIndexPath("1.16"), string(indexData))
	writeFile(t, f.AssetObjectPath(sum("icon")), "icon")
	writeFile(t, f.VersionJar("1.16.5"), "jar")

	var libs []minecraft.Library
	for _, n := range []string{"a", "b", "c", "d"} {
		libs = append(libs, minecraft.Library{
			Name:      "com.example:" + n + ":1.0",
			Downloads: &minecraft.LibraryDownloads{Artifact: &minecraft.Download{SHA1: sum(n), Size: 1}},
		})
		writeFile(t, f.LibraryPath("com/example/"+n+"/1.0/"+n+"-1.0.jar"), n)
	}
	writeJSON(t, f.VersionJSON("1.16.5"), minecraft.Descriptor{
		ID:          "1.16.5",
		MainClass:   "net.minecraft.client.main.Main",
		AssetIndex:  &minecraft.AssetIndexRef{ID: "1.16", SHA1: sum(string(indexData)), Size: int64(len(indexData))},
		Downloads:   map[string]minecraft.Download{"client": {SHA1: sum("jar"), Size: 3}},
		Libraries:   libs,
		JavaVersion: &minecraft.JavaVersion{Component: "java-runtime-alpha", MajorVersion: 8},
	})
}

type instances struct {
	mu   sync.Mutex
	inst *domain.Instance
}

func (s *instances) Selected() (domain.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inst == nil {
		return domain.Instance{}, domain.ErrNoInstanceSelected
	}
	return *s.inst, nil
}

type javas []domain.JavaRecord

func (j javas) Javas(context.Context) ([]domain.JavaRecord, error) { return j, nil }

type resources struct {
	mods  []domain.ModResource
	packs []domain.ResourcePack
}

func (r *resources) Mods(context.Context, string) ([]domain.ModResource, error) {
	return append([]domain.ModResource(nil), r.mods...), nil
}

func (r *resources) ResourcePacks(context.Context, string) ([]domain.ResourcePack, error) {
	return append([]domain.ResourcePack(nil), r.packs...), nil
}

type accounts struct{ acc *domain.Account }

func (a accounts) SelectedAccount() (domain.Account, bool) {
	if a.acc == nil {
		return domain.Account{}, false
	}
	return *a.acc, true
}

type servers struct{ status *domain.ServerStatus }

func (s servers) ServerStatus(context.Context, string) (domain.ServerStatus, bool, error) {
	if s.status == nil {
		return domain.ServerStatus{}, false, nil
	}
	return *s.status, true, nil
}

type fixture struct {
	folder    minecraft.Folder
	resolver  *resolver.Resolver
	instances *instances
	resources *resources
	bus       *event.Bus
	deps      diagnose.Deps
}

func newFixture(t *testing.T, rt domain.RuntimeVersions) *fixture {
	t.Helper()
	f := minecraft.NewFolder(t.TempDir())
	bus := event.NewBus()
	fx := &fixture{
		folder:    f,
		resolver:  resolver.New(f, bus),
		instances: &instances{inst: &domain.Instance{Path: "/instances/a", Runtime: rt}},
		resources: &resources{},
		bus:       bus,
	}
	fx.deps = diagnose.Deps{
		Folder:    f,
		Platform:  linux,
		Instances: fx.instances,
		Versions:  fx.resolver,
		Javas:     javas{{Path: "/usr/bin/java", Version: "1.8.0_382", Major: 8, Arch: "amd64", Valid: true}},
		Resources: fx.resources,
		Accounts:  accounts{},
		Servers:   servers{},
		Bus:       bus,
		HostArch:  func() (string, error) { return "x86_64", nil },
	}
	return fx
}

func (fx *fixture) refresh(t *testing.T) {
	t.Helper()
	_, err := fx.resolver.Refresh(context.Background())
	require.NoError(t, err)
}
