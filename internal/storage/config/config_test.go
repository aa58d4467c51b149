package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/lmc/minecraft", cfg.RootDir)
	assert.Equal(t, config.DefaultMirror, cfg.Mirror)
	assert.Equal(t, config.DefaultDownloadConcurrency, cfg.DownloadConcurrency)
	assert.Equal(t, config.DefaultProcessorTimeout, cfg.ProcessorTimeout)
	assert.Equal(t, domain.LinkSymlink, cfg.LinkMethod)
	assert.False(t, cfg.RestrictedNetwork)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
root_dir: /games/minecraft
restricted_network: true
mirror: mojang
download_concurrency: 4
link_method: copy
processor_timeout: 30s
java_paths:
  - /opt/jdk17/bin/java
pack_formats:
  15: "1.20.1"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/games/minecraft", cfg.RootDir)
	assert.True(t, cfg.RestrictedNetwork)
	assert.Equal(t, "mojang", cfg.Mirror)
	assert.Equal(t, 4, cfg.DownloadConcurrency)
	assert.Equal(t, domain.LinkCopy, cfg.LinkMethod)
	assert.Equal(t, 30*time.Second, cfg.ProcessorTimeout)
	assert.Equal(t, []string{"/opt/jdk17/bin/java"}, cfg.JavaPaths)
	assert.Equal(t, "1.20.1", cfg.PackFormats[15])
}

func TestLoadConfig_InvalidConcurrency(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("download_concurrency: 0\n"), 0644))

	_, err := config.Load(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("mirror: [\n"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(config.EnvRootDir, "/env/root")
	t.Setenv(config.EnvRestrictedNetwork, "true")
	t.Setenv(config.EnvDownloadConcurrency, "3")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/env/root", cfg.RootDir)
	assert.True(t, cfg.RestrictedNetwork)
	assert.Equal(t, 3, cfg.DownloadConcurrency)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad bool", config.EnvRestrictedNetwork, "maybe"},
		{"bad int", config.EnvDownloadConcurrency, "many"},
		{"zero", config.EnvDownloadConcurrency, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := config.Load(t.TempDir())
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.ApplyEnv(), domain.ErrInvalidConfig)
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.Mirror = "mojang"
	cfg.LinkMethod = domain.LinkHardlink
	cfg.SelectedInstance = "/games/vanilla"
	require.NoError(t, cfg.Save(dir))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mojang", loaded.Mirror)
	assert.Equal(t, domain.LinkHardlink, loaded.LinkMethod)
	assert.Equal(t, "/games/vanilla", loaded.SelectedInstance)
}

func openInstances(t *testing.T, bus *event.Bus) (*config.InstanceStore, *config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	store, err := config.OpenInstances(dir, cfg, bus)
	require.NoError(t, err)
	return store, cfg, dir
}

func TestInstances_CreateAndReload(t *testing.T) {
	store, cfg, dir := openInstances(t, nil)

	inst := domain.Instance{
		Path:          "/games/modded",
		Runtime:       domain.RuntimeVersions{Minecraft: "1.20.1", Forge: "47.2.0"},
		ResourcePacks: []string{"faithful.zip"},
		Server:        &domain.ServerAddress{Host: "play.example.org"},
		MaxMemory:     4096,
	}
	require.NoError(t, store.Create(inst))

	err := store.Create(inst)
	assert.ErrorIs(t, err, domain.ErrInstanceExists)

	reloaded, err := config.OpenInstances(dir, cfg, nil)
	require.NoError(t, err)
	got, err := reloaded.Get("/games/modded")
	require.NoError(t, err)
	assert.Equal(t, "modded", got.Name)
	assert.Equal(t, "47.2.0", got.Runtime.Forge)
	assert.Equal(t, []string{"faithful.zip"}, got.ResourcePacks)
	require.NotNil(t, got.Server)
	assert.Equal(t, "play.example.org", got.Server.Host)
	assert.Equal(t, 4096, got.MaxMemory)
}

func TestInstances_CreateRequiresAbsolutePath(t *testing.T) {
	store, _, _ := openInstances(t, nil)
	err := store.Create(domain.Instance{Path: "relative"})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestInstances_List(t *testing.T) {
	store, _, _ := openInstances(t, nil)
	require.NoError(t, store.Create(domain.Instance{Path: "/games/b"}))
	require.NoError(t, store.Create(domain.Instance{Path: "/games/a"}))

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "/games/a", list[0].Path)
	assert.Equal(t, "/games/b", list[1].Path)
}

func TestInstances_SelectPersistsInConfig(t *testing.T) {
	bus := event.NewBus()
	var selected []string
	event.Subscribe(bus, func(e event.InstanceSelected) { selected = append(selected, e.Path) })

	store, _, dir := openInstances(t, bus)
	_, err := store.Selected()
	assert.ErrorIs(t, err, domain.ErrNoInstanceSelected)

	require.NoError(t, store.Create(domain.Instance{Path: "/games/vanilla"}))
	require.NoError(t, store.Select("/games/vanilla"))
	assert.Equal(t, []string{"/games/vanilla"}, selected)

	got, err := store.Selected()
	require.NoError(t, err)
	assert.Equal(t, "/games/vanilla", got.Path)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/games/vanilla", cfg.SelectedInstance)

	assert.ErrorIs(t, store.Select("/games/missing"), domain.ErrInstanceNotFound)
}

func TestInstances_MutationsPublishEvents(t *testing.T) {
	bus := event.NewBus()
	var edited []domain.RuntimeVersions
	var javas, packs int
	event.Subscribe(bus, func(e event.RuntimeEdited) { edited = append(edited, e.Runtime) })
	event.Subscribe(bus, func(event.JavaChanged) { javas++ })
	event.Subscribe(bus, func(event.ResourcePacksChanged) { packs++ })

	store, _, _ := openInstances(t, bus)
	require.NoError(t, store.Create(domain.Instance{Path: "/games/vanilla"}))

	rt := domain.RuntimeVersions{Minecraft: "1.20.1", FabricLoader: "0.15.7"}
	require.NoError(t, store.SetRuntime("/games/vanilla", rt))
	require.NoError(t, store.SetJava("/games/vanilla", "/usr/bin/java"))
	require.NoError(t, store.SetResourcePacks("/games/vanilla", []string{"a.zip", "b.zip"}))

	assert.Equal(t, []domain.RuntimeVersions{rt}, edited)
	assert.Equal(t, 1, javas)
	assert.Equal(t, 1, packs)

	got, err := store.Get("/games/vanilla")
	require.NoError(t, err)
	assert.Equal(t, rt, got.Runtime)
	assert.Equal(t, "/usr/bin/java", got.Java)
	assert.Equal(t, []string{"a.zip", "b.zip"}, got.ResourcePacks)

	assert.ErrorIs(t, store.SetRuntime("/games/missing", rt), domain.ErrInstanceNotFound)
	assert.Len(t, edited, 1)
}

func TestInstances_DeleteClearsSelection(t *testing.T) {
	store, cfg, _ := openInstances(t, nil)
	require.NoError(t, store.Create(domain.Instance{Path: "/games/vanilla"}))
	require.NoError(t, store.Select("/games/vanilla"))

	require.NoError(t, store.Delete("/games/vanilla"))
	assert.Empty(t, cfg.SelectedInstance)
	_, err := store.Get("/games/vanilla")
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestAccounts_SelectAndReload(t *testing.T) {
	bus := event.NewBus()
	var changed []string
	event.Subscribe(bus, func(e event.AccountChanged) { changed = append(changed, e.AccountID) })

	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	store, err := config.OpenAccounts(dir, cfg, bus)
	require.NoError(t, err)

	_, ok := store.SelectedAccount()
	assert.False(t, ok)

	require.NoError(t, store.Put(domain.Account{ID: "steve", Username: "Steve"}))
	require.NoError(t, store.Put(domain.Account{ID: "alex", Username: "Alex", AuthService: "https://skin.example.org/api/yggdrasil"}))
	assert.Empty(t, changed)

	require.NoError(t, store.Select("alex"))
	assert.Equal(t, []string{"alex"}, changed)

	reloaded, err := config.OpenAccounts(dir, cfg, nil)
	require.NoError(t, err)
	got, ok := reloaded.SelectedAccount()
	require.True(t, ok)
	assert.True(t, got.NeedsAuthlibInjector())

	steve := reloaded.List()[1]
	assert.Equal(t, domain.AuthServiceOffline, steve.AuthService)

	assert.ErrorIs(t, store.Select("nobody"), domain.ErrAccountNotFound)
}

func TestAccounts_RemoveSelected(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	store, err := config.OpenAccounts(dir, cfg, nil)
	require.NoError(t, err)

	require.NoError(t, store.Put(domain.Account{ID: "steve", Username: "Steve"}))
	require.NoError(t, store.Select("steve"))
	require.NoError(t, store.Remove("steve"))

	_, ok := store.SelectedAccount()
	assert.False(t, ok)
	assert.Empty(t, cfg.SelectedAccount)
}
