package resource_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/resource"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

const fabricJSON = `{
  "schemaVersion": 1,
  "id": "sodium",
  "version": "0.5.3",
  "name": "Sodium",
  "depends": {"fabricloader": ">=0.12.0", "minecraft": ["1.20.x", "1.19.4"], "fabric": "*"}
}`

const modsTOML = `
modLoader="javafml"
loaderVersion="[47,)"

[[mods]]
modId="jei"
version="${file.jarVersion}"
displayName="Just Enough Items"

[[dependencies.jei]]
    modId="forge"
    mandatory=true
    versionRange="[47.1.0,)"
[[dependencies.jei]]
    modId="minecraft"
    mandatory=true
    versionRange="[1.20.1,1.21)"
[[dependencies.jei]]
    modId="architectury"
    mandatory=true
    versionRange="*"
[[dependencies.jei]]
    modId="optional_thing"
    mandatory=false
    versionRange="*"
`

func TestParseMod_Fabric(t *testing.T) {
	path := writeZip(t, filepath.Join(t.TempDir(), "sodium.jar"), map[string]string{"fabric.mod.json": fabricJSON})

	m, err := resource.ParseMod(path)
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderFabric, m.Loader)
	assert.Equal(t, "sodium", m.ModID)
	assert.Equal(t, "0.5.3", m.Version)
	assert.Equal(t, "1.20.x || 1.19.4", m.AcceptedMinecraft)
	assert.Equal(t, []string{"fabric", "fabricloader"}, m.Depends)
	assert.Len(t, m.Hash, 40)
}

func TestParseMod_ModsToml(t *testing.T) {
	path := writeZip(t, filepath.Join(t.TempDir(), "jei.jar"), map[string]string{
		"META-INF/mods.toml":   modsTOML,
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\nImplementation-Version: 15.2.0.27\n",
	})

	m, err := resource.ParseMod(path)
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderForge, m.Loader)
	assert.Equal(t, "jei", m.ModID)
	assert.Equal(t, "15.2.0.27", m.Version)
	assert.Equal(t, "[1.20.1,1.21)", m.AcceptedMinecraft)
	assert.Equal(t, []string{"architectury"}, m.Depends)
}

func TestParseMod_McmodInfo(t *testing.T) {
	dir := t.TempDir()
	list := writeZip(t, filepath.Join(dir, "old.jar"), map[string]string{
		"mcmod.info": `[{"modid":"ic2","name":"IndustrialCraft 2","version":"2.2","mcversion":"1.7.10","requiredMods":["Forge","buildcraft@[7.0,)"]}]`,
	})
	wrapped := writeZip(t, filepath.Join(dir, "wrapped.jar"), map[string]string{
		"mcmod.info": `{"modListVersion":2,"modList":[{"modid":"wrapped","version":"1.0","mcversion":"${mcversion}"}]}`,
	})

	m, err := resource.ParseMod(list)
	require.NoError(t, err)
	assert.Equal(t, "ic2", m.ModID)
	assert.Equal(t, "1.7.10", m.AcceptedMinecraft)
	assert.Equal(t, []string{"buildcraft"}, m.Depends)

	m, err = resource.ParseMod(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "wrapped", m.ModID)
	assert.Empty(t, m.AcceptedMinecraft)
}

func TestParseMod_Litemod(t *testing.T) {
	path := writeZip(t, filepath.Join(t.TempDir(), "mini.litemod"), map[string]string{
		"litemod.json": `{"name":"VoxelMap","version":"1.7.0","mcversion":"1.12.2"}`,
	})

	m, err := resource.ParseMod(path)
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderLiteloader, m.Loader)
	assert.Equal(t, "voxelmap", m.ModID)
	assert.Equal(t, "1.12.2", m.AcceptedMinecraft)
}

func TestParseMod_NoMetadata(t *testing.T) {
	path := writeZip(t, filepath.Join(t.TempDir(), "lib.jar"), map[string]string{"a.class": "x"})

	_, err := resource.ParseMod(path)
	assert.True(t, errors.Is(err, resource.ErrNotAMod))
}

func TestParsePack(t *testing.T) {
	dir := t.TempDir()
	zipped := writeZip(t, filepath.Join(dir, "faithful.zip"), map[string]string{
		"pack.mcmeta": `{"pack":{"pack_format":15,"description":{"text":"Faithful ","extra":[{"text":"32x"}]}}}`,
	})
	unpacked := filepath.Join(dir, "plain")
	require.NoError(t, os.MkdirAll(unpacked, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(unpacked, "pack.mcmeta"), []byte(`{"pack":{"pack_format":6,"description":"Plain"}}`), 0644))

	p, err := resource.ParsePack(zipped)
	require.NoError(t, err)
	assert.Equal(t, 15, p.PackFormat)
	assert.Equal(t, "Faithful 32x", p.Description)
	assert.Len(t, p.Hash, 40)

	p, err = resource.ParsePack(unpacked)
	require.NoError(t, err)
	assert.Equal(t, "plain", p.Name)
	assert.Equal(t, 6, p.PackFormat)
	assert.Equal(t, "Plain", p.Description)
	assert.Empty(t, p.Hash)

	_, err = resource.ParsePack(writeZip(t, filepath.Join(dir, "empty.zip"), map[string]string{"x": "y"}))
	assert.True(t, errors.Is(err, resource.ErrNotAPack))
}

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

type lookup map[string]domain.Instance

func (l lookup) Get(path string) (domain.Instance, error) {
	inst, ok := l[path]
	if !ok {
		return domain.Instance{}, errors.New("no such instance")
	}
	return inst, nil
}

func TestCatalog_ScanMods(t *testing.T) {
	database := setupTestDB(t)
	inst := t.TempDir()
	writeZip(t, filepath.Join(inst, "mods", "sodium.jar"), map[string]string{"fabric.mod.json": fabricJSON})
	writeZip(t, filepath.Join(inst, "mods", "broken.jar"), map[string]string{"readme.txt": "not a mod"})
	require.NoError(t, os.WriteFile(filepath.Join(inst, "mods", "notes.txt"), []byte("ignored"), 0644))

	c := resource.NewCatalog(database, nil)
	mods, err := c.Mods(context.Background(), inst)
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "broken.jar", mods[0].Name)
	assert.Empty(t, mods[0].Loader)
	assert.Equal(t, "sodium.jar", mods[1].Name)
	assert.Equal(t, "sodium", mods[1].ModID)

	stored, err := database.GetMods(inst)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestCatalog_ReusesKnownHash(t *testing.T) {
	database := setupTestDB(t)
	c := resource.NewCatalog(database, nil)

	first := t.TempDir()
	writeZip(t, filepath.Join(first, "mods", "sodium.jar"), map[string]string{"fabric.mod.json": fabricJSON})
	mods, err := c.Mods(context.Background(), first)
	require.NoError(t, err)
	require.Len(t, mods, 1)

	second := t.TempDir()
	data, err := os.ReadFile(filepath.Join(first, "mods", "sodium.jar"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(second, "mods"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "mods", "renamed.jar"), data, 0644))

	again, err := c.Mods(context.Background(), second)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "renamed.jar", again[0].Name)
	assert.Equal(t, filepath.Join(second, "mods", "renamed.jar"), again[0].Path)
	assert.Equal(t, mods[0].ModID, again[0].ModID)
	assert.Equal(t, mods[0].Hash, again[0].Hash)
}

func TestCatalog_MissingFoldersAreEmpty(t *testing.T) {
	c := resource.NewCatalog(setupTestDB(t), nil)

	mods, err := c.Mods(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, mods)

	packs, err := c.ResourcePacks(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, packs)
}

func TestCatalog_ResourcePacksOnlyEnabled(t *testing.T) {
	inst := t.TempDir()
	for _, name := range []string{"a.zip", "b.zip", "c.zip"} {
		writeZip(t, filepath.Join(inst, "resourcepacks", name), map[string]string{"pack.mcmeta": `{"pack":{"pack_format":15,"description":""}}`})
	}
	c := resource.NewCatalog(setupTestDB(t), lookup{inst: {Path: inst, ResourcePacks: []string{"c.zip", "a.zip", "gone.zip"}}})

	packs, err := c.ResourcePacks(context.Background(), inst)
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "c.zip", packs[0].Name)
	assert.Equal(t, "a.zip", packs[1].Name)
}
