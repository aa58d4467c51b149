package linker_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/linker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// dirPack writes an unzipped pack with a pack.mcmeta and one texture.
func dirPack(t *testing.T, dir string) {
	t.Helper()
	write(t, filepath.Join(dir, "pack.mcmeta"), `{"pack":{"pack_format":15}}`)
	write(t, filepath.Join(dir, "assets", "minecraft", "textures", "stone.png"), "png")
}

func TestNew_ReturnsCorrectLinker(t *testing.T) {
	assert.Equal(t, domain.LinkSymlink, linker.New(domain.LinkSymlink).Method())
	assert.Equal(t, domain.LinkHardlink, linker.New(domain.LinkHardlink).Method())
	assert.Equal(t, domain.LinkCopy, linker.New(domain.LinkCopy).Method())
}

func TestLinkers_FilePack(t *testing.T) {
	for _, l := range []linker.Linker{linker.NewSymlink(), linker.NewHardlink(), linker.NewCopy()} {
		t.Run(l.Method().String(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "shared", "faithful.zip")
			dst := filepath.Join(dir, "instance", "resourcepacks", "faithful.zip")
			write(t, src, "pack")

			ok, err := l.Current(src, dst)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, l.Deploy(src, dst))
			assert.Equal(t, "pack", read(t, dst))
			ok, err = l.Current(src, dst)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, l.Undeploy(dst))
			assert.NoFileExists(t, dst)
			assert.FileExists(t, src)
		})
	}
}

func TestLinkers_DirectoryPack(t *testing.T) {
	for _, l := range []linker.Linker{linker.NewSymlink(), linker.NewHardlink(), linker.NewCopy()} {
		t.Run(l.Method().String(), func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "shared", "Sphax")
			dst := filepath.Join(dir, "instance", "Sphax")
			dirPack(t, src)

			require.NoError(t, l.Deploy(src, dst))
			assert.Equal(t, "png", read(t, filepath.Join(dst, "assets", "minecraft", "textures", "stone.png")))
			ok, err := l.Current(src, dst)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, l.Undeploy(dst))
			assert.NoDirExists(t, dst)
			assert.FileExists(t, filepath.Join(src, "pack.mcmeta"))
		})
	}
}

func TestSymlinkLinker_CurrentChecksTarget(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.zip")
	b := filepath.Join(dir, "b.zip")
	dst := filepath.Join(dir, "inst", "a.zip")
	write(t, a, "a")
	write(t, b, "b")

	l := linker.NewSymlink()
	require.NoError(t, l.Deploy(b, dst))
	ok, err := l.Current(a, dst)
	require.NoError(t, err)
	assert.False(t, ok)

	// a regular file is never a current symlink deployment
	require.NoError(t, os.Remove(dst))
	write(t, dst, "a")
	ok, err = l.Current(a, dst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, l.Undeploy(dst))
}

func TestCopyLinker_NoticesUpdatedSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shared", "faithful.zip")
	dst := filepath.Join(dir, "inst", "faithful.zip")
	write(t, src, "v1")

	l := linker.NewCopy()
	require.NoError(t, l.Deploy(src, dst))

	write(t, src, "v2")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, later, later))

	ok, err := l.Current(src, dst)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, dst+".tmp")
}

func TestSyncPacks(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared")
	inst := filepath.Join(dir, "instance", "resourcepacks")
	write(t, filepath.Join(shared, "faithful.zip"), "pack")
	dirPack(t, filepath.Join(shared, "Sphax"))
	write(t, filepath.Join(inst, "local.zip"), "local")

	l := linker.NewSymlink()
	res, err := linker.SyncPacks(l, shared, inst, []string{"faithful.zip", "Sphax", "local.zip", "missing.zip"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLinkFailed)
	assert.Contains(t, err.Error(), "missing.zip")
	assert.Equal(t, []string{"faithful.zip", "Sphax"}, res.Deployed)
	assert.Equal(t, "local", read(t, filepath.Join(inst, "local.zip")))

	// a second sync has nothing to do
	res, err = linker.SyncPacks(l, shared, inst, []string{"faithful.zip", "Sphax", "local.zip"})
	require.NoError(t, err)
	assert.Empty(t, res.Deployed)
	assert.Empty(t, res.Removed)

	// disabling removes only launcher deployments
	res, err = linker.SyncPacks(l, shared, inst, []string{"Sphax"})
	require.NoError(t, err)
	assert.Equal(t, []string{"faithful.zip"}, res.Removed)
	_, err = os.Lstat(filepath.Join(inst, "faithful.zip"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(inst, "local.zip"))
}

func TestSyncPacks_ReplacesOutdatedCopy(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared")
	inst := filepath.Join(dir, "inst")
	src := filepath.Join(shared, "faithful.zip")
	write(t, src, "v1")

	l := linker.NewCopy()
	_, err := linker.SyncPacks(l, shared, inst, []string{"faithful.zip"})
	require.NoError(t, err)

	write(t, src, "v2")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, later, later))

	res, err := linker.SyncPacks(l, shared, inst, []string{"faithful.zip"})
	require.NoError(t, err)
	assert.Equal(t, []string{"faithful.zip"}, res.Deployed)
	assert.Equal(t, "v2", read(t, filepath.Join(inst, "faithful.zip")))
}

func TestSyncPacks_RejectsPaths(t *testing.T) {
	dir := t.TempDir()
	_, err := linker.SyncPacks(linker.NewCopy(), dir, dir, []string{"../escape.zip"})
	assert.ErrorIs(t, err, domain.ErrLinkFailed)
}

func TestSyncPacks_MissingInstanceDir(t *testing.T) {
	dir := t.TempDir()
	res, err := linker.SyncPacks(linker.NewSymlink(), filepath.Join(dir, "shared"), filepath.Join(dir, "none"), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Deployed)
	assert.Empty(t, res.Removed)
}
