package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJavaStore(t *testing.T, candidates *[]string) (*core.JavaStore, *event.Bus) {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	bus := event.NewBus()
	return core.NewJavaStore(database, bus, nil, func([]string) []string { return *candidates }), bus
}

func TestJavaStore_Scan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	java8 := fakeJava(t, filepath.Join(dir, "jdk8", "bin"), "1.8.0_382")
	java17 := fakeJava(t, filepath.Join(dir, "jdk17", "bin"), "17.0.8")
	broken := filepath.Join(dir, "broken", "java")
	writeFile(t, broken, "#!/bin/sh\nexit 1\n")
	require.NoError(t, os.Chmod(broken, 0755))

	candidates := []string{java8, java17, broken}
	store, bus := newJavaStore(t, &candidates)
	changed := 0
	event.Subscribe(bus, func(event.JavaChanged) { changed++ })

	javas, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, javas, 3)
	assert.Equal(t, 1, changed)

	valid := map[string]bool{}
	for _, j := range javas {
		valid[j.Path] = j.Valid
	}
	assert.Equal(t, map[string]bool{java8: true, java17: true, broken: false}, valid)

	def, ok, err := store.Default(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, java17, def.Path)
	assert.Equal(t, 17, def.Major)
}

func TestJavaStore_ScanForgetsRemovedRuntimes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	java17 := fakeJava(t, filepath.Join(dir, "jdk17", "bin"), "17.0.8")
	java21 := fakeJava(t, filepath.Join(dir, "jdk21", "bin"), "21.0.1")

	candidates := []string{java17, java21}
	store, _ := newJavaStore(t, &candidates)
	_, err := store.Scan(ctx)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "jdk21")))
	candidates = []string{java17}
	javas, err := store.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, javas, 1)
	assert.Equal(t, java17, javas[0].Path)
}

func TestJavaStore_DefaultPathScansOnce(t *testing.T) {
	ctx := context.Background()
	java := fakeJava(t, filepath.Join(t.TempDir(), "bin"), "17.0.8")
	candidates := []string{java}
	store, _ := newJavaStore(t, &candidates)

	path, err := store.DefaultPath(ctx)
	require.NoError(t, err)
	assert.Equal(t, java, path)
}

func TestJavaStore_DefaultPathNoRuntime(t *testing.T) {
	var candidates []string
	store, _ := newJavaStore(t, &candidates)

	_, err := store.DefaultPath(context.Background())
	assert.ErrorIs(t, err, domain.ErrJavaNotFound)
}
