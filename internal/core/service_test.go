package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	f := newFixture(t)

	for _, dir := range []string{"config", "data", "cache"} {
		info, err := os.Stat(filepath.Join(f.base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.FileExists(t, filepath.Join(f.base, "data", "lmc.db"))
	assert.Equal(t, f.folder.Root, f.svc.Folder().Root)
	assert.Equal(t, linux, f.svc.Platform())
	assert.Equal(t, domain.LinkSymlink, f.svc.Config().LinkMethod)
	assert.Empty(t, f.svc.Instances().List())
}

func TestDiagnose_NoInstanceSelected(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.Diagnose(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestDiagnose_FreshInstance(t *testing.T) {
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	f.instance(t, domain.RuntimeVersions{Minecraft: "1.20.1"})

	report, err := f.svc.Diagnose(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.IssueKind{domain.IssueMissingVersion, domain.IssueMissingJava}, blockingKinds(report))
}

func TestFix_ConvergesOnFreshInstance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	f.instance(t, domain.RuntimeVersions{Minecraft: "1.20.1"})

	out, err := f.svc.Fix(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"installRuntime", "discoverJava"}, out.Ran)
	assert.Empty(t, out.Failures)
	assert.ElementsMatch(t, []diagnose.Category{diagnose.CategoryVersion, diagnose.CategoryJava}, out.Rechecked)

	f.svc.Engine().Wait()
	report, err := f.svc.Diagnose(ctx)
	require.NoError(t, err)
	assert.Empty(t, blockingKinds(report))

	assert.FileExists(t, f.folder.VersionJar("1.20.1"))
	javas, err := f.svc.Javas().Javas(ctx)
	require.NoError(t, err)
	require.Len(t, javas, 1)
	assert.Equal(t, f.java, javas[0].Path)

	again, err := f.svc.Fix(ctx)
	require.NoError(t, err)
	assert.True(t, again.Noop)
}

func TestFix_InstallsForgeRuntime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.publish(t, "1.16.5")
	want := f.repo.publishForge(t, "1.16.5", "36.2.0")
	rt := domain.RuntimeVersions{Minecraft: "1.16.5", Forge: "36.2.0"}
	f.instance(t, rt)

	report, err := f.svc.Diagnose(ctx, diagnose.CategoryVersion)
	require.NoError(t, err)
	missing := domain.ArgsOf[domain.MissingVersionArgs](report.Of(domain.IssueMissingVersion))
	require.Len(t, missing, 1)
	assert.Equal(t, rt, missing[0].Runtime)

	out, err := f.svc.Fix(ctx)
	require.NoError(t, err)
	assert.Contains(t, out.Ran, "installRuntime")
	assert.Empty(t, out.Failures)
	f.svc.Engine().Wait()

	id, err := f.svc.Resolver().Resolve(rt)
	require.NoError(t, err)
	assert.Equal(t, want, id)

	report, err = f.svc.Diagnose(ctx, diagnose.CategoryVersion)
	require.NoError(t, err)
	assert.Empty(t, report.Of(diagnose.Owned(diagnose.CategoryVersion)...))
}

func TestFix_EmptyRuntimeUsesLatestRelease(t *testing.T) {
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	inst := f.instance(t, domain.RuntimeVersions{})

	_, err := f.svc.Fix(context.Background())
	require.NoError(t, err)
	f.svc.Engine().Wait()

	got, err := f.svc.Instances().Get(inst.Path)
	require.NoError(t, err)
	assert.Equal(t, "1.20.1", got.Runtime.Minecraft)
	assert.FileExists(t, f.folder.VersionJSON("1.20.1"))
}

func TestFix_RepairsCorruptedLibraries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	f.instance(t, domain.RuntimeVersions{Minecraft: "1.20.1"})
	_, err := f.svc.Fix(ctx)
	require.NoError(t, err)
	f.svc.Engine().Wait()

	lib := f.folder.LibraryPath("com/example/b/1.0/b-1.0.jar")
	writeFile(t, lib, "tampered")
	report, err := f.svc.Diagnose(ctx, diagnose.CategoryVersion)
	require.NoError(t, err)
	assert.Equal(t, []domain.IssueKind{domain.IssueCorruptedLibraries}, blockingKinds(report))

	out, err := f.svc.Fix(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"installLibraries"}, out.Ran)
	assert.Empty(t, out.Failures)

	data, err := os.ReadFile(lib)
	require.NoError(t, err)
	assert.Equal(t, "b-1.20.1", string(data))
	assert.Empty(t, blockingKinds(f.svc.Engine().Report()))
}

func TestFix_BusyInstallIsSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	f.instance(t, domain.RuntimeVersions{Minecraft: "1.20.1"})

	g := f.svc.Guard()
	require.True(t, g.TryAcquire(install.ClassKey))
	out, err := f.svc.Fix(ctx)
	g.Release(install.ClassKey)
	require.NoError(t, err)

	assert.Contains(t, out.Ran, "installRuntime")
	assert.Empty(t, out.Failures)
	assert.Equal(t, 0, f.repo.hit("/manifest.json"))
	assert.Len(t, f.svc.Engine().Report()[domain.IssueMissingVersion], 1)

	f.svc.Engine().Wait()
	out, err = f.svc.Fix(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"installRuntime"}, out.Ran)
	assert.Empty(t, f.svc.Engine().Report()[domain.IssueMissingVersion])
}

func TestFix_UnknownVersionIsReported(t *testing.T) {
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	f.instance(t, domain.RuntimeVersions{Minecraft: "1.99"})

	out, err := f.svc.Fix(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, "installRuntime", out.Failures[0].Fix)
	assert.Len(t, f.svc.Engine().Report()[domain.IssueMissingVersion], 1)
}

func TestInstallRuntime_RequiresMinecraft(t *testing.T) {
	f := newFixture(t)

	_, ok, err := f.svc.InstallRuntime(context.Background(), domain.RuntimeVersions{Forge: "47.1.0"})
	assert.True(t, ok)
	var missing *domain.MissingComponentVersionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, domain.ComponentMinecraft, missing.Component)
}

func TestInstallRuntime_ObservesTasks(t *testing.T) {
	f := newFixture(t)
	f.repo.publish(t, "1.20.1")
	var names []string
	f.svc.ObserveTasks(func(o task.Observer) { names = append(names, o.Name()) })

	id, ok, err := f.svc.InstallRuntime(context.Background(), domain.RuntimeVersions{Minecraft: "1.20.1"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.20.1", id)
	assert.Len(t, names, 1)
}
