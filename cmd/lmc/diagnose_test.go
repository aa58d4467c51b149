package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout returns what fn writes to os.Stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()
	runErr := fn()
	os.Stdout = orig
	require.NoError(t, w.Close())
	out := <-done
	require.NoError(t, r.Close())
	return string(out), runErr
}

// writeVersion installs a bare descriptor for id under root.
func writeVersion(t *testing.T, root, id, body string) {
	t.Helper()
	dir := filepath.Join(root, "versions", id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0644))
}

func createSelected(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game")
	require.NoError(t, execute(t, instanceCmd, append([]string{"instance", "create", path, "--select"}, args...)...))
	return path
}

func TestDiagnoseCmd_Structure(t *testing.T) {
	assert.Equal(t, "diagnose [category...]", diagnoseCmd.Use)
	assert.NotEmpty(t, diagnoseCmd.Short)
	assert.NotEmpty(t, diagnoseCmd.Long)
	assert.NotNil(t, diagnoseCmd.RunE)
}

func TestParseCategories(t *testing.T) {
	cats, err := parseCategories([]string{"version", "resourcePacks"})
	require.NoError(t, err)
	assert.Equal(t, []diagnose.Category{diagnose.CategoryVersion, diagnose.CategoryResourcePacks}, cats)

	_, err = parseCategories([]string{"graphics"})
	assert.Error(t, err)
}

func TestDiagnose_NoInstance(t *testing.T) {
	setupCLI(t)

	err := execute(t, diagnoseCmd, "diagnose")
	assert.ErrorIs(t, err, domain.ErrNoInstanceSelected)
}

func TestDiagnose_ReportsMissingVersionAsJSON(t *testing.T) {
	setupCLI(t)
	path := createSelected(t, "--minecraft", "1.20.1")
	jsonOutput = true

	out, err := captureStdout(t, func() error { return execute(t, diagnoseCmd, "diagnose", "version") })
	require.NoError(t, err)

	var got struct {
		Instance string `json:"instance"`
		Issues   []struct {
			ID      string `json:"id"`
			AutoFix bool   `json:"autofix"`
		} `json:"issues"`
		Blocking int `json:"blocking"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, path, got.Instance)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, string(domain.IssueMissingVersion), got.Issues[0].ID)
	assert.True(t, got.Issues[0].AutoFix)
	assert.Equal(t, 1, got.Blocking)
}

func TestDiagnose_TextListsIssues(t *testing.T) {
	setupCLI(t)
	createSelected(t, "--minecraft", "1.20.1")

	out, err := captureStdout(t, func() error { return execute(t, diagnoseCmd, "diagnose", "version") })
	require.NoError(t, err)
	assert.Contains(t, out, "missingVersion: 1.20.1 [autofix]")
	assert.Contains(t, out, "1 issue(s), 1 blocking")
	assert.Contains(t, out, "lmc fix")
}

func TestFixCmd_NoInstance(t *testing.T) {
	setupCLI(t)

	err := execute(t, fixCmd, "fix")
	assert.ErrorIs(t, err, domain.ErrNoInstanceSelected)
}

func TestFixOutput(t *testing.T) {
	out := fixOutput(diagnose.FixOutcome{
		Ran: []string{"installRuntime"},
		Failures: []diagnose.FixFailure{{
			Fix:   "installRuntime",
			Kinds: []domain.IssueKind{domain.IssueMissingVersion},
			Err:   assert.AnError,
		}},
		Rechecked: []diagnose.Category{diagnose.CategoryVersion},
		Unhandled: []domain.IssueKind{domain.IssueBadInstall},
	}, nil)

	assert.Equal(t, []string{"installRuntime"}, out.Ran)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, assert.AnError.Error(), out.Failures[0].Error)
	assert.Equal(t, []string{"version"}, out.Rechecked)
	assert.Equal(t, []string{"badInstall"}, out.Unhandled)
	assert.NotNil(t, out.Remaining)
	assert.False(t, out.Noop)
}

func TestResolve_NotInstalled(t *testing.T) {
	setupCLI(t)

	err := execute(t, resolveCmd, "resolve", "--minecraft", "1.20.1")
	assert.ErrorIs(t, err, domain.ErrMissingMinecraftVersion)
}

func TestResolve_InstalledForge(t *testing.T) {
	root := setupCLI(t)
	writeVersion(t, root, "1.20.1", `{"id":"1.20.1","mainClass":"net.minecraft.client.main.Main"}`)
	writeVersion(t, root, "1.20.1-forge-47.1.0", `{
		"id":"1.20.1-forge-47.1.0",
		"inheritsFrom":"1.20.1",
		"mainClass":"cpw.mods.bootstraplauncher.BootstrapLauncher",
		"libraries":[{"name":"net.minecraftforge:forge:1.20.1-47.1.0"}]
	}`)
	createSelected(t, "--minecraft", "1.20.1", "--forge", "47.1.0")

	out, err := captureStdout(t, func() error { return execute(t, resolveCmd, "resolve") })
	require.NoError(t, err)
	assert.Equal(t, "1.20.1-forge-47.1.0\n", out)
}

func TestLaunch_NoInstance(t *testing.T) {
	setupCLI(t)

	err := execute(t, launchCmd, "launch", "--dry-run")
	assert.ErrorIs(t, err, domain.ErrNoInstanceSelected)
}

func TestLaunchError_KeepsBlockedError(t *testing.T) {
	noColor = true
	blocked := &domain.BlockedByIssuesError{Issues: []domain.Issue{
		domain.NewIssue(domain.IssueIncompatibleJava, domain.JavaArgs{Java: "/usr/bin/java", Major: 8, Required: 17}),
	}}

	err := launchError(blocked)
	assert.ErrorIs(t, err, domain.ErrBlockedByIssues)
}

func TestLaunchCmd_Structure(t *testing.T) {
	assert.Equal(t, "launch", launchCmd.Use)
	assert.NotNil(t, launchCmd.Flags().Lookup("dry-run"))
}
