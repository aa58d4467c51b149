package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/install"

	"github.com/spf13/cobra"
)

var (
	versionsRemote    bool
	versionsSnapshots bool
	versionsRefresh   bool
)

var versionsCmd = &cobra.Command{
	Use:   "versions [prefix]",
	Short: "List installed or available Minecraft versions",
	Long: `List installed versions with the loaders detected in each, or with
--remote the versions offered by the version manifest.

Examples:
  lmc versions
  lmc versions --remote 1.20
  lmc versions --remote --snapshots --refresh`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().BoolVar(&versionsRemote, "remote", false, "list versions from the version manifest")
	versionsCmd.Flags().BoolVar(&versionsSnapshots, "snapshots", false, "include snapshots and old versions (with --remote)")
	versionsCmd.Flags().BoolVar(&versionsRefresh, "refresh", false, "discard cached metadata before fetching")
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if !versionsRemote {
		var locals []domain.LocalVersion
		for _, v := range service.Resolver().Locals() {
			if strings.HasPrefix(v.ID, prefix) {
				locals = append(locals, v)
			}
		}
		return printLocalVersions(locals)
	}

	if versionsRefresh {
		if err := service.Cache().Clear(); err != nil {
			return fmt.Errorf("clearing metadata cache: %w", err)
		}
	}
	manifest, err := service.Installer().Manifest(ctx)
	if err != nil {
		return err
	}
	var remote []install.ManifestVersion
	for _, v := range manifest.Versions {
		if !versionsSnapshots && v.Type != "release" {
			continue
		}
		if strings.HasPrefix(v.ID, prefix) {
			remote = append(remote, v)
		}
	}

	if jsonOutput {
		if remote == nil {
			remote = []install.ManifestVersion{}
		}
		return printJSON(remote)
	}
	fmt.Printf("Latest release: %s, latest snapshot: %s\n\n", manifest.Latest.Release, manifest.Latest.Snapshot)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tRELEASED")
	fmt.Fprintln(w, "--\t----\t--------")
	for _, v := range remote {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, v.Type, truncate(v.ReleaseTime, 10))
	}
	w.Flush()
	return nil
}

func printLocalVersions(locals []domain.LocalVersion) error {
	if jsonOutput {
		if locals == nil {
			locals = []domain.LocalVersion{}
		}
		return printJSON(locals)
	}
	if len(locals) == 0 {
		fmt.Println("No versions installed.")
		fmt.Println("\nUse 'lmc install minecraft <version>' to install one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMINECRAFT\tLOADERS")
	fmt.Fprintln(w, "--\t---------\t-------")
	for _, v := range locals {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.ID, v.Minecraft, loaders(v))
	}
	w.Flush()
	return nil
}

func loaders(v domain.LocalVersion) string {
	var out []string
	if v.Forge != "" {
		out = append(out, "forge "+v.Forge)
	}
	if v.Fabric != "" {
		out = append(out, "fabric "+v.Fabric)
	}
	if v.Liteloader != "" {
		out = append(out, "liteloader "+v.Liteloader)
	}
	if v.Optifine != "" {
		out = append(out, "optifine "+v.Optifine)
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}
