package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

// errBusy is returned when an install could not start because a conflicting
// one is running.
var errBusy = errors.New("another install is running; try again when it finishes")

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install game versions, loaders and launcher components",
	Long: `Install a Minecraft version, a mod loader on top of one, authlib-injector,
or the libraries and assets of an installed version.

Files already present with a valid checksum are kept.

Examples:
  lmc install minecraft 1.20.1
  lmc install minecraft latest
  lmc install forge 1.20.1 47.1.0
  lmc install fabric 1.20.1 0.14.21
  lmc install liteloader 1.12.2 1.12.2-SNAPSHOT
  lmc install authlib
  lmc install deps 1.20.1-forge-47.1.0`,
}

var installMinecraftCmd = &cobra.Command{
	Use:   "minecraft <version|latest>",
	Short: "Install a Minecraft version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallRuntime(cmd, domain.RuntimeVersions{Minecraft: args[0]})
	},
}

var installForgeCmd = &cobra.Command{
	Use:   "forge <minecraft> <forge>",
	Short: "Install Forge for a Minecraft version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallRuntime(cmd, domain.RuntimeVersions{Minecraft: args[0], Forge: args[1]})
	},
}

var installFabricCmd = &cobra.Command{
	Use:   "fabric <minecraft> <loader>",
	Short: "Install the Fabric loader for a Minecraft version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallRuntime(cmd, domain.RuntimeVersions{Minecraft: args[0], FabricLoader: args[1]})
	},
}

var installLiteloaderCmd = &cobra.Command{
	Use:   "liteloader <minecraft> <version>",
	Short: "Install LiteLoader for a Minecraft version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstallRuntime(cmd, domain.RuntimeVersions{Minecraft: args[0], Liteloader: args[1]})
	},
}

var installAuthlibCmd = &cobra.Command{
	Use:   "authlib",
	Short: "Install the latest authlib-injector",
	Args:  cobra.NoArgs,
	RunE:  runInstallAuthlib,
}

var installDepsCmd = &cobra.Command{
	Use:   "deps [version-id]",
	Short: "Install the libraries and assets of an installed version",
	Long: `Install every library and asset of an installed version.

Without an argument the version of the selected instance is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstallDeps,
}

func init() {
	installCmd.AddCommand(installMinecraftCmd, installForgeCmd, installFabricCmd,
		installLiteloaderCmd, installAuthlibCmd, installDepsCmd)
	rootCmd.AddCommand(installCmd)
}

// withInstallService runs fn with a started service and live progress output.
func withInstallService(cmd *cobra.Command, fn func(ctx context.Context, service *core.Service) error) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	progress := watchProgress(service)
	defer progress.stop(service)
	return fn(ctx, service)
}

func runInstallRuntime(cmd *cobra.Command, rt domain.RuntimeVersions) error {
	return withInstallService(cmd, func(ctx context.Context, service *core.Service) error {
		if rt.Minecraft == "latest" {
			latest, err := service.Installer().LatestRelease(ctx)
			if err != nil {
				return err
			}
			rt.Minecraft = latest
		}

		id, ok, err := service.InstallRuntime(ctx, rt)
		if !ok {
			return errBusy
		}
		if err != nil {
			return fmt.Errorf("installing %s: %w", rt.ExpectedID(), err)
		}
		fmt.Printf("%s Installed %s\n", colorGreen("✓"), id)
		return nil
	})
}

func runInstallAuthlib(cmd *cobra.Command, args []string) error {
	return withInstallService(cmd, func(ctx context.Context, service *core.Service) error {
		path, ok, err := service.InstallAuthlibInjector(ctx)
		if !ok {
			return errBusy
		}
		if err != nil {
			return fmt.Errorf("installing authlib-injector: %w", err)
		}
		fmt.Printf("%s Installed authlib-injector to %s\n", colorGreen("✓"), path)
		return nil
	})
}

func runInstallDeps(cmd *cobra.Command, args []string) error {
	return withInstallService(cmd, func(ctx context.Context, service *core.Service) error {
		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			inst, err := requireInstance(service)
			if err != nil {
				return err
			}
			if id, err = service.Resolver().Resolve(inst.Runtime); err != nil {
				return err
			}
		}

		res, ok, err := service.InstallDependencies(ctx, id)
		if !ok {
			return errBusy
		}
		if res != nil {
			fmt.Printf("Installed: %d, already valid: %d, failed: %d\n", len(res.Installed), len(res.Skipped), len(res.Errors))
			for _, e := range res.Errors {
				fmt.Printf("  %s %s: %v\n", colorRed("✗"), e.Name, e.Err)
			}
		}
		if err != nil {
			return fmt.Errorf("installing dependencies of %s: %w", id, err)
		}
		return nil
	})
}
