package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

var (
	instanceName   string
	instanceSelect bool
	instanceFlags  runtimeFlags
	runtimeEdit    runtimeFlags
)

type instanceJSON struct {
	Name          string                 `json:"name"`
	Path          string                 `json:"path"`
	Runtime       domain.RuntimeVersions `json:"runtime"`
	Java          string                 `json:"java,omitempty"`
	ResourcePacks []string               `json:"resource_packs,omitempty"`
	Server        *domain.ServerAddress  `json:"server,omitempty"`
	Selected      bool                   `json:"selected"`
}

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage game instances",
	Long: `Create, select and edit game instances. An instance is a game directory
with its own runtime composition, Java, resource packs and server.`,
}

var instanceCreateCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create an instance",
	Long: `Create an instance whose game directory is <path>.

Examples:
  lmc instance create ~/games/vanilla --minecraft 1.20.1 --select
  lmc instance create ~/games/modded --minecraft 1.20.1 --forge 47.1.0 --name Modded`,
	Args: cobra.ExactArgs(1),
	RunE: runInstanceCreate,
}

var instanceSelectCmd = &cobra.Command{
	Use:   "select <path>",
	Short: "Select the instance other commands operate on",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceSelect,
}

var instanceDeleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Forget an instance (its game directory is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceDelete,
}

var instanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances",
	Args:  cobra.NoArgs,
	RunE:  runInstanceList,
}

var instanceSetRuntimeCmd = &cobra.Command{
	Use:   "set-runtime",
	Short: "Change the runtime of the selected instance",
	Long: `Replace the runtime composition of the selected instance. The version
check runs again afterwards.

Examples:
  lmc instance set-runtime --minecraft 1.20.1 --fabric 0.14.21
  lmc instance set-runtime --instance ~/games/old --minecraft 1.12.2 --forge 14.23.5.2859`,
	Args: cobra.NoArgs,
	RunE: runInstanceSetRuntime,
}

var instanceSetPacksCmd = &cobra.Command{
	Use:   "set-packs [pack...]",
	Short: "Set the enabled resource packs of the selected instance, in load order",
	Long: `Set the enabled resource packs of the selected instance. Packs are file
names under the shared resourcepacks directory and are deployed into the
instance on launch. Without arguments every pack is disabled.`,
	RunE: runInstanceSetPacks,
}

var instanceSetJavaCmd = &cobra.Command{
	Use:   "set-java [java-path]",
	Short: "Set the Java executable of the selected instance (empty for default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstanceSetJava,
}

var instanceSetServerCmd = &cobra.Command{
	Use:   "set-server [host[:port]]",
	Short: "Set the server the selected instance joins (empty to clear)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstanceSetServer,
}

func init() {
	instanceCreateCmd.Flags().StringVar(&instanceName, "name", "", "display name (default: directory name)")
	instanceCreateCmd.Flags().BoolVar(&instanceSelect, "select", false, "select the instance after creating it")
	instanceFlags.register(instanceCreateCmd)
	runtimeEdit.register(instanceSetRuntimeCmd)

	instanceCmd.AddCommand(instanceCreateCmd, instanceSelectCmd, instanceDeleteCmd, instanceListCmd,
		instanceSetRuntimeCmd, instanceSetPacksCmd, instanceSetJavaCmd, instanceSetServerCmd)
	rootCmd.AddCommand(instanceCmd)
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	return abs, nil
}

func runInstanceCreate(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	inst := domain.Instance{Path: path, Name: instanceName, Runtime: instanceFlags.runtime()}
	if err := service.Instances().Create(inst); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating game directory: %w", err)
	}
	if instanceSelect {
		if err := service.Instances().Select(path); err != nil {
			return err
		}
	}

	fmt.Printf("%s Created instance %s\n", colorGreen("✓"), path)
	if inst.Runtime.Minecraft == "" {
		fmt.Println("No Minecraft version set; 'lmc fix' installs the latest release.")
	}
	return nil
}

func runInstanceSelect(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Instances().Select(path); err != nil {
		return err
	}
	fmt.Printf("%s Selected %s\n", colorGreen("✓"), path)
	return nil
}

func runInstanceDelete(cmd *cobra.Command, args []string) error {
	path, err := absPath(args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Instances().Delete(path); err != nil {
		return err
	}
	fmt.Printf("Removed instance %s\n", path)
	return nil
}

func runtimeLabel(rt domain.RuntimeVersions) string {
	if rt.Minecraft == "" {
		return "latest release"
	}
	return rt.ExpectedID()
}

func runInstanceList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	instances := service.Instances().List()
	selected := service.Config().SelectedInstance

	if jsonOutput {
		out := make([]instanceJSON, 0, len(instances))
		for _, inst := range instances {
			out = append(out, instanceJSON{
				Name:          inst.Name,
				Path:          inst.Path,
				Runtime:       inst.Runtime,
				Java:          inst.Java,
				ResourcePacks: inst.ResourcePacks,
				Server:        inst.Server,
				Selected:      inst.Path == selected,
			})
		}
		return printJSON(out)
	}

	if len(instances) == 0 {
		fmt.Println("No instances configured.")
		fmt.Println("\nUse 'lmc instance create <path> --minecraft <version>' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tNAME\tRUNTIME\tPATH")
	fmt.Fprintln(w, "\t----\t-------\t----")
	for _, inst := range instances {
		mark := ""
		if inst.Path == selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, inst.Name, runtimeLabel(inst.Runtime), truncate(inst.Path, 50))
	}
	w.Flush()
	return nil
}

// editSelected runs fn against the selected instance and waits for the
// checks it triggers.
func editSelected(cmd *cobra.Command, fn func(service *core.Service, inst domain.Instance) error) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	inst, err := requireInstance(service)
	if err != nil {
		return err
	}
	if err := fn(service, inst); err != nil {
		return err
	}
	service.Engine().Wait()
	return nil
}

func runInstanceSetRuntime(cmd *cobra.Command, args []string) error {
	return editSelected(cmd, func(service *core.Service, inst domain.Instance) error {
		rt := runtimeEdit.runtime()
		if err := service.Instances().SetRuntime(inst.Path, rt); err != nil {
			return err
		}
		fmt.Printf("%s %s now runs %s\n", colorGreen("✓"), inst.Name, runtimeLabel(rt))
		return nil
	})
}

func runInstanceSetPacks(cmd *cobra.Command, args []string) error {
	return editSelected(cmd, func(service *core.Service, inst domain.Instance) error {
		if err := service.Instances().SetResourcePacks(inst.Path, args); err != nil {
			return err
		}
		fmt.Printf("%s %d resource pack(s) enabled for %s\n", colorGreen("✓"), len(args), inst.Name)
		return nil
	})
}

func runInstanceSetJava(cmd *cobra.Command, args []string) error {
	return editSelected(cmd, func(service *core.Service, inst domain.Instance) error {
		java := ""
		if len(args) == 1 {
			java = args[0]
		}
		if err := service.Instances().SetJava(inst.Path, java); err != nil {
			return err
		}
		if java == "" {
			java = "default"
		}
		fmt.Printf("%s %s uses java %s\n", colorGreen("✓"), inst.Name, java)
		return nil
	})
}

// parseServerAddress accepts host or host:port.
func parseServerAddress(s string) (*domain.ServerAddress, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return &domain.ServerAddress{Host: s}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %q", portStr)
	}
	return &domain.ServerAddress{Host: host, Port: port}, nil
}

func runInstanceSetServer(cmd *cobra.Command, args []string) error {
	return editSelected(cmd, func(service *core.Service, inst domain.Instance) error {
		var addr *domain.ServerAddress
		if len(args) == 1 {
			var err error
			if addr, err = parseServerAddress(args[0]); err != nil {
				return err
			}
		}
		if err := service.Instances().SetServer(inst.Path, addr); err != nil {
			return err
		}
		if addr == nil {
			fmt.Printf("Cleared server of %s\n", inst.Name)
			return nil
		}
		fmt.Printf("%s %s joins %s\n", colorGreen("✓"), inst.Name, addr)
		return nil
	})
}
