package main

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Query Minecraft servers",
}

var serverPingCmd = &cobra.Command{
	Use:   "ping [host[:port]]",
	Short: "Ping a server and record its version and mod list",
	Long: `Ping a server with the status protocol and record the reported version and
Forge mod list. Without an argument the selected instance's server is pinged,
and the server check runs again with the new mod list.

Examples:
  lmc server ping
  lmc server ping mc.example.com:25565`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServerPing,
}

func init() {
	serverCmd.AddCommand(serverPingCmd)
	rootCmd.AddCommand(serverCmd)
}

func runServerPing(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	var addr *domain.ServerAddress
	if len(args) == 1 {
		if addr, err = parseServerAddress(args[0]); err != nil {
			return err
		}
	} else {
		inst, err := requireInstance(service)
		if err != nil {
			return err
		}
		if inst.Server == nil {
			return fmt.Errorf("instance %s has no server; use 'lmc instance set-server <host[:port]>'", inst.Name)
		}
		addr = inst.Server
	}

	status, err := service.Servers().Refresh(ctx, *addr)
	if err != nil {
		return fmt.Errorf("pinging %s: %w", addr, err)
	}
	service.Engine().Wait()

	if jsonOutput {
		return printJSON(status)
	}
	fmt.Printf("Server: %s\n", status.Address)
	fmt.Printf("  Version: %s (protocol %d)\n", status.Version, status.Protocol)
	if len(status.Mods) == 0 {
		return nil
	}
	fmt.Printf("  Mods (%d):\n", len(status.Mods))
	for _, m := range status.Mods {
		fmt.Printf("    - %s %s\n", m.ModID, m.Version)
	}
	return nil
}
