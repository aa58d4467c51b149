package main

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive issue and install view",
	Long: `Open a terminal UI showing the selected instance's issues, running
installs with their progress, and the configured instances.

Keys: 1/2/3 switch views, f fixes all autofixable issues, enter fixes the
highlighted issue, r diagnoses again, x cancels running installs, ? for help.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	// log records would tear the alternate screen
	if !verbose {
		ctx = ctxlog.WithLogger(ctx, ctxlog.Discard())
	}
	return tui.Run(ctx, service)
}
