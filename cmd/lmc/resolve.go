package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveFlags runtimeFlags

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find the installed version that launches a runtime",
	Long: `Resolve a runtime composition against the installed versions and print the
version id that launches it. When both Forge and LiteLoader are requested and
only separate installs exist, a combined version is written.

Without component flags the selected instance's runtime is resolved.

Examples:
  lmc resolve
  lmc resolve --minecraft 1.12.2 --forge 14.23.5.2859
  lmc resolve --minecraft 1.12.2 --forge 14.23.5.2859 --liteloader 1.12.2-SNAPSHOT`,
	RunE: runResolve,
}

func init() {
	resolveFlags.register(resolveCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	rt := resolveFlags.runtime()
	if rt.IsZero() {
		inst, err := requireInstance(service)
		if err != nil {
			return err
		}
		rt = inst.Runtime
	}
	id, err := service.Resolver().Resolve(rt)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]string{"id": id, "expected": rt.ExpectedID()})
	}
	fmt.Println(id)
	return nil
}
