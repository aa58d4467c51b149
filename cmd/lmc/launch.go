package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

var launchDryRun bool

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the selected instance",
	Long: `Launch the selected instance. Blocking issues that can be fixed
automatically are repaired first; the launch is refused when blocking issues
remain. Enabled resource packs are deployed into the instance before start.

Examples:
  lmc launch
  lmc launch --dry-run
  lmc launch --instance ~/games/survival`,
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().BoolVar(&launchDryRun, "dry-run", false, "prepare and print the java command without starting the game")
	rootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if _, err := requireInstance(service); err != nil {
		return err
	}

	progress := watchProgress(service)
	if !launchDryRun {
		game, plan, err := service.Launch(ctx, os.Stdout, os.Stderr)
		progress.stop(service)
		if err != nil {
			return launchError(err)
		}
		fmt.Printf("%s Started %s (%s)\n", colorGreen("✓"), plan.Instance.Name, plan.Version)
		return game.Wait()
	}

	plan, err := service.PrepareLaunch(ctx)
	progress.stop(service)
	if err != nil {
		return launchError(err)
	}

	command := plan.Spec.Command(plan.Java)
	if jsonOutput {
		return printJSON(map[string]any{
			"instance": plan.Instance.Path,
			"version":  plan.Version,
			"java":     plan.Java,
			"command":  command,
		})
	}
	fmt.Println(strings.Join(command, " "))
	return nil
}

// launchError lists the blocking issues of a refused launch on stderr.
func launchError(err error) error {
	var blocked *domain.BlockedByIssuesError
	if errors.As(err, &blocked) && !jsonOutput {
		fmt.Fprintln(os.Stderr, colorRed("Launch blocked by:"))
		for _, is := range blocked.Issues {
			fmt.Fprintf(os.Stderr, "  %s %s\n", colorRed("●"), is.Summary())
		}
	}
	return err
}
