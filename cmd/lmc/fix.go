package main

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

type fixJSONOutput struct {
	Ran       []string       `json:"ran"`
	Failures  []fixFailure   `json:"failures"`
	Rechecked []string       `json:"rechecked"`
	Unhandled []string       `json:"unhandled,omitempty"`
	Noop      bool           `json:"noop"`
	Remaining []domain.Issue `json:"remaining"`
}

type fixFailure struct {
	Fix   string             `json:"fix"`
	Kinds []domain.IssueKind `json:"kinds"`
	Error string             `json:"error"`
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair autofixable issues of the selected instance",
	Long: `Diagnose the selected instance and run the registered fix for every
autofixable issue: install missing versions, re-download missing or corrupted
files, discover Java and install authlib-injector. Affected checks run again
afterwards and the remaining issues are listed.

Examples:
  lmc fix
  lmc fix --instance ~/games/survival`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
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
	out, err := service.Fix(ctx)
	progress.stop(service)
	if err != nil {
		return fmt.Errorf("fixing: %w", err)
	}
	remaining := service.Engine().Issues()

	if jsonOutput {
		return printJSON(fixOutput(out, remaining))
	}

	printOutcome(out)
	fmt.Println()
	printIssues(remaining)
	return nil
}

func fixOutput(out diagnose.FixOutcome, remaining []domain.Issue) fixJSONOutput {
	res := fixJSONOutput{
		Ran:       append([]string{}, out.Ran...),
		Failures:  []fixFailure{},
		Rechecked: []string{},
		Noop:      out.Noop,
		Remaining: nonNil(remaining),
	}
	for _, f := range out.Failures {
		res.Failures = append(res.Failures, fixFailure{Fix: f.Fix, Kinds: f.Kinds, Error: f.Err.Error()})
	}
	for _, c := range out.Rechecked {
		res.Rechecked = append(res.Rechecked, string(c))
	}
	for _, k := range out.Unhandled {
		res.Unhandled = append(res.Unhandled, string(k))
	}
	return res
}

func printOutcome(out diagnose.FixOutcome) {
	if out.Noop {
		fmt.Println("Nothing to fix.")
		return
	}
	failed := make(map[string]error, len(out.Failures))
	for _, f := range out.Failures {
		failed[f.Fix] = f.Err
	}
	for _, name := range out.Ran {
		if err, ok := failed[name]; ok {
			fmt.Printf("  %s %s: %v\n", colorRed("✗"), name, err)
			continue
		}
		fmt.Printf("  %s %s\n", colorGreen("✓"), name)
	}
	for _, k := range out.Unhandled {
		fmt.Printf("  %s %s: no fix available\n", colorYellow("!"), k)
	}
}
