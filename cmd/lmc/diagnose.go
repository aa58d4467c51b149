package main

import (
	"fmt"

	"github.com/DonovanMods/linux-mc-launcher/internal/diagnose"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

type diagnoseJSONOutput struct {
	Instance string         `json:"instance"`
	Issues   []domain.Issue `json:"issues"`
	Blocking int            `json:"blocking"`
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [category...]",
	Short: "Check the selected instance for problems",
	Long: `Check the selected instance and list every issue found.

Categories: version, java, mods, resourcePacks, user, server.
Without arguments every category is checked.

Examples:
  lmc diagnose
  lmc diagnose version java
  lmc diagnose --json`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
}

func parseCategories(args []string) ([]diagnose.Category, error) {
	var cats []diagnose.Category
	for _, a := range args {
		c, err := diagnose.ParseCategory(a)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	cats, err := parseCategories(args)
	if err != nil {
		return err
	}

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

	report, err := service.Diagnose(ctx, cats...)
	if err != nil {
		return fmt.Errorf("diagnosing: %w", err)
	}
	issues := report.Active()
	if len(cats) > 0 {
		var kinds []domain.IssueKind
		for _, c := range cats {
			kinds = append(kinds, diagnose.Owned(c)...)
		}
		issues = report.Of(kinds...)
	}

	if jsonOutput {
		return printJSON(diagnoseJSONOutput{
			Instance: inst.Path,
			Issues:   nonNil(issues),
			Blocking: countBlocking(issues),
		})
	}

	fmt.Printf("Instance: %s (%s)\n\n", inst.Name, inst.Path)
	printIssues(issues)
	return nil
}

func nonNil(issues []domain.Issue) []domain.Issue {
	if issues == nil {
		return []domain.Issue{}
	}
	return issues
}

func countBlocking(issues []domain.Issue) int {
	n := 0
	for _, is := range issues {
		if is.Blocking() {
			n++
		}
	}
	return n
}

// printIssues lists issues one per line, blocking ones first marked red.
func printIssues(issues []domain.Issue) {
	if len(issues) == 0 {
		fmt.Println(colorGreen("✓") + " No issues found. Ready to launch.")
		return
	}
	for _, is := range issues {
		marker := colorYellow("○")
		if is.Blocking() {
			marker = colorRed("●")
		}
		tag := ""
		if is.AutoFix {
			tag = " [autofix]"
		}
		fmt.Printf("  %s %s%s\n", marker, is.Summary(), tag)
	}
	fmt.Printf("\n%d issue(s), %d blocking\n", len(issues), countBlocking(issues))
	for _, is := range issues {
		if is.AutoFix {
			fmt.Println("\nRun 'lmc fix' to repair autofixable issues.")
			break
		}
	}
}
