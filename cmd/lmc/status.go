package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/db"

	"github.com/spf13/cobra"
)

var statusLimit int

type statusJSONOutput struct {
	Root     string           `json:"root"`
	Instance string           `json:"instance,omitempty"`
	Runtime  string           `json:"runtime,omitempty"`
	Account  string           `json:"account"`
	Java     string           `json:"java,omitempty"`
	Versions int              `json:"versions"`
	Database string           `json:"database"`
	Installs []installHistory `json:"installs"`
}

type installHistory struct {
	Operation  string `json:"operation"`
	Target     string `json:"target"`
	State      string `json:"state"`
	Error      string `json:"error,omitempty"`
	FinishedAt string `json:"finished_at"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current status",
	Long: `Show the selected instance, account and Java runtime, the number of
installed versions and the latest install operations.

Examples:
  lmc status
  lmc status --limit 20`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "number of recent installs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := statusJSONOutput{
		Root:     service.Folder().Root,
		Account:  core.DefaultPlayerName + " (offline)",
		Versions: len(service.Resolver().Locals()),
		Database: service.DB().Path(),
	}
	if inst, err := service.Instances().Selected(); err == nil {
		out.Instance = inst.Path
		out.Runtime = runtimeLabel(inst.Runtime)
		out.Java = inst.Java
	}
	if acc, ok := service.Accounts().SelectedAccount(); ok {
		out.Account = fmt.Sprintf("%s (%s)", acc.Username, acc.AuthService)
	}
	if out.Java == "" {
		if rec, ok, err := service.Javas().Default(ctx); err == nil && ok {
			out.Java = rec.Path
		}
	}

	history, err := service.DB().RecentInstalls(statusLimit)
	if err != nil {
		return fmt.Errorf("reading install history: %w", err)
	}
	out.Installs = historyOutput(history)

	if jsonOutput {
		return printJSON(out)
	}

	fmt.Printf("Minecraft root: %s\n", out.Root)
	if out.Instance == "" {
		fmt.Println("Instance: none selected")
	} else {
		fmt.Printf("Instance: %s\n", out.Instance)
		fmt.Printf("  Runtime: %s\n", out.Runtime)
	}
	fmt.Printf("Account: %s\n", out.Account)
	if out.Java == "" {
		fmt.Printf("Java: %s\n", colorYellow("none found (run 'lmc java scan')"))
	} else {
		fmt.Printf("Java: %s\n", out.Java)
	}
	fmt.Printf("Installed versions: %d\n", out.Versions)
	fmt.Printf("Database: %s\n", out.Database)

	if len(out.Installs) == 0 {
		return nil
	}
	fmt.Println("\nRecent installs:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tOPERATION\tTARGET\tSTATE")
	fmt.Fprintln(w, "--------\t---------\t------\t-----")
	for _, h := range out.Installs {
		state := colorGreen(h.State)
		if h.Error != "" {
			state = colorRed(h.State) + ": " + truncate(h.Error, 60)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.FinishedAt, h.Operation, truncate(h.Target, 40), state)
	}
	w.Flush()
	return nil
}

func historyOutput(entries []db.HistoryEntry) []installHistory {
	out := make([]installHistory, 0, len(entries))
	for _, e := range entries {
		out = append(out, installHistory{
			Operation:  e.Operation,
			Target:     e.Target,
			State:      e.State,
			Error:      e.Error,
			FinishedAt: e.FinishedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return out
}
