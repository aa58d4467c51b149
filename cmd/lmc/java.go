package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "Discover and list Java runtimes",
}

var javaScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe Java executables and record them",
	Long: `Probe the configured java_paths, $JAVA_HOME, every java on $PATH and the
runtimes under /usr/lib/jvm, and record their version and architecture.`,
	Args: cobra.NoArgs,
	RunE: runJavaScan,
}

var javaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded Java runtimes",
	Args:  cobra.NoArgs,
	RunE:  runJavaList,
}

func init() {
	javaCmd.AddCommand(javaScanCmd, javaListCmd)
	rootCmd.AddCommand(javaCmd)
}

func runJavaScan(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	javas, err := service.Javas().Scan(ctx)
	if err != nil {
		return fmt.Errorf("scanning java: %w", err)
	}
	service.Engine().Wait()
	return printJavas(javas)
}

func runJavaList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	javas, err := service.Javas().Javas(ctx)
	if err != nil {
		return fmt.Errorf("listing java: %w", err)
	}
	return printJavas(javas)
}

func printJavas(javas []domain.JavaRecord) error {
	if jsonOutput {
		if javas == nil {
			javas = []domain.JavaRecord{}
		}
		return printJSON(javas)
	}
	if len(javas) == 0 {
		fmt.Println("No Java runtimes found.")
		fmt.Println("\nInstall a JDK or add its path to java_paths in config.yaml, then run 'lmc java scan'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tMAJOR\tARCH\tVALID\tPATH")
	fmt.Fprintln(w, "-------\t-----\t----\t-----\t----")
	for _, j := range javas {
		valid := colorGreen("yes")
		if !j.Valid {
			valid = colorRed("no")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", j.Version, j.Major, j.Arch, valid, j.Path)
	}
	w.Flush()
	return nil
}
