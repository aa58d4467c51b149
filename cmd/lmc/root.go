package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/storage/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user cancels an operation (e.g. Ctrl-C during an install).
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir    string
	dataDir      string
	instancePath string
	verbose      bool
	jsonOutput   bool
	noColor      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lmc",
	Short: "Linux Minecraft Launcher - diagnose, repair and launch Minecraft instances",
	Long: `lmc is a terminal Minecraft launcher for Linux. It checks the selected
instance for missing or corrupted files, incompatible Java runtimes and
mod problems, repairs what it can, and launches the game.

Use subcommands for operations. Run 'lmc --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory or config.yaml path (default: ~/.config/lmc)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/lmc)")
	rootCmd.PersistentFlags().StringVarP(&instancePath, "instance", "i", "", "instance path to operate on (default: selected instance)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (diagnose, fix, resolve, instance list, java list, status)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
// NO_COLOR: if set (any value), color is disabled per https://no-color.org
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorize(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return code + s + ansiReset
}

// colorGreen returns s with green ANSI when color is enabled, otherwise s.
func colorGreen(s string) string { return colorize(ansiGreen, s) }

// colorRed returns s with red ANSI when color is enabled, otherwise s.
func colorRed(s string) string { return colorize(ansiRed, s) }

// colorYellow returns s with yellow ANSI when color is enabled, otherwise s.
func colorYellow(s string) string { return colorize(ansiYellow, s) }

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
// Cancellation (ErrCancelled) exits with code 2 without printing JSON, since it is a user action, not an error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newLogger returns the stderr logger; --verbose enables debug records.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// commandContext returns the command's context carrying the CLI logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxlog.WithLogger(ctx, newLogger())
}

// loadEnv reads LMC_* overrides from .env in the working directory and the
// config directory. Variables already set in the environment win.
func loadEnv(cfgDir string) error {
	for _, path := range []string{".env", filepath.Join(cfgDir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// initService creates the core service, scans installed versions and applies
// --instance.
func initService(ctx context.Context) (*core.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}
	if err := loadEnv(cfg.ConfigDir); err != nil {
		return nil, err
	}

	svc, err := core.NewService(cfg)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("starting service: %w", err)
	}

	if instancePath != "" {
		path, err := filepath.Abs(instancePath)
		if err != nil {
			svc.Close()
			return nil, err
		}
		if cur, err := svc.Instances().Selected(); err != nil || cur.Path != path {
			if err := svc.Instances().Select(path); err != nil {
				svc.Close()
				return nil, fmt.Errorf("selecting instance %s: %w", path, err)
			}
			svc.Engine().Wait()
		}
	}

	return svc, nil
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (core.ServiceConfig, error) {
	cfgDir, err := config.ResolveConfigDir(configDir)
	if err != nil {
		return core.ServiceConfig{}, fmt.Errorf("config directory: %w", err)
	}

	cfg := core.ServiceConfig{
		ConfigDir: cfgDir,
		DataDir:   dataDir,
	}

	if cfg.DataDir == "" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			cfg.DataDir = filepath.Join(xdg, "lmc")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return core.ServiceConfig{}, fmt.Errorf("home directory: %w", err)
			}
			cfg.DataDir = filepath.Join(homeDir, ".local", "share", "lmc")
		}
	}
	cfg.CacheDir = filepath.Join(cfg.DataDir, "cache")

	return cfg, nil
}
