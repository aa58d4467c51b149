package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/spf13/cobra"
)

var (
	accountAuthServer string
	accountUUID       string
	accountToken      string
	accountSelect     bool
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage player accounts",
	Long: `Add and select the account games are launched with. Without a selected
account the game starts offline as "Player".

Accounts of a third-party authentication server (--auth-server) launch with
authlib-injector, which 'lmc fix' installs when it is missing.`,
}

var accountAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add an account",
	Long: `Add an account. Without --auth-server the account is offline and its
uuid is derived from the username.

Examples:
  lmc account add Steve --select
  lmc account add alex --auth-server https://littleskin.cn/api/yggdrasil --uuid <uuid> --token <token>`,
	Args: cobra.ExactArgs(1),
	RunE: runAccountAdd,
}

var accountSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Select the account games launch with",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountSelect,
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountRemove,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

func init() {
	accountAddCmd.Flags().StringVar(&accountAuthServer, "auth-server", "", "third-party authentication server URL (default: offline)")
	accountAddCmd.Flags().StringVar(&accountUUID, "uuid", "", "player uuid issued by the auth server")
	accountAddCmd.Flags().StringVar(&accountToken, "token", "", "access token issued by the auth server")
	accountAddCmd.Flags().BoolVar(&accountSelect, "select", false, "select the account after adding it")

	accountCmd.AddCommand(accountAddCmd, accountSelectCmd, accountRemoveCmd, accountListCmd)
	rootCmd.AddCommand(accountCmd)
}

// newAccount builds the account described by the add flags.
func newAccount(username string) (domain.Account, error) {
	if accountAuthServer == "" {
		return core.OfflineAccount(username), nil
	}
	if !strings.HasPrefix(accountAuthServer, "https://") && !strings.HasPrefix(accountAuthServer, "http://") {
		return domain.Account{}, fmt.Errorf("auth server must be an http(s) URL: %s", accountAuthServer)
	}
	if accountUUID == "" {
		return domain.Account{}, fmt.Errorf("--uuid is required with --auth-server")
	}
	return domain.Account{
		ID:          strings.ToLower(username) + "@" + strings.TrimPrefix(strings.TrimPrefix(accountAuthServer, "https://"), "http://"),
		Username:    username,
		UUID:        accountUUID,
		AuthService: accountAuthServer,
		AccessToken: accountToken,
	}, nil
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	acc, err := newAccount(args[0])
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Accounts().Put(acc); err != nil {
		return err
	}
	if accountSelect {
		if err := service.Accounts().Select(acc.ID); err != nil {
			return err
		}
		service.Engine().Wait()
	}
	fmt.Printf("%s Added account %s (%s)\n", colorGreen("✓"), acc.ID, acc.AuthService)
	return nil
}

func runAccountSelect(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Accounts().Select(args[0]); err != nil {
		return err
	}
	service.Engine().Wait()
	fmt.Printf("%s Selected account %s\n", colorGreen("✓"), args[0])
	return nil
}

func runAccountRemove(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	if err := service.Accounts().Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed account %s\n", args[0])
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	service, err := initService(ctx)
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	accounts := service.Accounts().List()
	if len(accounts) == 0 {
		fmt.Println("No accounts configured; games launch offline as " + core.DefaultPlayerName + ".")
		return nil
	}

	selected, _ := service.Accounts().SelectedAccount()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tUSERNAME\tSERVICE\tUUID")
	fmt.Fprintln(w, "\t--\t--------\t-------\t----")
	for _, a := range accounts {
		mark := ""
		if a.ID == selected.ID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, a.ID, a.Username, truncate(a.AuthService, 40), a.UUID)
	}
	w.Flush()
	return nil
}
