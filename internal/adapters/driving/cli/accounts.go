package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gtasks-cli/internal/adapters/driving/oauth"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage connected Google accounts",
	Long: `Connect, inspect, and remove Google accounts.

Each account's OAuth tokens are stored encrypted. One account is the
default: commands that do not name an account with --account use it.

Examples:
  gtasks accounts add                      # connect via browser
  gtasks accounts list
  gtasks accounts status
  gtasks accounts default alice@gmail.com
  gtasks accounts remove alice@gmail.com`,
	RunE: runAccountsList,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected accounts",
	RunE:  runAccountsList,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Connect a Google account via browser authorization",
	RunE:  runAccountsAdd,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove [email]",
	Short: "Disconnect an account and revoke its tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsRemove,
}

var accountsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Test connectivity and show account status",
	RunE:  runAccountsStatus,
}

var accountsDefaultCmd = &cobra.Command{
	Use:   "default [email]",
	Short: "Show or set the default account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAccountsDefault,
}

var accountsStatusAccount string

func init() {
	accountsStatusCmd.Flags().StringVarP(&accountsStatusAccount, "account", "a", "", "Check a single account")

	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	accountsCmd.AddCommand(accountsStatusCmd)
	accountsCmd.AddCommand(accountsDefaultCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	accounts, err := accountService.List()
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return err
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts connected.")
		cmd.Println("Connect one with: gtasks accounts add")
		return nil
	}

	def, err := accountService.Default()
	if err != nil {
		return err
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		type entry struct {
			domain.Account
			Default bool `json:"default"`
		}
		out := make([]entry, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, entry{Account: a, Default: def != nil && a.EmailEquals(def.Email)})
		}
		return printJSON(cmd, out)
	case FormatMinimal:
		for _, a := range accounts {
			cmd.Println(a.Email)
		}
		return nil
	default:
		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			marker := ""
			if def != nil && a.EmailEquals(def.Email) {
				marker = "*"
			}
			rows = append(rows, []string{
				marker, a.Email, a.DisplayName, renderStatus(a.Status),
				formatDate(a.AddedAt), formatDateTime(a.LastUsed),
			})
		}
		renderTable(cmd, []string{"", "ACCOUNT", "NAME", "STATUS", "ADDED", "LAST USED"}, rows)
		return nil
	}
}

func runAccountsAdd(cmd *cobra.Command, _ []string) error {
	if credentialService == nil || oauthProvider == nil {
		return errors.New("services not configured")
	}

	client, err := requireOAuthClient()
	if err != nil {
		return err
	}
	state := oauth.GenerateState()
	server, redirect, err := startCallbackServer(client, state)
	if err != nil {
		return err
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn("stop callback server: %v", err)
		}
	}()

	authURL := oauthProvider.AuthCodeURL(state, redirect)
	cmd.Println("Opening your browser to authorize access...")
	cmd.Println("If it does not open, visit:")
	cmd.Println()
	cmd.Println("  " + authURL)
	cmd.Println()
	if err := oauth.OpenBrowser(authURL); err != nil {
		logger.Debug("open browser: %v", err)
	}

	code, err := server.WaitForCode(oauth.AuthTimeout)
	if err != nil {
		return fmt.Errorf("authorization: %w", err)
	}

	ctx := cmd.Context()
	cred, err := oauthProvider.Exchange(ctx, code, redirect)
	if err != nil {
		return err
	}

	identity, err := oauthProvider.FetchIdentity(ctx, cred.AccessToken)
	if err != nil {
		return fmt.Errorf("resolve account identity: %w", err)
	}

	if err := credentialService.StoreNewCredential(ctx, identity.Email, identity.Name, *cred); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	cmd.Printf("Connected %s", identity.Email)
	if identity.Name != "" {
		cmd.Printf(" (%s)", identity.Name)
	}
	cmd.Println()
	return nil
}

// startCallbackServer binds the loopback listener for the OAuth redirect.
// Google's installed-app flow accepts any localhost port, so when the client
// uses the default redirect and its port is taken, the listener moves to a
// nearby free one. A client with a pinned redirect URI is never rebound.
func startCallbackServer(client domain.OAuthClient, state string) (*oauth.CallbackServer, string, error) {
	redirect := client.Redirect()
	port, err := callbackPort(redirect)
	if err != nil {
		return nil, "", err
	}

	server := oauth.NewCallbackServer(port, state)
	startErr := server.Start()
	if startErr == nil {
		return server, redirect, nil
	}
	if client.RedirectURI != "" {
		return nil, "", fmt.Errorf("start callback server: %w", startErr)
	}

	fallback, err := oauth.FindAvailablePort(port+1, port+100)
	if err != nil {
		return nil, "", fmt.Errorf("start callback server: %w", startErr)
	}
	server = oauth.NewCallbackServer(fallback, state)
	if err := server.Start(); err != nil {
		return nil, "", fmt.Errorf("start callback server: %w", err)
	}
	logger.Debug("port %d busy, callback listening on %d", port, fallback)
	return server, server.RedirectURI(), nil
}

// callbackPort extracts the local port from the redirect URI and verifies
// the path matches what the callback server serves.
func callbackPort(redirect string) (int, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return 0, fmt.Errorf("parse redirect URI: %w", err)
	}
	if u.Path != oauth.CallbackPath {
		return 0, fmt.Errorf("redirect URI path must be %s, got %s", oauth.CallbackPath, u.Path)
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("parse redirect URI port: %w", err)
		}
		return port, nil
	}
	if u.Scheme == "https" {
		return 443, nil
	}
	return 80, nil
}

func runAccountsRemove(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	email := args[0]
	removed, err := accountService.Remove(cmd.Context(), email)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	if !removed {
		cmd.Printf("No account %s found.\n", email)
		return nil
	}
	cmd.Printf("Removed %s\n", email)
	return nil
}

func runAccountsStatus(cmd *cobra.Command, _ []string) error {
	if accountService == nil || credentialService == nil {
		return errors.New("services not configured")
	}

	var accounts []domain.Account
	if accountsStatusAccount != "" {
		account, err := accountService.Get(accountsStatusAccount)
		if err != nil {
			return err
		}
		accounts = []domain.Account{*account}
	} else {
		var err error
		accounts, err = accountService.List()
		if err != nil {
			return err
		}
	}
	if len(accounts) == 0 {
		cmd.Println("No accounts connected.")
		return nil
	}

	ctx := cmd.Context()
	for i := range accounts {
		if err := credentialService.TestConnectivity(ctx, accounts[i].Email); err != nil {
			logger.Debug("connectivity check for %s: %v", accounts[i].Email, err)
		}
		// Re-read to pick up the status transition the check recorded.
		if refreshed, err := accountService.Get(accounts[i].Email); err == nil {
			accounts[i] = *refreshed
		}
	}

	format, err := resolveFormat()
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return printJSON(cmd, accounts)
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.Email, renderStatus(a.Status), formatDateTime(a.Tokens.Expiry())})
	}
	renderTable(cmd, []string{"ACCOUNT", "STATUS", "TOKEN EXPIRES"}, rows)
	return nil
}

func runAccountsDefault(cmd *cobra.Command, args []string) error {
	if accountService == nil {
		return errors.New("account service not configured")
	}

	if len(args) == 0 {
		def, err := accountService.Default()
		if err != nil {
			return err
		}
		if def == nil {
			cmd.Println("No default account.")
			return nil
		}
		cmd.Println(def.Email)
		return nil
	}

	if err := accountService.SetDefault(args[0]); err != nil {
		return err
	}
	cmd.Printf("Default account set to %s\n", args[0])
	return nil
}
