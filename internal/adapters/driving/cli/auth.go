package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/gtasks-cli/internal/connectors/google"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage OAuth client credentials",
	Long: `Configure and validate the OAuth application used for all accounts.

One OAuth client (created in the Google Cloud console, with the Tasks API
enabled) serves every connected account. The client secret is stored in
the local config file; per-account tokens are stored encrypted.

Examples:
  # Interactive setup
  gtasks auth setup

  # Non-interactive
  gtasks auth setup --client-id "xxx" --client-secret "yyy"

  # Check every connected account against the live API
  gtasks auth validate`,
}

var authSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Store OAuth client credentials",
	Long: `Store the OAuth client used for all accounts, then connect the
first account unless --skip-auth is given.`,
	RunE: runAuthSetup,
}

var authValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Test connectivity for connected accounts",
	RunE:  runAuthValidate,
}

// Flags for auth commands.
var (
	authClientID     string
	authClientSecret string
	authRedirectURI  string
	authSkipAuth     bool
	authAccount      string
)

func init() {
	authSetupCmd.Flags().StringVar(&authClientID, "client-id", "", "OAuth client ID")
	authSetupCmd.Flags().StringVar(&authClientSecret, "client-secret", "", "OAuth client secret")
	authSetupCmd.Flags().StringVar(&authRedirectURI, "redirect-uri", "",
		"OAuth redirect URI (default "+domain.DefaultRedirectURI+")")
	authSetupCmd.Flags().BoolVar(&authSkipAuth, "skip-auth", false,
		"Store credentials without connecting an account")
	authValidateCmd.Flags().StringVarP(&authAccount, "account", "a", "", "Validate a single account")

	authCmd.AddCommand(authSetupCmd)
	authCmd.AddCommand(authValidateCmd)
	rootCmd.AddCommand(authCmd)
}

//nolint:errcheck // CLI interactive flow
func runAuthSetup(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	clientID := authClientID
	if clientID == "" {
		cmd.Print("Client ID: ")
		input, _ := reader.ReadString('\n')
		clientID = strings.TrimSpace(input)
	}
	if clientID == "" {
		return errors.New("client ID is required")
	}

	clientSecret := authClientSecret
	if clientSecret == "" {
		cmd.Print("Client Secret: ")
		clientSecret = readSecret(reader)
		cmd.Println()
	}
	if clientSecret == "" {
		return errors.New("client secret is required")
	}

	client := domain.OAuthClient{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  authRedirectURI,
	}
	if err := configStore.SetOAuthClient(client); err != nil {
		return fmt.Errorf("store OAuth client: %w", err)
	}

	cmd.Println("OAuth client configured.")
	if authSkipAuth {
		cmd.Println("Connect an account with: gtasks accounts add")
		return nil
	}

	// The provider wired in initServices predates the stored client.
	oauthProvider = google.NewProvider(client)
	return runAccountsAdd(cmd, nil)
}

// readSecret reads a line without echoing when stdin is a terminal.
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func runAuthValidate(cmd *cobra.Command, _ []string) error {
	if accountService == nil || credentialService == nil {
		return errors.New("services not configured")
	}

	var accounts []domain.Account
	if authAccount != "" {
		account, err := accountService.Get(authAccount)
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

	format, err := resolveFormat()
	if err != nil {
		return err
	}

	type result struct {
		Account string `json:"account"`
		OK      bool   `json:"ok"`
		Error   string `json:"error,omitempty"`
	}

	results := make([]result, 0, len(accounts))
	failed := false
	for _, account := range accounts {
		res := result{Account: account.Email, OK: true}
		if err := credentialService.TestConnectivity(cmd.Context(), account.Email); err != nil {
			res.OK = false
			res.Error = friendlyError(err, account.Email).Error()
			failed = true
		}
		results = append(results, res)
	}

	switch format {
	case FormatJSON:
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	default:
		rows := make([][]string, 0, len(results))
		for _, res := range results {
			state := statusStyles[domain.StatusActive].Render("ok")
			if !res.OK {
				state = statusStyles[domain.StatusError].Render("failed")
			}
			rows = append(rows, []string{res.Account, state, res.Error})
		}
		renderTable(cmd, []string{"ACCOUNT", "CONNECTIVITY", "DETAIL"}, rows)
	}

	if failed {
		return errors.New("one or more accounts failed validation")
	}
	return nil
}
