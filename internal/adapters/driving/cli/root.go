// Package cli implements the gtasks command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gtasks-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gtasks-cli/internal/adapters/driven/crypto"
	"github.com/custodia-labs/gtasks-cli/internal/connectors/google"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/core/services"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by the commands. Wired in initServices; tests inject fakes
// directly.
var (
	configStore       driven.ConfigStore
	oauthProvider     driven.OAuthProvider
	taskAPI           driven.TaskAPI
	credentialService driving.CredentialService
	accountService    driving.AccountService
	aggregateService  driving.AggregateService
)

// Persistent flags.
var (
	flagVerbose   bool
	flagConfigDir string
	flagFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "gtasks",
	Short: "Manage Google Tasks across multiple accounts",
	Long: `gtasks is a command-line client for Google Tasks with support for
multiple Google accounts.

Connected accounts are stored locally with their OAuth tokens encrypted
at rest. Tokens are refreshed automatically before they expire, so
commands always run with valid credentials.

Get started:
  gtasks auth setup          # store your OAuth client credentials
  gtasks accounts add        # connect a Google account
  gtasks tasks list          # list your tasks`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "Config directory (default ~/.gtasks)")
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "", "Output format: table, json, minimal")
}

// initServices wires the adapters and services. Already-set services are
// left alone so tests can inject fakes.
func initServices() error {
	if configStore == nil {
		store, err := file.NewConfigStore(flagConfigDir)
		if err != nil {
			return fmt.Errorf("open config store: %w", err)
		}
		configStore = store
	}

	if credentialService == nil {
		cipher, err := crypto.NewTokenCipher(crypto.NewFileKeyStore(keyDir()))
		if err != nil {
			return fmt.Errorf("init token cipher: %w", err)
		}

		// The OAuth client may not be configured yet; commands that need
		// it surface domain.ErrOAuthNotConfigured themselves.
		client := loadOAuthClient()
		oauthProvider = google.NewProvider(client)

		creds := services.NewCredentialsService(configStore, cipher, oauthProvider, google.NewResourceClient())
		credentialService = creds
		accountService = services.NewAccountsService(configStore, cipher, oauthProvider)
	}

	if taskAPI == nil {
		taskAPI = google.NewTasksAPI(credentialService)
	}
	if aggregateService == nil {
		aggregateService = services.NewAggregateService(configStore, taskAPI)
	}
	return nil
}

// keyDir returns the directory holding the encryption key. It lives next
// to the config file.
func keyDir() string {
	if flagConfigDir != "" {
		return flagConfigDir
	}
	if path := os.Getenv(file.EnvConfigPath); path != "" {
		return filepath.Dir(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gtasks"
	}
	return filepath.Join(home, ".gtasks")
}

// loadOAuthClient returns the stored OAuth application credentials, or a
// zero client when none are configured yet.
func loadOAuthClient() domain.OAuthClient {
	client, err := configStore.OAuthClient()
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			logger.Warn("load oauth client: %v", err)
		}
		return domain.OAuthClient{}
	}
	return *client
}

// requireOAuthClient returns the stored OAuth client, failing with setup
// guidance when it is missing.
func requireOAuthClient() (domain.OAuthClient, error) {
	client := loadOAuthClient()
	if !client.Configured() {
		return domain.OAuthClient{}, fmt.Errorf("%w: run 'gtasks auth setup' first", domain.ErrOAuthNotConfigured)
	}
	return client, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
