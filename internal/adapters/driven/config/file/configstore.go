package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "GTASKS_CONFIG_PATH"

const configFileName = "config.json"

// ConfigStore is a JSON file-based implementation of driven.ConfigStore.
// Nothing is cached between calls: every operation reloads from disk, so
// concurrent processes always observe the latest committed state. Writes
// go through a temp file and rename, so a crash mid-write never corrupts
// the store.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a config store rooted at configDir.
// If configDir is empty, the GTASKS_CONFIG_PATH environment variable is
// consulted, then ~/.gtasks/config.json.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		if path := os.Getenv(EnvConfigPath); path != "" {
			return &ConfigStore{filePath: path}, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".gtasks")
	}
	return &ConfigStore{filePath: filepath.Join(configDir, configFileName)}, nil
}

// Exists reports whether the config file has been created.
func (s *ConfigStore) Exists() bool {
	_, err := os.Stat(s.filePath)
	return err == nil
}

// Load reads the full configuration from disk.
func (s *ConfigStore) Load() (*domain.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads and parses the config file (caller must hold lock).
func (s *ConfigStore) load() (*domain.Config, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", s.filePath, domain.ErrConfigNotFound)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg domain.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// save writes the config atomically: marshal to a temp file in the same
// directory, then rename over the target (caller must hold lock).
func (s *ConfigStore) save(cfg *domain.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %v: %w", err, domain.ErrStorageWrite)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config directory: %v: %w", err, domain.ErrStorageWrite)
	}

	tmp, err := os.CreateTemp(dir, configFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, domain.ErrStorageWrite)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: %v: %w", err, domain.ErrStorageWrite)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("set config permissions: %v: %w", err, domain.ErrStorageWrite)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %v: %w", err, domain.ErrStorageWrite)
	}

	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %v: %w", err, domain.ErrStorageWrite)
	}
	return nil
}

// loadOrEmpty returns the parsed config, or a fresh empty one if the file
// does not exist yet (caller must hold lock).
func (s *ConfigStore) loadOrEmpty() (*domain.Config, error) {
	cfg, err := s.load()
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			return &domain.Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// OAuthClient returns the configured OAuth application credentials.
func (s *ConfigStore) OAuthClient() (*domain.OAuthClient, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	client := cfg.OAuth
	return &client, nil
}

// SetOAuthClient stores OAuth application credentials, creating the config
// file if needed.
func (s *ConfigStore) SetOAuthClient(client domain.OAuthClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadOrEmpty()
	if err != nil {
		return err
	}
	cfg.OAuth = client
	return s.save(cfg)
}

// Get returns the account with the given email (case-insensitive).
func (s *ConfigStore) Get(email string) (*domain.Account, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	if i := cfg.FindAccount(email); i >= 0 {
		account := cfg.Accounts[i]
		return &account, nil
	}
	return nil, fmt.Errorf("%s: %w", email, domain.ErrAccountNotFound)
}

// List returns all accounts in insertion order.
func (s *ConfigStore) List() ([]domain.Account, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	return cfg.Accounts, nil
}

// Upsert merges the account into an existing record with the same email,
// or appends it as new.
func (s *ConfigStore) Upsert(account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadOrEmpty()
	if err != nil {
		return err
	}

	if i := cfg.FindAccount(account.Email); i >= 0 {
		existing := &cfg.Accounts[i]
		if account.DisplayName != "" {
			existing.DisplayName = account.DisplayName
		}
		existing.Tokens = account.Tokens
		existing.Status = account.Status
		existing.LastUsed = account.LastUsed
	} else {
		if account.AddedAt.IsZero() {
			account.AddedAt = time.Now()
		}
		cfg.Accounts = append(cfg.Accounts, account)
	}
	return s.save(cfg)
}

// Remove deletes the account, reassigning the default to the next remaining
// account in insertion order if the removed account was the default.
func (s *ConfigStore) Remove(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadOrEmpty()
	if err != nil {
		return false, err
	}

	i := cfg.FindAccount(email)
	if i < 0 {
		return false, nil
	}

	wasDefault := cfg.Settings.DefaultAccount != "" &&
		domain.NormalizeEmail(cfg.Settings.DefaultAccount) == domain.NormalizeEmail(email)

	cfg.Accounts = append(cfg.Accounts[:i], cfg.Accounts[i+1:]...)

	if wasDefault {
		if len(cfg.Accounts) > 0 {
			cfg.Settings.DefaultAccount = cfg.Accounts[0].Email
		} else {
			cfg.Settings.DefaultAccount = ""
		}
	}

	if err := s.save(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// SetDefault marks an account as the default.
func (s *ConfigStore) SetDefault(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.FindAccount(email) < 0 {
		return fmt.Errorf("%s: %w", email, domain.ErrAccountNotFound)
	}
	cfg.Settings.DefaultAccount = email
	return s.save(cfg)
}

// GetDefault returns the explicit default if set and still present, else
// the first account in insertion order, else nil.
func (s *ConfigStore) GetDefault() (*domain.Account, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Settings.DefaultAccount != "" {
		if i := cfg.FindAccount(cfg.Settings.DefaultAccount); i >= 0 {
			account := cfg.Accounts[i]
			return &account, nil
		}
	}
	if len(cfg.Accounts) > 0 {
		account := cfg.Accounts[0]
		return &account, nil
	}
	return nil, nil
}

// Settings returns the user settings.
func (s *ConfigStore) Settings() (*domain.Settings, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	settings := cfg.Settings
	return &settings, nil
}

// Path returns the config file path, for diagnostics.
func (s *ConfigStore) Path() string {
	return s.filePath
}
