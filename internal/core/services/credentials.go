package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gtasks-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gtasks-cli/internal/logger"
)

// RefreshBuffer is how long before expiry a token is considered stale.
// A token inside the buffer is refreshed before being handed out, so a
// caller never receives one that could expire during its own round trip.
const RefreshBuffer = 5 * time.Minute

// Ensure CredentialsService implements the interface.
var _ driving.CredentialService = (*CredentialsService)(nil)

// CredentialsService is the credential lifecycle manager. It owns the
// refresh decision and execution protocol and the account status machine,
// and serializes all credential work per account so two racing refreshes
// can never both consume the same refresh token.
type CredentialsService struct {
	store    driven.ConfigStore
	cipher   driven.TokenCipher
	provider driven.OAuthProvider
	api      driven.ResourceAPI

	// now is swappable for tests.
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCredentialsService creates a credential lifecycle manager.
func NewCredentialsService(
	store driven.ConfigStore,
	cipher driven.TokenCipher,
	provider driven.OAuthProvider,
	api driven.ResourceAPI,
) *CredentialsService {
	return &CredentialsService{
		store:    store,
		cipher:   cipher,
		provider: provider,
		api:      api,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing lifecycle calls for one account.
func (s *CredentialsService) lockFor(email string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[email]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[email] = lock
	}
	return lock
}

// GetValidCredential returns a plaintext credential for the account,
// refreshing through the provider if the stored token is near or past
// expiry.
func (s *CredentialsService) GetValidCredential(ctx context.Context, email string) (*domain.Credential, error) {
	email = domain.NormalizeEmail(email)

	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	return s.validCredentialLocked(ctx, email)
}

// validCredentialLocked is GetValidCredential's body. Caller holds the
// per-account lock.
func (s *CredentialsService) validCredentialLocked(ctx context.Context, email string) (*domain.Credential, error) {
	account, err := s.store.Get(email)
	if err != nil {
		return nil, err
	}

	// Revoked is terminal for the refresh path: no provider call can bring
	// the account back, only removal and re-authorization.
	if account.Status == domain.StatusRevoked {
		return nil, fmt.Errorf("access revoked for %s, remove and re-add the account: %w",
			email, domain.ErrAccessRevoked)
	}

	if !account.Tokens.NeedsRefresh(s.now(), RefreshBuffer) {
		cred, err := s.decryptBundle(account.Tokens)
		if err != nil {
			return nil, err
		}
		// Usage tracking: LastUsed moves even on the no-refresh path.
		account.LastUsed = s.now()
		if err := s.store.Upsert(*account); err != nil {
			return nil, err
		}
		return cred, nil
	}

	return s.refresh(ctx, email, account)
}

// refresh executes the refresh exchange and records the resulting status
// transition. Caller holds the per-account lock.
func (s *CredentialsService) refresh(ctx context.Context, email string, account *domain.Account) (*domain.Credential, error) {
	current, err := s.decryptBundle(account.Tokens)
	if err != nil {
		return nil, err
	}

	logger.Debug("refreshing access token for %s", email)

	fresh, err := s.provider.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return nil, s.recordFailure(email, err)
	}

	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	} else if fresh.RefreshToken != current.RefreshToken {
		// The provider rotated the refresh token; the new one replaces the
		// stored one or the account would strand on the next refresh.
		logger.Debug("provider rotated refresh token for %s", email)
	}
	if fresh.Scope == "" {
		fresh.Scope = current.Scope
	}

	bundle, err := s.encryptBundle(*fresh)
	if err != nil {
		return nil, err
	}

	account.Tokens = bundle
	account.Status = domain.StatusActive
	account.LastUsed = s.now()
	if err := s.store.Upsert(*account); err != nil {
		return nil, err
	}

	return fresh, nil
}

// StoreNewCredential encrypts and persists a token pair from a successful
// authorization-code exchange, creating the account if absent.
func (s *CredentialsService) StoreNewCredential(ctx context.Context, email, displayName string, tokens domain.Credential) error {
	email = domain.NormalizeEmail(email)

	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	bundle, err := s.encryptBundle(tokens)
	if err != nil {
		return err
	}

	account := domain.Account{
		Email:       email,
		DisplayName: displayName,
		Tokens:      bundle,
		Status:      domain.StatusActive,
		LastUsed:    s.now(),
	}
	return s.store.Upsert(account)
}

// TestConnectivity performs a trivial authenticated call and maps the
// outcome into the same status transitions as refresh. The per-account
// lock covers the whole check, so the status write-back can never clobber
// a commit that lands while the ping is in flight.
func (s *CredentialsService) TestConnectivity(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	lock := s.lockFor(email)
	lock.Lock()
	defer lock.Unlock()

	cred, err := s.validCredentialLocked(ctx, email)
	if err != nil {
		return err
	}

	if err := s.api.Ping(ctx, cred.AccessToken); err != nil {
		return s.recordFailure(email, err)
	}

	s.setStatus(email, domain.StatusActive)
	return nil
}

// recordFailure classifies a provider failure, persists the resulting
// status, and returns the lifecycle error the caller should see.
func (s *CredentialsService) recordFailure(email string, err error) error {
	switch {
	case errors.Is(err, domain.ErrGrantRevoked):
		s.setStatus(email, domain.StatusRevoked)
		return fmt.Errorf("access revoked for %s, remove and re-add the account: %w",
			email, domain.ErrAccessRevoked)
	case errors.Is(err, domain.ErrUnauthorised):
		s.setStatus(email, domain.StatusExpired)
		return fmt.Errorf("credential for %s is no longer valid, re-authorize the account: %w",
			email, domain.ErrCredentialExpired)
	default:
		s.setStatus(email, domain.StatusError)
		return fmt.Errorf("account %s: %s: %w", email, err, domain.ErrProviderError)
	}
}

// setStatus persists a status transition over a freshly loaded record.
// Caller holds the per-account lock, so the reloaded snapshot cannot be
// stale. Failures here are logged, not propagated: the provider outcome
// is what the caller needs to see.
func (s *CredentialsService) setStatus(email string, status domain.AccountStatus) {
	account, err := s.store.Get(email)
	if err != nil {
		logger.Warn("cannot record status %s for %s: %v", status, email, err)
		return
	}
	account.Status = status
	account.LastUsed = s.now()
	if err := s.store.Upsert(*account); err != nil {
		logger.Warn("cannot persist status %s for %s: %v", status, email, err)
	}
}

func (s *CredentialsService) decryptBundle(bundle domain.TokenBundle) (*domain.Credential, error) {
	access, err := s.cipher.Decrypt(bundle.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.cipher.Decrypt(bundle.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &domain.Credential{
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       bundle.Expiry(),
		Scope:        bundle.Scope,
	}, nil
}

func (s *CredentialsService) encryptBundle(cred domain.Credential) (domain.TokenBundle, error) {
	access, err := s.cipher.Encrypt(cred.AccessToken)
	if err != nil {
		return domain.TokenBundle{}, err
	}
	refresh, err := s.cipher.Encrypt(cred.RefreshToken)
	if err != nil {
		return domain.TokenBundle{}, err
	}
	bundle := domain.TokenBundle{
		AccessToken:  access,
		RefreshToken: refresh,
		Scope:        cred.Scope,
	}
	if !cred.Expiry.IsZero() {
		bundle.ExpiresAt = cred.Expiry.UnixMilli()
	}
	return bundle, nil
}
