package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gtasks-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gtasks-cli/internal/core/domain"
)

func newAccountsService(store *memory.ConfigStore) *AccountsService {
	return NewAccountsService(store, fakeCipher{}, &fakeProvider{})
}

func addAccount(t *testing.T, store *memory.ConfigStore, email string) {
	t.Helper()
	require.NoError(t, store.Upsert(domain.Account{
		Email: email,
		Tokens: domain.TokenBundle{
			AccessToken:  "enc:access",
			RefreshToken: "enc:refresh",
			ExpiresAt:    time.Now().Add(time.Hour).UnixMilli(),
		},
		Status: domain.StatusActive,
	}))
}

func TestResolve_ExplicitAccount(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	addAccount(t, store, "b@x.com")

	svc := newAccountsService(store)
	account, err := svc.Resolve("b@x.com")

	require.NoError(t, err)
	assert.Equal(t, "b@x.com", account.Email)
}

func TestResolve_ExplicitUnknownAccount(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")

	svc := newAccountsService(store)
	_, err := svc.Resolve("nobody@x.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestResolve_FirstAccountWhenNoDefault(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	addAccount(t, store, "b@x.com")

	svc := newAccountsService(store)
	account, err := svc.Resolve("")

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account.Email)
}

func TestResolve_ExplicitDefault(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	addAccount(t, store, "b@x.com")
	require.NoError(t, store.SetDefault("b@x.com"))

	svc := newAccountsService(store)
	account, err := svc.Resolve("")

	require.NoError(t, err)
	assert.Equal(t, "b@x.com", account.Email)
}

func TestResolve_NoAccounts(t *testing.T) {
	svc := newAccountsService(memory.NewConfigStore())

	_, err := svc.Resolve("")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoAccountsConfigured)
}

func TestSetDefault_UnknownAccount(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")

	svc := newAccountsService(store)
	err := svc.SetDefault("nobody@x.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRemove_DefaultReassignsToNextInOrder(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	addAccount(t, store, "b@x.com")
	require.NoError(t, store.SetDefault("b@x.com"))

	svc := newAccountsService(store)
	removed, err := svc.Remove(context.Background(), "b@x.com")

	require.NoError(t, err)
	assert.True(t, removed)

	account, err := svc.Default()
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "a@x.com", account.Email)
}

func TestRemove_LastAccountClearsDefault(t *testing.T) {
	store := memory.NewConfigStore()
	addAccount(t, store, "a@x.com")
	require.NoError(t, store.SetDefault("a@x.com"))

	svc := newAccountsService(store)
	removed, err := svc.Remove(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.True(t, removed)

	account, err := svc.Default()
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestRemove_UnknownAccount(t *testing.T) {
	svc := newAccountsService(memory.NewConfigStore())

	_, err := svc.Remove(context.Background(), "nobody@x.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
