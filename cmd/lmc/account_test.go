package main

import (
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountCmd_Structure(t *testing.T) {
	assert.Equal(t, "account", accountCmd.Use)
	assert.NotNil(t, accountAddCmd.Flags().Lookup("auth-server"))
	assert.NotNil(t, accountAddCmd.Flags().Lookup("uuid"))
	assert.NotNil(t, accountAddCmd.Flags().Lookup("token"))
	assert.NotNil(t, accountAddCmd.Flags().Lookup("select"))
}

func TestAccountAdd_Offline(t *testing.T) {
	setupCLI(t)

	require.NoError(t, execute(t, accountCmd, "account", "add", "Steve", "--select"))

	svc := openService(t)
	acc, ok := svc.Accounts().SelectedAccount()
	require.True(t, ok)
	assert.Equal(t, "steve", acc.ID)
	assert.Equal(t, "Steve", acc.Username)
	assert.Equal(t, domain.AuthServiceOffline, acc.AuthService)
	assert.Equal(t, core.OfflineUUID("Steve"), acc.UUID)
}

func TestAccountAdd_ThirdParty(t *testing.T) {
	setupCLI(t)

	err := execute(t, accountCmd, "account", "add", "alex",
		"--auth-server", "https://auth.example.com/api/yggdrasil",
		"--uuid", "0f5d3c9e-6b1e-4b57-9d2a-2c7c1d0e4f11", "--token", "secret")
	require.NoError(t, err)

	svc := openService(t)
	accounts := svc.Accounts().List()
	require.Len(t, accounts, 1)
	acc := accounts[0]
	assert.Equal(t, "alex@auth.example.com/api/yggdrasil", acc.ID)
	assert.Equal(t, "https://auth.example.com/api/yggdrasil", acc.AuthService)
	assert.Equal(t, "secret", acc.AccessToken)
	assert.True(t, acc.NeedsAuthlibInjector())
}

func TestAccountAdd_ThirdPartyNeedsUUID(t *testing.T) {
	setupCLI(t)

	err := execute(t, accountCmd, "account", "add", "alex", "--auth-server", "https://auth.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--uuid")
}

func TestAccountAdd_RejectsNonURLServer(t *testing.T) {
	setupCLI(t)

	err := execute(t, accountCmd, "account", "add", "alex", "--auth-server", "littleskin", "--uuid", "x")
	assert.Error(t, err)
}

func TestAccountSelectAndRemove(t *testing.T) {
	setupCLI(t)
	require.NoError(t, execute(t, accountCmd, "account", "add", "Steve"))

	assert.ErrorIs(t, execute(t, accountCmd, "account", "select", "herobrine"), domain.ErrAccountNotFound)
	require.NoError(t, execute(t, accountCmd, "account", "select", "steve"))
	require.NoError(t, execute(t, accountCmd, "account", "list"))
	require.NoError(t, execute(t, accountCmd, "account", "remove", "steve"))

	svc := openService(t)
	assert.Empty(t, svc.Accounts().List())
	_, ok := svc.Accounts().SelectedAccount()
	assert.False(t, ok)
}
