package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sentinelchain/filevault/internal/client/coordinator"
	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/identity"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Keygen creates a fresh wallet and writes the passphrase-protected
// keystore to the configured path.
func (a *App) Keygen(ctx context.Context) error {
	if _, err := os.Stat(a.config.KeystorePath); err == nil {
		return fmt.Errorf("keystore %s already exists", a.config.KeystorePath)
	}

	wallet, err := identity.NewWallet()
	if err != nil {
		return err
	}

	passphrase, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	if err := wallet.Save(a.config.KeystorePath, passphrase); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wallet created. Address: %s\n", wallet.Address())
	return nil
}

// Login unlocks the keystore, runs the challenge–response exchange and
// publishes the wrap public key so other principals can share with us.
func (a *App) Login(ctx context.Context) error {
	passphrase, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	wallet, err := identity.Load(a.config.KeystorePath, passphrase)
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, wallet.Address(), wallet.PublicKey(), wallet.Sign); err != nil {
		return err
	}

	a.wallet = wallet
	a.coord = coordinator.New(a.client, wallet)

	if err := a.coord.RegisterWrapKey(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", wallet.Address())
	return nil
}

func (a *App) Logout(ctx context.Context) {
	a.wallet = nil
	a.coord = nil
	fmt.Fprintln(a.out, "Logged out")
}
