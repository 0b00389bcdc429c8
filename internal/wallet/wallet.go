// Package wallet provides the account side of the service: which addresses
// the user controls and a signer for each of them.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoProvider indicates that neither a keystore nor a key is configured.
	ErrNoProvider = errors.New("wallet: no wallet provider configured")

	// ErrNoAccounts indicates the provider has no account to hand out.
	ErrNoAccounts = errors.New("wallet: no accounts available")

	// ErrUnknownAccount indicates a signer was requested for a foreign address.
	ErrUnknownAccount = errors.New("wallet: unknown account")
)

// Provider grants access to accounts and signs transactions for them.
type Provider interface {
	// RequestAccounts asks for account access. The first address is the
	// active one.
	RequestAccounts(ctx context.Context) ([]common.Address, error)

	// Transactor returns signing options for account.
	Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error)
}

type Config struct {
	KeystoreDir      string
	KeystorePassword string
	PrivateKey       string
	ChainID          *big.Int
}

// New picks the provider described by cfg. A keystore wins over a raw key.
func New(cfg Config) (Provider, error) {
	switch {
	case cfg.KeystoreDir != "":
		return NewKeystoreProvider(cfg.KeystoreDir, cfg.KeystorePassword, cfg.ChainID), nil
	case cfg.PrivateKey != "":
		return NewKeyProvider(cfg.PrivateKey, cfg.ChainID)
	default:
		return nil, ErrNoProvider
	}
}
