package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
)

// KeystoreProvider serves accounts from an encrypted keystore directory.
// Account access means unlocking the first account with the passphrase.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	passphrase string
	chainID    *big.Int
}

func NewKeystoreProvider(dir, passphrase string, chainID *big.Int) *KeystoreProvider {
	return &KeystoreProvider{
		ks:         keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		passphrase: passphrase,
		chainID:    chainID,
	}
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accs := p.ks.Accounts()
	if len(accs) == 0 {
		return nil, ErrNoAccounts
	}
	if err := p.ks.Unlock(accs[0], p.passphrase); err != nil {
		return nil, fmt.Errorf("failed to unlock %s: %w", accs[0].Address.Hex(), err)
	}
	addrs := make([]common.Address, len(accs))
	for i, a := range accs {
		addrs[i] = a.Address
	}
	return addrs, nil
}

func (p *KeystoreProvider) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	acc := accounts.Account{Address: account}
	if !p.ks.HasAddress(account) {
		return nil, ErrUnknownAccount
	}
	return bind.NewKeyStoreTransactorWithChainID(p.ks, acc, p.chainID)
}
