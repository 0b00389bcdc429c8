package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyProvider holds a single raw private key.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

func NewKeyProvider(hexKey string, chainID *big.Int) (*KeyProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{p.address}, nil
}

func (p *KeyProvider) Transactor(ctx context.Context, account common.Address) (*bind.TransactOpts, error) {
	if account != p.address {
		return nil, ErrUnknownAccount
	}
	return bind.NewKeyedTransactorWithChainID(p.key, p.chainID)
}
