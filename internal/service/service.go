package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vending-machine/internal/models"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNotConnected    = errors.New("wallet not connected")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Machine is the on-chain vending machine. *vending.Contract implements it.
type Machine interface {
	Inventory(ctx context.Context) (uint64, error)
	Balance(ctx context.Context, account common.Address) (uint64, error)
	Purchase(ctx context.Context, signer *bind.TransactOpts, quantity uint64) (*types.Receipt, error)
	Restock(ctx context.Context, signer *bind.TransactOpts, quantity uint64) (*types.Receipt, error)
}

// VendingService is the view-controller of one browser session.
type VendingService interface {
	Connect(ctx context.Context) error

	Refresh(ctx context.Context)

	Purchase(ctx context.Context, quantity string) error

	Restock(ctx context.Context, quantity string) error

	View() models.View

	History(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// ParseQuantity accepts a positive whole number up to math.MaxInt64,
// surrounding spaces allowed. database/sql rejects larger uint64 arguments.
func ParseQuantity(raw string) (uint64, error) {
	q, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || q == 0 || q > math.MaxInt64 {
		return 0, fmt.Errorf("%w %q: enter a positive whole number", ErrInvalidQuantity, raw)
	}
	return q, nil
}
