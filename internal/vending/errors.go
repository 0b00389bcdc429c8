package vending

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnexpectedOutput indicates a read returned something other than one uint256.
	ErrUnexpectedOutput = errors.New("vending: unexpected call output")

	// ErrValueOverflow indicates an on-chain count does not fit in uint64.
	ErrValueOverflow = errors.New("vending: value does not fit in uint64")
)

// RevertError is returned when a write was mined with a failed status.
type RevertError struct {
	Method string
	TxHash common.Hash
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("vending: transaction %s (%s) reverted", e.TxHash.Hex(), e.Method)
}
