// Package vending binds the vending machine contract: two view calls for the
// machine's inventory and an account's donut balance, and two payable writes
// that buy or restock donuts at a fixed unit price.
package vending

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

// UnitPrice is the price of one donut in wei (0.005 ether).
var UnitPrice = big.NewInt(params.Ether / 200)

// Payment returns the value attached to a purchase or restock of quantity donuts.
func Payment(quantity uint64) *big.Int {
	return new(big.Int).Mul(UnitPrice, new(big.Int).SetUint64(quantity))
}

// Backend is everything the binding needs from a node connection.
// *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// boundContract is the part of *bind.BoundContract used here.
type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, args ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error)
}

// Contract is a handle to a deployed vending machine.
type Contract struct {
	address common.Address
	bound   boundContract
	mined   bind.DeployBackend
}

// New binds the vending machine at address through backend.
func New(address common.Address, backend Backend) (*Contract, error) {
	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}
	bound := bind.NewBoundContract(address, parsed, backend, backend, backend)
	return newContract(address, bound, backend), nil
}

func newContract(address common.Address, bound boundContract, mined bind.DeployBackend) *Contract {
	return &Contract{address: address, bound: bound, mined: mined}
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Inventory returns the number of donuts held by the machine.
func (c *Contract) Inventory(ctx context.Context) (uint64, error) {
	return c.readCount(ctx, methodInventory)
}

// Balance returns the number of donuts owned by account.
func (c *Contract) Balance(ctx context.Context, account common.Address) (uint64, error) {
	return c.readCount(ctx, methodBalances, account)
}

// Purchase buys quantity donuts for the signer and waits for the receipt.
func (c *Contract) Purchase(ctx context.Context, signer *bind.TransactOpts, quantity uint64) (*types.Receipt, error) {
	return c.send(ctx, signer, methodPurchase, quantity)
}

// Restock adds quantity donuts to the machine and waits for the receipt.
func (c *Contract) Restock(ctx context.Context, signer *bind.TransactOpts, quantity uint64) (*types.Receipt, error) {
	return c.send(ctx, signer, methodRestock, quantity)
}

func (c *Contract) readCount(ctx context.Context, method string, args ...interface{}) (uint64, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, ErrUnexpectedOutput
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return 0, ErrUnexpectedOutput
	}
	if !n.IsUint64() {
		return 0, ErrValueOverflow
	}
	return n.Uint64(), nil
}

// send errors are returned untouched; their text is what the user sees.
func (c *Contract) send(ctx context.Context, signer *bind.TransactOpts, method string, quantity uint64) (*types.Receipt, error) {
	opts := *signer
	opts.Context = ctx
	opts.Value = Payment(quantity)

	tx, err := c.bound.Transact(&opts, method, new(big.Int).SetUint64(quantity))
	if err != nil {
		return nil, err
	}
	receipt, err := bind.WaitMined(ctx, c.mined, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, &RevertError{Method: method, TxHash: tx.Hash()}
	}
	return receipt, nil
}
