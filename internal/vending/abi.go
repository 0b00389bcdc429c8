package vending

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MachineABI is the subset of the vending machine contract the service uses.
//
// Function selectors:
//
//	getVendingMachineBalance() → view, uint256
//	donutBalances(address)     → view, uint256
//	purchase(uint256)          → payable
//	restock(uint256)           → payable
const MachineABI = `[
	{
		"name": "getVendingMachineBalance",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "donutBalances",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"name": "purchase",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [{"name": "amount", "type": "uint256"}],
		"outputs": []
	},
	{
		"name": "restock",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [{"name": "amount", "type": "uint256"}],
		"outputs": []
	}
]`

const (
	methodInventory = "getVendingMachineBalance"
	methodBalances  = "donutBalances"
	methodPurchase  = "purchase"
	methodRestock   = "restock"
)

// ParseABI parses MachineABI.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(MachineABI))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI() abi.ABI {
	parsed, err := ParseABI()
	if err != nil {
		panic(err)
	}
	return parsed
}
