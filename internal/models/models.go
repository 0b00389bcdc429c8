package models

import "time"

type TxKind string

const (
	KindPurchase TxKind = "purchase"
	KindRestock  TxKind = "restock"
)

type TxStatus string

const (
	StatusConfirmed TxStatus = "confirmed"
	StatusFailed    TxStatus = "failed"
)

// JournalEntry is one resolved write attempt against the vending machine.
type JournalEntry struct {
	ID         int64     `json:"id"`
	Account    string    `json:"account"`
	Kind       TxKind    `json:"kind"`
	Quantity   uint64    `json:"quantity"`
	PaymentWei string    `json:"paymentWei"`
	TxHash     string    `json:"txHash,omitempty"`
	Status     TxStatus  `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// View is what the page shows for one session. Inventory and Balance are
// nil until the first successful read.
type View struct {
	Connected    bool    `json:"connected"`
	Account      string  `json:"account,omitempty"`
	Inventory    *uint64 `json:"inventory"`
	Balance      *uint64 `json:"balance"`
	BuyInput     string  `json:"buyInput"`
	RestockInput string  `json:"restockInput"`
	Error        string  `json:"error,omitempty"`
	Success      string  `json:"success,omitempty"`
}
