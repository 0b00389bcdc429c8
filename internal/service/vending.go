package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vending-machine/internal/db"
	"vending-machine/internal/models"
	"vending-machine/internal/vending"
	"vending-machine/internal/wallet"
	"vending-machine/pkg"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

type vendingService struct {
	machine  Machine
	provider wallet.Provider
	journal  db.Journal
	log      pkg.Logger

	// contract calls run without mu held; results land in whatever order
	// they resolve.
	mu           sync.Mutex
	connected    bool
	account      common.Address
	signer       *bind.TransactOpts
	inventory    *uint64
	balance      *uint64
	buyInput     string
	restockInput string
	errMsg       string
	successMsg   string
}

// NewVendingService creates the state of a fresh session. provider may be nil
// when no wallet is configured.
func NewVendingService(machine Machine, provider wallet.Provider, journal db.Journal, log pkg.Logger) VendingService {
	if journal == nil {
		journal = db.NopJournal{}
	}
	return &vendingService{
		machine:  machine,
		provider: provider,
		journal:  journal,
		log:      log,
	}
}

func (s *vendingService) Connect(ctx context.Context) error {
	if s.provider == nil {
		s.log.Warn("Please install a wallet provider")
		return wallet.ErrNoProvider
	}

	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()
	if connected {
		s.Refresh(ctx)
		return nil
	}

	accounts, err := s.provider.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = wallet.ErrNoAccounts
	}
	if err != nil {
		s.log.Warn("wallet connection rejected", zap.Error(err))
		s.fail(err)
		return err
	}
	signer, err := s.provider.Transactor(ctx, accounts[0])
	if err != nil {
		s.log.Error("failed to get signer", zap.String("account", accounts[0].Hex()), zap.Error(err))
		s.fail(err)
		return err
	}

	s.mu.Lock()
	if !s.connected {
		s.connected = true
		s.account = accounts[0]
		s.signer = signer
	}
	s.mu.Unlock()
	s.log.Info("Wallet connected", zap.String("account", accounts[0].Hex()))

	s.Refresh(ctx)
	return nil
}

// Refresh re-reads inventory and balance. A failed read keeps the previous
// value on screen.
func (s *vendingService) Refresh(ctx context.Context) {
	s.mu.Lock()
	connected, account := s.connected, s.account
	s.mu.Unlock()
	if !connected {
		return
	}

	if inv, err := s.machine.Inventory(ctx); err != nil {
		s.log.Error("failed to read inventory", zap.Error(err))
	} else {
		s.mu.Lock()
		s.inventory = &inv
		s.mu.Unlock()
	}

	if bal, err := s.machine.Balance(ctx, account); err != nil {
		s.log.Error("failed to read balance", zap.String("account", account.Hex()), zap.Error(err))
	} else {
		s.mu.Lock()
		s.balance = &bal
		s.mu.Unlock()
	}
}

func (s *vendingService) Purchase(ctx context.Context, quantity string) error {
	s.mu.Lock()
	s.buyInput = quantity
	s.mu.Unlock()
	return s.write(ctx, models.KindPurchase, quantity)
}

func (s *vendingService) Restock(ctx context.Context, quantity string) error {
	s.mu.Lock()
	s.restockInput = quantity
	s.mu.Unlock()
	return s.write(ctx, models.KindRestock, quantity)
}

func (s *vendingService) write(ctx context.Context, kind models.TxKind, raw string) error {
	s.mu.Lock()
	connected, account, signer := s.connected, s.account, s.signer
	s.mu.Unlock()
	if !connected {
		s.fail(ErrNotConnected)
		return ErrNotConnected
	}

	quantity, err := ParseQuantity(raw)
	if err != nil {
		s.fail(err)
		return err
	}

	send, verb := s.machine.Purchase, "Purchased"
	if kind == models.KindRestock {
		send, verb = s.machine.Restock, "Restocked"
	}

	receipt, err := send(ctx, signer, quantity)
	s.record(ctx, account, kind, quantity, receipt, err)
	if err != nil {
		s.log.Warn("transaction rejected",
			zap.String("account", account.Hex()),
			zap.String("kind", string(kind)),
			zap.Uint64("quantity", quantity),
			zap.Error(err))
		s.fail(err)
		return err
	}

	s.log.Info("transaction confirmed",
		zap.String("account", account.Hex()),
		zap.String("kind", string(kind)),
		zap.Uint64("quantity", quantity),
		zap.String("tx", receipt.TxHash.Hex()))
	s.succeed(fmt.Sprintf("%d Donut(s) Successfully %s!", quantity, verb))
	s.Refresh(ctx)
	return nil
}

// record never fails the user action; journal problems are only logged.
func (s *vendingService) record(ctx context.Context, account common.Address, kind models.TxKind, quantity uint64, receipt *types.Receipt, sendErr error) {
	entry := models.JournalEntry{
		Account:    account.Hex(),
		Kind:       kind,
		Quantity:   quantity,
		PaymentWei: vending.Payment(quantity).String(),
		Status:     models.StatusConfirmed,
	}
	if receipt != nil {
		entry.TxHash = receipt.TxHash.Hex()
	}
	var revert *vending.RevertError
	if errors.As(sendErr, &revert) {
		entry.TxHash = revert.TxHash.Hex()
	}
	if sendErr != nil {
		entry.Status = models.StatusFailed
		entry.Error = sendErr.Error()
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.log.Error("failed to record transaction", zap.String("account", entry.Account), zap.Error(err))
	}
}

func (s *vendingService) History(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	s.mu.Lock()
	connected, account := s.connected, s.account
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	return s.journal.Recent(ctx, account.Hex(), limit)
}

func (s *vendingService) View() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := models.View{
		Connected:    s.connected,
		Inventory:    copyCount(s.inventory),
		Balance:      copyCount(s.balance),
		BuyInput:     s.buyInput,
		RestockInput: s.restockInput,
		Error:        s.errMsg,
		Success:      s.successMsg,
	}
	if s.connected {
		v.Account = s.account.Hex()
	}
	return v
}

func (s *vendingService) fail(err error) {
	s.mu.Lock()
	s.errMsg = err.Error()
	s.successMsg = ""
	s.mu.Unlock()
}

func (s *vendingService) succeed(msg string) {
	s.mu.Lock()
	s.successMsg = msg
	s.errMsg = ""
	s.mu.Unlock()
}

func copyCount(n *uint64) *uint64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
