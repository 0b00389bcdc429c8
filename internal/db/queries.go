package db

import (
	"context"
	"database/sql"
	"fmt"

	"vending-machine/internal/models"
)

type journalDBImplementation struct {
	db *sql.DB
}

func NewJournal(dbConn *sql.DB) Journal {
	return &journalDBImplementation{
		db: dbConn,
	}
}

func (j *journalDBImplementation) Record(ctx context.Context, e models.JournalEntry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO transactions (account, kind, quantity, payment_wei, tx_hash, status, error) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		e.Account, string(e.Kind), e.Quantity, e.PaymentWei, e.TxHash, string(e.Status), e.Error)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

func (j *journalDBImplementation) Recent(ctx context.Context, account string, limit int) ([]models.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, account, kind, quantity, payment_wei, tx_hash, status, error, created_at FROM transactions WHERE account=$1 ORDER BY created_at DESC, id DESC LIMIT $2",
		account, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal for %s: %w", account, err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var (
			e      models.JournalEntry
			kind   string
			status string
		)
		if err := rows.Scan(&e.ID, &e.Account, &kind, &e.Quantity, &e.PaymentWei, &e.TxHash, &status, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Kind = models.TxKind(kind)
		e.Status = models.TxStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}
