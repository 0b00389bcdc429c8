package db

import (
	"context"
	"database/sql"
	"fmt"

	"vending-machine/internal/config"
	"vending-machine/internal/models"

	_ "github.com/lib/pq"
)

// Journal keeps a log of resolved write attempts.
type Journal interface {
	Record(ctx context.Context, entry models.JournalEntry) error
	Recent(ctx context.Context, account string, limit int) ([]models.JournalEntry, error)
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseName,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s:%s/%s: %w", cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, err)
	}
	return db, nil
}

// NopJournal is used when no database is configured.
type NopJournal struct{}

func (NopJournal) Record(context.Context, models.JournalEntry) error { return nil }

func (NopJournal) Recent(context.Context, string, int) ([]models.JournalEntry, error) {
	return nil, nil
}
