package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuotas/internal/core"

	_ "modernc.org/sqlite"
)

// Repository stores one snapshot document per ledger partition. Each
// top-level collection lives in its own column so a write replaces the keys
// it carries wholesale: last writer wins per key, no item-level merging.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.SnapshotReader. An unknown partition decodes to the
// empty snapshot: new users start from nothing.
func (r *Repository) Load(ctx context.Context, ledgerID string) (core.Snapshot, error) {
	var cardsJSON, debtsJSON, dailyJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT cards, debts, daily_log FROM ledgers WHERE ledger_id = ?`,
		ledgerID,
	).Scan(&cardsJSON, &debtsJSON, &dailyJSON)
	if errors.Is(err, sql.ErrNoRows) {
		empty := core.Snapshot{}
		empty.Normalize()
		return empty, nil
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal([]byte(cardsJSON), &snap.Cards); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode cards: %w", err)
	}
	if err := json.Unmarshal([]byte(debtsJSON), &snap.Debts); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode debts: %w", err)
	}
	if err := json.Unmarshal([]byte(dailyJSON), &snap.DailyLog); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode daily log: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

// Save implements store.SnapshotWriter.
func (r *Repository) Save(ctx context.Context, ledgerID string, snap core.Snapshot) error {
	snap.Normalize()
	cardsJSON, err := json.Marshal(snap.Cards)
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}
	debtsJSON, err := json.Marshal(snap.Debts)
	if err != nil {
		return fmt.Errorf("encode debts: %w", err)
	}
	dailyJSON, err := json.Marshal(snap.DailyLog)
	if err != nil {
		return fmt.Errorf("encode daily log: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ledgers (ledger_id, cards, debts, daily_log, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(ledger_id) DO UPDATE SET
		   cards = excluded.cards,
		   debts = excluded.debts,
		   daily_log = excluded.daily_log,
		   updated_at = CURRENT_TIMESTAMP`,
		ledgerID, string(cardsJSON), string(debtsJSON), string(dailyJSON),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"ledger_id", ledgerID,
		"cards", len(snap.Cards),
		"debts", len(snap.Debts),
		"daily_log", len(snap.DailyLog))

	return nil
}

// ListLedgerIDs implements store.LedgerLister.
func (r *Repository) ListLedgerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ledger_id FROM ledgers ORDER BY ledger_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ledger id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledgers: %w", err)
	}
	return ids, nil
}
