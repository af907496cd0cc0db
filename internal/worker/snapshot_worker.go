package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/amqp"
	"cuotas/internal/core"
	"cuotas/internal/ledger"
	"cuotas/internal/store"
)

// Exporter is the optional sheet-export sink the worker feeds.
type Exporter interface {
	AppendDailyEntry(ctx context.Context, ledgerID string, item core.Item) error
	AppendMonthSummary(ctx context.Context, ledgerID string, snap core.Snapshot) error
}

// SnapshotWorker reacts to snapshot update messages and keeps stored balances
// honest: remote writes are re-read from the store (the most recently written
// document is authoritative), daily-log changes are exported, and a periodic
// sweep recomputes every card's balance from item state to squash drift.
type SnapshotWorker struct {
	store    store.SnapshotStore
	exporter Exporter
}

func NewSnapshotWorker(st store.SnapshotStore, exporter Exporter) *SnapshotWorker {
	return &SnapshotWorker{
		store:    st,
		exporter: exporter,
	}
}

// HandleUpdateMessage processes a single snapshot update message from AMQP.
func (w *SnapshotWorker) HandleUpdateMessage(ctx context.Context, msg *amqp.SnapshotUpdatedMessage) error {
	slog.InfoContext(ctx, "Processing snapshot update",
		"ledger_id", msg.LedgerID,
		"keys", msg.Keys)

	snap, err := w.store.Load(ctx, msg.LedgerID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if w.exporter == nil {
		return nil
	}

	for _, key := range msg.Keys {
		if key != "dailyLog" {
			continue
		}
		if len(snap.DailyLog) == 0 {
			continue
		}
		// The journal is prepended; index 0 is the entry this message is
		// about.
		if err := w.exporter.AppendDailyEntry(ctx, msg.LedgerID, snap.DailyLog[0]); err != nil {
			// Export is best-effort; don't requeue the message over it
			slog.ErrorContext(ctx, "Failed to export daily entry",
				"ledger_id", msg.LedgerID, "error", err)
		}
	}

	return nil
}

// ReconcileAll recomputes every stored card's available balance from its item
// state and writes the corrected snapshots back. This is the backup mechanism
// against drift accumulated by incremental balance updates.
func (w *SnapshotWorker) ReconcileAll(ctx context.Context) error {
	ids, err := w.store.ListLedgerIDs(ctx)
	if err != nil {
		return fmt.Errorf("list ledgers: %w", err)
	}

	reconciled := 0
	for _, id := range ids {
		snap, err := w.store.Load(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load snapshot for reconciliation",
				"ledger_id", id, "error", err)
			continue
		}

		next := ledger.RecalculateBalance(snap, core.AllCardsRef())
		if err := w.store.Save(ctx, id, next); err != nil {
			slog.ErrorContext(ctx, "Failed to save reconciled snapshot",
				"ledger_id", id, "error", err)
			continue
		}
		reconciled++
	}

	slog.InfoContext(ctx, "Balance reconciliation sweep completed",
		"ledgers", len(ids),
		"reconciled", reconciled)

	return nil
}

// ExportSummaries appends a month summary row per card for every ledger;
// called on the worker's periodic tick when an exporter is configured.
func (w *SnapshotWorker) ExportSummaries(ctx context.Context) error {
	if w.exporter == nil {
		return nil
	}

	ids, err := w.store.ListLedgerIDs(ctx)
	if err != nil {
		return fmt.Errorf("list ledgers: %w", err)
	}

	for _, id := range ids {
		snap, err := w.store.Load(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load snapshot for export",
				"ledger_id", id, "error", err)
			continue
		}
		if err := w.exporter.AppendMonthSummary(ctx, id, snap); err != nil {
			slog.ErrorContext(ctx, "Failed to export month summary",
				"ledger_id", id, "error", err)
		}
	}

	return nil
}
