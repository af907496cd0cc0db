package service

import (
	"context"
	"fmt"
	"log/slog"

	"cuotas/internal/amqp"
	"cuotas/internal/core"
	"cuotas/internal/ledger"
	"cuotas/internal/store"

	"github.com/shopspring/decimal"
)

// LedgerService is the transactional façade over the engine: it loads a
// partition's snapshot, applies one command, persists the result and pushes
// an update notification. The store write is authoritative; the publish is
// best-effort and never fails the command.
type LedgerService struct {
	store      store.SnapshotStore
	amqpClient *amqp.Client
}

func NewLedgerService(st store.SnapshotStore, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      st,
		amqpClient: amqpClient,
	}
}

// Snapshot returns the current document for a partition.
func (s *LedgerService) Snapshot(ctx context.Context, ledgerID string) (core.Snapshot, error) {
	snap, err := s.store.Load(ctx, ledgerID)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

func (s *LedgerService) AddAccount(ctx context.Context, ledgerID, name string, creditLimit decimal.Decimal, showBalance bool) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, []string{"cards"}, func(snap core.Snapshot) core.Snapshot {
		return ledger.AddAccount(snap, name, creditLimit, showBalance)
	})
}

func (s *LedgerService) DeleteAccount(ctx context.Context, ledgerID, name string) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, []string{"cards"}, func(snap core.Snapshot) core.Snapshot {
		return ledger.DeleteAccount(snap, name)
	})
}

func (s *LedgerService) CreateOrUpdateItem(ctx context.Context, ledgerID string, ref core.AccountRef, draft core.ItemDraft, editIndex int) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, keysFor(ref), func(snap core.Snapshot) core.Snapshot {
		return ledger.CreateOrUpdateItem(snap, ref, draft, editIndex)
	})
}

func (s *LedgerService) DeleteItem(ctx context.Context, ledgerID string, ref core.AccountRef, index int) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, keysFor(ref), func(snap core.Snapshot) core.Snapshot {
		return ledger.DeleteItem(snap, ref, index)
	})
}

func (s *LedgerService) PayInstallment(ctx context.Context, ledgerID string, ref core.AccountRef, index int) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, keysFor(ref), func(snap core.Snapshot) core.Snapshot {
		return ledger.PayInstallment(snap, ref, index)
	})
}

func (s *LedgerService) PayPeriod(ctx context.Context, ledgerID string, ref core.AccountRef) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, keysFor(ref), func(snap core.Snapshot) core.Snapshot {
		return ledger.PayPeriod(snap, ref)
	})
}

func (s *LedgerService) RecalculateBalance(ctx context.Context, ledgerID string, ref core.AccountRef) (core.Snapshot, error) {
	return s.apply(ctx, ledgerID, []string{"cards"}, func(snap core.Snapshot) core.Snapshot {
		return ledger.RecalculateBalance(snap, ref)
	})
}

// apply runs one command against the stored snapshot. Commands are pure; a
// no-op command yields the prior snapshot, which is still saved (harmless,
// idempotent) so the caller always sees the persisted state.
func (s *LedgerService) apply(ctx context.Context, ledgerID string, keys []string, cmd func(core.Snapshot) core.Snapshot) (core.Snapshot, error) {
	snap, err := s.store.Load(ctx, ledgerID)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	next := cmd(snap)

	if err := s.store.Save(ctx, ledgerID, next); err != nil {
		// The in-memory snapshot stays the session's source of truth; the
		// write is retried implicitly on the next mutation.
		return core.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	s.publishUpdate(ctx, ledgerID, keys)
	return next, nil
}

func (s *LedgerService) publishUpdate(ctx context.Context, ledgerID string, keys []string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping update message")
		return
	}
	if err := s.amqpClient.PublishSnapshotUpdated(ctx, ledgerID, keys); err != nil {
		// Don't fail the command - the snapshot is saved locally
		slog.ErrorContext(ctx, "Failed to publish snapshot update",
			"ledger_id", ledgerID, "error", err)
	}
}

func keysFor(ref core.AccountRef) []string {
	switch ref.Kind {
	case core.KindDebts:
		return []string{"debts"}
	case core.KindDailyLog:
		return []string{"dailyLog"}
	default:
		return []string{"cards"}
	}
}

// Close closes the AMQP connection; the store's lifecycle belongs to the
// backend factory.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
