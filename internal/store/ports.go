package store

import (
	"context"

	"cuotas/internal/core"
)

// Ports for the snapshot persistence collaborator. The ledger ID is an opaque
// partition key; any accessible identifier is a valid selector.
type (
	SnapshotReader interface {
		// Load returns the snapshot for the given partition, or an empty
		// normalized snapshot when the partition has never been written.
		Load(ctx context.Context, ledgerID string) (core.Snapshot, error)
	}

	SnapshotWriter interface {
		// Save replaces the partition's document, merging by top-level key:
		// cards, debts and dailyLog are each written wholesale,
		// last writer wins.
		Save(ctx context.Context, ledgerID string, s core.Snapshot) error
	}

	// LedgerLister enumerates the stored partition keys; the worker's
	// reconciliation sweep walks these.
	LedgerLister interface {
		ListLedgerIDs(ctx context.Context) ([]string, error)
	}

	// SnapshotStore is the full store surface backends implement.
	SnapshotStore interface {
		SnapshotReader
		SnapshotWriter
		LedgerLister
	}
)
