package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotUpdatedMessage announces that a ledger partition was rewritten.
// It carries only the partition key and the touched top-level keys; listeners
// reload the authoritative document from the store.
type SnapshotUpdatedMessage struct {
	LedgerID  string    `json:"ledgerId"`
	Keys      []string  `json:"keys"` // subset of: cards, debts, dailyLog
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotUpdatedMessage creates an update notification for a partition.
func NewSnapshotUpdatedMessage(ledgerID string, keys []string) *SnapshotUpdatedMessage {
	return &SnapshotUpdatedMessage{
		LedgerID:  ledgerID,
		Keys:      keys,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SnapshotUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotUpdatedMessageFromJSON creates a message from JSON bytes.
func SnapshotUpdatedMessageFromJSON(data []byte) (*SnapshotUpdatedMessage, error) {
	var msg SnapshotUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
