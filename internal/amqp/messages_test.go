package amqp

import (
	"testing"
)

func TestSnapshotUpdatedMessageRoundTrip(t *testing.T) {
	msg := NewSnapshotUpdatedMessage("default", []string{"cards", "dailyLog"})
	if msg.Timestamp.IsZero() {
		t.Fatalf("message should carry a timestamp")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := SnapshotUpdatedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.LedgerID != "default" {
		t.Fatalf("ledger id = %q", got.LedgerID)
	}
	if len(got.Keys) != 2 || got.Keys[0] != "cards" || got.Keys[1] != "dailyLog" {
		t.Fatalf("keys = %v", got.Keys)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestSnapshotUpdatedMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := SnapshotUpdatedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
