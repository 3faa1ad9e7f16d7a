package amqp

import (
	"testing"
	"time"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	ev := NewTransactionEvent(7, 42, ActionCreated)
	if ev.Timestamp.IsZero() {
		t.Error("event timestamp not set")
	}

	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := TransactionEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TransactionID != 7 || got.UserID != 42 || got.Action != ActionCreated {
		t.Errorf("round trip = %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(ev.Timestamp.Truncate(time.Second)) {
		t.Errorf("timestamp drifted: %v vs %v", got.Timestamp, ev.Timestamp)
	}
}

func TestTransactionEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte("{not json")); err == nil {
		t.Error("malformed payload must fail to decode")
	}
}
