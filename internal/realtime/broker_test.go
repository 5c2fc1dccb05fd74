package realtime

import (
	"encoding/json"
	"testing"
)

func TestNotifyConnectedUser(t *testing.T) {
	b := NewBroker()
	ch := b.AddClient(7)

	b.NotifyUser(7, Message{Type: TypeTrackProcessed, Payload: map[string]int64{"trackId": 3}})

	select {
	case raw := <-ch:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != TypeTrackProcessed {
			t.Errorf("Type = %q, want %q", msg.Type, TypeTrackProcessed)
		}
	default:
		t.Fatal("expected a buffered message for the connected user")
	}
}

func TestNotifyDisconnectedUserDoesNotBlock(t *testing.T) {
	b := NewBroker()
	// No client registered; this must be a no-op.
	b.NotifyUser(99, Message{Type: TypeTrackDeleted})
}

func TestRemoveClientClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.AddClient(1)
	b.RemoveClient(1)

	if _, open := <-ch; open {
		t.Error("channel should be closed after RemoveClient")
	}

	// Removing twice is safe.
	b.RemoveClient(1)
}

func TestNotifyDuringDisconnectDoesNotPanic(t *testing.T) {
	b := NewBroker()

	// A disconnect closes the channel under the write lock, so a
	// concurrent notification must either be delivered first or see the
	// client as gone; it must never send on the closed channel.
	for i := 0; i < 500; i++ {
		b.AddClient(5)
		done := make(chan struct{})
		go func() {
			defer close(done)
			b.NotifyUser(5, Message{Type: TypeTrackProcessed})
		}()
		b.RemoveClient(5)
		<-done
	}
}
