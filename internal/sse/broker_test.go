package sse

import (
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestBroker_PublishNote(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishNote(KindCreated, "cm.abc123", "src/a.ts/abc123")

	msg := recv(t, ch)
	if !strings.HasPrefix(msg, "event: note.created\n") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, `"id":"cm.abc123"`) || !strings.Contains(msg, `"display_path":"src/a.ts/abc123"`) {
		t.Errorf("payload missing fields: %q", msg)
	}
	if !strings.HasSuffix(msg, "\n\n") {
		t.Errorf("message not frame-terminated: %q", msg)
	}
}

func TestBroker_GraphEventThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()

	// First publish fires graph.updated, the second is inside the window.
	b.PublishNote(KindUpdated, "cm.aaa111", "")
	first := recv(t, ch)
	second := recv(t, ch)
	if !strings.HasPrefix(first, "event: note.updated\n") {
		t.Errorf("first = %q", first)
	}
	if !strings.HasPrefix(second, "event: graph.updated\n") {
		t.Errorf("second = %q", second)
	}

	b.PublishNote(KindDeleted, "cm.aaa111", "")
	third := recv(t, ch)
	if !strings.HasPrefix(third, "event: note.deleted\n") {
		t.Errorf("third = %q", third)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected event inside throttle window: %q", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_MultipleClients(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	c1 := b.Subscribe()
	c2 := b.Subscribe()
	if got := b.ClientCount(); got != 2 {
		t.Fatalf("clients = %d", got)
	}

	b.PublishNote(KindMoved, "cm.mov111", "new.ts/mov111")
	for _, ch := range []chan []byte{c1, c2} {
		if msg := recv(t, ch); !strings.HasPrefix(msg, "event: note.moved\n") {
			t.Errorf("message = %q", msg)
		}
		// The first publish also fires the aggregate event.
		if msg := recv(t, ch); !strings.HasPrefix(msg, "event: graph.updated\n") {
			t.Errorf("message = %q", msg)
		}
	}

	b.Unsubscribe(c1)
	if _, ok := <-c1; ok {
		t.Error("unsubscribed channel not closed")
	}
	if got := b.ClientCount(); got != 1 {
		t.Errorf("clients = %d", got)
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel not closed on Close")
	}
	// Operations after Close are no-ops.
	b.PublishNote(KindCreated, "cm.x", "")
	if got := b.ClientCount(); got != 0 {
		t.Errorf("clients = %d", got)
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after Close returned open channel")
	}
}
