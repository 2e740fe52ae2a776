package linkAuth

import (
	"bytes"
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuthEvent) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, AuthEvent) {
	<-s.gate
}

func TestAuditDispatcherDeliversAndDrains(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuthEvent{EventType: EventSignedIn})
	}
	d.Close()

	if got := sink.count.Load(); got != 10 {
		t.Fatalf("expected 10 delivered events, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// The consumer is stuck on the gate; the buffer holds one event, so
	// pushing several more must shed the overflow.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), AuthEvent{EventType: EventSignedIn})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events under backpressure")
	}

	close(sink.gate)
	d.Close()
}

func TestAuditDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &countingSink{})
	if d != nil {
		t.Fatal("disabled audit must not start a dispatcher")
	}

	// Nil receivers stay safe.
	d.Emit(context.Background(), AuthEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestAuditDispatcherCloseIdempotent(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, &countingSink{})
	d.Close()
	d.Close()

	// Emits after close are discarded, not delivered and not blocking.
	d.Emit(context.Background(), AuthEvent{EventType: EventSignedOut})
}

func TestJSONWriterSinkOutput(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuthEvent{
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
		EventType: EventSignedIn,
		Username:  "alice",
		Success:   true,
	})

	var decoded AuthEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("sink output is not one JSON object per line: %v", err)
	}
	if decoded.EventType != EventSignedIn || decoded.Username != "alice" || !decoded.Success {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}
