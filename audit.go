package linkAuth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

const (
	// EventSignedIn is an exported constant or variable used by the delegated-auth engine.
	EventSignedIn = "signed_in"
	// EventSignedOut is an exported constant or variable used by the delegated-auth engine.
	EventSignedOut = "signed_out"
	// EventSignInFailed is an exported constant or variable used by the delegated-auth engine.
	EventSignInFailed = "signin_failed"
	// EventSignInCancelled is an exported constant or variable used by the delegated-auth engine.
	EventSignInCancelled = "signin_cancelled"
	// EventReplayBlocked is an exported constant or variable used by the delegated-auth engine.
	EventReplayBlocked = "replay_blocked"
)

// AuthEvent is the single event shape emitted by the engine. Dependent
// caches subscribe for signed_in / signed_out to invalidate themselves.
type AuthEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Username  string            `json:"username,omitempty"`
	ClientID  string            `json:"client_id,omitempty"`
	State     string            `json:"state,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type AuthEventSink interface {
	Emit(ctx context.Context, event AuthEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuthEvent) {}

type ChannelSink struct {
	events chan AuthEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuthEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuthEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuthEvent {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuthEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
