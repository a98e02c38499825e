package clinicauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType names a session lifecycle event.
type EventType string

const (
	EventLoginSuccess         EventType = "login_success"
	EventLoginFailure         EventType = "login_failure"
	EventRegisterSuccess      EventType = "register_success"
	EventRegisterFailure      EventType = "register_failure"
	EventLogout               EventType = "logout"
	EventHydration            EventType = "hydration"
	EventRefresh              EventType = "refresh"
	EventPasswordResetRequest EventType = "password_reset_request"
	EventPasswordResetConfirm EventType = "password_reset_confirm"
	EventVerificationResend   EventType = "verification_resend"
	EventGuardRedirect        EventType = "guard_redirect"
)

// SessionEvent is the structured record emitted for every session state
// change and guard rejection. Consumers decide how to persist or log it;
// the library never picks a logger on their behalf.
type SessionEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Role      Role              `json:"role,omitempty"`
	Success   bool              `json:"success"`
	Kind      string            `json:"kind,omitempty"`
	Error     string            `json:"error,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Sink receives session events from the dispatcher.
type Sink interface {
	Emit(ctx context.Context, event SessionEvent)
}

// NoOpSink discards all events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, SessionEvent) {}

// ChannelSink forwards events into a buffered channel.
type ChannelSink struct {
	events chan SessionEvent
}

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan SessionEvent, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event SessionEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receiving side of the sink.
func (s *ChannelSink) Events() <-chan SessionEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event SessionEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Write(append(data, '\n'))
}
