// Package events announces account, project and view changes to other
// services. Emission is best effort: a failed publish is logged and never
// fails the operation that caused it.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	AccountRegistered = "account.registered"
	AccountConfirmed  = "account.confirmed"
	ProjectCreated    = "project.created"
	ProjectDeleted    = "project.deleted"
	ViewCreated       = "view.created"
	ViewDeleted       = "view.deleted"
	ViewPurged        = "view.purged"
)

// Event is the JSON document published for every change. It never carries
// credentials.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Login     string    `json:"login,omitempty"`
	Project   string    `json:"project,omitempty"`
	View      string    `json:"view,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType, login, project, view string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Login:     login,
		Project:   project,
		View:      view,
		Timestamp: time.Now().UTC(),
	}
}

// Emitter delivers events.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Nop discards events. Used when MQTT is disabled.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(context.Context, Event) {}

// Publisher is the MQTT client surface the emitter needs.
type Publisher interface {
	PublishEvent(eventType string, payload []byte) error
}

// Logger is the logging interface for publish failures.
type Logger interface {
	Warn(msg string, args ...any)
}

// MQTTEmitter publishes events as JSON through a Publisher.
type MQTTEmitter struct {
	pub    Publisher
	logger Logger
}

// NewMQTTEmitter returns an emitter publishing through pub.
func NewMQTTEmitter(pub Publisher, logger Logger) *MQTTEmitter {
	return &MQTTEmitter{pub: pub, logger: logger}
}

// Emit implements Emitter.
func (m *MQTTEmitter) Emit(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		m.logger.Warn("encoding event failed", "type", e.Type, "error", err)
		return
	}
	if err := m.pub.PublishEvent(e.Type, payload); err != nil {
		m.logger.Warn("publishing event failed", "type", e.Type, "id", e.ID, "error", err)
	}
}

// Recorder keeps emitted events in memory. Tests use it to assert on side
// effects.
type Recorder struct {
	events []Event
}

// Emit implements Emitter.
func (r *Recorder) Emit(_ context.Context, e Event) {
	r.events = append(r.events, e)
}

// Types returns the types of the recorded events in order.
func (r *Recorder) Types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	return append([]Event(nil), r.events...)
}
