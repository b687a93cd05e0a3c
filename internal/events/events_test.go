package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	eventType string
	payload   []byte
	err       error
}

func (f *fakePublisher) PublishEvent(eventType string, payload []byte) error {
	f.eventType = eventType
	f.payload = payload
	return f.err
}

type fakeLogger struct{ warned []string }

func (l *fakeLogger) Warn(msg string, _ ...any) { l.warned = append(l.warned, msg) }

func TestNew(t *testing.T) {
	e := New(ProjectCreated, "alee", "genome1", "")
	_, err := uuid.Parse(e.ID)
	require.NoError(t, err)
	assert.Equal(t, ProjectCreated, e.Type)
	assert.False(t, e.Timestamp.IsZero())
}

func TestMQTTEmitter_Emit(t *testing.T) {
	pub := &fakePublisher{}
	log := &fakeLogger{}
	m := NewMQTTEmitter(pub, log)

	m.Emit(context.Background(), New(ViewCreated, "alee", "genome1", "pub_view"))

	assert.Equal(t, ViewCreated, pub.eventType)
	var got Event
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "pub_view", got.View)
	assert.Empty(t, log.warned)
}

func TestMQTTEmitter_PublishFailureIsLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	log := &fakeLogger{}

	NewMQTTEmitter(pub, log).Emit(context.Background(), New(ViewPurged, "", "genome1", "v"))

	assert.Equal(t, []string{"publishing event failed"}, log.warned)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), New(AccountRegistered, "alee", "", ""))
	r.Emit(context.Background(), New(AccountConfirmed, "alee", "", ""))

	assert.Equal(t, []string{AccountRegistered, AccountConfirmed}, r.Types())
	assert.Len(t, r.Events(), 2)
}

func TestNop(t *testing.T) {
	var e Emitter = Nop{}
	e.Emit(context.Background(), New(ProjectDeleted, "alee", "x", ""))
}
