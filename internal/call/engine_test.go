package call

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/models"
)

// fakeSender records deliveries per user; users not in online are treated
// as disconnected.
type fakeSender struct {
	online map[string]bool
	sent   map[string][][]byte
}

func newFakeSender(online ...string) *fakeSender {
	f := &fakeSender{online: make(map[string]bool), sent: make(map[string][][]byte)}
	for _, userID := range online {
		f.online[userID] = true
	}
	return f
}

func (f *fakeSender) SendToUser(userID string, payload []byte) bool {
	if !f.online[userID] {
		return false
	}
	f.sent[userID] = append(f.sent[userID], payload)
	return true
}

func (f *fakeSender) last(t *testing.T, userID string) models.Event {
	t.Helper()
	require.NotEmpty(t, f.sent[userID], "no deliveries for %s", userID)
	raw := f.sent[userID][len(f.sent[userID])-1]
	var event models.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func TestInitiateRingsConnectedParticipants(t *testing.T) {
	users := newFakeSender("a", "b")
	engine := NewEngine(users)

	created := engine.Initiate("a", models.InitiateCallPayload{
		RoomID:       "r1",
		Participants: []string{"b", "offline"},
	})

	assert.Equal(t, models.CallRinging, created.Status)
	assert.Equal(t, []string{"a", "b", "offline"}, created.Participants)
	assert.Equal(t, "video", created.CallType)
	assert.Equal(t, 1, engine.ActiveCalls())

	incoming := users.last(t, "b")
	assert.Equal(t, models.EventCallIncoming, incoming.Event)
	// The initiator is told via its own call:initiated reply, not a ring.
	assert.Empty(t, users.sent["a"])
	assert.Empty(t, users.sent["offline"])
}

func TestAcceptNotifiesEveryParticipant(t *testing.T) {
	users := newFakeSender("a", "b")
	engine := NewEngine(users)
	created := engine.Initiate("a", models.InitiateCallPayload{RoomID: "r1", Participants: []string{"b"}})

	require.True(t, engine.Accept("b", created.CallID))

	for _, userID := range []string{"a", "b"} {
		event := users.last(t, userID)
		require.Equal(t, models.EventCallAccepted, event.Event)
		var accepted models.CallAcceptedEvent
		require.NoError(t, json.Unmarshal(event.Data, &accepted))
		assert.Equal(t, "b", accepted.AcceptedBy)
	}

	// Accepting twice is a no-op; the call is already ongoing.
	assert.False(t, engine.Accept("a", created.CallID))
	assert.Equal(t, 1, engine.ActiveCalls())
}

func TestAcceptRequiresParticipant(t *testing.T) {
	users := newFakeSender("a", "b", "intruder")
	engine := NewEngine(users)
	created := engine.Initiate("a", models.InitiateCallPayload{RoomID: "r1", Participants: []string{"b"}})

	assert.False(t, engine.Accept("intruder", created.CallID))
	assert.Empty(t, users.sent["intruder"])
}

func TestRejectNotifiesOnlyInitiatorAndRemovesCall(t *testing.T) {
	users := newFakeSender("a", "b")
	engine := NewEngine(users)
	created := engine.Initiate("a", models.InitiateCallPayload{RoomID: "r1", Participants: []string{"b"}})
	delete(users.sent, "b")

	require.True(t, engine.Reject("b", created.CallID))

	event := users.last(t, "a")
	require.Equal(t, models.EventCallRejected, event.Event)
	var rejected models.CallRejectedEvent
	require.NoError(t, json.Unmarshal(event.Data, &rejected))
	assert.Equal(t, "b", rejected.RejectedBy)
	assert.Empty(t, users.sent["b"])
	assert.Zero(t, engine.ActiveCalls())

	// Rejected is terminal: nothing more can happen to this id.
	assert.False(t, engine.Accept("b", created.CallID))
	assert.False(t, engine.End("a", created.CallID))
}

func TestEndBroadcastsDurationAndRemovesCall(t *testing.T) {
	users := newFakeSender("a", "b")
	engine := NewEngine(users)
	created := engine.Initiate("a", models.InitiateCallPayload{RoomID: "r1", Participants: []string{"b"}})

	// Ending a ringing call is a no-op; it must be accepted first.
	assert.False(t, engine.End("a", created.CallID))

	require.True(t, engine.Accept("b", created.CallID))
	require.True(t, engine.End("a", created.CallID))

	for _, userID := range []string{"a", "b"} {
		event := users.last(t, userID)
		require.Equal(t, models.EventCallEnded, event.Event)
		var ended models.CallEndedEvent
		require.NoError(t, json.Unmarshal(event.Data, &ended))
		assert.Equal(t, "a", ended.EndedBy)
		assert.GreaterOrEqual(t, ended.Duration, int64(0))
	}
	assert.Zero(t, engine.ActiveCalls())
}

func TestUnknownCallIDIsNoop(t *testing.T) {
	users := newFakeSender("a")
	engine := NewEngine(users)

	assert.False(t, engine.Accept("a", "nope"))
	assert.False(t, engine.Reject("a", "nope"))
	assert.False(t, engine.End("a", "nope"))
	assert.Empty(t, users.sent)
}

func TestRelayAttachesSender(t *testing.T) {
	users := newFakeSender("a", "b")
	engine := NewEngine(users)

	ok := engine.Relay(models.EventWebRTCAnswer, "a", models.SignalPayload{
		TargetUserID: "b",
		Answer:       json.RawMessage(`{"sdp":"v=0"}`),
	})
	require.True(t, ok)

	event := users.last(t, "b")
	require.Equal(t, models.EventWebRTCAnswer, event.Event)
	var signal models.SignalEvent
	require.NoError(t, json.Unmarshal(event.Data, &signal))
	assert.Equal(t, "a", signal.From)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(signal.Answer))
}

func TestRelayDropsOfflineTarget(t *testing.T) {
	users := newFakeSender("a")
	engine := NewEngine(users)

	ok := engine.Relay(models.EventWebRTCICE, "a", models.SignalPayload{
		TargetUserID: "ghost",
		Candidate:    json.RawMessage(`{}`),
	})
	assert.False(t, ok)
}
