package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

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

func TestSendPersistsForOfflineTarget(t *testing.T) {
	users := newFakeSender()
	st := store.NewMemoryStore()
	relay := NewRelay(users, st)

	sent := relay.Send(context.Background(), models.SendNotificationPayload{
		TargetUserID: "b",
		Title:        "hello",
		Message:      "you have mail",
	})

	assert.Equal(t, "info", sent.Type)
	assert.False(t, sent.Read)
	assert.Empty(t, users.sent)

	entries, err := st.ReadRange(context.Background(), store.UserNotificationsKey("b"), 0, -1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var stored models.Notification
	require.NoError(t, json.Unmarshal(entries[0], &stored))
	assert.Equal(t, sent.ID, stored.ID)
	assert.Equal(t, "hello", stored.Title)
}

func TestSendDeliversLiveWhenConnected(t *testing.T) {
	users := newFakeSender("b")
	st := store.NewMemoryStore()
	relay := NewRelay(users, st)

	relay.Send(context.Background(), models.SendNotificationPayload{
		TargetUserID: "b",
		Title:        "ping",
		Type:         "warning",
	})

	require.Len(t, users.sent["b"], 1)
	var event models.Event
	require.NoError(t, json.Unmarshal(users.sent["b"][0], &event))
	require.Equal(t, models.EventNotificationReceived, event.Event)
	var notification models.Notification
	require.NoError(t, json.Unmarshal(event.Data, &notification))
	assert.Equal(t, "warning", notification.Type)
}

func TestMarkReadFlipsTheRightEntry(t *testing.T) {
	users := newFakeSender()
	st := store.NewMemoryStore()
	relay := NewRelay(users, st)

	first := relay.Send(context.Background(), models.SendNotificationPayload{TargetUserID: "b", Title: "one"})
	second := relay.Send(context.Background(), models.SendNotificationPayload{TargetUserID: "b", Title: "two"})
	relay.Send(context.Background(), models.SendNotificationPayload{TargetUserID: "b", Title: "three"})

	assert.True(t, relay.MarkRead(context.Background(), "b", second.ID))

	entries, err := st.ReadRange(context.Background(), store.UserNotificationsKey("b"), 0, -1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, raw := range entries {
		var notification models.Notification
		require.NoError(t, json.Unmarshal(raw, &notification))
		assert.Equal(t, notification.ID == second.ID, notification.Read)
	}

	assert.False(t, first.Read)
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	relay := NewRelay(newFakeSender(), store.NewMemoryStore())
	assert.False(t, relay.MarkRead(context.Background(), "b", "missing"))
}
