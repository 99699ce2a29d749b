package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/mocks"
	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

type broadcastCall struct {
	roomID  string
	payload []byte
	exclude string
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (f *fakeBroadcaster) BroadcastRoom(roomID string, payload []byte, excludeUserID string) int {
	f.calls = append(f.calls, broadcastCall{roomID: roomID, payload: payload, exclude: excludeUserID})
	return 1
}

func (f *fakeBroadcaster) last(t *testing.T) (broadcastCall, models.Event) {
	t.Helper()
	require.NotEmpty(t, f.calls)
	call := f.calls[len(f.calls)-1]
	var event models.Event
	require.NoError(t, json.Unmarshal(call.payload, &event))
	return call, event
}

func TestSendBroadcastsAndPersists(t *testing.T) {
	rooms := &fakeBroadcaster{}
	st := store.NewMemoryStore()
	pipeline := NewPipeline(rooms, st)

	msg := pipeline.Send(context.Background(), "a", "a@example.com", models.SendMessagePayload{
		RoomID:  "r1",
		Content: "hi",
	})

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "text", msg.MessageType)
	assert.False(t, msg.Edited)

	call, event := rooms.last(t)
	assert.Equal(t, "r1", call.roomID)
	assert.Empty(t, call.exclude)
	assert.Equal(t, models.EventMessageReceived, event.Event)

	entries, err := st.ReadRange(context.Background(), store.RoomMessagesKey("r1"), 0, -1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var stored models.Message
	require.NoError(t, json.Unmarshal(entries[0], &stored))
	assert.Equal(t, msg.ID, stored.ID)
	assert.Equal(t, "a@example.com", stored.SenderEmail)
}

func TestSendDeliversDespiteStoreFailure(t *testing.T) {
	rooms := &fakeBroadcaster{}
	st := &mocks.StoreMock{}
	st.On("AppendBounded", mock.Anything, store.RoomMessagesKey("r1"), mock.Anything, int64(MaxRoomHistory)).
		Return(errors.New("store down"))
	pipeline := NewPipeline(rooms, st)

	pipeline.Send(context.Background(), "a", "a@example.com", models.SendMessagePayload{
		RoomID:  "r1",
		Content: "hi",
	})

	assert.Len(t, rooms.calls, 1)
	st.AssertExpectations(t)
}

func TestHistoryIsBounded(t *testing.T) {
	rooms := &fakeBroadcaster{}
	st := store.NewMemoryStore()
	pipeline := NewPipeline(rooms, st)

	for i := 0; i < MaxRoomHistory+5; i++ {
		pipeline.Send(context.Background(), "a", "a@example.com", models.SendMessagePayload{
			RoomID:  "r1",
			Content: "x",
		})
	}

	entries, err := st.ReadRange(context.Background(), store.RoomMessagesKey("r1"), 0, -1)
	require.NoError(t, err)
	assert.Len(t, entries, MaxRoomHistory)
}

func TestEditRecordsActingUser(t *testing.T) {
	rooms := &fakeBroadcaster{}
	pipeline := NewPipeline(rooms, store.NewMemoryStore())

	pipeline.Edit("editor", models.EditMessagePayload{
		MessageID:  "m1",
		RoomID:     "r1",
		NewContent: "fixed",
	})

	_, event := rooms.last(t)
	require.Equal(t, models.EventMessageEdited, event.Event)
	var edited models.MessageEditedEvent
	require.NoError(t, json.Unmarshal(event.Data, &edited))
	assert.Equal(t, "editor", edited.EditedBy)
	assert.Equal(t, "fixed", edited.NewContent)
	assert.NotZero(t, edited.EditedAt)
}

func TestDeleteRecordsActingUser(t *testing.T) {
	rooms := &fakeBroadcaster{}
	pipeline := NewPipeline(rooms, store.NewMemoryStore())

	pipeline.Delete("mod", models.DeleteMessagePayload{MessageID: "m1", RoomID: "r1"})

	_, event := rooms.last(t)
	require.Equal(t, models.EventMessageDeleted, event.Event)
	var deleted models.MessageDeletedEvent
	require.NoError(t, json.Unmarshal(event.Data, &deleted))
	assert.Equal(t, "mod", deleted.DeletedBy)
}

func TestReactIsEphemeral(t *testing.T) {
	rooms := &fakeBroadcaster{}
	st := store.NewMemoryStore()
	pipeline := NewPipeline(rooms, st)

	pipeline.React("a", models.ReactPayload{MessageID: "m1", RoomID: "r1", Reaction: "👍"})

	_, event := rooms.last(t)
	assert.Equal(t, models.EventMessageReaction, event.Event)
	entries, err := st.ReadRange(context.Background(), store.RoomMessagesKey("r1"), 0, -1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTypingExcludesTypist(t *testing.T) {
	rooms := &fakeBroadcaster{}
	pipeline := NewPipeline(rooms, store.NewMemoryStore())

	pipeline.TypingStart("a", "a@example.com", "r1")
	call, event := rooms.last(t)
	assert.Equal(t, "a", call.exclude)
	assert.Equal(t, models.EventTypingStarted, event.Event)

	pipeline.TypingStop("a", "r1")
	call, event = rooms.last(t)
	assert.Equal(t, "a", call.exclude)
	assert.Equal(t, models.EventTypingStopped, event.Event)
}
