// Package chat is the message pipeline: it stamps, persists and fans out
// chat messages plus the ephemeral edit/delete/reaction/typing events.
package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

// MaxRoomHistory caps the persisted history per room, oldest evicted first.
const MaxRoomHistory = 1000

// Broadcaster fans an event out to the current members of a room.
type Broadcaster interface {
	BroadcastRoom(roomID string, payload []byte, excludeUserID string) int
}

// Pipeline validates, stamps, persists and delivers room messages.
type Pipeline struct {
	rooms Broadcaster
	store store.Store
}

// NewPipeline builds a Pipeline.
func NewPipeline(rooms Broadcaster, st store.Store) *Pipeline {
	return &Pipeline{rooms: rooms, store: st}
}

// Send stamps a new message, broadcasts it to the room and then appends it
// to the room's bounded history. Delivery never waits on persistence: a
// store failure is logged and the message still reaches connected members.
func (p *Pipeline) Send(ctx context.Context, senderID, senderEmail string, req models.SendMessagePayload) models.Message {
	if req.MessageType == "" {
		req.MessageType = "text"
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		RoomID:      req.RoomID,
		SenderID:    senderID,
		SenderEmail: senderEmail,
		Content:     req.Content,
		MessageType: req.MessageType,
		ReplyTo:     req.ReplyTo,
		FileURL:     req.FileURL,
		Timestamp:   time.Now().UnixMilli(),
		Edited:      false,
	}

	payload, _ := json.Marshal(models.OutEvent{Event: models.EventMessageReceived, Data: msg})
	p.rooms.BroadcastRoom(req.RoomID, payload, "")

	raw, _ := json.Marshal(msg)
	if err := p.store.AppendBounded(ctx, store.RoomMessagesKey(req.RoomID), raw, MaxRoomHistory); err != nil {
		log.Printf("message persist failed room=%s: %v", req.RoomID, err)
	}

	return msg
}

// Edit broadcasts an edit event to the room. Edits are not restricted to
// the original sender; the acting user is recorded as editedBy.
func (p *Pipeline) Edit(editorID string, req models.EditMessagePayload) {
	event := models.MessageEditedEvent{
		MessageID:  req.MessageID,
		RoomID:     req.RoomID,
		NewContent: req.NewContent,
		EditedAt:   time.Now().UnixMilli(),
		EditedBy:   editorID,
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventMessageEdited, Data: event})
	p.rooms.BroadcastRoom(req.RoomID, payload, "")
}

// Delete broadcasts a delete event to the room.
func (p *Pipeline) Delete(deleterID string, req models.DeleteMessagePayload) {
	event := models.MessageDeletedEvent{
		MessageID: req.MessageID,
		DeletedBy: deleterID,
		DeletedAt: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventMessageDeleted, Data: event})
	p.rooms.BroadcastRoom(req.RoomID, payload, "")
}

// React broadcasts an ephemeral reaction event; reactions are never stored.
func (p *Pipeline) React(userID string, req models.ReactPayload) {
	event := models.MessageReactionEvent{
		MessageID: req.MessageID,
		UserID:    userID,
		Reaction:  req.Reaction,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventMessageReaction, Data: event})
	p.rooms.BroadcastRoom(req.RoomID, payload, "")
}

// TypingStart broadcasts a typing indicator to the room, excluding the typist.
func (p *Pipeline) TypingStart(userID, email, roomID string) {
	event := models.TypingEvent{UserID: userID, Email: email, RoomID: roomID}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventTypingStarted, Data: event})
	p.rooms.BroadcastRoom(roomID, payload, userID)
}

// TypingStop broadcasts the matching stop indicator.
func (p *Pipeline) TypingStop(userID, roomID string) {
	event := models.TypingEvent{UserID: userID, RoomID: roomID}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventTypingStopped, Data: event})
	p.rooms.BroadcastRoom(roomID, payload, userID)
}
