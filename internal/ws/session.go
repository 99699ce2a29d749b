package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"realtime-service/internal/models"
	"realtime-service/internal/observability"
)

// readLoop consumes events from one connection in arrival order, so events
// from a single client never interleave with each other. It owns the
// disconnect cleanup for its connection.
func (h *Handler) readLoop(ctx context.Context, conn *Conn, meta connMeta) {
	var closeReason string
	defer func() {
		h.cleanup(ctx, conn)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishWSEvent(ctx, "ws_disconnect", conn, meta, closeReason)
		conn.Close(websocket.CloseNormalClosure, "")
	}()

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishWSEvent(ctx, "ws_error", conn, meta, closeReason)
			}
			return
		}

		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			h.sendError(conn, "", "invalid event envelope")
			continue
		}
		h.dispatch(ctx, conn, event)
	}
}

// cleanup runs the disconnect protocol: leave every joined room with a
// user-left announcement, mark the user offline and broadcast it. A
// connection superseded by a newer login for the same user skips all of
// that; its user is still live on the newer connection.
func (h *Handler) cleanup(ctx context.Context, conn *Conn) {
	current := h.hub.Unregister(conn)
	log.Printf("user disconnected: %s (current=%v)", conn.UserID, current)
	if !current {
		return
	}

	left := h.hub.LeaveAllRooms(conn.UserID)
	for _, roomID := range left {
		event := models.RoomUserEvent{
			UserID:    conn.UserID,
			Email:     conn.Email,
			Timestamp: time.Now().UnixMilli(),
		}
		payload, _ := json.Marshal(models.OutEvent{Event: models.EventRoomUserLeft, Data: event})
		h.hub.BroadcastRoom(roomID, payload, "")
	}

	h.presence.TrackOffline(ctx, conn.UserID)
}

// dispatch routes one event to its component. Identity always comes from
// the authenticated connection; payload identity fields are never trusted
// for authorization. Malformed payloads produce an error event, never a
// dropped connection.
func (h *Handler) dispatch(ctx context.Context, conn *Conn, event models.Event) {
	observability.IncWSEvent(event.Event)

	switch event.Event {
	case models.EventRoomJoin:
		var p models.JoinRoomPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.handleRoomJoin(conn, p)

	case models.EventRoomLeave:
		var p models.LeaveRoomPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.handleRoomLeave(conn, p.RoomID)

	case models.EventMessageSend:
		var p models.SendMessagePayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.Send(ctx, conn.UserID, conn.Email, p)

	case models.EventMessageEdit:
		var p models.EditMessagePayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" || p.MessageID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.Edit(conn.UserID, p)

	case models.EventMessageDelete:
		var p models.DeleteMessagePayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" || p.MessageID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.Delete(conn.UserID, p)

	case models.EventMessageReact:
		var p models.ReactPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" || p.MessageID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.React(conn.UserID, p)

	case models.EventTypingStart:
		var p models.TypingPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.TypingStart(conn.UserID, conn.Email, p.RoomID)

	case models.EventTypingStop:
		var p models.TypingPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.messages.TypingStop(conn.UserID, p.RoomID)

	case models.EventCallInitiate:
		var p models.InitiateCallPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.RoomID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		callRecord := h.calls.Initiate(conn.UserID, p)
		h.sendEvent(conn, models.EventCallInitiated, callRecord)

	case models.EventCallAccept:
		var p models.CallIDPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.CallID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.calls.Accept(conn.UserID, p.CallID)

	case models.EventCallReject:
		var p models.CallIDPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.CallID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.calls.Reject(conn.UserID, p.CallID)

	case models.EventCallEnd:
		var p models.CallIDPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.CallID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.calls.End(conn.UserID, p.CallID)

	case models.EventWebRTCOffer, models.EventWebRTCAnswer, models.EventWebRTCICE:
		var p models.SignalPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.TargetUserID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.calls.Relay(event.Event, conn.UserID, p)

	case models.EventNotificationSend:
		var p models.SendNotificationPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.TargetUserID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.notify.Send(ctx, p)

	case models.EventNotificationRead:
		var p models.ReadNotificationPayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.NotificationID == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.notify.MarkRead(ctx, conn.UserID, p.NotificationID)

	case models.EventPresenceUpdate:
		var p models.PresenceUpdatePayload
		if err := json.Unmarshal(event.Data, &p); err != nil || p.Status == "" {
			h.sendError(conn, event.Event, "invalid payload")
			return
		}
		h.presence.SetStatus(ctx, conn.UserID, p.Status)

	case models.EventUsersOnline:
		h.sendEvent(conn, models.EventUsersOnlineList, h.presence.OnlineList())

	default:
		observability.IncWSEvent("ws_unknown_event")
	}
}

func (h *Handler) handleRoomJoin(conn *Conn, p models.JoinRoomPayload) {
	if p.RoomType == "" {
		p.RoomType = "group"
	}

	members, wasMember := h.hub.JoinRoom(conn.UserID, p.RoomID, p.RoomType)
	if !wasMember {
		event := models.RoomUserEvent{
			UserID:    conn.UserID,
			Email:     conn.Email,
			Timestamp: time.Now().UnixMilli(),
		}
		payload, _ := json.Marshal(models.OutEvent{Event: models.EventRoomUserJoined, Data: event})
		h.hub.BroadcastRoom(p.RoomID, payload, conn.UserID)
	}

	h.sendEvent(conn, models.EventRoomMembers, models.RoomMembersEvent{
		RoomID:  p.RoomID,
		Members: members,
	})
	log.Printf("user %s joined room: %s", conn.UserID, p.RoomID)
}

func (h *Handler) handleRoomLeave(conn *Conn, roomID string) {
	if !h.hub.LeaveRoom(conn.UserID, roomID) {
		return
	}
	event := models.RoomUserEvent{
		UserID:    conn.UserID,
		Email:     conn.Email,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventRoomUserLeft, Data: event})
	h.hub.BroadcastRoom(roomID, payload, conn.UserID)
	log.Printf("user %s left room: %s", conn.UserID, roomID)
}

func (h *Handler) sendEvent(conn *Conn, eventName string, data any) {
	payload, _ := json.Marshal(models.OutEvent{Event: eventName, Data: data})
	_ = conn.Send(payload)
}

func (h *Handler) sendError(conn *Conn, eventName, message string) {
	payload, _ := json.Marshal(models.OutEvent{
		Event: models.EventError,
		Data:  models.ErrorEvent{Event: eventName, Message: message},
	})
	_ = conn.Send(payload)
}
