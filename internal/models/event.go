package models

import "encoding/json"

// Event is the envelope exchanged over a websocket in both directions.
// Data stays raw on the inbound side so each handler can decode its own payload.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutEvent is the outbound counterpart of Event.
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ErrorEvent is sent to a client whose event payload could not be handled.
// It never terminates the connection.
type ErrorEvent struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// Inbound event names.
const (
	EventRoomJoin         = "room:join"
	EventRoomLeave        = "room:leave"
	EventMessageSend      = "message:send"
	EventMessageEdit      = "message:edit"
	EventMessageDelete    = "message:delete"
	EventMessageReact     = "message:react"
	EventTypingStart      = "typing:start"
	EventTypingStop       = "typing:stop"
	EventCallInitiate     = "call:initiate"
	EventCallAccept       = "call:accept"
	EventCallReject       = "call:reject"
	EventCallEnd          = "call:end"
	EventWebRTCOffer      = "webrtc:offer"
	EventWebRTCAnswer     = "webrtc:answer"
	EventWebRTCICE        = "webrtc:ice-candidate"
	EventNotificationSend = "notification:send"
	EventNotificationRead = "notification:read"
	EventPresenceUpdate   = "presence:update"
	EventUsersOnline      = "users:online"
)

// Outbound event names.
const (
	EventRoomUserJoined       = "room:user-joined"
	EventRoomUserLeft         = "room:user-left"
	EventRoomMembers          = "room:members"
	EventMessageReceived      = "message:received"
	EventMessageEdited        = "message:edited"
	EventMessageDeleted       = "message:deleted"
	EventMessageReaction      = "message:reaction"
	EventTypingStarted        = "typing:started"
	EventTypingStopped        = "typing:stopped"
	EventCallInitiated        = "call:initiated"
	EventCallIncoming         = "call:incoming"
	EventCallAccepted         = "call:accepted"
	EventCallRejected         = "call:rejected"
	EventCallEnded            = "call:ended"
	EventNotificationReceived = "notification:received"
	EventUserOnline           = "user:online"
	EventUserOffline          = "user:offline"
	EventUserStatusChanged    = "user:status-changed"
	EventUsersOnlineList      = "users:online-list"
	EventError                = "error"
)
