// Package call coordinates call signaling: a per-call state machine for
// initiate/accept/reject/end and point-to-point relay of WebRTC frames.
// Only signaling metadata passes through here, never media.
package call

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"realtime-service/internal/models"
)

// Sender delivers a payload to a single user's live connection.
type Sender interface {
	SendToUser(userID string, payload []byte) bool
}

// Engine owns the active call table. Calls transition
// ringing -> {ongoing, rejected} and ongoing -> ended; terminal calls are
// removed immediately. Operations on unknown call ids are no-ops.
type Engine struct {
	mu    sync.Mutex
	calls map[string]*models.Call
	users Sender
}

// NewEngine builds an Engine.
func NewEngine(users Sender) *Engine {
	return &Engine{
		calls: make(map[string]*models.Call),
		users: users,
	}
}

// Initiate creates a ringing call and pushes call:incoming to every named
// participant currently connected. Participants without a live connection
// never receive the ring; there is no queued delivery.
func (e *Engine) Initiate(initiatorID string, req models.InitiateCallPayload) models.Call {
	if req.CallType == "" {
		req.CallType = "video"
	}

	call := models.Call{
		CallID:       uuid.NewString(),
		RoomID:       req.RoomID,
		Initiator:    initiatorID,
		CallType:     req.CallType,
		Participants: append([]string{initiatorID}, req.Participants...),
		StartedAt:    time.Now().UnixMilli(),
		Status:       models.CallRinging,
	}

	e.mu.Lock()
	e.calls[call.CallID] = &call
	e.mu.Unlock()

	payload, _ := json.Marshal(models.OutEvent{Event: models.EventCallIncoming, Data: call})
	for _, participantID := range req.Participants {
		e.users.SendToUser(participantID, payload)
	}
	return call
}

// Accept transitions a ringing call to ongoing and notifies every
// participant, initiator included. Accepting an already-ongoing or unknown
// call, or accepting a call you are not part of, is a no-op.
func (e *Engine) Accept(userID, callID string) bool {
	e.mu.Lock()
	call, ok := e.calls[callID]
	if !ok || call.Status != models.CallRinging || !isParticipant(call, userID) {
		e.mu.Unlock()
		return false
	}
	call.Status = models.CallOngoing
	participants := append([]string(nil), call.Participants...)
	e.mu.Unlock()

	event := models.CallAcceptedEvent{
		CallID:     callID,
		AcceptedBy: userID,
		AcceptedAt: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventCallAccepted, Data: event})
	for _, participantID := range participants {
		e.users.SendToUser(participantID, payload)
	}
	return true
}

// Reject terminates a ringing call and notifies only the initiator. The
// call record is removed immediately; rejected is terminal.
func (e *Engine) Reject(userID, callID string) bool {
	e.mu.Lock()
	call, ok := e.calls[callID]
	if !ok || call.Status != models.CallRinging || !isParticipant(call, userID) {
		e.mu.Unlock()
		return false
	}
	call.Status = models.CallRejected
	initiator := call.Initiator
	delete(e.calls, callID)
	e.mu.Unlock()

	event := models.CallRejectedEvent{
		CallID:     callID,
		RejectedBy: userID,
		RejectedAt: time.Now().UnixMilli(),
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventCallRejected, Data: event})
	e.users.SendToUser(initiator, payload)
	return true
}

// End terminates an ongoing call, broadcasts the duration to every
// participant and removes the call record.
func (e *Engine) End(userID, callID string) bool {
	e.mu.Lock()
	call, ok := e.calls[callID]
	if !ok || call.Status != models.CallOngoing || !isParticipant(call, userID) {
		e.mu.Unlock()
		return false
	}
	call.Status = models.CallEnded
	call.EndedAt = time.Now().UnixMilli()
	duration := call.EndedAt - call.StartedAt
	participants := append([]string(nil), call.Participants...)
	delete(e.calls, callID)
	e.mu.Unlock()

	event := models.CallEndedEvent{
		CallID:   callID,
		EndedBy:  userID,
		EndedAt:  time.Now().UnixMilli(),
		Duration: duration,
	}
	payload, _ := json.Marshal(models.OutEvent{Event: models.EventCallEnded, Data: event})
	for _, participantID := range participants {
		e.users.SendToUser(participantID, payload)
	}
	return true
}

// Relay forwards a WebRTC signaling frame to its target with the sender
// attached, using the same event name it arrived on. Frames for offline
// targets are dropped; stale signaling is useless to buffer.
func (e *Engine) Relay(eventName, fromID string, req models.SignalPayload) bool {
	event := models.SignalEvent{
		Offer:     req.Offer,
		Answer:    req.Answer,
		Candidate: req.Candidate,
		From:      fromID,
	}
	payload, _ := json.Marshal(models.OutEvent{Event: eventName, Data: event})
	return e.users.SendToUser(req.TargetUserID, payload)
}

// ActiveCalls reports the size of the active call table.
func (e *Engine) ActiveCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func isParticipant(call *models.Call, userID string) bool {
	for _, participantID := range call.Participants {
		if participantID == userID {
			return true
		}
	}
	return false
}
