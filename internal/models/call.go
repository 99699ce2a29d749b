package models

import "encoding/json"

// Call status values.
const (
	CallRinging  = "ringing"
	CallOngoing  = "ongoing"
	CallRejected = "rejected"
	CallEnded    = "ended"
)

// Call is an active call record. Participants is ordered, initiator first.
// Terminal calls (rejected or ended) are removed from active storage.
type Call struct {
	CallID       string   `json:"callId"`
	RoomID       string   `json:"roomId"`
	Initiator    string   `json:"initiator"`
	CallType     string   `json:"callType"`
	Participants []string `json:"participants"`
	StartedAt    int64    `json:"startedAt"`
	EndedAt      int64    `json:"endedAt,omitempty"`
	Status       string   `json:"status"`
}

// InitiateCallPayload is the client request to start a call.
type InitiateCallPayload struct {
	RoomID       string   `json:"roomId"`
	CallType     string   `json:"callType"`
	Participants []string `json:"participants"`
}

// CallIDPayload carries accept/reject/end requests.
type CallIDPayload struct {
	CallID string `json:"callId"`
}

// CallAcceptedEvent is sent to every participant when a call is accepted.
type CallAcceptedEvent struct {
	CallID     string `json:"callId"`
	AcceptedBy string `json:"acceptedBy"`
	AcceptedAt int64  `json:"acceptedAt"`
}

// CallRejectedEvent is sent only to the initiator.
type CallRejectedEvent struct {
	CallID     string `json:"callId"`
	RejectedBy string `json:"rejectedBy"`
	RejectedAt int64  `json:"rejectedAt"`
}

// CallEndedEvent is sent to every participant with the call duration.
type CallEndedEvent struct {
	CallID   string `json:"callId"`
	EndedBy  string `json:"endedBy"`
	EndedAt  int64  `json:"endedAt"`
	Duration int64  `json:"duration"`
}

// SignalPayload is a WebRTC signaling frame addressed to a single user.
// Exactly one of Offer, Answer or Candidate is set, matching the event name.
type SignalPayload struct {
	TargetUserID string          `json:"targetUserId"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// SignalEvent is the relayed signaling frame with the sender attached.
type SignalEvent struct {
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	From      string          `json:"from"`
}
