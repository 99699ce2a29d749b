package models

// Presence status values. Any other string is treated as a custom status.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// OnlineUser is a snapshot entry of a currently registered connection.
type OnlineUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// PresenceUpdatePayload is the client request to change its own status.
type PresenceUpdatePayload struct {
	Status string `json:"status"`
}

// PresenceEvent announces a user's status to other connections.
type PresenceEvent struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}
