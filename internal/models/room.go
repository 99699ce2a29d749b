package models

// RoomMember is a member entry returned to a joining connection,
// cross-referenced against the connection registry for current status.
type RoomMember struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// JoinRoomPayload is the client request to join a room.
type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	RoomType string `json:"roomType"`
}

// LeaveRoomPayload is the client request to leave a room.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

// RoomUserEvent announces a join or leave to the rest of the room.
type RoomUserEvent struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
}

// RoomMembersEvent is sent only to the joining connection.
type RoomMembersEvent struct {
	RoomID  string       `json:"roomId"`
	Members []RoomMember `json:"members"`
}
