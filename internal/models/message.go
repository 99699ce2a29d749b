package models

// Message is a chat message fanned out to a room and appended to its
// bounded history. Immutable after creation except through an edit event.
type Message struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	SenderID    string `json:"senderId"`
	SenderEmail string `json:"senderEmail"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	ReplyTo     string `json:"replyTo,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	Edited      bool   `json:"edited"`
}

// SendMessagePayload is the client request to send a message.
type SendMessagePayload struct {
	RoomID      string `json:"roomId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	ReplyTo     string `json:"replyTo"`
	FileURL     string `json:"fileUrl"`
}

// EditMessagePayload is the client request to edit a message.
type EditMessagePayload struct {
	MessageID  string `json:"messageId"`
	RoomID     string `json:"roomId"`
	NewContent string `json:"newContent"`
}

// MessageEditedEvent is broadcast to the room on an edit.
type MessageEditedEvent struct {
	MessageID  string `json:"messageId"`
	RoomID     string `json:"roomId"`
	NewContent string `json:"newContent"`
	EditedAt   int64  `json:"editedAt"`
	EditedBy   string `json:"editedBy"`
}

// DeleteMessagePayload is the client request to delete a message.
type DeleteMessagePayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

// MessageDeletedEvent is broadcast to the room on a delete.
type MessageDeletedEvent struct {
	MessageID string `json:"messageId"`
	DeletedBy string `json:"deletedBy"`
	DeletedAt int64  `json:"deletedAt"`
}

// ReactPayload is the client request to react to a message.
type ReactPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Reaction  string `json:"reaction"`
}

// MessageReactionEvent is the ephemeral reaction broadcast. Reactions are
// never stored.
type MessageReactionEvent struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Reaction  string `json:"reaction"`
	Timestamp int64  `json:"timestamp"`
}

// TypingPayload is the client request for typing indicators.
type TypingPayload struct {
	RoomID string `json:"roomId"`
}

// TypingEvent is broadcast to the room excluding the typist.
type TypingEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	RoomID string `json:"roomId"`
}
