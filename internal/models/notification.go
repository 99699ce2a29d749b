package models

// Notification is a point-to-point notification persisted to the target's
// queue whether or not the target is currently connected.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Link      string `json:"link,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"createdAt"`
}

// SendNotificationPayload is the client request to notify a user.
type SendNotificationPayload struct {
	TargetUserID string `json:"targetUserId"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Link         string `json:"link"`
}

// ReadNotificationPayload marks one of the caller's notifications as read.
type ReadNotificationPayload struct {
	NotificationID string `json:"notificationId"`
}
