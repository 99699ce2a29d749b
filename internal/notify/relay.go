// Package notify delivers point-to-point notifications: persisted to the
// target's queue always, delivered live only when the target is connected.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

// Sender delivers a payload to a single user's live connection.
type Sender interface {
	SendToUser(userID string, payload []byte) bool
}

// Relay persists and delivers notifications.
type Relay struct {
	users Sender
	store store.Store
}

// NewRelay builds a Relay.
func NewRelay(users Sender, st store.Store) *Relay {
	return &Relay{users: users, store: st}
}

// Send appends the notification to the target's queue and, when the target
// is reachable, delivers it live. Persistence failures are logged and do
// not block delivery.
func (r *Relay) Send(ctx context.Context, req models.SendNotificationPayload) models.Notification {
	if req.Type == "" {
		req.Type = "info"
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    req.TargetUserID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Link:      req.Link,
		Read:      false,
		CreatedAt: time.Now().UnixMilli(),
	}

	payload, _ := json.Marshal(models.OutEvent{Event: models.EventNotificationReceived, Data: notification})
	r.users.SendToUser(req.TargetUserID, payload)

	raw, _ := json.Marshal(notification)
	if err := r.store.AppendBounded(ctx, store.UserNotificationsKey(req.TargetUserID), raw, 0); err != nil {
		log.Printf("notification persist failed user=%s: %v", req.TargetUserID, err)
	}

	return notification
}

// MarkRead flips the read flag of a notification in the caller's own queue.
// The scan is O(n) over the queue; acceptable at the volumes this service
// targets. An unknown id is a no-op.
func (r *Relay) MarkRead(ctx context.Context, userID, notificationID string) bool {
	key := store.UserNotificationsKey(userID)
	entries, err := r.store.ReadRange(ctx, key, 0, -1)
	if err != nil {
		log.Printf("notification read failed user=%s: %v", userID, err)
		return false
	}

	for i, raw := range entries {
		var notification models.Notification
		if err := json.Unmarshal(raw, &notification); err != nil {
			continue
		}
		if notification.ID != notificationID {
			continue
		}
		notification.Read = true
		updated, _ := json.Marshal(notification)
		if err := r.store.SetAt(ctx, key, int64(i), updated); err != nil {
			log.Printf("notification update failed user=%s: %v", userID, err)
			return false
		}
		return true
	}
	return false
}
