// Package presence tracks and broadcasts online/offline/custom status
// derived from registry churn and explicit updates.
package presence

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

// Store retention for presence fields.
const retention = 24 * time.Hour

// Registry is the slice of the connection registry the tracker needs.
type Registry interface {
	SetStatus(userID, status string) bool
	ListAll() []models.OnlineUser
	BroadcastAll(payload []byte, excludeUserID string) int
}

// Tracker maintains per-connection status and mirrors it to the store with
// a time-boxed retention.
type Tracker struct {
	registry Registry
	store    store.Store
}

// NewTracker builds a Tracker.
func NewTracker(registry Registry, st store.Store) *Tracker {
	return &Tracker{registry: registry, store: st}
}

// TrackOnline records a fresh registration and announces it to everyone
// else. Called after the hub has registered the connection.
func (t *Tracker) TrackOnline(ctx context.Context, userID string) {
	t.persistStatus(ctx, userID, models.StatusOnline)
	t.broadcast(models.EventUserOnline, userID, models.StatusOnline)
}

// TrackOffline records a disconnect and announces it. Called only for a
// connection that was still the live one for its user.
func (t *Tracker) TrackOffline(ctx context.Context, userID string) {
	t.persistStatus(ctx, userID, models.StatusOffline)
	t.broadcast(models.EventUserOffline, userID, models.StatusOffline)
}

// SetStatus applies an explicit status update from the user and broadcasts
// the change to all other connections.
func (t *Tracker) SetStatus(ctx context.Context, userID, status string) {
	if !t.registry.SetStatus(userID, status) {
		return
	}
	t.persistStatus(ctx, userID, status)
	t.broadcast(models.EventUserStatusChanged, userID, status)
}

// OnlineList snapshots all registered connections for a requesting client.
func (t *Tracker) OnlineList() []models.OnlineUser {
	return t.registry.ListAll()
}

func (t *Tracker) persistStatus(ctx context.Context, userID, status string) {
	key := store.UserKey(userID)
	if err := t.store.SetField(ctx, key, "status", status, retention); err != nil {
		log.Printf("presence persist failed user=%s: %v", userID, err)
		return
	}
	lastActivity := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := t.store.SetField(ctx, key, "lastActivity", lastActivity, retention); err != nil {
		log.Printf("presence persist failed user=%s: %v", userID, err)
	}
}

func (t *Tracker) broadcast(eventName, userID, status string) {
	event := models.PresenceEvent{UserID: userID, Status: status}
	payload, _ := json.Marshal(models.OutEvent{Event: eventName, Data: event})
	t.registry.BroadcastAll(payload, userID)
}
