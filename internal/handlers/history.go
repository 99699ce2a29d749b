package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

// Stats is the slice of the hub the HTTP surface reads.
type Stats interface {
	Counts() (users int, rooms int)
}

// CallStats reports the active call table size.
type CallStats interface {
	ActiveCalls() int
}

// HistoryHandler serves the read-only HTTP surface: recent room messages,
// recent notifications and the liveness probe.
type HistoryHandler struct {
	store store.Store
	stats Stats
	calls CallStats
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(st store.Store, stats Stats, calls CallStats) *HistoryHandler {
	return &HistoryHandler{store: st, stats: stats, calls: calls}
}

// GetRoomMessages returns a page of a room's recent history, oldest first.
func (h *HistoryHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	limit := parsePositive(c.Query("limit"), 50)
	offset := parseNonNegative(c.Query("offset"), 0)

	entries, err := h.store.ReadRange(c.Request.Context(), store.RoomMessagesKey(roomID), int64(offset), int64(offset+limit-1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load messages"})
		return
	}

	messages := make([]models.Message, 0, len(entries))
	for _, raw := range entries {
		var msg models.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	// Storage is newest-first; hand pages back in chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}

// GetUserNotifications returns the most recent notifications for a user.
func (h *HistoryHandler) GetUserNotifications(c *gin.Context) {
	userID := c.Param("user_id")
	limit := parsePositive(c.Query("limit"), 20)

	entries, err := h.store.ReadRange(c.Request.Context(), store.UserNotificationsKey(userID), 0, int64(limit-1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to load notifications"})
		return
	}

	notifications := make([]models.Notification, 0, len(entries))
	for _, raw := range entries {
		var n models.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

// Health is the liveness probe.
func (h *HistoryHandler) Health(c *gin.Context) {
	users, rooms := h.stats.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      time.Now().UnixMilli(),
		"connectedUsers": users,
		"activeRooms":    rooms,
		"activeCalls":    h.calls.ActiveCalls(),
	})
}

func parsePositive(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseNonNegative(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
