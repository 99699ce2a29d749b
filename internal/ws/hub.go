package ws

import (
	"sync"
	"time"

	"realtime-service/internal/models"
)

type userEntry struct {
	conn         *Conn
	status       string
	lastActivity time.Time
}

type roomEntry struct {
	roomType  string
	members   map[string]struct{}
	createdAt time.Time
}

// Hub is the connection registry and room table. It maps each user to
// exactly one live connection and tracks room membership sets. All maps are
// guarded by a single mutex; no raw map ever leaves the hub.
type Hub struct {
	mu    sync.RWMutex
	users map[string]*userEntry
	rooms map[string]*roomEntry
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]*userEntry),
		rooms: make(map[string]*roomEntry),
	}
}

// Register makes conn the live connection for its user. A prior connection
// from the same user is superseded but left open; it cleans up after itself
// when its own transport disconnects.
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[conn.UserID] = &userEntry{
		conn:         conn,
		status:       models.StatusOnline,
		lastActivity: time.Now(),
	}
}

// Unregister removes conn from the registry. It reports whether conn was
// still the live connection for its user; a superseded connection reports
// false and must not trigger offline cleanup.
func (h *Hub) Unregister(conn *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.users[conn.UserID]
	if !ok || entry.conn != conn {
		return false
	}
	delete(h.users, conn.UserID)
	return true
}

// Resolve returns the live connection for userID, if any.
func (h *Hub) Resolve(userID string) (*Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.users[userID]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// SendToUser delivers payload to the live connection of userID. A miss is
// not an error; offline recipients are expected steady state.
func (h *Hub) SendToUser(userID string, payload []byte) bool {
	conn, ok := h.Resolve(userID)
	if !ok {
		return false
	}
	return conn.Send(payload) == nil
}

// SetStatus updates the presence status for a registered user.
func (h *Hub) SetStatus(userID, status string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.users[userID]
	if !ok {
		return false
	}
	entry.status = status
	entry.lastActivity = time.Now()
	return true
}

// ListAll snapshots every registered connection.
func (h *Hub) ListAll() []models.OnlineUser {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.OnlineUser, 0, len(h.users))
	for userID, entry := range h.users {
		out = append(out, models.OnlineUser{
			UserID: userID,
			Email:  entry.conn.Email,
			Status: entry.status,
		})
	}
	return out
}

// JoinRoom adds userID to the room, creating it lazily. It returns the
// member list resolved against the registry (connected members only) and
// whether the user was already a member, so callers can avoid
// double-announcing a join.
func (h *Hub) JoinRoom(userID, roomID, roomType string) ([]models.RoomMember, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		room = &roomEntry{
			roomType:  roomType,
			members:   make(map[string]struct{}),
			createdAt: time.Now(),
		}
		h.rooms[roomID] = room
	}

	_, wasMember := room.members[userID]
	room.members[userID] = struct{}{}

	members := make([]models.RoomMember, 0, len(room.members))
	for memberID := range room.members {
		entry, connected := h.users[memberID]
		if !connected {
			continue
		}
		members = append(members, models.RoomMember{
			UserID: memberID,
			Email:  entry.conn.Email,
			Status: entry.status,
		})
	}
	return members, wasMember
}

// LeaveRoom removes userID from the room. Leaving a room you are not in is
// a no-op. Rooms are intentionally never destroyed when they empty; the
// health endpoint exposes the room count for monitoring.
func (h *Hub) LeaveRoom(userID, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	if _, member := room.members[userID]; !member {
		return false
	}
	delete(room.members, userID)
	return true
}

// LeaveAllRooms removes userID from every room it belongs to and returns
// the affected room ids. Used for disconnect cleanup.
func (h *Hub) LeaveAllRooms(userID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var left []string
	for roomID, room := range h.rooms {
		if _, member := room.members[userID]; member {
			delete(room.members, userID)
			left = append(left, roomID)
		}
	}
	return left
}

// BroadcastRoom delivers payload to every connected member of the room,
// optionally excluding one user. Returns the number of deliveries.
func (h *Hub) BroadcastRoom(roomID string, payload []byte, excludeUserID string) int {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return 0
	}
	conns := make([]*Conn, 0, len(room.members))
	for memberID := range room.members {
		if memberID == excludeUserID {
			continue
		}
		if entry, connected := h.users[memberID]; connected {
			conns = append(conns, entry.conn)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// BroadcastAll delivers payload to every registered connection, optionally
// excluding one user.
func (h *Hub) BroadcastAll(payload []byte, excludeUserID string) int {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.users))
	for userID, entry := range h.users {
		if userID == excludeUserID {
			continue
		}
		conns = append(conns, entry.conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if conn.Send(payload) == nil {
			delivered++
		}
	}
	return delivered
}

// Counts reports the number of registered connections and tracked rooms.
func (h *Hub) Counts() (users int, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users), len(h.rooms)
}
