package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/mocks"
	"realtime-service/internal/models"
	"realtime-service/internal/store"
)

type fakeStats struct {
	users, rooms, calls int
}

func (f fakeStats) Counts() (int, int) { return f.users, f.rooms }
func (f fakeStats) ActiveCalls() int   { return f.calls }

func newRouter(h *HistoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/rooms/:room_id/messages", h.GetRoomMessages)
	r.GET("/api/users/:user_id/notifications", h.GetUserNotifications)
	r.GET("/health", h.Health)
	return r
}

func seedMessages(t *testing.T, st store.Store, roomID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		raw, err := json.Marshal(models.Message{
			ID:      fmt.Sprintf("m%d", i),
			RoomID:  roomID,
			Content: fmt.Sprintf("msg %d", i),
		})
		require.NoError(t, err)
		require.NoError(t, st.AppendBounded(context.Background(), store.RoomMessagesKey(roomID), raw, 0))
	}
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestGetRoomMessagesChronologicalOrder(t *testing.T) {
	st := store.NewMemoryStore()
	seedMessages(t, st, "r1", 3)
	r := newRouter(NewHistoryHandler(st, fakeStats{}, fakeStats{}))

	w, body := doGet(t, r, "/api/rooms/r1/messages")
	assert.Equal(t, http.StatusOK, w.Code)

	var messages []models.Message
	require.NoError(t, json.Unmarshal(body["data"], &messages))
	require.Len(t, messages, 3)
	// Appended m0..m2; the page comes back oldest first.
	assert.Equal(t, "m0", messages[0].ID)
	assert.Equal(t, "m2", messages[2].ID)
}

func TestGetRoomMessagesPagination(t *testing.T) {
	st := store.NewMemoryStore()
	seedMessages(t, st, "r1", 10)
	r := newRouter(NewHistoryHandler(st, fakeStats{}, fakeStats{}))

	// Offset skips the newest entries, limit bounds the page.
	_, body := doGet(t, r, "/api/rooms/r1/messages?limit=3&offset=2")
	var messages []models.Message
	require.NoError(t, json.Unmarshal(body["data"], &messages))
	require.Len(t, messages, 3)
	assert.Equal(t, "m5", messages[0].ID)
	assert.Equal(t, "m7", messages[2].ID)
}

func TestGetRoomMessagesDefaultsOnBadParams(t *testing.T) {
	st := store.NewMemoryStore()
	seedMessages(t, st, "r1", 2)
	r := newRouter(NewHistoryHandler(st, fakeStats{}, fakeStats{}))

	w, body := doGet(t, r, "/api/rooms/r1/messages?limit=bogus&offset=-3")
	assert.Equal(t, http.StatusOK, w.Code)
	var messages []models.Message
	require.NoError(t, json.Unmarshal(body["data"], &messages))
	assert.Len(t, messages, 2)
}

func TestGetRoomMessagesEmptyRoom(t *testing.T) {
	r := newRouter(NewHistoryHandler(store.NewMemoryStore(), fakeStats{}, fakeStats{}))

	w, body := doGet(t, r, "/api/rooms/empty/messages")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(body["data"]))
}

func TestGetRoomMessagesStoreFailure(t *testing.T) {
	st := &mocks.StoreMock{}
	st.On("ReadRange", mock.Anything, store.RoomMessagesKey("r1"), mock.Anything, mock.Anything).
		Return(nil, errors.New("store down"))
	r := newRouter(NewHistoryHandler(st, fakeStats{}, fakeStats{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms/r1/messages", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetUserNotificationsNewestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	for i := 0; i < 3; i++ {
		raw, _ := json.Marshal(models.Notification{ID: fmt.Sprintf("n%d", i), UserID: "u1"})
		require.NoError(t, st.AppendBounded(context.Background(), store.UserNotificationsKey("u1"), raw, 0))
	}
	r := newRouter(NewHistoryHandler(st, fakeStats{}, fakeStats{}))

	_, body := doGet(t, r, "/api/users/u1/notifications?limit=2")
	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(body["data"], &notifications))
	require.Len(t, notifications, 2)
	assert.Equal(t, "n2", notifications[0].ID)
	assert.Equal(t, "n1", notifications[1].ID)
}

func TestHealthReportsCounts(t *testing.T) {
	r := newRouter(NewHistoryHandler(store.NewMemoryStore(), fakeStats{users: 4, rooms: 2}, fakeStats{calls: 1}))

	w, body := doGet(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
	assert.JSONEq(t, `4`, string(body["connectedUsers"]))
	assert.JSONEq(t, `2`, string(body["activeRooms"]))
	assert.JSONEq(t, `1`, string(body["activeCalls"]))
	assert.NotEmpty(t, body["timestamp"])
}
