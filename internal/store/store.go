// Package store is the durability boundary of the realtime core. Message
// history and notification queues are written through the Store contract,
// which is satisfied by a Redis backend and an in-memory fallback with
// identical external behavior. Callers never branch on which one is live.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrIndexOutOfRange is returned by SetAt when index does not address an
// existing element of the list at key.
var ErrIndexOutOfRange = errors.New("store: index out of range")

// Store is the append/read contract backing bounded histories, notification
// queues and presence fields. Lists are newest-first: Append pushes to the
// head and ReadRange(key, 0, n) reads the most recent n+1 entries. A maxLen
// of 0 leaves the list unbounded.
type Store interface {
	// AppendBounded pushes value to the head of the list at key and, when
	// maxLen > 0, trims the list to its maxLen newest entries.
	AppendBounded(ctx context.Context, key string, value []byte, maxLen int64) error

	// ReadRange returns list entries from start to stop inclusive, newest
	// first. Negative indices count from the end, -1 being the last entry.
	ReadRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)

	// SetAt overwrites the list entry at index.
	SetAt(ctx context.Context, key string, index int64, value []byte) error

	// SetField sets a hash field at key. A ttl > 0 bounds the retention of
	// the whole key.
	SetField(ctx context.Context, key, field, value string, ttl time.Duration) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Storage keys.

func RoomMessagesKey(roomID string) string {
	return fmt.Sprintf("room:%s:messages", roomID)
}

func UserNotificationsKey(userID string) string {
	return fmt.Sprintf("user:%s:notifications", userID)
}

func UserKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Connect builds the Redis-backed store, falling back to the in-memory
// implementation when the backend is unreachable. The service starts either
// way; durability is best-effort.
func Connect(ctx context.Context, redisURL string) Store {
	s, err := NewRedisStore(ctx, redisURL)
	if err != nil {
		log.Printf("redis not available, using in-memory storage: %v", err)
		return NewMemoryStore()
	}
	log.Printf("connected to redis")
	return s
}
