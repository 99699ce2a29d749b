package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"realtime-service/internal/auth"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

var errConnClosed = errors.New("connection closed")

// Conn wraps a websocket together with the authenticated identity it was
// established with. Outbound writes are serialized through a buffered send
// channel and a single write pump, so Send is safe from any goroutine.
type Conn struct {
	ID     string
	UserID string
	Email  string
	Role   string

	ws     *websocket.Conn
	send   chan []byte
	once   sync.Once
	closed chan struct{}
}

// NewConn constructs a Conn for a verified identity.
func NewConn(identity auth.Identity, wsConn *websocket.Conn) *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   identity.Role,
		ws:     wsConn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Start launches the write pump. Call exactly once per connection.
func (c *Conn) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. A slow client that fills the buffer is
// disconnected to keep backpressure bounded.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errConnClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errConnClosed
	}
}

// Close terminates the connection and stops the write pump.
func (c *Conn) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.closed)
		if c.ws == nil {
			return
		}
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Conn) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
