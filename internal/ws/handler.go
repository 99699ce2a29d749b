package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"realtime-service/internal/auth"
	"realtime-service/internal/call"
	"realtime-service/internal/chat"
	"realtime-service/internal/notify"
	"realtime-service/internal/observability"
	"realtime-service/internal/presence"
)

// Handler authenticates and upgrades realtime connections, then runs the
// per-connection event loop.
type Handler struct {
	hub      *Hub
	verifier *auth.Verifier
	presence *presence.Tracker
	messages *chat.Pipeline
	calls    *call.Engine
	notify   *notify.Relay
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, verifier *auth.Verifier, tracker *presence.Tracker, pipeline *chat.Pipeline, engine *call.Engine, relay *notify.Relay) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		presence: tracker,
		messages: pipeline,
		calls:    engine,
		notify:   relay,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connMeta carries per-session request metadata for event publishing.
type connMeta struct {
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

// Handle upgrades the connection after verifying the handshake token and
// registers the client. The token is the only authentication this core ever
// performs; every later event reuses the identity established here.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("realtime-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token != "" {
		token = stripBearer(token)
	} else {
		token = c.Query("token")
	}

	identity, err := h.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := NewConn(identity, wsConn)
	meta := connMeta{
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	h.hub.Register(conn)
	conn.Start()
	log.Printf("user connected: %s (%s)", conn.UserID, conn.Email)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishWSEvent(ctx, "ws_connect", conn, meta, "")

	h.presence.TrackOnline(ctx, conn.UserID)

	go h.readLoop(ctx, conn, meta)
}

func stripBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return header
}

func (h *Handler) publishWSEvent(ctx context.Context, eventName string, conn *Conn, meta connMeta, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       eventName,
			"conn_id":     conn.ID,
			"duration_ms": time.Since(meta.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   conn.UserID,
			"email":     conn.Email,
			"device_id": meta.DeviceID,
			"ip":        meta.IP,
		},
	}

	headers := observability.BuildHeaders(meta.RequestID, meta.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.realtime", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: eventName,
		Payload:   payload,
	}, headers)
}
