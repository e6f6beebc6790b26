package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pagecraft/backend/internal/domain/store"
	"github.com/pagecraft/backend/internal/infrastructure/logging"
	"github.com/pagecraft/backend/internal/infrastructure/monitoring"
	"github.com/pagecraft/backend/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// Handler bridges store events to WebSocket clients. Each connection
// gets its own store subscription; a client that falls behind drops
// events rather than stalling mutations.
type Handler struct {
	store   *store.Store
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(st *store.Store, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		store:   st,
		logger:  logger.Named("ws"),
		metrics: metrics,
	}
}

// client serializes writes to one connection. The event-forwarding
// goroutine and the reader's control replies share the socket, and
// gorilla/websocket allows only a single concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(data)
}

// HandleConnection handles WebSocket upgrade and the event stream
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	subID, events := h.store.Subscribe()
	defer h.store.Unsubscribe(subID)

	cl := &client{conn: conn}
	cl.send(map[string]interface{}{
		"type":    "system",
		"message": "Connected to Pagecraft Builder Backend",
		"state":   h.store.State(),
	})

	// Forward store events until the subscription or connection closes
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			if err := h.forward(cl, event); err != nil {
				return
			}
		}
	}()

	// Reader: client control messages
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "ping":
			cl.send(map[string]interface{}{"type": "pong"})
		case "state":
			cl.send(map[string]interface{}{
				"type":      "state",
				"state":     h.store.State(),
				"timestamp": time.Now().Unix(),
			})
		default:
			cl.send(map[string]interface{}{
				"type":    "error",
				"message": "unknown message type",
			})
		}
	}

	conn.Close()
	<-done
}

func (h *Handler) forward(cl *client, event types.Event) error {
	return cl.send(map[string]interface{}{
		"type":         string(event.Type),
		"component_id": event.ComponentID,
		"canvas":       string(event.Canvas),
		"payload":      event.Payload,
		"timestamp":    event.Timestamp.Unix(),
	})
}
