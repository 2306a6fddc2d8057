package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"task-board-core/internal/dto"
	"task-board-core/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 8
)

// SnapshotHub pushes the post-mutation board snapshot to connected
// rendering clients over websocket. A client that cannot keep up is
// dropped; it reconnects and receives the next snapshot, which is complete
// by construction.
type SnapshotHub struct {
	mu       sync.Mutex
	clients  map[*snapshotClient]struct{}
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

type snapshotClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewSnapshotHub creates a new instance of SnapshotHub
func NewSnapshotHub(m *metrics.Metrics, logger *zap.Logger) *SnapshotHub {
	return &SnapshotHub{
		clients: map[*snapshotClient]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The core serves the local rendering layer only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		metrics: m,
		logger:  logger,
	}
}

// HandleWS upgrades the connection and registers the client.
func (h *SnapshotHub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := &snapshotClient{conn: conn, send: make(chan []byte, clientSendSize)}
	h.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// BroadcastSnapshot sends the snapshot to every connected client. Slow
// clients are disconnected rather than ever blocking the mutation path.
func (h *SnapshotHub) BroadcastSnapshot(board *dto.BoardResponse) {
	payload, err := marshalSnapshot(board)
	if err != nil {
		h.logger.Error("Failed to encode board snapshot", zap.Error(err))
		return
	}

	h.mu.Lock()
	var stale []*snapshotClient
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.Unlock()

	for _, client := range stale {
		h.logger.Debug("Dropping slow snapshot client")
		h.unregister(client)
	}
}

// ClientCount returns the number of connected clients.
func (h *SnapshotHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *SnapshotHub) Close() {
	h.mu.Lock()
	clients := make([]*snapshotClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.unregister(client)
	}
}

func (h *SnapshotHub) register(client *snapshotClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetSnapshotClients(count)
	}
	h.logger.Debug("Snapshot client connected", zap.Int("clients", count))
}

func (h *SnapshotHub) unregister(client *snapshotClient) {
	h.mu.Lock()
	_, present := h.clients[client]
	if present {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}
	client.conn.Close()
	if h.metrics != nil {
		h.metrics.SetSnapshotClients(count)
	}
	h.logger.Debug("Snapshot client disconnected", zap.Int("clients", count))
}

// readPump discards inbound frames; the feed is one-way. Its job is to
// notice the peer going away.
func (h *SnapshotHub) readPump(client *snapshotClient) {
	defer h.unregister(client)
	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func marshalSnapshot(board *dto.BoardResponse) ([]byte, error) {
	return json.Marshal(gin.H{"type": "board_snapshot", "board": board})
}

func (h *SnapshotHub) writePump(client *snapshotClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(client)
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
