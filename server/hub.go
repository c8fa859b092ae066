package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/room4-2/OrderDesk/messages"
)

const (
	monitorBufferSize = 64
	writeTimeout      = 10 * time.Second
)

// Hub fans engine events out to websocket monitor clients
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*monitorClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

type monitorClient struct {
	conn      *websocket.Conn
	writeChan chan []byte
	closeOnce sync.Once
}

// NewHub creates a hub accepting browser origins from allowedOrigins
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*monitorClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("monitor upgrade failed", zap.Error(err))
		return
	}

	c := &monitorClient{conn: conn, writeChan: make(chan []byte, monitorBufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()

	h.logger.Info("monitor connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// Publish sends an event to every client. Slow clients drop events.
func (h *Hub) Publish(ev messages.Event) {
	data, err := sonic.Marshal(ev)
	if err != nil {
		h.logger.Warn("failed to encode monitor event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.writeChan <- data:
		default:
		}
	}
}

// Count returns the number of connected monitors
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and waits for their goroutines
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*monitorClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
	h.wg.Wait()
}

func (h *Hub) remove(c *monitorClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	c.closeOnce.Do(func() {
		close(c.writeChan)
		_ = c.conn.Close()
	})
}

// writePump owns all writes to the connection
func (h *Hub) writePump(c *monitorClient) {
	defer h.wg.Done()
	defer h.remove(c)

	for data := range c.writeChan {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump discards client input and notices disconnects
func (h *Hub) readPump(c *monitorClient) {
	defer h.wg.Done()
	defer h.remove(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
