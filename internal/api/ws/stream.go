package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/campushub/coursecat/internal/infrastructure/logging"
	"github.com/campushub/coursecat/internal/infrastructure/tracing"
	"github.com/campushub/coursecat/internal/shared/id"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamExporter fans exported spans out to connected WebSocket clients.
// It sits in the batch processor's exporter list next to the file and
// console exporters; a client whose send buffer is full is disconnected
// rather than allowed to block a flush.
type StreamExporter struct {
	mu      sync.RWMutex
	clients map[id.ClientID]chan tracing.Record
	closed  bool
	logger  *logging.Logger
}

// NewStreamExporter creates a stream exporter with no clients.
func NewStreamExporter(logger *logging.Logger) *StreamExporter {
	return &StreamExporter{
		clients: make(map[id.ClientID]chan tracing.Record),
		logger:  logger,
	}
}

// Export broadcasts each span record to every connected client.
func (e *StreamExporter) Export(_ context.Context, spans []*tracing.Span) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil
	}

	for _, span := range spans {
		rec := span.Record()
		for clientID, ch := range e.clients {
			select {
			case ch <- rec:
			default:
				e.logger.Warn("span stream client too slow, dropping span",
					zap.String("client_id", clientID.String()))
			}
		}
	}
	return nil
}

// Shutdown disconnects every client.
func (e *StreamExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for clientID, ch := range e.clients {
		close(ch)
		delete(e.clients, clientID)
	}
	return nil
}

// Name identifies the exporter in pipeline logs and metrics.
func (e *StreamExporter) Name() string {
	return "stream"
}

// ClientCount returns the number of connected clients.
func (e *StreamExporter) ClientCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients)
}

func (e *StreamExporter) register() (id.ClientID, chan tracing.Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", nil, false
	}
	clientID := id.NewClientID()
	ch := make(chan tracing.Record, 64)
	e.clients[clientID] = ch
	return clientID, ch, true
}

func (e *StreamExporter) unregister(clientID id.ClientID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch, ok := e.clients[clientID]; ok {
		close(ch)
		delete(e.clients, clientID)
	}
}

// HandleConnection upgrades the request and streams span records to the
// client until it disconnects or the pipeline shuts down.
func (e *StreamExporter) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		e.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID, ch, ok := e.register()
	if !ok {
		return
	}
	defer e.unregister(clientID)

	e.logger.Info("span stream client connected",
		zap.String("client_id", clientID.String()))

	if err := conn.WriteJSON(map[string]any{
		"type":      "system",
		"message":   "Connected to span stream",
		"client_id": clientID.String(),
	}); err != nil {
		return
	}

	// Drain reads so close frames and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				e.unregister(clientID)
				return
			}
		}
	}()

	for rec := range ch {
		if err := conn.WriteJSON(rec); err != nil {
			e.logger.Info("span stream client disconnected",
				zap.String("client_id", clientID.String()))
			return
		}
	}
}
