package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"main/internal/bus"

	"github.com/gorilla/websocket"
	"github.com/yanun0323/logs"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub broadcasts pulse events to attached websocket clients so a dashboard
// can watch the engine live. A dead client is dropped on first write error.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Consume drains the event queue into the hub until the context ends.
func (h *Hub) Consume(ctx context.Context, queue *bus.Queue) {
	queue.Run(ctx, h.Publish)
}

// Publish sends one event to every attached client.
func (h *Hub) Publish(e bus.Event) {
	payload, err := json.Marshal(map[string]any{
		"kind":     e.Kind.String(),
		"at":       time.Unix(0, e.AtNano).UTC().Format(time.RFC3339Nano),
		"market":   e.Market,
		"clientId": e.ClientID,
		"side":     e.Order.Side.String(),
		"price":    e.Order.Price,
		"quantity": e.Order.Quantity,
		"pulse":    e.Pulse,
	})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

// Serve exposes the hub on /ws until the context ends.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logs.Errorf("telemetry upgrade failed: %+v", err)
			return
		}
		h.mu.Lock()
		h.clients[conn] = struct{}{}
		h.mu.Unlock()
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logs.Infof("telemetry listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
