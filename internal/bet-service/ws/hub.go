package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// conn serializa as escritas: gorilla não aceita writers concorrentes
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

// Hub gerencia conexões WebSocket e assinaturas por owner
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// owner -> set of connections
	subs map[string]map[*conn]struct{}
}

// NewHub cria o hub com a política de origem informada
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão.
// Um cliente pode acompanhar mais de um owner.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &conn{ws: ws}
	defer ws.Close()

	for {
		var msg ClientMsg
		if err := ws.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.Owner != "" {
				h.subscribe(msg.Owner, c)
			}
		case "unsubscribe":
			h.unsubscribe(msg.Owner, c)
		case "ping":
			_ = c.write([]byte(`{"type":"pong"}`))
		}
	}

	h.mu.Lock()
	for owner, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, owner)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe(owner string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[owner]; !ok {
		h.subs[owner] = make(map[*conn]struct{})
	}
	h.subs[owner][c] = struct{}{}
}

func (h *Hub) unsubscribe(owner string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.subs[owner]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.subs, owner)
		}
	}
}

// Subscribers retorna quantas conexões acompanham o owner
func (h *Hub) Subscribers(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[owner])
}

// Broadcast envia a atualização para as conexões inscritas no owner
func (h *Hub) Broadcast(update BetUpdate) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.subs[update.Owner]))
	for c := range h.subs[update.Owner] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(update)
	for _, c := range conns {
		_ = c.write(b)
	}
}
